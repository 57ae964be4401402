// Package docs registra la spec OpenAPI que sirve /swagger/*.
// Se regenera con `swag init -g cmd/api/main.go`; los handlers llevan las anotaciones.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "paths": {
        "/health": {
            "get": {
                "produces": ["text/plain"],
                "tags": ["system"],
                "summary": "Liveness",
                "responses": {"200": {"description": "ok"}}
            }
        },
        "/owners": {
            "get": {"tags": ["owners"], "summary": "List owners", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["owners"], "summary": "Register owner profile", "security": [{"BearerAuth": []}], "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}, "409": {"description": "Conflict"}}}
        },
        "/me/owner": {
            "get": {"tags": ["owners"], "summary": "Current owner profile", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}
        },
        "/owners/{ownerID}": {
            "get": {"tags": ["owners"], "summary": "Get owner", "security": [{"BearerAuth": []}], "parameters": [{"type": "string", "name": "ownerID", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}}},
            "patch": {"tags": ["owners"], "summary": "Update owner", "security": [{"BearerAuth": []}], "parameters": [{"type": "string", "name": "ownerID", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "403": {"description": "Forbidden"}}},
            "delete": {"tags": ["owners"], "summary": "Delete owner", "security": [{"BearerAuth": []}], "parameters": [{"type": "string", "name": "ownerID", "in": "path", "required": true}], "responses": {"204": {"description": "No Content"}, "403": {"description": "Forbidden"}}}
        },
        "/pets": {
            "get": {"tags": ["pets"], "summary": "List pets", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["pets"], "summary": "Create pet", "security": [{"BearerAuth": []}], "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}}}
        },
        "/pets/{petID}": {
            "get": {"tags": ["pets"], "summary": "Get pet", "security": [{"BearerAuth": []}], "parameters": [{"type": "string", "name": "petID", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}}},
            "patch": {"tags": ["pets"], "summary": "Update pet", "security": [{"BearerAuth": []}], "parameters": [{"type": "string", "name": "petID", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "403": {"description": "Forbidden"}}},
            "delete": {"tags": ["pets"], "summary": "Delete pet", "security": [{"BearerAuth": []}], "parameters": [{"type": "string", "name": "petID", "in": "path", "required": true}], "responses": {"204": {"description": "No Content"}, "403": {"description": "Forbidden"}}}
        },
        "/vaccines": {
            "get": {"tags": ["vaccines"], "summary": "List vaccines", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["vaccines"], "summary": "Create vaccine (staff)", "security": [{"BearerAuth": []}], "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}, "403": {"description": "Forbidden"}}}
        },
        "/vaccines/{vaccineID}": {
            "get": {"tags": ["vaccines"], "summary": "Get vaccine", "security": [{"BearerAuth": []}], "parameters": [{"type": "string", "name": "vaccineID", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}},
            "patch": {"tags": ["vaccines"], "summary": "Update vaccine (staff)", "security": [{"BearerAuth": []}], "parameters": [{"type": "string", "name": "vaccineID", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}}},
            "delete": {"tags": ["vaccines"], "summary": "Delete vaccine (staff)", "security": [{"BearerAuth": []}], "parameters": [{"type": "string", "name": "vaccineID", "in": "path", "required": true}], "responses": {"204": {"description": "No Content"}, "409": {"description": "Conflict"}}}
        },
        "/vaccines/{vaccineID}/statistics": {
            "get": {"tags": ["vaccinations"], "summary": "Vaccine statistics", "security": [{"BearerAuth": []}], "parameters": [{"type": "string", "name": "vaccineID", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}
        },
        "/vaccinations": {
            "get": {"tags": ["vaccinations"], "summary": "List vaccinations", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["vaccinations"], "summary": "Record vaccination", "security": [{"BearerAuth": []}], "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}, "403": {"description": "Forbidden"}}}
        },
        "/vaccinations/due-soon": {
            "get": {"tags": ["vaccinations"], "summary": "Doses due in the next 30 days", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}
        },
        "/vaccinations/overdue": {
            "get": {"tags": ["vaccinations"], "summary": "Overdue doses", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}
        },
        "/vaccinations/recent": {
            "get": {"tags": ["vaccinations"], "summary": "Vaccinations of the last 30 days", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}
        },
        "/vaccinations/{eventID}": {
            "get": {"tags": ["vaccinations"], "summary": "Get vaccination", "security": [{"BearerAuth": []}], "parameters": [{"type": "string", "name": "eventID", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}}},
            "patch": {"tags": ["vaccinations"], "summary": "Update vaccination", "security": [{"BearerAuth": []}], "parameters": [{"type": "string", "name": "eventID", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "403": {"description": "Forbidden"}}},
            "delete": {"tags": ["vaccinations"], "summary": "Delete vaccination", "security": [{"BearerAuth": []}], "parameters": [{"type": "string", "name": "eventID", "in": "path", "required": true}], "responses": {"204": {"description": "No Content"}, "403": {"description": "Forbidden"}}}
        },
        "/pets/{petID}/vaccinations": {
            "get": {"tags": ["vaccinations"], "summary": "Vaccination history of a pet", "security": [{"BearerAuth": []}], "parameters": [{"type": "string", "name": "petID", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}
        },
        "/pets/{petID}/vaccinations/upcoming": {
            "get": {"tags": ["vaccinations"], "summary": "Upcoming doses of a pet", "security": [{"BearerAuth": []}], "parameters": [{"type": "string", "name": "petID", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}
        },
        "/owners/{ownerID}/vaccination-summary": {
            "get": {"tags": ["vaccinations"], "summary": "Owner vaccination summary", "security": [{"BearerAuth": []}], "parameters": [{"type": "string", "name": "ownerID", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}}}
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Pet Vaccination Schedule API",
	Description:      "Owners, pets, vaccine catalog and vaccination history with due-date tracking.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
