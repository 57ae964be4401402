// Package apperr define los errores de dominio que cruzan la frontera HTTP.
//
// Uso típico:
//
//	// en services / validadores
//	return apperr.Validation(map[string]string{"birth_date": "cannot be in the future"})
//
//	// en handlers
//	status := apperr.HTTPStatus(err)
//
// ProgrammingError es aparte: indica un bug de un colaborador y no se mapea a 4xx.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// Code es el código legible por máquina.
type Code string

const (
	CodeValidation   Code = "VALIDATION"
	CodeIntegrity    Code = "INTEGRITY_CONFLICT"
	CodeForbidden    Code = "FORBIDDEN"
	CodeNotFound     Code = "NOT_FOUND"
	CodeConflict     Code = "CONFLICT"
	CodeUnauthorized Code = "UNAUTHORIZED"
	CodeInternal     Code = "INTERNAL"
)

// HTTPStatus del código.
// NotFound y Forbidden se devuelven igual para no filtrar existencia de recursos ajenos.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeValidation, CodeIntegrity:
		return http.StatusBadRequest
	case CodeForbidden, CodeNotFound:
		return http.StatusForbidden
	case CodeConflict:
		return http.StatusConflict
	case CodeUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// Error es un error de dominio con código y, opcionalmente, errores por campo.
type Error struct {
	Code    Code              `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
	cause   error
}

func (e *Error) Error() string {
	msg := e.Message
	if len(e.Fields) > 0 {
		keys := make([]string, 0, len(e.Fields))
		for k := range e.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, k+": "+e.Fields[k])
		}
		msg += " (" + strings.Join(parts, "; ") + ")"
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.cause)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.cause }

// Is compara por Code, así errors.Is(err, apperr.ErrValidation) funciona con cualquier detalle.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// WithCause devuelve una copia que envuelve err.
func (e *Error) WithCause(err error) *Error {
	return &Error{Code: e.Code, Message: e.Message, Fields: e.Fields, cause: err}
}

var (
	ErrValidation   = &Error{Code: CodeValidation, Message: "validation failed"}
	ErrIntegrity    = &Error{Code: CodeIntegrity, Message: "integrity conflict"}
	ErrForbidden    = &Error{Code: CodeForbidden, Message: "forbidden"}
	ErrNotFound     = &Error{Code: CodeNotFound, Message: "not found"}
	ErrConflict     = &Error{Code: CodeConflict, Message: "conflict"}
	ErrUnauthorized = &Error{Code: CodeUnauthorized, Message: "unauthorized"}
	ErrInternal     = &Error{Code: CodeInternal, Message: "internal error"}
)

// Validation arma un ValidationError (campo -> motivo).
func Validation(fields map[string]string) *Error {
	return &Error{Code: CodeValidation, Message: "validation failed", Fields: fields}
}

// Integrity es el conflicto de unicidad (dosis duplicada); se expone como error de campo.
func Integrity(field, reason string) *Error {
	return &Error{
		Code:    CodeIntegrity,
		Message: "integrity conflict",
		Fields:  map[string]string{field: reason},
	}
}

// Forbidden es el AuthorizationDenied uniforme, sin detalle.
func Forbidden() *Error {
	return &Error{Code: CodeForbidden, Message: "forbidden"}
}

// NotFound con mensaje propio.
func NotFound(msg string) *Error {
	return &Error{Code: CodeNotFound, Message: msg}
}

// Conflict con mensaje propio.
func Conflict(msg string) *Error {
	return &Error{Code: CodeConflict, Message: msg}
}

// FieldErrors devuelve el mapa campo -> motivo si err es de validación o integridad.
func FieldErrors(err error) (map[string]string, bool) {
	var e *Error
	if !errors.As(err, &e) {
		return nil, false
	}
	if e.Code != CodeValidation && e.Code != CodeIntegrity {
		return nil, false
	}
	return e.Fields, true
}

// HTTPStatus para cualquier error; lo desconocido es 500.
func HTTPStatus(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Code.HTTPStatus()
	}
	return http.StatusInternalServerError
}

// Public devuelve status + cuerpo seguro para el cliente.
// NotFound y Forbidden salen idénticos; lo que no es *Error sale como internal.
func Public(err error) (int, *Error) {
	var e *Error
	if !errors.As(err, &e) {
		return http.StatusInternalServerError, ErrInternal
	}
	switch e.Code {
	case CodeForbidden, CodeNotFound:
		return http.StatusForbidden, ErrForbidden
	case CodeInternal:
		return http.StatusInternalServerError, ErrInternal
	}
	return e.Code.HTTPStatus(), &Error{Code: e.Code, Message: e.Message, Fields: e.Fields}
}

// ProgrammingError: un colaborador pasó algo que el core no reconoce.
// Es fatal para el request; nunca se convierte en Deny.
type ProgrammingError struct {
	What string
}

func (e *ProgrammingError) Error() string {
	return "programming error: " + e.What
}

// Programming crea un ProgrammingError con formato.
func Programming(format string, args ...any) *ProgrammingError {
	return &ProgrammingError{What: fmt.Sprintf(format, args...)}
}

// IsProgramming indica si err (o lo que envuelve) es un ProgrammingError.
func IsProgramming(err error) bool {
	var pe *ProgrammingError
	return errors.As(err, &pe)
}
