package vaccines

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"pet-vaccination-schedule/internal/domain/access"
	"pet-vaccination-schedule/internal/middleware"
	"pet-vaccination-schedule/internal/platform/apperr"
)

func RegisterRoutes(r chi.Router, svc *Service, engine *access.Engine) {
	// Catálogo: lectura para autenticados, escritura sólo staff
	r.Post("/vaccines", createVaccineHandler(svc, engine))
	r.Get("/vaccines", listVaccinesHandler(svc, engine))
	r.Get("/vaccines/{vaccineID}", getVaccineHandler(svc, engine))
	r.Patch("/vaccines/{vaccineID}", updateVaccineHandler(svc, engine))
	r.Delete("/vaccines/{vaccineID}", deleteVaccineHandler(svc, engine))
}

type createVaccineRequest struct {
	Name           string `json:"name"`
	Manufacturer   string `json:"manufacturer"`
	Description    string `json:"description"`
	SpeciesTarget  string `json:"species_target"`
	DurationMonths int    `json:"duration_months"`
	Mandatory      bool   `json:"is_mandatory"`
}

type updateVaccineRequest struct {
	Name           *string `json:"name"`
	Manufacturer   *string `json:"manufacturer"`
	Description    *string `json:"description"`
	SpeciesTarget  *string `json:"species_target"`
	DurationMonths *int    `json:"duration_months"`
	Mandatory      *bool   `json:"is_mandatory"`
}

type vaccineResponse struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Manufacturer   string    `json:"manufacturer"`
	Description    string    `json:"description"`
	SpeciesTarget  string    `json:"species_target"`
	DurationMonths int       `json:"duration_months"`
	Mandatory      bool      `json:"is_mandatory"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// createVaccineHandler godoc
// @Summary Crear vacuna
// @Description Agrega un tipo de vacuna al catálogo. Sólo staff.
// @Tags vaccines
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param X-Debug-Staff header bool false "Solo en modo dev, actor privilegiado"
// @Param Authorization header string false "Bearer token en producción"
// @Param payload body createVaccineRequest true "Datos de la vacuna"
// @Success 201 {object} vaccineResponse
// @Failure 400 {object} apperr.Error "validación / nombre duplicado"
// @Failure 401 {object} apperr.Error "unauthorized"
// @Failure 403 {object} apperr.Error "forbidden"
// @Router /vaccines [post]
func createVaccineHandler(svc *Service, engine *access.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := requireActor(w, r)
		if !ok {
			return
		}
		if !engine.Permits(access.PolicyAdminOrReadOnly, actor, Vaccine{}, access.Write) {
			writeError(w, r, apperr.Forbidden())
			return
		}

		var req createVaccineRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, r, apperr.Validation(map[string]string{"_": "invalid json"}))
			return
		}

		v, err := svc.Create(r.Context(), CreateInput(req))
		if err != nil {
			writeError(w, r, err)
			return
		}

		writeJSON(w, http.StatusCreated, toVaccineResponse(v))
	}
}

// listVaccinesHandler godoc
// @Summary Listar vacunas
// @Tags vaccines
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param species query string false "Especie objetivo"
// @Param mandatory query bool false "Sólo obligatorias (true) / no obligatorias (false)"
// @Param q query string false "Texto en nombre/fabricante"
// @Success 200 {array} vaccineResponse
// @Failure 400 {object} apperr.Error "filtro inválido"
// @Failure 401 {object} apperr.Error "unauthorized"
// @Router /vaccines [get]
func listVaccinesHandler(svc *Service, engine *access.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := requireActor(w, r)
		if !ok {
			return
		}

		q := r.URL.Query()
		f := ListFilter{Species: q.Get("species"), Query: q.Get("q")}
		if raw := strings.TrimSpace(q.Get("mandatory")); raw != "" {
			b, err := strconv.ParseBool(raw)
			if err != nil {
				writeError(w, r, apperr.Validation(map[string]string{"mandatory": "must be true or false"}))
				return
			}
			f.Mandatory = &b
		}

		items, err := svc.List(r.Context(), f)
		if err != nil {
			writeError(w, r, err)
			return
		}

		out := make([]vaccineResponse, 0, len(items))
		for _, v := range items {
			if !engine.Permits(access.PolicyAdminOrReadOnly, actor, v, access.Read) {
				continue
			}
			out = append(out, toVaccineResponse(v))
		}

		writeJSON(w, http.StatusOK, out)
	}
}

// getVaccineHandler godoc
// @Summary Obtener vacuna
// @Tags vaccines
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param vaccineID path string true "ID de la vacuna"
// @Success 200 {object} vaccineResponse
// @Failure 401 {object} apperr.Error "unauthorized"
// @Failure 403 {object} apperr.Error "forbidden"
// @Router /vaccines/{vaccineID} [get]
func getVaccineHandler(svc *Service, engine *access.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := requireActor(w, r)
		if !ok {
			return
		}

		v, err := svc.GetByID(r.Context(), chi.URLParam(r, "vaccineID"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		if !engine.Permits(access.PolicyAdminOrReadOnly, actor, v, access.Read) {
			writeError(w, r, apperr.Forbidden())
			return
		}

		writeJSON(w, http.StatusOK, toVaccineResponse(v))
	}
}

// updateVaccineHandler godoc
// @Summary Actualizar vacuna
// @Description PATCH parcial. Sólo staff. No recalcula próximas dosis ya registradas.
// @Tags vaccines
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param X-Debug-Staff header bool false "Solo en modo dev, actor privilegiado"
// @Param Authorization header string false "Bearer token en producción"
// @Param vaccineID path string true "ID de la vacuna"
// @Param payload body updateVaccineRequest true "Campos a modificar"
// @Success 200 {object} vaccineResponse
// @Failure 400 {object} apperr.Error "validación"
// @Failure 401 {object} apperr.Error "unauthorized"
// @Failure 403 {object} apperr.Error "forbidden"
// @Router /vaccines/{vaccineID} [patch]
func updateVaccineHandler(svc *Service, engine *access.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := requireActor(w, r)
		if !ok {
			return
		}

		vaccineID := chi.URLParam(r, "vaccineID")
		current, err := svc.GetByID(r.Context(), vaccineID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if !engine.Permits(access.PolicyAdminOrReadOnly, actor, current, access.Write) {
			writeError(w, r, apperr.Forbidden())
			return
		}

		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()

		var req updateVaccineRequest
		if err := dec.Decode(&req); err != nil {
			writeError(w, r, apperr.Validation(map[string]string{"_": "invalid json"}))
			return
		}

		updated, err := svc.Update(r.Context(), vaccineID, UpdateInput(req))
		if err != nil {
			writeError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, toVaccineResponse(updated))
	}
}

// deleteVaccineHandler godoc
// @Summary Borrar vacuna
// @Description Sólo staff. Rechazado (409) mientras existan vacunaciones que la usen.
// @Tags vaccines
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param X-Debug-Staff header bool false "Solo en modo dev, actor privilegiado"
// @Param Authorization header string false "Bearer token en producción"
// @Param vaccineID path string true "ID de la vacuna"
// @Success 204
// @Failure 401 {object} apperr.Error "unauthorized"
// @Failure 403 {object} apperr.Error "forbidden"
// @Failure 409 {object} apperr.Error "vacuna en uso"
// @Router /vaccines/{vaccineID} [delete]
func deleteVaccineHandler(svc *Service, engine *access.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := requireActor(w, r)
		if !ok {
			return
		}

		vaccineID := chi.URLParam(r, "vaccineID")
		current, err := svc.GetByID(r.Context(), vaccineID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if !engine.Permits(access.PolicyAdminOrReadOnly, actor, current, access.Write) {
			writeError(w, r, apperr.Forbidden())
			return
		}

		if err := svc.Delete(r.Context(), vaccineID); err != nil {
			writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func toVaccineResponse(v Vaccine) vaccineResponse {
	return vaccineResponse{
		ID:             v.ID,
		Name:           v.Name,
		Manufacturer:   v.Manufacturer,
		Description:    v.Description,
		SpeciesTarget:  v.SpeciesTarget,
		DurationMonths: v.DurationMonths,
		Mandatory:      v.Mandatory,
		CreatedAt:      v.CreatedAt,
		UpdatedAt:      v.UpdatedAt,
	}
}

func requireActor(w http.ResponseWriter, r *http.Request) (access.Actor, bool) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, apperr.ErrUnauthorized)
		return access.Actor{}, false
	}
	return actor, true
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, body := apperr.Public(err)
	middleware.LogFailure(r, status, err)
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
