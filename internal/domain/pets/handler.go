package pets

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"pet-vaccination-schedule/internal/domain/access"
	"pet-vaccination-schedule/internal/domain/owners"
	"pet-vaccination-schedule/internal/middleware"
	"pet-vaccination-schedule/internal/platform/apperr"
)

const dateLayout = "2006-01-02"

func RegisterRoutes(r chi.Router, svc *Service, engine *access.Engine) {
	r.Post("/pets", createPetHandler(svc, engine))
	r.Get("/pets", listPetsHandler(svc, engine))
	r.Get("/pets/{petID}", getPetHandler(svc, engine))
	r.Patch("/pets/{petID}", updatePetHandler(svc, engine))
	r.Delete("/pets/{petID}", deletePetHandler(svc, engine))

	// Mascotas de un dueño (sólo el propio dueño o staff)
	r.Get("/owners/{ownerID}/pets", listOwnerPetsHandler(svc, engine))
}

type createPetRequest struct {
	OwnerID   string   `json:"owner_id"` // sólo staff; el resto usa su propio perfil
	Name      string   `json:"name"`
	Species   Species  `json:"species" enums:"dog,cat,bird,rabbit,hamster,reptile,other"`
	Breed     string   `json:"breed"`
	Color     string   `json:"color"`
	BirthDate string   `json:"birth_date"` // YYYY-MM-DD
	Weight    *float64 `json:"weight"`
	Notes     string   `json:"notes"`
}

type updatePetRequest struct {
	// Punteros para PATCH real: nil = no tocar.
	Name      *string  `json:"name"`
	Species   *Species `json:"species"`
	Breed     *string  `json:"breed"`
	Color     *string  `json:"color"`
	BirthDate *string  `json:"birth_date"` // YYYY-MM-DD
	Weight    *float64 `json:"weight"`     // null = limpiar
	Notes     *string  `json:"notes"`
}

// petResponse incluye los campos derivados (edad) calculados con la fecha de hoy.
type petResponse struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	OwnerName string    `json:"owner_name"`
	Name      string    `json:"name"`
	Species   Species   `json:"species"`
	Breed     string    `json:"breed"`
	Color     string    `json:"color"`
	BirthDate string    `json:"birth_date"`
	AgeYears  int       `json:"age_years"`
	AgeMonths int       `json:"age_months"`
	Weight    *float64  `json:"weight"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// createPetHandler godoc
// @Summary Registrar mascota
// @Description Registra una mascota para el perfil de dueño del usuario actual. Staff puede indicar `owner_id`. Autenticación: `X-Debug-User-ID` (dev) o `Authorization: Bearer <token>` (prod).
// @Tags pets
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param payload body createPetRequest true "Datos de la mascota; birth_date en formato YYYY-MM-DD"
// @Success 201 {object} petResponse
// @Failure 400 {object} apperr.Error "validación"
// @Failure 401 {object} apperr.Error "unauthorized"
// @Failure 403 {object} apperr.Error "forbidden o sin perfil de dueño"
// @Router /pets [post]
func createPetHandler(svc *Service, engine *access.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := requireActor(w, r)
		if !ok {
			return
		}

		var req createPetRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, r, apperr.Validation(map[string]string{"_": "invalid json"}))
			return
		}

		var (
			owner owners.Owner
			err   error
		)
		if actor.Privileged && strings.TrimSpace(req.OwnerID) != "" {
			owner, err = svc.Owner(r.Context(), req.OwnerID)
		} else {
			owner, err = svc.OwnerOfUser(r.Context(), actor.UserID)
		}
		if err != nil {
			writeError(w, r, err)
			return
		}
		if !engine.Permits(access.PolicyOwnerStrict, actor, owner, access.Write) {
			writeError(w, r, apperr.Forbidden())
			return
		}

		var bd time.Time
		if strings.TrimSpace(req.BirthDate) != "" {
			bd, err = time.Parse(dateLayout, req.BirthDate)
			if err != nil {
				writeError(w, r, apperr.Validation(map[string]string{"birth_date": "must be YYYY-MM-DD"}))
				return
			}
		}

		p, err := svc.Create(r.Context(), owner, CreateInput{
			Name:      req.Name,
			Species:   req.Species,
			Breed:     req.Breed,
			Color:     req.Color,
			BirthDate: bd,
			Weight:    req.Weight,
			Notes:     req.Notes,
		})
		if err != nil {
			writeError(w, r, err)
			return
		}

		writeJSON(w, http.StatusCreated, toPetResponse(p, svc.Today()))
	}
}

// listPetsHandler godoc
// @Summary Listar mascotas
// @Description Lista las mascotas del usuario actual. Staff ve todas y puede filtrar por `owner_id`.
// @Tags pets
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param species query string false "Especie"
// @Param owner_id query string false "ID del dueño"
// @Param q query string false "Texto en nombre/raza"
// @Success 200 {array} petResponse
// @Failure 401 {object} apperr.Error "unauthorized"
// @Router /pets [get]
func listPetsHandler(svc *Service, engine *access.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := requireActor(w, r)
		if !ok {
			return
		}

		q := r.URL.Query()
		f := ListFilter{
			OwnerID: q.Get("owner_id"),
			Species: Species(strings.ToLower(strings.TrimSpace(q.Get("species")))),
			Query:   q.Get("q"),
		}
		if !actor.Privileged {
			f.OwnerUserID = actor.UserID
		}

		writePetList(w, r, svc, engine, actor, f)
	}
}

// listOwnerPetsHandler godoc
// @Summary Mascotas de un dueño
// @Tags pets
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param ownerID path string true "ID del dueño"
// @Success 200 {array} petResponse
// @Failure 401 {object} apperr.Error "unauthorized"
// @Failure 403 {object} apperr.Error "forbidden"
// @Router /owners/{ownerID}/pets [get]
func listOwnerPetsHandler(svc *Service, engine *access.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := requireActor(w, r)
		if !ok {
			return
		}

		owner, err := svc.Owner(r.Context(), chi.URLParam(r, "ownerID"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		if !engine.Permits(access.PolicyOwnerStrict, actor, owner, access.Read) {
			writeError(w, r, apperr.Forbidden())
			return
		}

		writePetList(w, r, svc, engine, actor, ListFilter{OwnerID: owner.ID})
	}
}

func writePetList(w http.ResponseWriter, r *http.Request, svc *Service, engine *access.Engine, actor access.Actor, f ListFilter) {
	items, err := svc.List(r.Context(), f)
	if err != nil {
		writeError(w, r, err)
		return
	}

	today := svc.Today()
	out := make([]petResponse, 0, len(items))
	for _, p := range items {
		if !engine.Permits(access.PolicyOwnerStrict, actor, p, access.Read) {
			continue
		}
		out = append(out, toPetResponse(p, today))
	}

	writeJSON(w, http.StatusOK, out)
}

// getPetHandler godoc
// @Summary Obtener mascota
// @Tags pets
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param petID path string true "ID de la mascota"
// @Success 200 {object} petResponse
// @Failure 401 {object} apperr.Error "unauthorized"
// @Failure 403 {object} apperr.Error "forbidden"
// @Router /pets/{petID} [get]
func getPetHandler(svc *Service, engine *access.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := requireActor(w, r)
		if !ok {
			return
		}

		p, err := svc.GetByID(r.Context(), chi.URLParam(r, "petID"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		if !engine.Permits(access.PolicyOwnerStrict, actor, p, access.Read) {
			writeError(w, r, apperr.Forbidden())
			return
		}

		writeJSON(w, http.StatusOK, toPetResponse(p, svc.Today()))
	}
}

// updatePetHandler godoc
// @Summary Actualizar mascota
// @Description PATCH parcial. Sólo el dueño o staff. `weight: null` limpia el peso.
// @Tags pets
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param petID path string true "ID de la mascota"
// @Param payload body updatePetRequest true "Campos a modificar"
// @Success 200 {object} petResponse
// @Failure 400 {object} apperr.Error "validación"
// @Failure 401 {object} apperr.Error "unauthorized"
// @Failure 403 {object} apperr.Error "forbidden"
// @Router /pets/{petID} [patch]
func updatePetHandler(svc *Service, engine *access.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := requireActor(w, r)
		if !ok {
			return
		}

		petID := chi.URLParam(r, "petID")
		current, err := svc.GetByID(r.Context(), petID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if !engine.Permits(access.PolicyOwnerOrReadOnly, actor, current, access.Write) {
			writeError(w, r, apperr.Forbidden())
			return
		}

		// Decodificamos a map primero para detectar presencia de "weight" (null = limpiar).
		var raw map[string]json.RawMessage
		if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
			writeError(w, r, apperr.Validation(map[string]string{"_": "invalid json"}))
			return
		}

		var req updatePetRequest
		b, _ := json.Marshal(raw)
		dec := json.NewDecoder(bytes.NewReader(b))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, r, apperr.Validation(map[string]string{"_": "invalid json"}))
			return
		}

		in := UpdateInput{
			Name:    req.Name,
			Species: req.Species,
			Breed:   req.Breed,
			Color:   req.Color,
			Notes:   req.Notes,
		}
		if _, exists := raw["weight"]; exists {
			in.Weight = WeightPatch{Present: true, Value: req.Weight}
		}
		if req.BirthDate != nil {
			bd, err := time.Parse(dateLayout, *req.BirthDate)
			if err != nil {
				writeError(w, r, apperr.Validation(map[string]string{"birth_date": "must be YYYY-MM-DD"}))
				return
			}
			in.BirthDate = &bd
		}

		updated, err := svc.Update(r.Context(), petID, in)
		if err != nil {
			writeError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, toPetResponse(updated, svc.Today()))
	}
}

// deletePetHandler godoc
// @Summary Borrar mascota
// @Description Borra la mascota y, en cascada, sus vacunaciones. Sólo el dueño o staff.
// @Tags pets
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param petID path string true "ID de la mascota"
// @Success 204
// @Failure 401 {object} apperr.Error "unauthorized"
// @Failure 403 {object} apperr.Error "forbidden"
// @Router /pets/{petID} [delete]
func deletePetHandler(svc *Service, engine *access.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := requireActor(w, r)
		if !ok {
			return
		}

		petID := chi.URLParam(r, "petID")
		current, err := svc.GetByID(r.Context(), petID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if !engine.Permits(access.PolicyOwnerOrReadOnly, actor, current, access.Write) {
			writeError(w, r, apperr.Forbidden())
			return
		}

		if err := svc.Delete(r.Context(), petID); err != nil {
			writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func toPetResponse(p Pet, today time.Time) petResponse {
	age := AgeOf(p, today)
	out := petResponse{
		ID:        p.ID,
		OwnerID:   p.OwnerID,
		Name:      p.Name,
		Species:   p.Species,
		Breed:     p.Breed,
		Color:     p.Color,
		BirthDate: p.BirthDate.Format(dateLayout),
		AgeYears:  age.Years,
		AgeMonths: age.Months,
		Weight:    p.Weight,
		Notes:     p.Notes,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
	if p.Owner != nil {
		out.OwnerName = p.Owner.Name
	}
	return out
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

// writeJSON está duplicado intencionalmente en handlers de distintos módulos (owners/pets/...)
// para evitar crear paquetes/helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
