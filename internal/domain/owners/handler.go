package owners

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"pet-vaccination-schedule/internal/domain/access"
	"pet-vaccination-schedule/internal/middleware"
	"pet-vaccination-schedule/internal/platform/apperr"
)

func RegisterRoutes(r chi.Router, svc *Service, engine *access.Engine) {
	r.Post("/owners", registerOwnerHandler(svc))
	r.Get("/owners", listOwnersHandler(svc, engine))
	r.Get("/owners/{ownerID}", getOwnerHandler(svc, engine))
	r.Patch("/owners/{ownerID}", updateOwnerHandler(svc, engine))
	r.Delete("/owners/{ownerID}", deleteOwnerHandler(svc, engine))

	// Mi perfil de dueño
	r.Get("/me/owner", getMyOwnerHandler(svc))
}

// registerOwnerRequest: user_id sólo lo respeta staff; el resto se registra a sí mismo.
type registerOwnerRequest struct {
	UserID  string `json:"user_id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

type updateOwnerRequest struct {
	Name    *string `json:"name"`
	Email   *string `json:"email"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
}

// ownerResponse es el perfil de dueño devuelto por la API.
type ownerResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Address   string    `json:"address"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// registerOwnerHandler godoc
// @Summary Registrar perfil de dueño
// @Description Crea el perfil de dueño de la identidad actual. Staff puede registrar a otra identidad con `user_id`. Autenticación: `X-Debug-User-ID` (dev) o `Authorization: Bearer <token>` (prod).
// @Tags owners
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param payload body registerOwnerRequest true "Datos del dueño"
// @Success 201 {object} ownerResponse
// @Failure 400 {object} apperr.Error "validación"
// @Failure 401 {object} apperr.Error "unauthorized"
// @Failure 409 {object} apperr.Error "ya existe perfil para la identidad"
// @Router /owners [post]
func registerOwnerHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := requireActor(w, r)
		if !ok {
			return
		}

		var req registerOwnerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, r, apperr.Validation(map[string]string{"_": "invalid json"}))
			return
		}

		userID := actor.UserID
		if actor.Privileged && strings.TrimSpace(req.UserID) != "" {
			userID = req.UserID
		}

		o, err := svc.Register(r.Context(), RegisterInput{
			UserID:  userID,
			Name:    req.Name,
			Email:   req.Email,
			Phone:   req.Phone,
			Address: req.Address,
		})
		if err != nil {
			writeError(w, r, err)
			return
		}

		writeJSON(w, http.StatusCreated, toOwnerResponse(o))
	}
}

// listOwnersHandler godoc
// @Summary Listar dueños
// @Description Staff ve todos los perfiles; el resto sólo el propio.
// @Tags owners
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param q query string false "Texto en nombre/email"
// @Success 200 {array} ownerResponse
// @Failure 401 {object} apperr.Error "unauthorized"
// @Router /owners [get]
func listOwnersHandler(svc *Service, engine *access.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := requireActor(w, r)
		if !ok {
			return
		}

		f := ListFilter{Query: r.URL.Query().Get("q")}
		if !actor.Privileged {
			f.UserID = actor.UserID
		}

		items, err := svc.List(r.Context(), f)
		if err != nil {
			writeError(w, r, err)
			return
		}

		out := make([]ownerResponse, 0, len(items))
		for _, o := range items {
			if !engine.Permits(access.PolicyOwnerStrict, actor, o, access.Read) {
				continue
			}
			out = append(out, toOwnerResponse(o))
		}

		writeJSON(w, http.StatusOK, out)
	}
}

// getOwnerHandler godoc
// @Summary Obtener dueño
// @Description Sólo el propio dueño o staff. Un id inexistente responde igual que uno ajeno (403).
// @Tags owners
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param ownerID path string true "ID del dueño"
// @Success 200 {object} ownerResponse
// @Failure 401 {object} apperr.Error "unauthorized"
// @Failure 403 {object} apperr.Error "forbidden"
// @Router /owners/{ownerID} [get]
func getOwnerHandler(svc *Service, engine *access.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := requireActor(w, r)
		if !ok {
			return
		}

		o, err := svc.GetByID(r.Context(), chi.URLParam(r, "ownerID"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		if !engine.Permits(access.PolicyOwnerStrict, actor, o, access.Read) {
			writeError(w, r, apperr.Forbidden())
			return
		}

		writeJSON(w, http.StatusOK, toOwnerResponse(o))
	}
}

// getMyOwnerHandler godoc
// @Summary Mi perfil de dueño
// @Tags owners
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Success 200 {object} ownerResponse
// @Failure 401 {object} apperr.Error "unauthorized"
// @Failure 403 {object} apperr.Error "sin perfil registrado"
// @Router /me/owner [get]
func getMyOwnerHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := requireActor(w, r)
		if !ok {
			return
		}

		o, err := svc.GetByUserID(r.Context(), actor.UserID)
		if err != nil {
			writeError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, toOwnerResponse(o))
	}
}

// updateOwnerHandler godoc
// @Summary Actualizar dueño
// @Description PATCH parcial; campos ausentes no se tocan. Sólo el propio dueño o staff.
// @Tags owners
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param ownerID path string true "ID del dueño"
// @Param payload body updateOwnerRequest true "Campos a modificar"
// @Success 200 {object} ownerResponse
// @Failure 400 {object} apperr.Error "validación"
// @Failure 401 {object} apperr.Error "unauthorized"
// @Failure 403 {object} apperr.Error "forbidden"
// @Router /owners/{ownerID} [patch]
func updateOwnerHandler(svc *Service, engine *access.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := requireActor(w, r)
		if !ok {
			return
		}

		ownerID := chi.URLParam(r, "ownerID")
		current, err := svc.GetByID(r.Context(), ownerID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if !engine.Permits(access.PolicyOwnerStrict, actor, current, access.Write) {
			writeError(w, r, apperr.Forbidden())
			return
		}

		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()

		var req updateOwnerRequest
		if err := dec.Decode(&req); err != nil {
			writeError(w, r, apperr.Validation(map[string]string{"_": "invalid json"}))
			return
		}

		updated, err := svc.Update(r.Context(), ownerID, UpdateInput{
			Name:    req.Name,
			Email:   req.Email,
			Phone:   req.Phone,
			Address: req.Address,
		})
		if err != nil {
			writeError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, toOwnerResponse(updated))
	}
}

// deleteOwnerHandler godoc
// @Summary Borrar dueño
// @Description Borra el perfil y, en cascada, sus mascotas y vacunaciones.
// @Tags owners
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param ownerID path string true "ID del dueño"
// @Success 204
// @Failure 401 {object} apperr.Error "unauthorized"
// @Failure 403 {object} apperr.Error "forbidden"
// @Router /owners/{ownerID} [delete]
func deleteOwnerHandler(svc *Service, engine *access.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := requireActor(w, r)
		if !ok {
			return
		}

		ownerID := chi.URLParam(r, "ownerID")
		current, err := svc.GetByID(r.Context(), ownerID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if !engine.Permits(access.PolicyOwnerStrict, actor, current, access.Write) {
			writeError(w, r, apperr.Forbidden())
			return
		}

		if err := svc.Delete(r.Context(), ownerID); err != nil {
			writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func toOwnerResponse(o Owner) ownerResponse {
	return ownerResponse{
		ID:        o.ID,
		UserID:    o.UserID,
		Name:      o.Name,
		Email:     o.Email,
		Phone:     o.Phone,
		Address:   o.Address,
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
	}
}

// requireActor responde 401 si no hay identidad.
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

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// para evitar crear paquetes/helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
