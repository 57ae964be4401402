package vaccinations

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"pet-vaccination-schedule/internal/domain/access"
	"pet-vaccination-schedule/internal/domain/schedule"
	"pet-vaccination-schedule/internal/middleware"
	"pet-vaccination-schedule/internal/platform/apperr"
)

const dateLayout = "2006-01-02"

func RegisterRoutes(r chi.Router, svc *Service, engine *access.Engine) {
	r.Post("/vaccinations", createVaccinationHandler(svc, engine))
	r.Get("/vaccinations", listVaccinationsHandler(svc, engine))

	// Vistas por estado (scoped al usuario salvo staff)
	r.Get("/vaccinations/due-soon", dueSoonHandler(svc, engine))
	r.Get("/vaccinations/overdue", overdueHandler(svc, engine))
	r.Get("/vaccinations/recent", recentHandler(svc, engine))

	r.Get("/vaccinations/{eventID}", getVaccinationHandler(svc, engine))
	r.Patch("/vaccinations/{eventID}", updateVaccinationHandler(svc, engine))
	r.Delete("/vaccinations/{eventID}", deleteVaccinationHandler(svc, engine))

	r.Get("/pets/{petID}/vaccinations", listPetVaccinationsHandler(svc, engine))
	r.Get("/pets/{petID}/vaccinations/upcoming", upcomingHandler(svc, engine))
	r.Get("/owners/{ownerID}/vaccination-summary", summaryHandler(svc, engine))
	r.Get("/vaccines/{vaccineID}/statistics", vaccineStatisticsHandler(svc, engine))
}

// createVaccinationRequest es el cuerpo para registrar una aplicación.
type createVaccinationRequest struct {
	PetID            string  `json:"pet_id"`
	VaccineID        string  `json:"vaccine_id"`
	AdministeredDate string  `json:"administered_date"` // YYYY-MM-DD
	VeterinarianName string  `json:"veterinarian_name"`
	ClinicName       string  `json:"clinic_name"`
	BatchNumber      string  `json:"batch_number"`
	NextDoseDate     *string `json:"next_dose_date"` // opcional; si falta se calcula
	Notes            string  `json:"notes"`
}

type updateVaccinationRequest struct {
	VaccineID        *string `json:"vaccine_id"`
	AdministeredDate *string `json:"administered_date"`
	VeterinarianName *string `json:"veterinarian_name"`
	ClinicName       *string `json:"clinic_name"`
	BatchNumber      *string `json:"batch_number"`
	NextDoseDate     *string `json:"next_dose_date"` // null = limpiar
	Notes            *string `json:"notes"`
}

// eventResponse incluye el estado derivado respecto de hoy.
type eventResponse struct {
	ID               string          `json:"id"`
	PetID            string          `json:"pet_id"`
	PetName          string          `json:"pet_name"`
	VaccineID        string          `json:"vaccine_id"`
	VaccineName      string          `json:"vaccine_name"`
	AdministeredDate string          `json:"administered_date"`
	VeterinarianName string          `json:"veterinarian_name"`
	ClinicName       string          `json:"clinic_name"`
	BatchNumber      string          `json:"batch_number"`
	NextDoseDate     *string         `json:"next_dose_date"`
	Notes            string          `json:"notes"`
	IsDue            bool            `json:"is_due"`
	IsOverdue        bool            `json:"is_overdue"`
	DaysUntilDue     *int            `json:"days_until_due"`
	Status           schedule.Status `json:"status"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

type upcomingResponse struct {
	DueSoon []eventResponse `json:"due_soon"`
	Overdue []eventResponse `json:"overdue"`
}

type dueDoseResponse struct {
	EventID      string `json:"event_id"`
	Vaccine      string `json:"vaccine"`
	NextDoseDate string `json:"next_dose_date"`
	DaysUntilDue *int   `json:"days_until_due,omitempty"`
	DaysOverdue  *int   `json:"days_overdue,omitempty"`
}

type petSummaryResponse struct {
	ID                  string            `json:"id"`
	Name                string            `json:"name"`
	Species             string            `json:"species"`
	TotalVaccinations   int               `json:"total_vaccinations"`
	DueVaccinations     []dueDoseResponse `json:"due_vaccinations"`
	OverdueVaccinations []dueDoseResponse `json:"overdue_vaccinations"`
}

type summaryResponse struct {
	OwnerID           string               `json:"owner_id"`
	TotalPets         int                  `json:"total_pets"`
	TotalVaccinations int                  `json:"total_vaccinations"`
	DueSoon           int                  `json:"due_soon"`
	Overdue           int                  `json:"overdue"`
	Pets              []petSummaryResponse `json:"pets"`
}

type speciesCountResponse struct {
	Species string `json:"species"`
	Count   int    `json:"count"`
}

type vaccineStatsResponse struct {
	Vaccine               string                 `json:"vaccine"`
	TotalAdministrations  int                    `json:"total_administrations"`
	RecentAdministrations int                    `json:"recent_administrations_30d"`
	BySpecies             []speciesCountResponse `json:"by_species"`
	DurationMonths        int                    `json:"duration_months"`
	Mandatory             bool                   `json:"is_mandatory"`
}

// createVaccinationHandler godoc
// @Summary Registrar vacunación
// @Description Registra la aplicación de una vacuna. Sólo el dueño de la mascota o staff. Si `next_dose_date` no viene, se calcula con la duración de la vacuna. Autenticación: `X-Debug-User-ID` (dev) o `Authorization: Bearer <token>` (prod).
// @Tags vaccinations
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param payload body createVaccinationRequest true "Datos de la aplicación; fechas en formato YYYY-MM-DD"
// @Success 201 {object} eventResponse
// @Failure 400 {object} apperr.Error "validación / dosis duplicada"
// @Failure 401 {object} apperr.Error "unauthorized"
// @Failure 403 {object} apperr.Error "forbidden"
// @Router /vaccinations [post]
func createVaccinationHandler(svc *Service, engine *access.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := requireActor(w, r)
		if !ok {
			return
		}

		var req createVaccinationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, r, apperr.Validation(map[string]string{"_": "invalid json"}))
			return
		}

		if strings.TrimSpace(req.PetID) == "" {
			writeError(w, r, apperr.Validation(map[string]string{"pet_id": "is required"}))
			return
		}
		pet, err := svc.Pet(r.Context(), req.PetID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		// Crear una vacunación es escribir sobre la mascota.
		if !engine.Permits(access.PolicyOwnerOrReadOnly, actor, pet, access.Write) {
			writeError(w, r, apperr.Forbidden())
			return
		}

		fields := map[string]string{}
		administered, _ := parseDate(req.AdministeredDate, "administered_date", true, fields)
		var next *time.Time
		if req.NextDoseDate != nil {
			next, _ = parseDate(*req.NextDoseDate, "next_dose_date", false, fields)
		}
		if len(fields) > 0 {
			writeError(w, r, apperr.Validation(fields))
			return
		}

		in := CreateInput{
			VaccineID:        req.VaccineID,
			VeterinarianName: req.VeterinarianName,
			ClinicName:       req.ClinicName,
			BatchNumber:      req.BatchNumber,
			NextDoseDate:     next,
			Notes:            req.Notes,
		}
		if administered != nil {
			in.AdministeredDate = *administered
		}

		e, err := svc.Create(r.Context(), pet, in)
		if err != nil {
			writeError(w, r, err)
			return
		}

		writeJSON(w, http.StatusCreated, toEventResponse(e, svc.Today()))
	}
}

// listVaccinationsHandler godoc
// @Summary Listar vacunaciones
// @Description Vacunaciones de las mascotas del usuario (staff ve todas). Filtros por mascota, vacuna, rango de fechas y texto.
// @Tags vaccinations
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param pet_id query string false "ID de la mascota"
// @Param vaccine_id query string false "ID de la vacuna"
// @Param from query string false "administered_date mínima (YYYY-MM-DD)"
// @Param to query string false "administered_date máxima (YYYY-MM-DD)"
// @Param q query string false "Texto en mascota/vacuna/veterinario/clínica"
// @Param limit query int false "Máximo a devolver (1-200). Por defecto 50"
// @Success 200 {array} eventResponse
// @Failure 400 {object} apperr.Error "filtros inválidos"
// @Failure 401 {object} apperr.Error "unauthorized"
// @Router /vaccinations [get]
func listVaccinationsHandler(svc *Service, engine *access.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := requireActor(w, r)
		if !ok {
			return
		}

		f, err := parseListFilter(r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		scopeTo(&f, actor)

		items, err := svc.List(r.Context(), f)
		writeEventList(w, r, svc, engine, actor, items, err)
	}
}

// dueSoonHandler godoc
// @Summary Vacunas por vencer
// @Description Próxima dosis dentro de los próximos 30 días (inclusive), ordenadas por fecha.
// @Tags vaccinations
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param limit query int false "Máximo a devolver (1-200). Por defecto 50"
// @Success 200 {array} eventResponse
// @Failure 400 {object} apperr.Error "limit inválido"
// @Failure 401 {object} apperr.Error "unauthorized"
// @Router /vaccinations/due-soon [get]
func dueSoonHandler(svc *Service, engine *access.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := requireActor(w, r)
		if !ok {
			return
		}
		f, err := windowFilter(r, actor)
		if err != nil {
			writeError(w, r, err)
			return
		}

		items, err := svc.DueSoon(r.Context(), f)
		writeEventList(w, r, svc, engine, actor, items, err)
	}
}

// overdueHandler godoc
// @Summary Vacunas vencidas
// @Description Próxima dosis anterior a hoy, ordenadas por fecha.
// @Tags vaccinations
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param limit query int false "Máximo a devolver (1-200). Por defecto 50"
// @Success 200 {array} eventResponse
// @Failure 400 {object} apperr.Error "limit inválido"
// @Failure 401 {object} apperr.Error "unauthorized"
// @Router /vaccinations/overdue [get]
func overdueHandler(svc *Service, engine *access.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := requireActor(w, r)
		if !ok {
			return
		}
		f, err := windowFilter(r, actor)
		if err != nil {
			writeError(w, r, err)
			return
		}

		items, err := svc.Overdue(r.Context(), f)
		writeEventList(w, r, svc, engine, actor, items, err)
	}
}

// recentHandler godoc
// @Summary Vacunaciones recientes
// @Description Aplicadas en los últimos 30 días, más recientes primero.
// @Tags vaccinations
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param limit query int false "Máximo a devolver (1-200). Por defecto 50"
// @Success 200 {array} eventResponse
// @Failure 400 {object} apperr.Error "limit inválido"
// @Failure 401 {object} apperr.Error "unauthorized"
// @Router /vaccinations/recent [get]
func recentHandler(svc *Service, engine *access.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := requireActor(w, r)
		if !ok {
			return
		}
		f, err := windowFilter(r, actor)
		if err != nil {
			writeError(w, r, err)
			return
		}

		items, err := svc.Recent(r.Context(), f)
		writeEventList(w, r, svc, engine, actor, items, err)
	}
}

// getVaccinationHandler godoc
// @Summary Obtener vacunación
// @Tags vaccinations
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param eventID path string true "ID de la vacunación"
// @Success 200 {object} eventResponse
// @Failure 401 {object} apperr.Error "unauthorized"
// @Failure 403 {object} apperr.Error "forbidden"
// @Router /vaccinations/{eventID} [get]
func getVaccinationHandler(svc *Service, engine *access.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := requireActor(w, r)
		if !ok {
			return
		}

		e, err := svc.GetByID(r.Context(), chi.URLParam(r, "eventID"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		if !engine.Permits(access.PolicyOwnerStrict, actor, e, access.Read) {
			writeError(w, r, apperr.Forbidden())
			return
		}

		writeJSON(w, http.StatusOK, toEventResponse(e, svc.Today()))
	}
}

// updateVaccinationHandler godoc
// @Summary Actualizar vacunación
// @Description PATCH parcial; revalida todas las reglas. La próxima dosis sólo cambia si se envía `next_dose_date` (null la limpia).
// @Tags vaccinations
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param eventID path string true "ID de la vacunación"
// @Param payload body updateVaccinationRequest true "Campos a modificar"
// @Success 200 {object} eventResponse
// @Failure 400 {object} apperr.Error "validación / dosis duplicada"
// @Failure 401 {object} apperr.Error "unauthorized"
// @Failure 403 {object} apperr.Error "forbidden"
// @Router /vaccinations/{eventID} [patch]
func updateVaccinationHandler(svc *Service, engine *access.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := requireActor(w, r)
		if !ok {
			return
		}

		eventID := chi.URLParam(r, "eventID")
		current, err := svc.GetByID(r.Context(), eventID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if !engine.Permits(access.PolicyOwnerOrReadOnly, actor, current, access.Write) {
			writeError(w, r, apperr.Forbidden())
			return
		}

		// Map primero para detectar presencia de next_dose_date (null = limpiar).
		var raw map[string]json.RawMessage
		if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
			writeError(w, r, apperr.Validation(map[string]string{"_": "invalid json"}))
			return
		}

		var req updateVaccinationRequest
		b, _ := json.Marshal(raw)
		dec := json.NewDecoder(bytes.NewReader(b))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, r, apperr.Validation(map[string]string{"_": "invalid json"}))
			return
		}

		in := UpdateInput{
			VaccineID:        req.VaccineID,
			VeterinarianName: req.VeterinarianName,
			ClinicName:       req.ClinicName,
			BatchNumber:      req.BatchNumber,
			Notes:            req.Notes,
		}

		fields := map[string]string{}
		if req.AdministeredDate != nil {
			in.AdministeredDate, _ = parseDate(*req.AdministeredDate, "administered_date", true, fields)
		}
		if _, exists := raw["next_dose_date"]; exists {
			in.NextDoseDate.Present = true
			if req.NextDoseDate != nil {
				in.NextDoseDate.Value, _ = parseDate(*req.NextDoseDate, "next_dose_date", false, fields)
			}
		}
		if len(fields) > 0 {
			writeError(w, r, apperr.Validation(fields))
			return
		}

		updated, err := svc.Update(r.Context(), eventID, in)
		if err != nil {
			writeError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, toEventResponse(updated, svc.Today()))
	}
}

// deleteVaccinationHandler godoc
// @Summary Borrar vacunación
// @Tags vaccinations
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param eventID path string true "ID de la vacunación"
// @Success 204
// @Failure 401 {object} apperr.Error "unauthorized"
// @Failure 403 {object} apperr.Error "forbidden"
// @Router /vaccinations/{eventID} [delete]
func deleteVaccinationHandler(svc *Service, engine *access.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := requireActor(w, r)
		if !ok {
			return
		}

		eventID := chi.URLParam(r, "eventID")
		current, err := svc.GetByID(r.Context(), eventID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if !engine.Permits(access.PolicyOwnerOrReadOnly, actor, current, access.Write) {
			writeError(w, r, apperr.Forbidden())
			return
		}

		if err := svc.Delete(r.Context(), eventID); err != nil {
			writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// listPetVaccinationsHandler godoc
// @Summary Historial de vacunación de una mascota
// @Tags vaccinations
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param petID path string true "ID de la mascota"
// @Success 200 {array} eventResponse
// @Failure 401 {object} apperr.Error "unauthorized"
// @Failure 403 {object} apperr.Error "forbidden"
// @Router /pets/{petID}/vaccinations [get]
func listPetVaccinationsHandler(svc *Service, engine *access.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := requireActor(w, r)
		if !ok {
			return
		}

		pet, err := svc.Pet(r.Context(), chi.URLParam(r, "petID"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		if !engine.Permits(access.PolicyOwnerStrict, actor, pet, access.Read) {
			writeError(w, r, apperr.Forbidden())
			return
		}

		items, err := svc.List(r.Context(), ListFilter{PetID: pet.ID})
		writeEventList(w, r, svc, engine, actor, items, err)
	}
}

// upcomingHandler godoc
// @Summary Próximas dosis de una mascota
// @Description Dosis por vencer (30 días) y vencidas de la mascota.
// @Tags vaccinations
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param petID path string true "ID de la mascota"
// @Success 200 {object} upcomingResponse
// @Failure 401 {object} apperr.Error "unauthorized"
// @Failure 403 {object} apperr.Error "forbidden"
// @Router /pets/{petID}/vaccinations/upcoming [get]
func upcomingHandler(svc *Service, engine *access.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := requireActor(w, r)
		if !ok {
			return
		}

		pet, err := svc.Pet(r.Context(), chi.URLParam(r, "petID"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		if !engine.Permits(access.PolicyOwnerStrict, actor, pet, access.Read) {
			writeError(w, r, apperr.Forbidden())
			return
		}

		up, err := svc.Upcoming(r.Context(), pet.ID)
		if err != nil {
			writeError(w, r, err)
			return
		}

		today := svc.Today()
		out := upcomingResponse{
			DueSoon: make([]eventResponse, 0, len(up.DueSoon)),
			Overdue: make([]eventResponse, 0, len(up.Overdue)),
		}
		for _, e := range up.DueSoon {
			out.DueSoon = append(out.DueSoon, toEventResponse(e, today))
		}
		for _, e := range up.Overdue {
			out.Overdue = append(out.Overdue, toEventResponse(e, today))
		}

		writeJSON(w, http.StatusOK, out)
	}
}

// summaryHandler godoc
// @Summary Resumen de vacunación de un dueño
// @Description Totales y dosis por vencer/vencidas por mascota. Sólo el propio dueño o staff.
// @Tags vaccinations
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param ownerID path string true "ID del dueño"
// @Success 200 {object} summaryResponse
// @Failure 401 {object} apperr.Error "unauthorized"
// @Failure 403 {object} apperr.Error "forbidden"
// @Router /owners/{ownerID}/vaccination-summary [get]
func summaryHandler(svc *Service, engine *access.Engine) http.HandlerFunc {
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

		sum, err := svc.Summary(r.Context(), owner)
		if err != nil {
			writeError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, toSummaryResponse(sum))
	}
}

// vaccineStatisticsHandler godoc
// @Summary Estadísticas de una vacuna
// @Description Total de aplicaciones, aplicaciones de los últimos 30 días y conteo por especie.
// @Tags vaccines
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param vaccineID path string true "ID de la vacuna"
// @Success 200 {object} vaccineStatsResponse
// @Failure 401 {object} apperr.Error "unauthorized"
// @Failure 403 {object} apperr.Error "forbidden"
// @Router /vaccines/{vaccineID}/statistics [get]
func vaccineStatisticsHandler(svc *Service, engine *access.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := requireActor(w, r)
		if !ok {
			return
		}

		v, err := svc.Vaccine(r.Context(), chi.URLParam(r, "vaccineID"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		if !engine.Permits(access.PolicyAdminOrReadOnly, actor, v, access.Read) {
			writeError(w, r, apperr.Forbidden())
			return
		}

		st, err := svc.VaccineStatistics(r.Context(), v)
		if err != nil {
			writeError(w, r, err)
			return
		}

		out := vaccineStatsResponse{
			Vaccine:               st.Name,
			TotalAdministrations:  st.TotalAdministrations,
			RecentAdministrations: st.RecentAdministrations,
			BySpecies:             make([]speciesCountResponse, 0, len(st.BySpecies)),
			DurationMonths:        st.DurationMonths,
			Mandatory:             st.Mandatory,
		}
		for _, sc := range st.BySpecies {
			out.BySpecies = append(out.BySpecies, speciesCountResponse{Species: string(sc.Species), Count: sc.Count})
		}

		writeJSON(w, http.StatusOK, out)
	}
}

// writeEventList aplica el predicado de lectura del motor a cada elemento.
func writeEventList(w http.ResponseWriter, r *http.Request, svc *Service, engine *access.Engine, actor access.Actor, items []Event, err error) {
	if err != nil {
		writeError(w, r, err)
		return
	}

	today := svc.Today()
	out := make([]eventResponse, 0, len(items))
	for _, e := range items {
		if !engine.Permits(access.PolicyOwnerStrict, actor, e, access.Read) {
			continue
		}
		out = append(out, toEventResponse(e, today))
	}

	writeJSON(w, http.StatusOK, out)
}

// scopeTo limita los listados a las mascotas del actor salvo staff.
func scopeTo(f *ListFilter, actor access.Actor) {
	if !actor.Privileged {
		f.OwnerUserID = actor.UserID
	}
}

func parseListFilter(r *http.Request) (ListFilter, error) {
	q := r.URL.Query()

	fields := map[string]string{}
	f := ListFilter{
		PetID:     strings.TrimSpace(q.Get("pet_id")),
		VaccineID: strings.TrimSpace(q.Get("vaccine_id")),
		Query:     strings.TrimSpace(q.Get("q")),
		Limit:     parseLimit(q.Get("limit"), fields),
	}
	f.From, _ = parseDate(q.Get("from"), "from", false, fields)
	f.To, _ = parseDate(q.Get("to"), "to", false, fields)
	if len(fields) > 0 {
		return ListFilter{}, apperr.Validation(fields)
	}

	return f, nil
}

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

// parseLimit: vacío => defaultListLimit; fuera de [1, maxListLimit] es error de campo.
func parseLimit(v string, fields map[string]string) int {
	v = strings.TrimSpace(v)
	if v == "" {
		return defaultListLimit
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 || n > maxListLimit {
		fields["limit"] = fmt.Sprintf("must be an integer between 1 and %d", maxListLimit)
		return 0
	}
	return n
}

// windowFilter: due-soon, overdue y recent sólo aceptan limit.
func windowFilter(r *http.Request, actor access.Actor) (ListFilter, error) {
	fields := map[string]string{}
	f := ListFilter{Limit: parseLimit(r.URL.Query().Get("limit"), fields)}
	if len(fields) > 0 {
		return ListFilter{}, apperr.Validation(fields)
	}
	scopeTo(&f, actor)
	return f, nil
}

// parseDate acepta YYYY-MM-DD. Vacío => nil (o "is required" si required).
// Los errores se acumulan en fields.
func parseDate(v, field string, required bool, fields map[string]string) (*time.Time, bool) {
	v = strings.TrimSpace(v)
	if v == "" {
		if required {
			fields[field] = "is required"
			return nil, false
		}
		return nil, true
	}
	t, err := time.Parse(dateLayout, v)
	if err != nil {
		fields[field] = "must be YYYY-MM-DD"
		return nil, false
	}
	return &t, true
}

func toEventResponse(e Event, today time.Time) eventResponse {
	d := Derive(e, today)
	out := eventResponse{
		ID:               e.ID,
		PetID:            e.PetID,
		VaccineID:        e.VaccineID,
		AdministeredDate: e.AdministeredDate.Format(dateLayout),
		VeterinarianName: e.VeterinarianName,
		ClinicName:       e.ClinicName,
		BatchNumber:      e.BatchNumber,
		Notes:            e.Notes,
		IsDue:            d.DueSoon,
		IsOverdue:        d.Overdue,
		DaysUntilDue:     d.DaysUntilDue,
		Status:           d.Status,
		CreatedAt:        e.CreatedAt,
		UpdatedAt:        e.UpdatedAt,
	}
	if e.Pet != nil {
		out.PetName = e.Pet.Name
	}
	if e.Vaccine != nil {
		out.VaccineName = e.Vaccine.Name
	}
	if e.NextDoseDate != nil {
		s := e.NextDoseDate.Format(dateLayout)
		out.NextDoseDate = &s
	}
	return out
}

func toSummaryResponse(sum Summary) summaryResponse {
	out := summaryResponse{
		OwnerID:           sum.OwnerID,
		TotalPets:         sum.TotalPets,
		TotalVaccinations: sum.TotalVaccinations,
		DueSoon:           sum.DueSoon,
		Overdue:           sum.Overdue,
		Pets:              make([]petSummaryResponse, 0, len(sum.Pets)),
	}
	for _, p := range sum.Pets {
		ps := petSummaryResponse{
			ID:                  p.PetID,
			Name:                p.Name,
			Species:             string(p.Species),
			TotalVaccinations:   p.TotalVaccinations,
			DueVaccinations:     make([]dueDoseResponse, 0, len(p.DueSoon)),
			OverdueVaccinations: make([]dueDoseResponse, 0, len(p.Overdue)),
		}
		for _, d := range p.DueSoon {
			days := d.Days
			ps.DueVaccinations = append(ps.DueVaccinations, dueDoseResponse{
				EventID:      d.EventID,
				Vaccine:      d.VaccineName,
				NextDoseDate: d.NextDoseDate.Format(dateLayout),
				DaysUntilDue: &days,
			})
		}
		for _, d := range p.Overdue {
			days := d.Days
			ps.OverdueVaccinations = append(ps.OverdueVaccinations, dueDoseResponse{
				EventID:      d.EventID,
				Vaccine:      d.VaccineName,
				NextDoseDate: d.NextDoseDate.Format(dateLayout),
				DaysOverdue:  &days,
			})
		}
		out.Pets = append(out.Pets, ps)
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

// writeJSON está duplicado intencionalmente en handlers de distintos módulos.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
