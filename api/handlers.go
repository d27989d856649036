/*
handlers.go - HTTP handlers over the availability engine

PURPOSE:
  Exposes the engine to the surrounding scheduling UI. Handlers parse and
  validate transport concerns (JSON bodies, date/time query params), call
  the domain services, and map the error taxonomy onto HTTP statuses.

ERROR MAPPING:
  400: validation errors (malformed fields, bad dates/windows)
  404: unknown worker or exception id
  409: decision on an already-decided exception
  500: store failures and everything else

SEE ALSO:
  - dto.go:    Request/response shapes
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/warp/availability-engine/approval"
	"github.com/warp/availability-engine/availability"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Workers    availability.WorkerStore
	Patterns   *availability.PatternService
	Exceptions *availability.ExceptionService
	Resolver   *availability.Resolver
	Aggregator *availability.Aggregator
	Log        *logrus.Logger
}

// NewHandler wires the services over one store.
func NewHandler(store availability.Store, signals *availability.Signals, log *logrus.Logger) *Handler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	resolver := availability.NewResolver(store)
	return &Handler{
		Workers:    store,
		Patterns:   availability.NewPatternService(store, signals),
		Exceptions: availability.NewExceptionService(store, signals),
		Resolver:   resolver,
		Aggregator: availability.NewAggregator(store, resolver),
		Log:        log,
	}
}

// =============================================================================
// WORKER HANDLERS
// =============================================================================

func (h *Handler) ListWorkers(w http.ResponseWriter, r *http.Request) {
	workers, err := h.Workers.ListWorkers(r.Context(), availability.SchedulableRoles...)
	if err != nil {
		h.writeError(w, r, "failed to list workers", err)
		return
	}
	dtos := make([]WorkerDTO, 0, len(workers))
	for _, worker := range workers {
		dtos = append(dtos, workerDTO(worker))
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) CreateWorker(w http.ResponseWriter, r *http.Request) {
	var req CreateWorkerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ID == "" || req.Name == "" {
		writeErrorMessage(w, http.StatusBadRequest, "id and name are required")
		return
	}

	role := availability.Role(req.Role)
	if role == "" {
		role = availability.RoleWorker
	}
	active := true
	if req.Active != nil {
		active = *req.Active
	}

	worker := availability.Worker{
		ID:     availability.WorkerID(req.ID),
		Name:   req.Name,
		Role:   role,
		Active: active,
	}
	if err := h.Workers.SaveWorker(r.Context(), worker); err != nil {
		h.writeError(w, r, "failed to create worker", err)
		return
	}
	writeJSON(w, http.StatusCreated, workerDTO(worker))
}

// =============================================================================
// PATTERN HANDLERS
// =============================================================================

func (h *Handler) ListPatterns(w http.ResponseWriter, r *http.Request) {
	workerID := availability.WorkerID(chi.URLParam(r, "id"))
	patterns, err := h.Patterns.ListPatterns(r.Context(), workerID)
	if err != nil {
		h.writeError(w, r, "failed to list patterns", err)
		return
	}
	dtos := make([]PatternDTO, 0, len(patterns))
	for _, p := range patterns {
		dtos = append(dtos, patternDTO(p))
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) UpsertPattern(w http.ResponseWriter, r *http.Request) {
	workerID := availability.WorkerID(chi.URLParam(r, "id"))

	var req UpsertPatternRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	in := availability.UpsertPatternInput{
		WorkerID:    workerID,
		DayOfWeek:   req.DayOfWeek,
		IsAvailable: req.IsAvailable,
	}
	var err error
	if in.StartTime, err = parseTimePtr(req.StartTime); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	if in.EndTime, err = parseTimePtr(req.EndTime); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.MaxHours != nil {
		d, err := decimal.NewFromString(*req.MaxHours)
		if err != nil {
			writeErrorMessage(w, http.StatusBadRequest, "invalid max_hours")
			return
		}
		in.MaxHours = &d
	}
	if req.EffectiveFrom != nil {
		d, err := availability.ParseDate(*req.EffectiveFrom)
		if err != nil {
			writeErrorMessage(w, http.StatusBadRequest, "invalid effective_from (use YYYY-MM-DD)")
			return
		}
		in.EffectiveFrom = &d
	}

	pattern, err := h.Patterns.UpsertPattern(r.Context(), in)
	if err != nil {
		h.writeError(w, r, "failed to upsert pattern", err)
		return
	}
	writeJSON(w, http.StatusOK, patternDTO(pattern))
}

func (h *Handler) ApplyPreset(w http.ResponseWriter, r *http.Request) {
	workerID := availability.WorkerID(chi.URLParam(r, "id"))

	var req ApplyPresetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	patterns, err := h.Patterns.ApplyPreset(r.Context(), workerID, availability.Preset(req.Preset))
	if err != nil {
		h.writeError(w, r, "failed to apply preset", err)
		return
	}
	dtos := make([]PatternDTO, 0, len(patterns))
	for _, p := range patterns {
		dtos = append(dtos, patternDTO(p))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// EXCEPTION HANDLERS
// =============================================================================

func (h *Handler) SubmitOverride(w http.ResponseWriter, r *http.Request) {
	workerID := availability.WorkerID(chi.URLParam(r, "id"))

	var req SubmitOverrideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	date, err := availability.ParseDate(req.Date)
	if err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid override_date (use YYYY-MM-DD)")
		return
	}

	in := availability.SubmitOverrideInput{
		WorkerID:    workerID,
		Date:        date,
		IsAvailable: req.IsAvailable,
		Reason:      req.Reason,
	}
	if in.StartTime, err = parseTimePtr(req.StartTime); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	if in.EndTime, err = parseTimePtr(req.EndTime); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	override, err := h.Exceptions.SubmitOverride(r.Context(), in)
	if err != nil {
		h.writeError(w, r, "failed to submit override", err)
		return
	}
	writeJSON(w, http.StatusCreated, overrideDTO(override))
}

func (h *Handler) CreateTimeOff(w http.ResponseWriter, r *http.Request) {
	workerID := availability.WorkerID(chi.URLParam(r, "id"))

	var req CreateTimeOffBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	start, err := availability.ParseDate(req.StartDate)
	if err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid start_date (use YYYY-MM-DD)")
		return
	}
	end, err := availability.ParseDate(req.EndDate)
	if err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid end_date (use YYYY-MM-DD)")
		return
	}

	request, err := h.Exceptions.CreateTimeOff(r.Context(), availability.CreateTimeOffInput{
		WorkerID:  workerID,
		StartDate: start,
		EndDate:   end,
		Type:      availability.LeaveType(req.Type),
		Reason:    req.Reason,
	})
	if err != nil {
		h.writeError(w, r, "failed to create time-off request", err)
		return
	}
	writeJSON(w, http.StatusCreated, timeOffDTO(request))
}

func (h *Handler) ListPending(w http.ResponseWriter, r *http.Request) {
	scope := availability.PendingScope{}
	if workerParam := r.URL.Query().Get("worker"); workerParam != "" {
		id := availability.WorkerID(workerParam)
		scope.WorkerID = &id
	}

	overrides, err := h.Exceptions.ListPendingOverrides(r.Context(), scope)
	if err != nil {
		h.writeError(w, r, "failed to list pending overrides", err)
		return
	}
	requests, err := h.Exceptions.ListPendingTimeOff(r.Context(), scope)
	if err != nil {
		h.writeError(w, r, "failed to list pending time off", err)
		return
	}

	queue := PendingQueueDTO{
		Overrides: make([]OverrideDTO, 0, len(overrides)),
		TimeOff:   make([]TimeOffDTO, 0, len(requests)),
	}
	for _, o := range overrides {
		queue.Overrides = append(queue.Overrides, overrideDTO(o))
	}
	for _, req := range requests {
		queue.TimeOff = append(queue.TimeOff, timeOffDTO(req))
	}
	writeJSON(w, http.StatusOK, queue)
}

func (h *Handler) Decide(w http.ResponseWriter, r *http.Request) {
	kind := approval.Kind(chi.URLParam(r, "kind"))
	id := chi.URLParam(r, "id")

	var req DecideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	decided, err := h.Exceptions.Decide(r.Context(), kind, id, approval.Decision(req.Decision), req.AdminID, req.Notes)
	if err != nil {
		h.writeError(w, r, "failed to decide exception", err)
		return
	}

	switch ex := decided.(type) {
	case availability.Override:
		writeJSON(w, http.StatusOK, overrideDTO(ex))
	case availability.TimeOffRequest:
		writeJSON(w, http.StatusOK, timeOffDTO(ex))
	default:
		writeJSON(w, http.StatusOK, map[string]string{"id": decided.ExceptionID()})
	}
}

// =============================================================================
// RESOLUTION AND TEAM HANDLERS
// =============================================================================

func (h *Handler) ResolveWorker(w http.ResponseWriter, r *http.Request) {
	workerID := availability.WorkerID(chi.URLParam(r, "id"))

	date, err := parseDateParam(r, "date")
	if err != nil {
		writeErrorMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	window, err := parseWindowParams(r)
	if err != nil {
		writeErrorMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	status, err := h.Resolver.Resolve(r.Context(), workerID, date, window)
	if err != nil {
		h.writeError(w, r, "failed to resolve availability", err)
		return
	}
	writeJSON(w, http.StatusOK, statusDTO(status))
}

func (h *Handler) TeamSnapshot(w http.ResponseWriter, r *http.Request) {
	date, err := parseDateParam(r, "date")
	if err != nil {
		writeErrorMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	snap, err := h.Aggregator.Snapshot(r.Context(), date)
	if err != nil {
		h.writeError(w, r, "failed to build snapshot", err)
		return
	}
	writeJSON(w, http.StatusOK, snapshotDTO(snap))
}

func (h *Handler) TeamWeek(w http.ResponseWriter, r *http.Request) {
	anchor, err := parseDateParam(r, "anchor")
	if err != nil {
		writeErrorMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	week, err := h.Aggregator.WeekSnapshot(r.Context(), anchor)
	if err != nil {
		h.writeError(w, r, "failed to build week snapshot", err)
		return
	}
	dtos := make([]SnapshotDTO, 0, len(week))
	for _, snap := range week {
		dtos = append(dtos, snapshotDTO(snap))
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) AvailableWorkers(w http.ResponseWriter, r *http.Request) {
	date, err := parseDateParam(r, "date")
	if err != nil {
		writeErrorMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	window, err := parseWindowParams(r)
	if err != nil {
		writeErrorMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	workers, err := h.Aggregator.AvailableWorkersFor(r.Context(), date, window)
	if err != nil {
		h.writeError(w, r, "failed to filter available workers", err)
		return
	}
	dtos := make([]WorkerDTO, 0, len(workers))
	for _, worker := range workers {
		dtos = append(dtos, workerDTO(worker))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// PARSING AND RESPONSE HELPERS
// =============================================================================

func parseDateParam(r *http.Request, key string) (availability.Date, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return availability.Today(), nil
	}
	return availability.ParseDate(raw)
}

// parseWindowParams reads optional ?start=HH:MM&end=HH:MM params.
func parseWindowParams(r *http.Request) (*availability.TimeWindow, error) {
	startRaw := r.URL.Query().Get("start")
	endRaw := r.URL.Query().Get("end")
	if startRaw == "" && endRaw == "" {
		return nil, nil
	}
	if startRaw == "" || endRaw == "" {
		return nil, errors.New("start and end must be supplied together")
	}
	start, err := availability.ParseTimeOfDay(startRaw)
	if err != nil {
		return nil, err
	}
	end, err := availability.ParseTimeOfDay(endRaw)
	if err != nil {
		return nil, err
	}
	return &availability.TimeWindow{Start: start, End: end}, nil
}

func parseTimePtr(raw *string) (*availability.TimeOfDay, error) {
	if raw == nil {
		return nil, nil
	}
	t, err := availability.ParseTimeOfDay(*raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeErrorMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeError maps domain errors onto HTTP statuses and logs server faults.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	switch {
	case errors.Is(err, availability.ErrValidation):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case availability.IsNotFound(err):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, approval.ErrInvalidState):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	default:
		h.Log.WithError(err).WithFields(logrus.Fields{
			"method": r.Method,
			"path":   r.URL.Path,
		}).Error(msg)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": msg})
	}
}
