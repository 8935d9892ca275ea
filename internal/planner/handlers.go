package planner

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/fdg312/fitplanner/internal/weekplan"
)

type Handlers struct {
	service *Service
}

func NewHandlers(service *Service) *Handlers {
	return &Handlers{service: service}
}

// Register wires the planner routes onto mux.
func (h *Handlers) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /v1/schedule", h.HandleGetSchedule)
	mux.HandleFunc("POST /v1/schedule/reset", h.HandleResetSchedule)
	mux.HandleFunc("GET /v1/schedule/summary", h.HandleGetSummary)
	mux.HandleFunc("POST /v1/schedule/days/{day}/exercises", h.HandleAddExercise)
	mux.HandleFunc("PUT /v1/schedule/days/{day}/exercises/{id}", h.HandleUpdateExercise)
	mux.HandleFunc("DELETE /v1/schedule/days/{day}/exercises/{id}", h.HandleDeleteExercise)
	mux.HandleFunc("POST /v1/schedule/days/{day}/slots/{slotID}/items", h.HandleAddMealItem)
	mux.HandleFunc("PUT /v1/schedule/days/{day}/slots/{slotID}/items/{id}", h.HandleUpdateMealItem)
	mux.HandleFunc("DELETE /v1/schedule/days/{day}/slots/{slotID}/items/{id}", h.HandleDeleteMealItem)
	mux.HandleFunc("POST /v1/schedule/moves", h.HandleMoveMealItem)

	mux.HandleFunc("GET /v1/profile", h.HandleGetProfile)
	mux.HandleFunc("PUT /v1/profile", h.HandleUpdateProfile)

	mux.HandleFunc("GET /v1/plan", h.HandleGetPlan)
	mux.HandleFunc("DELETE /v1/plan", h.HandleClearPlan)
	mux.HandleFunc("POST /v1/plan/generate", h.HandleGeneratePlan)
	mux.HandleFunc("POST /v1/plan/apply", h.HandleApplyPlan)

	mux.HandleFunc("POST /v1/nutrition/estimate", h.HandleEstimateNutrition)
}

// HandleGetSchedule returns the whole week with totals.
// GET /v1/schedule
func (h *Handlers) HandleGetSchedule(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, newScheduleResponse(h.service.Schedule()))
}

// POST /v1/schedule/reset
func (h *Handlers) HandleResetSchedule(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, newScheduleResponse(h.service.ResetSchedule(r.Context())))
}

// GET /v1/schedule/summary
func (h *Handlers) HandleGetSummary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.Summary())
}

// POST /v1/schedule/days/{day}/exercises
func (h *Handlers) HandleAddExercise(w http.ResponseWriter, r *http.Request) {
	var req weekplan.ExerciseInput
	if !decodeBody(w, r, &req) {
		return
	}
	ex, err := h.service.AddExercise(r.Context(), r.PathValue("day"), req)
	if err != nil {
		h.handleError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, ex)
}

// PUT /v1/schedule/days/{day}/exercises/{id}
func (h *Handlers) HandleUpdateExercise(w http.ResponseWriter, r *http.Request) {
	var req weekplan.ExerciseInput
	if !decodeBody(w, r, &req) {
		return
	}
	ex, err := h.service.UpdateExercise(r.Context(), r.PathValue("day"), r.PathValue("id"), req)
	if err != nil {
		h.handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ex)
}

// DELETE /v1/schedule/days/{day}/exercises/{id}
func (h *Handlers) HandleDeleteExercise(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteExercise(r.Context(), r.PathValue("day"), r.PathValue("id")); err != nil {
		h.handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// POST /v1/schedule/days/{day}/slots/{slotID}/items
func (h *Handlers) HandleAddMealItem(w http.ResponseWriter, r *http.Request) {
	var req weekplan.FoodItemInput
	if !decodeBody(w, r, &req) {
		return
	}
	item, err := h.service.AddMealItem(r.Context(), r.PathValue("day"), r.PathValue("slotID"), req)
	if err != nil {
		h.handleError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

// PUT /v1/schedule/days/{day}/slots/{slotID}/items/{id}
func (h *Handlers) HandleUpdateMealItem(w http.ResponseWriter, r *http.Request) {
	var req weekplan.FoodItemInput
	if !decodeBody(w, r, &req) {
		return
	}
	item, err := h.service.UpdateMealItem(r.Context(), r.PathValue("day"), r.PathValue("slotID"), r.PathValue("id"), req)
	if err != nil {
		h.handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// DELETE /v1/schedule/days/{day}/slots/{slotID}/items/{id}
func (h *Handlers) HandleDeleteMealItem(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteMealItem(r.Context(), r.PathValue("day"), r.PathValue("slotID"), r.PathValue("id")); err != nil {
		h.handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleMoveMealItem answers 200 even when nothing moved; the body says which.
// POST /v1/schedule/moves
func (h *Handlers) HandleMoveMealItem(w http.ResponseWriter, r *http.Request) {
	var req MoveRequest
	if !decodeBody(w, r, &req) {
		return
	}
	schedule, moved, err := h.service.MoveMealItem(r.Context(), req)
	if err != nil {
		h.handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MoveResponse{Moved: moved, Schedule: schedule})
}

// GET /v1/profile
func (h *Handlers) HandleGetProfile(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.Profile())
}

// PUT /v1/profile
func (h *Handlers) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req weekplan.Profile
	if !decodeBody(w, r, &req) {
		return
	}
	profile, err := h.service.UpdateProfile(r.Context(), req)
	if err != nil {
		h.handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// GET /v1/plan
func (h *Handlers) HandleGetPlan(w http.ResponseWriter, r *http.Request) {
	plan, err := h.service.GeneratedPlan()
	if err != nil {
		h.handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

// DELETE /v1/plan
func (h *Handlers) HandleClearPlan(w http.ResponseWriter, r *http.Request) {
	h.service.ClearGeneratedPlan(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

// HandleGeneratePlan blocks until the provider answers. An empty body is
// accepted as "no preference".
// POST /v1/plan/generate
func (h *Handlers) HandleGeneratePlan(w http.ResponseWriter, r *http.Request) {
	var req GeneratePlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid_payload", "invalid JSON body")
		return
	}
	plan, err := h.service.GeneratePlan(r.Context(), req.Preference)
	if err != nil {
		h.handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

// POST /v1/plan/apply
func (h *Handlers) HandleApplyPlan(w http.ResponseWriter, r *http.Request) {
	schedule, err := h.service.ApplyGeneratedPlan(r.Context())
	if err != nil {
		h.handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newScheduleResponse(schedule))
}

// POST /v1/nutrition/estimate
func (h *Handlers) HandleEstimateNutrition(w http.ResponseWriter, r *http.Request) {
	var req NutritionEstimateRequest
	if !decodeBody(w, r, &req) {
		return
	}
	estimate, err := h.service.EstimateNutrition(r.Context(), req.FoodName, req.Quantity)
	if err != nil {
		h.handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, estimate)
}

// ============================================================================
// Error handling
// ============================================================================

func (h *Handlers) handleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrUnknownDay):
		writeError(w, http.StatusBadRequest, "unknown_day", "day must be one of Sunday..Saturday")
	case errors.Is(err, ErrInvalidRequest):
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, ErrNoGeneratedPlan):
		writeError(w, http.StatusNotFound, "plan_not_found", "no generated plan")
	case errors.Is(err, ErrRequestInFlight):
		writeError(w, http.StatusConflict, "request_in_flight", "a request of this kind is already running")
	case errors.Is(err, ErrStaleResult):
		writeError(w, http.StatusConflict, "stale_result", "the plan was cleared while it was being generated")
	case errors.Is(err, ErrPlanUnavailable):
		writeError(w, http.StatusBadGateway, "plan_unavailable", "could not generate a meal plan, please try again")
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

// ============================================================================
// Helpers
// ============================================================================

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_payload", "invalid JSON body")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}
