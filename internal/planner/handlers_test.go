package planner

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fdg312/fitplanner/internal/ai"
	"github.com/fdg312/fitplanner/internal/weekplan"
)

func newTestMux(t *testing.T, provider ai.Provider) (*http.ServeMux, *Service) {
	t.Helper()
	svc, _ := newTestService(t, provider)
	mux := http.NewServeMux()
	NewHandlers(svc).Register(mux)
	return mux, svc
}

func doJSON(t *testing.T, mux http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return body.Error.Code
}

func TestGetScheduleReturnsCanonicalWeek(t *testing.T) {
	mux, _ := newTestMux(t, &fakeProvider{})

	w := doJSON(t, mux, http.MethodGet, "/v1/schedule", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var resp struct {
		Schedule map[string]weekplan.DayData `json:"schedule"`
		Totals   weekplan.NutritionFacts     `json:"totals"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Schedule) != 7 {
		t.Fatalf("expected 7 days, got %d", len(resp.Schedule))
	}
	if got := resp.Schedule["Saturday"].Meals[5].Title; got != "Post-Dinner" {
		t.Errorf("expected last slot Post-Dinner, got %q", got)
	}
}

func TestExerciseRoutes(t *testing.T) {
	mux, svc := newTestMux(t, &fakeProvider{})

	w := doJSON(t, mux, http.MethodPost, "/v1/schedule/days/Monday/exercises", weekplan.ExerciseInput{Name: "Plank", Duration: "5 min"})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d body=%s", w.Code, w.Body.String())
	}
	var ex weekplan.Exercise
	_ = json.NewDecoder(w.Body).Decode(&ex)

	w = doJSON(t, mux, http.MethodPut, "/v1/schedule/days/Monday/exercises/"+ex.ID, weekplan.ExerciseInput{Name: "Side plank"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	w = doJSON(t, mux, http.MethodPut, "/v1/schedule/days/Monday/exercises/missing", weekplan.ExerciseInput{Name: "x"})
	if w.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", w.Code)
	}

	w = doJSON(t, mux, http.MethodDelete, "/v1/schedule/days/Monday/exercises/"+ex.ID, nil)
	if w.Code != http.StatusNoContent {
		t.Errorf("expected status 204, got %d", w.Code)
	}
	if n := len(svc.Schedule()["Monday"].Exercises); n != 0 {
		t.Errorf("expected exercise removed, got %d", n)
	}
}

func TestExerciseRouteErrors(t *testing.T) {
	mux, _ := newTestMux(t, &fakeProvider{})

	w := doJSON(t, mux, http.MethodPost, "/v1/schedule/days/Someday/exercises", weekplan.ExerciseInput{Name: "Run"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", w.Code)
	}
	if code := errorCode(t, w); code != "unknown_day" {
		t.Errorf("expected unknown_day, got %s", code)
	}

	req := httptest.NewRequest(http.MethodPost, "/v1/schedule/days/Monday/exercises", bytes.NewReader([]byte("{")))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
	if code := errorCode(t, rec); code != "invalid_payload" {
		t.Errorf("expected invalid_payload, got %s", code)
	}
}

func TestMealItemAndMoveRoutes(t *testing.T) {
	mux, svc := newTestMux(t, &fakeProvider{})
	breakfast := svc.Schedule()["Sunday"].Meals[0].ID
	lunch := svc.Schedule()["Sunday"].Meals[2].ID

	path := fmt.Sprintf("/v1/schedule/days/Sunday/slots/%s/items", breakfast)
	w := doJSON(t, mux, http.MethodPost, path, weekplan.FoodItemInput{
		Name: "Yogurt", Quantity: "200 grams",
		NutritionFacts: weekplan.NutritionFacts{Calories: 120, Protein: 20},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d body=%s", w.Code, w.Body.String())
	}
	var item weekplan.FoodItem
	_ = json.NewDecoder(w.Body).Decode(&item)

	w = doJSON(t, mux, http.MethodPost, "/v1/schedule/moves", MoveRequest{
		SourceDay: "Sunday", SourceSlotID: breakfast,
		TargetDay: "Sunday", TargetSlotID: lunch,
		ItemID: item.ID,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	var moved struct {
		Moved bool `json:"moved"`
	}
	_ = json.NewDecoder(w.Body).Decode(&moved)
	if !moved.Moved {
		t.Errorf("expected moved=true")
	}

	w = doJSON(t, mux, http.MethodPost, "/v1/schedule/moves", MoveRequest{
		SourceDay: "Sunday", SourceSlotID: lunch,
		TargetDay: "Sunday", TargetSlotID: lunch,
		ItemID: item.ID,
	})
	_ = json.NewDecoder(w.Body).Decode(&moved)
	if w.Code != http.StatusOK || moved.Moved {
		t.Errorf("expected same-slot move to be a 200 no-op, got %d moved=%v", w.Code, moved.Moved)
	}

	w = doJSON(t, mux, http.MethodDelete, fmt.Sprintf("/v1/schedule/days/Sunday/slots/%s/items/%s", lunch, item.ID), nil)
	if w.Code != http.StatusNoContent {
		t.Errorf("expected status 204, got %d", w.Code)
	}
}

func TestSummaryRoute(t *testing.T) {
	mux, svc := newTestMux(t, &fakeProvider{})
	_, _ = svc.AddExercise(t.Context(), "Monday", weekplan.ExerciseInput{Name: "Run", Duration: "30 min"})

	w := doJSON(t, mux, http.MethodGet, "/v1/schedule/summary", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	var summary weekplan.WeekSummary
	if err := json.NewDecoder(w.Body).Decode(&summary); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if summary.ExerciseCount != 1 || summary.ExerciseMinutes != 30 {
		t.Errorf("unexpected summary: %+v", summary)
	}
	for _, d := range summary.Days {
		if d.MissingData {
			t.Errorf("expected %s complete, got missing_data", d.Day)
		}
	}
}

func TestSummaryRouteFlagsManualItems(t *testing.T) {
	mux, svc := newTestMux(t, &fakeProvider{})
	slot := svc.Schedule()["Thursday"].Meals[2].ID
	_, _ = svc.AddMealItem(t.Context(), "Thursday", slot, weekplan.FoodItemInput{Name: "Street food", Quantity: "1 plate"})

	w := doJSON(t, mux, http.MethodGet, "/v1/schedule/summary", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	var raw struct {
		Days []map[string]any `json:"days"`
	}
	if err := json.NewDecoder(w.Body).Decode(&raw); err != nil {
		t.Fatalf("decode: %v", err)
	}
	for _, d := range raw.Days {
		want := d["day"] == "Thursday"
		if d["missing_data"] != want {
			t.Errorf("%v: expected missing_data=%t, got %v", d["day"], want, d["missing_data"])
		}
	}
}

func TestProfileRoutes(t *testing.T) {
	mux, _ := newTestMux(t, &fakeProvider{})

	w := doJSON(t, mux, http.MethodPut, "/v1/profile", weekplan.Profile{Age: 33, Height: 181, Weight: 77, Goal: "gain"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	w = doJSON(t, mux, http.MethodGet, "/v1/profile", nil)
	var p weekplan.Profile
	_ = json.NewDecoder(w.Body).Decode(&p)
	if p.Age != 33 || p.Goal != weekplan.GoalGain {
		t.Errorf("unexpected profile: %+v", p)
	}

	w = doJSON(t, mux, http.MethodPut, "/v1/profile", weekplan.Profile{Age: 33, Height: 181, Weight: 77, Goal: "shred"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", w.Code)
	}
}

func TestPlanRoutes(t *testing.T) {
	provider := &fakeProvider{plan: samplePlan()}
	mux, _ := newTestMux(t, provider)

	w := doJSON(t, mux, http.MethodGet, "/v1/plan", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected status 404 before generation, got %d", w.Code)
	}

	w = doJSON(t, mux, http.MethodPost, "/v1/plan/generate", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d body=%s", w.Code, w.Body.String())
	}

	w = doJSON(t, mux, http.MethodPost, "/v1/plan/apply", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	w = doJSON(t, mux, http.MethodDelete, "/v1/plan", nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", w.Code)
	}
	w = doJSON(t, mux, http.MethodPost, "/v1/plan/apply", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected status 404 after clear, got %d", w.Code)
	}
}

func TestGeneratePlanBodyWithoutLength(t *testing.T) {
	cases := []struct {
		name           string
		body           string
		wantStatus     int
		wantPreference string
	}{
		{"empty", "", http.StatusOK, ""},
		{"preference", `{"preference":"high protein"}`, http.StatusOK, "high protein"},
		{"malformed", `{"preference":`, http.StatusBadRequest, ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			provider := &fakeProvider{plan: samplePlan()}
			mux, _ := newTestMux(t, provider)

			// Chunked uploads arrive with an unknown length.
			req := httptest.NewRequest(http.MethodPost, "/v1/plan/generate", strings.NewReader(tc.body))
			req.ContentLength = -1
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			if w.Code != tc.wantStatus {
				t.Fatalf("expected status %d, got %d body=%s", tc.wantStatus, w.Code, w.Body.String())
			}
			if tc.wantStatus != http.StatusOK {
				if code := errorCode(t, w); code != "invalid_payload" {
					t.Errorf("expected invalid_payload, got %s", code)
				}
				return
			}
			if provider.preference != tc.wantPreference {
				t.Errorf("expected preference %q, got %q", tc.wantPreference, provider.preference)
			}
		})
	}
}

func TestGeneratePlanProviderFailure(t *testing.T) {
	mux, _ := newTestMux(t, &fakeProvider{planErr: ai.ErrInvalidResponse})

	w := doJSON(t, mux, http.MethodPost, "/v1/plan/generate", GeneratePlanRequest{Preference: "vegan"})
	if w.Code != http.StatusBadGateway {
		t.Fatalf("expected status 502, got %d", w.Code)
	}
	if code := errorCode(t, w); code != "plan_unavailable" {
		t.Errorf("expected plan_unavailable, got %s", code)
	}
}

func TestEstimateNutritionRoute(t *testing.T) {
	mux, _ := newTestMux(t, &fakeProvider{factsErr: ai.ErrProviderFailed})

	w := doJSON(t, mux, http.MethodPost, "/v1/nutrition/estimate", NutritionEstimateRequest{FoodName: "Pizza", Quantity: "1 slice"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	var est NutritionEstimate
	_ = json.NewDecoder(w.Body).Decode(&est)
	if est.Source != SourceManual {
		t.Errorf("expected manual source, got %q", est.Source)
	}

	w = doJSON(t, mux, http.MethodPost, "/v1/nutrition/estimate", NutritionEstimateRequest{})
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", w.Code)
	}
}
