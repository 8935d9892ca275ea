package ai

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/fdg312/fitplanner/internal/weekplan"
)

func mustMarshal(t *testing.T, v any) string {
	t.Helper()
	raw, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return string(raw)
}

func TestParseNutrition(t *testing.T) {
	facts, err := parseNutrition(`{"calories":95,"protein":0.5,"carbs":25,"fat":0.3}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if facts.Calories != 95 || facts.Carbs != 25 {
		t.Errorf("unexpected facts: %+v", facts)
	}

	bad := []string{
		``,
		`{"calories":95,"protein":0.5,"carbs":25}`,
		`{"calories":"95","protein":0.5,"carbs":25,"fat":0.3}`,
		`{"calories":95,"protein":-1,"carbs":25,"fat":0.3}`,
		`{"calories":95,"protein":0.5,"carbs":25,"fat":0.3,"sugar":3}`,
		`{"calories":95,"protein":0.5,"carbs":25,"fat":0.3}]`,
	}
	for _, content := range bad {
		if _, err := parseNutrition(content); !errors.Is(err, ErrInvalidResponse) {
			t.Errorf("parseNutrition(%q): expected ErrInvalidResponse, got %v", content, err)
		}
	}
}

func TestParseMealPlanReportsPath(t *testing.T) {
	content := strings.Replace(validPlanJSON(7), `"fat":3.5`, `"fat":-1`, 1)
	_, err := parseMealPlan(content)
	if !errors.Is(err, ErrInvalidResponse) {
		t.Fatalf("expected ErrInvalidResponse, got %v", err)
	}
	if !strings.Contains(err.Error(), "plan[0].mealSlots[0].items[0].fat") {
		t.Errorf("expected field path in error, got %v", err)
	}
}

func TestParseMealPlanMissingPlan(t *testing.T) {
	if _, err := parseMealPlan(`{}`); !errors.Is(err, ErrInvalidResponse) {
		t.Errorf("expected ErrInvalidResponse, got %v", err)
	}
	if _, err := parseMealPlan(`{"plan":null}`); !errors.Is(err, ErrInvalidResponse) {
		t.Errorf("expected ErrInvalidResponse for null plan, got %v", err)
	}
}

func TestMealPlanSchemaIsStrict(t *testing.T) {
	schema := mealPlanSchema()
	if schema["additionalProperties"] != false {
		t.Errorf("expected additionalProperties=false at root")
	}
	raw := mustMarshal(t, schema)
	for _, title := range weekplan.DefaultSlotTitles {
		if !strings.Contains(raw, `"`+title+`"`) {
			t.Errorf("expected slot title %q in schema enum", title)
		}
	}
	for _, day := range weekplan.Days {
		if !strings.Contains(raw, `"`+day+`"`) {
			t.Errorf("expected day %q in schema enum", day)
		}
	}
}

func TestMealPlanPromptMentionsProfile(t *testing.T) {
	prompt := mealPlanPrompt(weekplan.Profile{Age: 30, Height: 180, Weight: 82.5, Goal: weekplan.GoalReduce}, "")
	for _, want := range []string{"30 years", "180 cm", "82.5 kg", "lose weight", "no additional preferences", "Post-Dinner"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("expected prompt to contain %q", want)
		}
	}
}
