package ai

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"

	"github.com/fdg312/fitplanner/internal/weekplan"
)

// JSON schemas sent as response_format. OpenAI strict mode requires every
// property to be listed in required and additionalProperties=false.

func nutritionProperties() map[string]any {
	return map[string]any{
		"calories": map[string]any{"type": "number", "description": "Total calories for the given quantity."},
		"protein":  map[string]any{"type": "number", "description": "Total protein in grams."},
		"carbs":    map[string]any{"type": "number", "description": "Total carbohydrates in grams."},
		"fat":      map[string]any{"type": "number", "description": "Total fat in grams."},
	}
}

func nutritionSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"properties":           nutritionProperties(),
		"required":             []string{"calories", "protein", "carbs", "fat"},
		"additionalProperties": false,
	}
}

func mealPlanSchema() map[string]any {
	itemProps := nutritionProperties()
	itemProps["name"] = map[string]any{"type": "string", "description": "Food item name."}
	itemProps["quantity"] = map[string]any{"type": "string", "description": "Suggested quantity, e.g. \"150 grams\"."}

	item := map[string]any{
		"type":                 "object",
		"properties":           itemProps,
		"required":             []string{"name", "quantity", "calories", "protein", "carbs", "fat"},
		"additionalProperties": false,
	}
	slot := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"slotTitle": map[string]any{"type": "string", "enum": weekplan.DefaultSlotTitles},
			"items":     map[string]any{"type": "array", "items": item},
		},
		"required":             []string{"slotTitle", "items"},
		"additionalProperties": false,
	}
	day := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"day":       map[string]any{"type": "string", "enum": weekplan.Days},
			"mealSlots": map[string]any{"type": "array", "items": slot},
		},
		"required":             []string{"day", "mealSlots"},
		"additionalProperties": false,
	}
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"plan": map[string]any{"type": "array", "items": day},
		},
		"required":             []string{"plan"},
		"additionalProperties": false,
	}
}

// Boundary DTOs. Pointer fields make a missing mandatory field detectable.

type nutritionResponse struct {
	Calories *float64 `json:"calories"`
	Protein  *float64 `json:"protein"`
	Carbs    *float64 `json:"carbs"`
	Fat      *float64 `json:"fat"`
}

type planItemResponse struct {
	Name     *string `json:"name"`
	Quantity *string `json:"quantity"`
	nutritionResponse
}

type slotResponse struct {
	SlotTitle *string             `json:"slotTitle"`
	Items     *[]planItemResponse `json:"items"`
}

type dayResponse struct {
	Day       *string         `json:"day"`
	MealSlots *[]slotResponse `json:"mealSlots"`
}

type planResponse struct {
	Plan *[]dayResponse `json:"plan"`
}

// decodeStrict decodes exactly one JSON value from content, rejecting
// unknown fields and trailing data.
func decodeStrict(content string, v any) error {
	dec := json.NewDecoder(bytes.NewReader([]byte(content)))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return fmt.Errorf("%w: trailing data after JSON value", ErrInvalidResponse)
	}
	return nil
}

func (n nutritionResponse) toFacts(path string) (weekplan.NutritionFacts, error) {
	fields := []struct {
		name string
		v    *float64
	}{
		{"calories", n.Calories},
		{"protein", n.Protein},
		{"carbs", n.Carbs},
		{"fat", n.Fat},
	}
	for _, f := range fields {
		if f.v == nil {
			return weekplan.NutritionFacts{}, fmt.Errorf("%w: %s%s is missing", ErrInvalidResponse, path, f.name)
		}
		if math.IsNaN(*f.v) || math.IsInf(*f.v, 0) || *f.v < 0 {
			return weekplan.NutritionFacts{}, fmt.Errorf("%w: %s%s is out of range", ErrInvalidResponse, path, f.name)
		}
	}
	return weekplan.NutritionFacts{
		Calories: *n.Calories,
		Protein:  *n.Protein,
		Carbs:    *n.Carbs,
		Fat:      *n.Fat,
	}, nil
}

func parseNutrition(content string) (weekplan.NutritionFacts, error) {
	var resp nutritionResponse
	if err := decodeStrict(content, &resp); err != nil {
		return weekplan.NutritionFacts{}, err
	}
	return resp.toFacts("")
}

func parseMealPlan(content string) (weekplan.GeneratedPlan, error) {
	var resp planResponse
	if err := decodeStrict(content, &resp); err != nil {
		return weekplan.GeneratedPlan{}, err
	}
	if resp.Plan == nil {
		return weekplan.GeneratedPlan{}, fmt.Errorf("%w: plan is missing", ErrInvalidResponse)
	}
	if len(*resp.Plan) != len(weekplan.Days) {
		return weekplan.GeneratedPlan{}, fmt.Errorf("%w: expected %d days, got %d", ErrInvalidResponse, len(weekplan.Days), len(*resp.Plan))
	}

	out := weekplan.GeneratedPlan{Plan: make([]weekplan.DayPlan, 0, len(*resp.Plan))}
	for i, d := range *resp.Plan {
		if d.Day == nil || d.MealSlots == nil {
			return weekplan.GeneratedPlan{}, fmt.Errorf("%w: plan[%d] is incomplete", ErrInvalidResponse, i)
		}
		day := weekplan.DayPlan{Day: *d.Day, MealSlots: make([]weekplan.SlotPlan, 0, len(*d.MealSlots))}
		for j, s := range *d.MealSlots {
			if s.SlotTitle == nil || s.Items == nil {
				return weekplan.GeneratedPlan{}, fmt.Errorf("%w: plan[%d].mealSlots[%d] is incomplete", ErrInvalidResponse, i, j)
			}
			slot := weekplan.SlotPlan{SlotTitle: *s.SlotTitle, Items: make([]weekplan.PlanItem, 0, len(*s.Items))}
			for k, it := range *s.Items {
				path := fmt.Sprintf("plan[%d].mealSlots[%d].items[%d].", i, j, k)
				if it.Name == nil || it.Quantity == nil {
					return weekplan.GeneratedPlan{}, fmt.Errorf("%w: %sname or quantity is missing", ErrInvalidResponse, path)
				}
				facts, err := it.toFacts(path)
				if err != nil {
					return weekplan.GeneratedPlan{}, err
				}
				slot.Items = append(slot.Items, weekplan.PlanItem{
					Name:           *it.Name,
					Quantity:       *it.Quantity,
					NutritionFacts: facts,
				})
			}
			day.MealSlots = append(day.MealSlots, slot)
		}
		out.Plan = append(out.Plan, day)
	}
	return out, nil
}
