package ai

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/fdg312/fitplanner/internal/weekplan"
)

func TestMockGenerateMealPlanShape(t *testing.T) {
	p := NewMockProvider()
	plan, err := p.GenerateMealPlan(context.Background(), weekplan.DefaultProfile(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(plan.Plan) != len(weekplan.Days) {
		t.Fatalf("expected %d days, got %d", len(weekplan.Days), len(plan.Plan))
	}
	for i, day := range plan.Plan {
		if day.Day != weekplan.Days[i] {
			t.Errorf("expected day %s at %d, got %s", weekplan.Days[i], i, day.Day)
		}
		if len(day.MealSlots) != len(weekplan.DefaultSlotTitles) {
			t.Fatalf("expected %d slots on %s, got %d", len(weekplan.DefaultSlotTitles), day.Day, len(day.MealSlots))
		}
		for j, slot := range day.MealSlots {
			if slot.SlotTitle != weekplan.DefaultSlotTitles[j] {
				t.Errorf("expected slot %s, got %s", weekplan.DefaultSlotTitles[j], slot.SlotTitle)
			}
			if len(slot.Items) == 0 || slot.Items[0].Name == "" {
				t.Errorf("expected a named item in %s/%s", day.Day, slot.SlotTitle)
			}
		}
	}
}

func TestMockGenerateMealPlanScalesByGoal(t *testing.T) {
	p := NewMockProvider()
	ctx := context.Background()

	maintain, _ := p.GenerateMealPlan(ctx, weekplan.Profile{Goal: weekplan.GoalMaintain}, "")
	reduce, _ := p.GenerateMealPlan(ctx, weekplan.Profile{Goal: "lose"}, "")
	gain, _ := p.GenerateMealPlan(ctx, weekplan.Profile{Goal: weekplan.GoalGain}, "")

	base := maintain.Plan[0].MealSlots[0].Items[0].Calories
	if got := reduce.Plan[0].MealSlots[0].Items[0].Calories; got >= base {
		t.Errorf("expected reduce plan below %v calories, got %v", base, got)
	}
	if got := gain.Plan[0].MealSlots[0].Items[0].Calories; got <= base {
		t.Errorf("expected gain plan above %v calories, got %v", base, got)
	}
}

func TestMockGenerateMealPlanDeterministic(t *testing.T) {
	p := NewMockProvider()
	a, _ := p.GenerateMealPlan(context.Background(), weekplan.DefaultProfile(), "x")
	b, _ := p.GenerateMealPlan(context.Background(), weekplan.DefaultProfile(), "y")
	if mustMarshal(t, a) != mustMarshal(t, b) {
		t.Errorf("expected identical mock plans")
	}
}

func TestMockEstimateNutrition(t *testing.T) {
	p := NewMockProvider()
	ctx := context.Background()

	facts, err := p.EstimateNutrition(ctx, "Chicken breast", "200 grams")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := weekplan.NutritionFacts{Calories: 330, Protein: 62, Carbs: 0, Fat: 7.2}
	if facts != want {
		t.Errorf("expected %+v, got %+v", want, facts)
	}

	unknownA, _ := p.EstimateNutrition(ctx, "dragonfruit smoothie", "1")
	unknownB, _ := p.EstimateNutrition(ctx, "Dragonfruit smoothie ", "1")
	if unknownA != unknownB {
		t.Errorf("expected stable estimate for unknown food, got %+v and %+v", unknownA, unknownB)
	}
	if unknownA.Calories <= 0 {
		t.Errorf("expected positive calories, got %v", unknownA.Calories)
	}
}

func TestMockEstimateNutritionErrors(t *testing.T) {
	p := NewMockProvider()
	if _, err := p.EstimateNutrition(context.Background(), "  ", "1"); !errors.Is(err, ErrInvalidResponse) {
		t.Errorf("expected ErrInvalidResponse for empty name, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := p.EstimateNutrition(ctx, "rice", "1"); !errors.Is(err, ErrProviderFailed) {
		t.Errorf("expected ErrProviderFailed for cancelled context, got %v", err)
	}
}

func TestQuantityFactor(t *testing.T) {
	cases := map[string]float64{
		"150 grams": 1.5,
		"50g":       0.5,
		"250 ml":    2.5,
		"2":         2,
		"2 eggs":    2,
		"a handful": 1,
		"":          1,
		"-3":        1,
	}
	for in, want := range cases {
		if got := quantityFactor(in); got != want {
			t.Errorf("quantityFactor(%q): expected %v, got %v", in, want, got)
		}
	}
}

func TestMockReply(t *testing.T) {
	p := NewMockProvider()
	resp, err := p.Reply(context.Background(), ReplyRequest{
		Messages: []ChatMessage{
			{Role: "user", Content: "How much protein do I need?"},
		},
		Profile: weekplan.Profile{Goal: weekplan.GoalGain},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(resp.AssistantText, "protein") {
		t.Errorf("expected protein advice, got %q", resp.AssistantText)
	}
	if !strings.Contains(resp.AssistantText, "gain weight") {
		t.Errorf("expected goal in reply, got %q", resp.AssistantText)
	}
	if !strings.HasSuffix(resp.AssistantText, "This is demo mode.") {
		t.Errorf("expected demo suffix, got %q", resp.AssistantText)
	}
}
