package ai

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"strconv"
	"strings"

	"github.com/fdg312/fitplanner/internal/weekplan"
)

// MockProvider answers deterministically without network access.
type MockProvider struct{}

func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

type mockFood struct {
	name     string
	quantity string
	facts    weekplan.NutritionFacts
}

// Menus per slot title; day i uses entry i modulo the menu length.
var mockMenus = map[string][]mockFood{
	"Breakfast": {
		{"Oatmeal with banana", "1 bowl", weekplan.NutritionFacts{Calories: 350, Protein: 10, Carbs: 62, Fat: 7}},
		{"Scrambled eggs on toast", "2 eggs, 1 slice", weekplan.NutritionFacts{Calories: 320, Protein: 18, Carbs: 20, Fat: 18}},
		{"Greek yogurt with berries", "200 grams", weekplan.NutritionFacts{Calories: 220, Protein: 18, Carbs: 24, Fat: 5}},
	},
	"Post-Breakfast": {
		{"Apple", "1 medium", weekplan.NutritionFacts{Calories: 95, Protein: 0.5, Carbs: 25, Fat: 0.3}},
		{"Almonds", "30 grams", weekplan.NutritionFacts{Calories: 174, Protein: 6, Carbs: 6, Fat: 15}},
	},
	"Lunch": {
		{"Grilled chicken breast", "150 grams", weekplan.NutritionFacts{Calories: 248, Protein: 46, Carbs: 0, Fat: 5}},
		{"Lentil soup", "1 bowl", weekplan.NutritionFacts{Calories: 230, Protein: 18, Carbs: 40, Fat: 1}},
		{"Tuna salad", "1 plate", weekplan.NutritionFacts{Calories: 300, Protein: 32, Carbs: 10, Fat: 14}},
	},
	"Post-Lunch": {
		{"Cottage cheese", "100 grams", weekplan.NutritionFacts{Calories: 98, Protein: 11, Carbs: 3, Fat: 4}},
		{"Orange", "1 medium", weekplan.NutritionFacts{Calories: 62, Protein: 1, Carbs: 15, Fat: 0.2}},
	},
	"Dinner": {
		{"Baked salmon with rice", "150 grams, 1 cup", weekplan.NutritionFacts{Calories: 520, Protein: 36, Carbs: 45, Fat: 20}},
		{"Beef stir fry with vegetables", "1 plate", weekplan.NutritionFacts{Calories: 450, Protein: 35, Carbs: 25, Fat: 22}},
		{"Chickpea curry", "1 bowl", weekplan.NutritionFacts{Calories: 400, Protein: 15, Carbs: 55, Fat: 12}},
	},
	"Post-Dinner": {
		{"Herbal tea", "1 cup", weekplan.NutritionFacts{}},
		{"Warm milk", "250 ml", weekplan.NutritionFacts{Calories: 122, Protein: 8, Carbs: 12, Fat: 5}},
	},
}

func (p *MockProvider) GenerateMealPlan(ctx context.Context, profile weekplan.Profile, preference string) (weekplan.GeneratedPlan, error) {
	if err := ctx.Err(); err != nil {
		return weekplan.GeneratedPlan{}, fmt.Errorf("%w: %v", ErrProviderFailed, err)
	}

	scale := 1.0
	if goal, ok := weekplan.NormalizeGoal(profile.Goal); ok {
		switch goal {
		case weekplan.GoalReduce:
			scale = 0.8
		case weekplan.GoalGain:
			scale = 1.25
		}
	}

	plan := weekplan.GeneratedPlan{Plan: make([]weekplan.DayPlan, 0, len(weekplan.Days))}
	for i, day := range weekplan.Days {
		slots := make([]weekplan.SlotPlan, 0, len(weekplan.DefaultSlotTitles))
		for _, title := range weekplan.DefaultSlotTitles {
			menu := mockMenus[title]
			food := menu[i%len(menu)]
			slots = append(slots, weekplan.SlotPlan{
				SlotTitle: title,
				Items: []weekplan.PlanItem{{
					Name:           food.name,
					Quantity:       food.quantity,
					NutritionFacts: scaleFacts(food.facts, scale),
				}},
			})
		}
		plan.Plan = append(plan.Plan, weekplan.DayPlan{Day: day, MealSlots: slots})
	}
	return plan, nil
}

// per-100g reference values for the mock nutrition lookup; first match wins
var mockPer100g = []struct {
	key   string
	facts weekplan.NutritionFacts
}{
	{"chicken", weekplan.NutritionFacts{Calories: 165, Protein: 31, Carbs: 0, Fat: 3.6}},
	{"salmon", weekplan.NutritionFacts{Calories: 208, Protein: 20, Carbs: 0, Fat: 13}},
	{"egg", weekplan.NutritionFacts{Calories: 155, Protein: 13, Carbs: 1.1, Fat: 11}},
	{"rice", weekplan.NutritionFacts{Calories: 130, Protein: 2.7, Carbs: 28, Fat: 0.3}},
	{"oat", weekplan.NutritionFacts{Calories: 389, Protein: 17, Carbs: 66, Fat: 7}},
	{"banana", weekplan.NutritionFacts{Calories: 89, Protein: 1.1, Carbs: 23, Fat: 0.3}},
	{"bread", weekplan.NutritionFacts{Calories: 265, Protein: 9, Carbs: 49, Fat: 3.2}},
	{"milk", weekplan.NutritionFacts{Calories: 49, Protein: 3.3, Carbs: 4.8, Fat: 2}},
}

func (p *MockProvider) EstimateNutrition(ctx context.Context, foodName, quantity string) (weekplan.NutritionFacts, error) {
	if err := ctx.Err(); err != nil {
		return weekplan.NutritionFacts{}, fmt.Errorf("%w: %v", ErrProviderFailed, err)
	}

	name := strings.ToLower(strings.TrimSpace(foodName))
	if name == "" {
		return weekplan.NutritionFacts{}, fmt.Errorf("%w: empty food name", ErrInvalidResponse)
	}

	base, ok := lookupMockFood(name)
	if !ok {
		base = hashedFacts(name)
	}
	return scaleFacts(base, quantityFactor(quantity)), nil
}

func (p *MockProvider) Reply(ctx context.Context, req ReplyRequest) (ReplyResponse, error) {
	_ = ctx

	lastUserMessage := ""
	for i := len(req.Messages) - 1; i >= 0; i-- {
		if req.Messages[i].Role == "user" {
			lastUserMessage = req.Messages[i].Content
			break
		}
	}

	text := fmt.Sprintf("Mock reply: your goal is to %s.", goalDescription(req.Profile.Goal))
	lowered := strings.ToLower(lastUserMessage)
	switch {
	case strings.Contains(lowered, "protein"):
		text += " Aim for about 1.6 g of protein per kg of body weight, spread across your meals."
	case strings.Contains(lowered, "workout") || strings.Contains(lowered, "exercise") || strings.Contains(lowered, "train"):
		text += " Mix three strength sessions with two easy cardio days and keep one full rest day."
	case strings.Contains(lowered, "meal") || strings.Contains(lowered, "diet") || strings.Contains(lowered, "calorie"):
		text += " Try generating a weekly meal plan and adjust portions to your daily calorie target."
	default:
		text += " Ask me about workouts, meals or nutrition."
	}
	text += " This is demo mode."

	return ReplyResponse{AssistantText: text}, nil
}

func lookupMockFood(name string) (weekplan.NutritionFacts, bool) {
	for _, ref := range mockPer100g {
		if strings.Contains(name, ref.key) {
			return ref.facts, true
		}
	}
	return weekplan.NutritionFacts{}, false
}

// hashedFacts derives stable pseudo-values for unknown foods.
func hashedFacts(name string) weekplan.NutritionFacts {
	h := fnv.New32a()
	_, _ = h.Write([]byte(name))
	sum := h.Sum32()
	return weekplan.NutritionFacts{
		Calories: float64(50 + sum%300),
		Protein:  float64((sum >> 8) % 25),
		Carbs:    float64((sum >> 16) % 50),
		Fat:      float64((sum >> 24) % 20),
	}
}

// quantityFactor converts "150 grams" to 1.5 (relative to 100 g) and a
// bare count like "2" to 2. Anything unparseable counts as one portion.
func quantityFactor(quantity string) float64 {
	fields := strings.Fields(strings.ToLower(quantity))
	if len(fields) == 0 {
		return 1
	}
	num := fields[0]
	unit := ""
	if len(fields) > 1 {
		unit = fields[1]
	}
	for _, suffix := range []string{"grams", "gram", "g", "ml"} {
		if strings.HasSuffix(num, suffix) && len(num) > len(suffix) {
			unit = suffix
			num = strings.TrimSuffix(num, suffix)
			break
		}
	}
	v, err := strconv.ParseFloat(num, 64)
	if err != nil || v <= 0 || math.IsInf(v, 0) {
		return 1
	}
	switch unit {
	case "g", "gram", "grams", "ml":
		return v / 100
	default:
		return v
	}
}

func scaleFacts(n weekplan.NutritionFacts, factor float64) weekplan.NutritionFacts {
	round := func(v float64) float64 { return math.Round(v*factor*10) / 10 }
	return weekplan.NutritionFacts{
		Calories: round(n.Calories),
		Protein:  round(n.Protein),
		Carbs:    round(n.Carbs),
		Fat:      round(n.Fat),
	}
}
