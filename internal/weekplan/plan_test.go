package weekplan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyGeneratedPlan(t *testing.T) {
	plan := GeneratedPlan{Plan: []DayPlan{
		{Day: "Sunday", MealSlots: []SlotPlan{
			{SlotTitle: "Lunch", Items: []PlanItem{
				{Name: "Chicken breast", Quantity: "150 grams", NutritionFacts: NutritionFacts{Calories: 248, Protein: 46, Fat: 5}},
				{Name: "Brown rice", Quantity: "1 cup"},
			}},
		}},
	}}

	s := ApplyGeneratedPlan(plan)
	require.Len(t, s, 7)

	sunday := s["Sunday"]
	require.Len(t, sunday.Meals, len(DefaultSlotTitles))
	lunch := sunday.Meals[2]
	assert.Equal(t, "Lunch", lunch.Title)
	require.Len(t, lunch.Meals, 2)
	assert.Equal(t, "Chicken breast", lunch.Meals[0].Name)
	assert.Equal(t, NutritionFacts{Calories: 248, Protein: 46, Fat: 5}, lunch.Meals[0].NutritionFacts)
	assert.Equal(t, NutritionFacts{}, lunch.Meals[1].NutritionFacts)
	assert.NotEmpty(t, lunch.Meals[0].ID)
	assert.NotEqual(t, lunch.Meals[0].ID, lunch.Meals[1].ID)

	for i, slot := range sunday.Meals {
		if i == 2 {
			continue
		}
		assert.Empty(t, slot.Meals, "slot %s", slot.Title)
	}
	for _, day := range Days[1:] {
		assert.Empty(t, s[day].Exercises)
		for _, slot := range s[day].Meals {
			assert.Empty(t, slot.Meals)
		}
	}
}

func TestApplyGeneratedPlanFreshIDs(t *testing.T) {
	plan := GeneratedPlan{Plan: []DayPlan{
		{MealSlots: []SlotPlan{{SlotTitle: "Dinner", Items: []PlanItem{{Name: "Salmon"}}}}},
	}}

	first := ApplyGeneratedPlan(plan)
	second := ApplyGeneratedPlan(plan)
	assert.NotEqual(t, first["Sunday"].Meals[4].Meals[0].ID, second["Sunday"].Meals[4].Meals[0].ID)
	assert.NotEqual(t, first["Sunday"].Meals[0].ID, second["Sunday"].Meals[0].ID)
}

func TestApplyGeneratedPlanDropsUnknownTitles(t *testing.T) {
	plan := GeneratedPlan{Plan: []DayPlan{
		{Day: "Sunday", MealSlots: []SlotPlan{
			{SlotTitle: "Midnight Snack", Items: []PlanItem{{Name: "Cookies"}}},
			{SlotTitle: "lunch", Items: []PlanItem{{Name: "Pasta"}}},
		}},
	}}

	s := ApplyGeneratedPlan(plan)
	require.Len(t, s["Sunday"].Meals, len(DefaultSlotTitles))
	for _, slot := range s["Sunday"].Meals {
		assert.Empty(t, slot.Meals, "slot %s", slot.Title)
	}
}

func TestApplyGeneratedPlanMapsDaysByPosition(t *testing.T) {
	plan := GeneratedPlan{Plan: []DayPlan{
		{Day: "Monday", MealSlots: []SlotPlan{{SlotTitle: "Breakfast", Items: []PlanItem{{Name: "Toast"}}}}},
		{Day: "Sunday", MealSlots: []SlotPlan{{SlotTitle: "Breakfast", Items: []PlanItem{{Name: "Porridge"}}}}},
	}}

	s := ApplyGeneratedPlan(plan)
	require.Len(t, s["Sunday"].Meals[0].Meals, 1)
	assert.Equal(t, "Toast", s["Sunday"].Meals[0].Meals[0].Name)
	require.Len(t, s["Monday"].Meals[0].Meals, 1)
	assert.Equal(t, "Porridge", s["Monday"].Meals[0].Meals[0].Name)
	assert.Empty(t, s["Tuesday"].Meals[0].Meals)
}

func TestApplyGeneratedPlanIgnoresExtraDays(t *testing.T) {
	var plan GeneratedPlan
	for i := 0; i < 9; i++ {
		plan.Plan = append(plan.Plan, DayPlan{MealSlots: []SlotPlan{
			{SlotTitle: "Post-Dinner", Items: []PlanItem{{Name: "Tea", Quantity: "1 cup"}}},
		}})
	}

	s := ApplyGeneratedPlan(plan)
	require.Len(t, s, 7)
	for _, day := range Days {
		require.Len(t, s[day].Meals[5].Meals, 1, day)
	}
}

func TestApplyGeneratedPlanSanitizesNutrition(t *testing.T) {
	plan := GeneratedPlan{Plan: []DayPlan{
		{MealSlots: []SlotPlan{{SlotTitle: "Breakfast", Items: []PlanItem{
			{Name: "Mystery", NutritionFacts: NutritionFacts{Calories: -50, Protein: 3}},
		}}}},
	}}

	s := ApplyGeneratedPlan(plan)
	assert.Equal(t, NutritionFacts{Protein: 3}, s["Sunday"].Meals[0].Meals[0].NutritionFacts)
}
