package ai

import (
	"fmt"
	"strings"

	"github.com/fdg312/fitplanner/internal/weekplan"
)

const assistantInstruction = "You are a smart assistant and an expert in fitness and nutrition. " +
	"Give helpful, supportive and concise answers. You do not diagnose or replace a doctor."

var goalDescriptions = map[string]string{
	weekplan.GoalReduce:   "lose weight",
	weekplan.GoalMaintain: "maintain weight",
	weekplan.GoalGain:     "gain weight and build muscle",
}

func goalDescription(goal string) string {
	if canonical, ok := weekplan.NormalizeGoal(goal); ok {
		return goalDescriptions[canonical]
	}
	return goalDescriptions[weekplan.GoalMaintain]
}

// systemPrompt is the assistant instruction followed by a snapshot of the
// user's profile. A zero profile adds nothing.
func systemPrompt(req ReplyRequest) string {
	p := req.Profile
	if p.Age <= 0 && p.Height <= 0 && p.Weight <= 0 {
		return assistantInstruction
	}
	return fmt.Sprintf("%s\n\nUser profile: %g years old, %g cm, %g kg. Goal: %s.",
		assistantInstruction, p.Age, p.Height, p.Weight, goalDescription(p.Goal))
}

func mealPlanPrompt(profile weekplan.Profile, preference string) string {
	preference = strings.TrimSpace(preference)
	if preference == "" {
		preference = "no additional preferences"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Create a detailed and varied 7-day meal plan for a person who is %g years old, %g cm tall and weighs %g kg.\n",
		profile.Age, profile.Height, profile.Weight)
	fmt.Fprintf(&b, "Their goal is to %s.\n", goalDescription(profile.Goal))
	fmt.Fprintf(&b, "Also take this request from the user into account: %q\n\n", preference)
	fmt.Fprintf(&b, "Return exactly 7 days, %s through %s, in that order.\n",
		weekplan.Days[0], weekplan.Days[len(weekplan.Days)-1])
	fmt.Fprintf(&b, "For every day, propose meals in these slots, in this order, using these exact titles: %s.\n",
		strings.Join(quoteAll(weekplan.DefaultSlotTitles), ", "))
	b.WriteString("Each slot holds one or more food items. For every item give a name, a suggested quantity ")
	b.WriteString("and an accurate estimate of calories, protein, carbs and fat in grams.\n")
	b.WriteString("Answer with JSON only, matching the provided schema exactly.")
	return b.String()
}

func nutritionPrompt(foodName, quantity string) string {
	return fmt.Sprintf("Calculate the nutrition facts (calories, protein, carbs and fat in grams) of the following food. "+
		"Give the best estimate based on common food databases.\n\nFood: %q\nQuantity: %q\n\n"+
		"Answer with JSON only, matching the provided schema. Do not add any other text.",
		strings.TrimSpace(foodName), strings.TrimSpace(quantity))
}

func quoteAll(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = fmt.Sprintf("%q", v)
	}
	return out
}
