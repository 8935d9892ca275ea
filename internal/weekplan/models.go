package weekplan

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"
)

// Days are the canonical weekday names, in schedule order.
var Days = []string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

// DefaultSlotTitles are the meal slots every day is created with.
var DefaultSlotTitles = []string{"Breakfast", "Post-Breakfast", "Lunch", "Post-Lunch", "Dinner", "Post-Dinner"}

const (
	GoalReduce   = "reduce"
	GoalMaintain = "maintain"
	GoalGain     = "gain"
)

// NutritionFacts is embedded by value wherever nutrition is recorded.
type NutritionFacts struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

// Sanitize coerces NaN, infinities and negative values to 0.
func (n NutritionFacts) Sanitize() NutritionFacts {
	return NutritionFacts{
		Calories: clean(n.Calories),
		Protein:  clean(n.Protein),
		Carbs:    clean(n.Carbs),
		Fat:      clean(n.Fat),
	}
}

func clean(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

type FoodItem struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Quantity string `json:"quantity"`
	NutritionFacts
}

type MealSlot struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Meals     []FoodItem `json:"meals"`
	IsDefault bool       `json:"isDefault"`
}

type Exercise struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Duration string `json:"duration"`
	SetsReps string `json:"setsReps"`
}

type DayData struct {
	Exercises []Exercise `json:"exercises"`
	Meals     []MealSlot `json:"meals"`
}

// WeekSchedule maps a canonical day name to its data. Values are treated as
// immutable: mutation functions return a new schedule sharing untouched days.
type WeekSchedule map[string]DayData

// MarshalJSON writes days in canonical order instead of Go's sorted map order.
func (s WeekSchedule) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	for _, day := range Days {
		data, ok := s[day]
		if !ok {
			continue
		}
		if !first {
			buf.WriteByte(',')
		}
		first = false
		key, err := json.Marshal(day)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(data)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Profile is the single per-installation user profile.
type Profile struct {
	Age    float64 `json:"age"`
	Height float64 `json:"height"`
	Weight float64 `json:"weight"`
	Goal   string  `json:"goal"`
}

func DefaultProfile() Profile {
	return Profile{Age: 25, Height: 175, Weight: 70, Goal: GoalMaintain}
}

// NormalizeGoal maps accepted goal spellings to the canonical value.
// The second result is false for unknown goals.
func NormalizeGoal(goal string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(goal)) {
	case GoalReduce, "lose":
		return GoalReduce, true
	case GoalMaintain:
		return GoalMaintain, true
	case GoalGain:
		return GoalGain, true
	default:
		return "", false
	}
}

// GeneratedPlan is a proposed 7-day meal structure, kept apart from the
// live schedule until applied.
type GeneratedPlan struct {
	Plan []DayPlan `json:"plan"`
}

type DayPlan struct {
	Day       string     `json:"day"`
	MealSlots []SlotPlan `json:"mealSlots"`
}

type SlotPlan struct {
	SlotTitle string     `json:"slotTitle"`
	Items     []PlanItem `json:"items"`
}

type PlanItem struct {
	Name     string `json:"name"`
	Quantity string `json:"quantity"`
	NutritionFacts
}

// ExerciseInput carries the user-editable exercise fields.
type ExerciseInput struct {
	Name     string `json:"name"`
	Duration string `json:"duration"`
	SetsReps string `json:"setsReps"`
}

// FoodItemInput carries the user-editable food item fields.
type FoodItemInput struct {
	Name     string `json:"name"`
	Quantity string `json:"quantity"`
	NutritionFacts
}
