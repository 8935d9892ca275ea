package weekplan

import (
	"encoding/json"
	"strings"

	"github.com/google/uuid"
)

// newID is swapped in tests that need predictable ids.
var newID = uuid.NewString

// BuildDefaultSchedule returns a schedule with every canonical day, no
// exercises, and one empty default slot per canonical slot title.
func BuildDefaultSchedule() WeekSchedule {
	s := make(WeekSchedule, len(Days))
	for _, day := range Days {
		s[day] = defaultDay()
	}
	return s
}

func defaultDay() DayData {
	slots := make([]MealSlot, 0, len(DefaultSlotTitles))
	for _, title := range DefaultSlotTitles {
		slots = append(slots, MealSlot{
			ID:        newID(),
			Title:     title,
			Meals:     []FoodItem{},
			IsDefault: true,
		})
	}
	return DayData{Exercises: []Exercise{}, Meals: slots}
}

// CanonicalDay resolves a day name case-insensitively.
func CanonicalDay(name string) (string, bool) {
	name = strings.TrimSpace(name)
	for _, day := range Days {
		if strings.EqualFold(day, name) {
			return day, true
		}
	}
	return "", false
}

// Aggregate sums nutrition facts field by field. No input yields zeros.
func Aggregate(items ...NutritionFacts) NutritionFacts {
	var total NutritionFacts
	for _, n := range items {
		total.Calories += n.Calories
		total.Protein += n.Protein
		total.Carbs += n.Carbs
		total.Fat += n.Fat
	}
	return total
}

func SlotTotals(slot MealSlot) NutritionFacts {
	facts := make([]NutritionFacts, 0, len(slot.Meals))
	for _, item := range slot.Meals {
		facts = append(facts, item.NutritionFacts)
	}
	return Aggregate(facts...)
}

func DayTotals(day DayData) NutritionFacts {
	facts := make([]NutritionFacts, 0, len(day.Meals))
	for _, slot := range day.Meals {
		facts = append(facts, SlotTotals(slot))
	}
	return Aggregate(facts...)
}

func WeekTotals(s WeekSchedule) NutritionFacts {
	facts := make([]NutritionFacts, 0, len(Days))
	for _, day := range Days {
		facts = append(facts, DayTotals(s[day]))
	}
	return Aggregate(facts...)
}

// ValidateLoadedSchedule reports whether raw JSON is an acceptable persisted
// schedule. The first canonical day must carry a non-empty slot list whose
// first slot has a list of items, and exactly the canonical days must be
// present. Nothing is repaired: any other shape is rejected.
func ValidateLoadedSchedule(raw []byte) bool {
	var days map[string]json.RawMessage
	if err := json.Unmarshal(raw, &days); err != nil || days == nil {
		return false
	}

	var first struct {
		Meals []json.RawMessage `json:"meals"`
	}
	firstRaw, ok := days[Days[0]]
	if !ok || json.Unmarshal(firstRaw, &first) != nil || len(first.Meals) == 0 {
		return false
	}

	var slot map[string]json.RawMessage
	if err := json.Unmarshal(first.Meals[0], &slot); err != nil {
		return false
	}
	items, ok := slot["meals"]
	if !ok || !isJSONArray(items) {
		return false
	}

	if len(days) != len(Days) {
		return false
	}
	for _, day := range Days {
		if _, ok := days[day]; !ok {
			return false
		}
	}

	var decoded WeekSchedule
	return json.Unmarshal(raw, &decoded) == nil
}

// DecodeSchedule validates and decodes a persisted schedule. Missing lists
// decode as empty and stored nutrition is sanitized.
func DecodeSchedule(raw []byte) (WeekSchedule, bool) {
	if !ValidateLoadedSchedule(raw) {
		return nil, false
	}
	var s WeekSchedule
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, false
	}

	for day, data := range s {
		if data.Exercises == nil {
			data.Exercises = []Exercise{}
		}
		if data.Meals == nil {
			data.Meals = []MealSlot{}
		}
		for i := range data.Meals {
			if data.Meals[i].Meals == nil {
				data.Meals[i].Meals = []FoodItem{}
			}
			for j := range data.Meals[i].Meals {
				item := &data.Meals[i].Meals[j]
				item.NutritionFacts = item.NutritionFacts.Sanitize()
			}
		}
		s[day] = data
	}
	return s, true
}

func isJSONArray(raw json.RawMessage) bool {
	trimmed := strings.TrimSpace(string(raw))
	return strings.HasPrefix(trimmed, "[")
}

// FindSlot returns the index of the slot with the given id in a day, or -1.
func FindSlot(day DayData, slotID string) int {
	for i, slot := range day.Meals {
		if slot.ID == slotID {
			return i
		}
	}
	return -1
}

// FindExercise returns the exercise with the given id in a day.
func FindExercise(s WeekSchedule, day, exerciseID string) (Exercise, bool) {
	data, ok := s[day]
	if !ok {
		return Exercise{}, false
	}
	for _, ex := range data.Exercises {
		if ex.ID == exerciseID {
			return ex, true
		}
	}
	return Exercise{}, false
}

// FindMealItem returns the food item with the given id in a slot.
func FindMealItem(s WeekSchedule, day, slotID, itemID string) (FoodItem, bool) {
	data, ok := s[day]
	if !ok {
		return FoodItem{}, false
	}
	idx := FindSlot(data, slotID)
	if idx < 0 {
		return FoodItem{}, false
	}
	for _, item := range data.Meals[idx].Meals {
		if item.ID == itemID {
			return item, true
		}
	}
	return FoodItem{}, false
}
