package weekplan

import "strings"

// DaySummary is the per-day analytics row. MissingData marks a day whose
// totals undercount because a named item has no calories, usually one whose
// nutrition lookup fell back to manual entry.
type DaySummary struct {
	Day             string         `json:"day"`
	Nutrition       NutritionFacts `json:"nutrition"`
	ExerciseCount   int            `json:"exercise_count"`
	ExerciseMinutes int            `json:"exercise_minutes"`
	MissingData     bool           `json:"missing_data"`
}

// WeekSummary aggregates nutrition and exercise volume over the week.
type WeekSummary struct {
	Days            []DaySummary   `json:"days"`
	Nutrition       NutritionFacts `json:"nutrition"`
	ExerciseCount   int            `json:"exercise_count"`
	ExerciseMinutes int            `json:"exercise_minutes"`
}

func Summarize(s WeekSchedule) WeekSummary {
	summary := WeekSummary{Days: make([]DaySummary, 0, len(Days))}
	dayFacts := make([]NutritionFacts, 0, len(Days))

	for _, day := range Days {
		data := s[day]
		minutes := 0
		for _, ex := range data.Exercises {
			minutes += leadingInt(ex.Duration)
		}
		row := DaySummary{
			Day:             day,
			Nutrition:       DayTotals(data),
			ExerciseCount:   len(data.Exercises),
			ExerciseMinutes: minutes,
			MissingData:     missingCalories(data),
		}
		summary.Days = append(summary.Days, row)
		dayFacts = append(dayFacts, row.Nutrition)
		summary.ExerciseCount += row.ExerciseCount
		summary.ExerciseMinutes += row.ExerciseMinutes
	}

	summary.Nutrition = Aggregate(dayFacts...)
	return summary
}

func missingCalories(d DayData) bool {
	for _, slot := range d.Meals {
		for _, item := range slot.Meals {
			if item.Name != "" && item.Calories == 0 {
				return true
			}
		}
	}
	return false
}

// leadingInt parses an optional sign and the leading decimal digits of s,
// ignoring leading whitespace. "45 min" is 45; text without digits is 0.
func leadingInt(s string) int {
	s = strings.TrimLeft(s, " \t\n\r")
	neg := false
	if s != "" && (s[0] == '-' || s[0] == '+') {
		neg = s[0] == '-'
		s = s[1:]
	}
	n := 0
	for i := 0; i < len(s) && s[i] >= '0' && s[i] <= '9'; i++ {
		n = n*10 + int(s[i]-'0')
		if n > 1<<30 {
			break
		}
	}
	if neg {
		return -n
	}
	return n
}
