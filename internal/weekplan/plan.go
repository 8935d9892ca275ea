package weekplan

// ApplyGeneratedPlan rebuilds the schedule from defaults and overlays the
// plan. Plan days map onto canonical days by position, not by their label;
// days past the seventh are ignored and missing days stay empty. Within a
// day, a plan slot replaces the items of the default slot with the exact
// same title. Titles with no matching slot are dropped.
func ApplyGeneratedPlan(plan GeneratedPlan) WeekSchedule {
	s := BuildDefaultSchedule()

	for dayIdx, dayPlan := range plan.Plan {
		if dayIdx >= len(Days) {
			break
		}
		day := Days[dayIdx]
		data := s[day]

		for _, slotPlan := range dayPlan.MealSlots {
			slotIdx := findSlotByTitle(data, slotPlan.SlotTitle)
			if slotIdx < 0 {
				continue
			}
			items := make([]FoodItem, 0, len(slotPlan.Items))
			for _, it := range slotPlan.Items {
				items = append(items, FoodItem{
					ID:             newID(),
					Name:           it.Name,
					Quantity:       it.Quantity,
					NutritionFacts: it.NutritionFacts.Sanitize(),
				})
			}
			slot := data.Meals[slotIdx]
			slot.Meals = items
			data = withSlot(data, slotIdx, slot)
		}

		s[day] = data
	}

	return s
}

func findSlotByTitle(day DayData, title string) int {
	for i, slot := range day.Meals {
		if slot.Title == title {
			return i
		}
	}
	return -1
}
