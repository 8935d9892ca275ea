package weekplan

// Mutations never modify their input. Each returns a new WeekSchedule that
// shares every day, slot and item it did not touch with the previous value.
// Unresolvable targets (unknown day, slot or id) return the input unchanged.

// AddOrUpdateExercise appends a new exercise to day, or replaces the fields of
// the exercise with editingID in place when editingID is non-empty.
// Callers must ensure in.Name is non-empty.
func AddOrUpdateExercise(s WeekSchedule, day string, in ExerciseInput, editingID string) WeekSchedule {
	data, ok := s[day]
	if !ok {
		return s
	}

	if editingID == "" {
		exercises := make([]Exercise, len(data.Exercises), len(data.Exercises)+1)
		copy(exercises, data.Exercises)
		exercises = append(exercises, Exercise{
			ID:       newID(),
			Name:     in.Name,
			Duration: in.Duration,
			SetsReps: in.SetsReps,
		})
		data.Exercises = exercises
		return withDay(s, day, data)
	}

	idx := -1
	for i, ex := range data.Exercises {
		if ex.ID == editingID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return s
	}

	exercises := make([]Exercise, len(data.Exercises))
	copy(exercises, data.Exercises)
	exercises[idx] = Exercise{
		ID:       editingID,
		Name:     in.Name,
		Duration: in.Duration,
		SetsReps: in.SetsReps,
	}
	data.Exercises = exercises
	return withDay(s, day, data)
}

// DeleteExercise removes the exercise with exerciseID from day.
func DeleteExercise(s WeekSchedule, day, exerciseID string) WeekSchedule {
	data, ok := s[day]
	if !ok {
		return s
	}

	exercises := make([]Exercise, 0, len(data.Exercises))
	for _, ex := range data.Exercises {
		if ex.ID != exerciseID {
			exercises = append(exercises, ex)
		}
	}
	if len(exercises) == len(data.Exercises) {
		return s
	}
	data.Exercises = exercises
	return withDay(s, day, data)
}

// AddOrUpdateMealItem appends a new item to the slot, or replaces the item
// with editingID in place (keeping its id and position).
func AddOrUpdateMealItem(s WeekSchedule, day, slotID string, in FoodItemInput, editingID string) WeekSchedule {
	data, ok := s[day]
	if !ok {
		return s
	}
	slotIdx := FindSlot(data, slotID)
	if slotIdx < 0 {
		return s
	}
	slot := data.Meals[slotIdx]

	var items []FoodItem
	if editingID == "" {
		items = make([]FoodItem, len(slot.Meals), len(slot.Meals)+1)
		copy(items, slot.Meals)
		items = append(items, FoodItem{
			ID:             newID(),
			Name:           in.Name,
			Quantity:       in.Quantity,
			NutritionFacts: in.NutritionFacts.Sanitize(),
		})
	} else {
		idx := -1
		for i, item := range slot.Meals {
			if item.ID == editingID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return s
		}
		items = make([]FoodItem, len(slot.Meals))
		copy(items, slot.Meals)
		items[idx] = FoodItem{
			ID:             editingID,
			Name:           in.Name,
			Quantity:       in.Quantity,
			NutritionFacts: in.NutritionFacts.Sanitize(),
		}
	}

	slot.Meals = items
	return withDay(s, day, withSlot(data, slotIdx, slot))
}

// DeleteMealItem removes the item with itemID from the slot.
func DeleteMealItem(s WeekSchedule, day, slotID, itemID string) WeekSchedule {
	data, ok := s[day]
	if !ok {
		return s
	}
	slotIdx := FindSlot(data, slotID)
	if slotIdx < 0 {
		return s
	}
	slot := data.Meals[slotIdx]

	items := make([]FoodItem, 0, len(slot.Meals))
	for _, item := range slot.Meals {
		if item.ID != itemID {
			items = append(items, item)
		}
	}
	if len(items) == len(slot.Meals) {
		return s
	}
	slot.Meals = items
	return withDay(s, day, withSlot(data, slotIdx, slot))
}

// MoveMealItem relocates an item to the end of the target slot in one step.
// If the source cannot be resolved, or the target cannot be resolved, or
// source and target are the same slot, the input is returned unchanged and
// moved is false. An item is never dropped.
func MoveMealItem(s WeekSchedule, sourceDay, sourceSlotID, targetDay, targetSlotID, itemID string) (next WeekSchedule, moved bool) {
	if sourceDay == targetDay && sourceSlotID == targetSlotID {
		return s, false
	}

	srcData, ok := s[sourceDay]
	if !ok {
		return s, false
	}
	srcIdx := FindSlot(srcData, sourceSlotID)
	if srcIdx < 0 {
		return s, false
	}
	srcSlot := srcData.Meals[srcIdx]

	itemIdx := -1
	for i, item := range srcSlot.Meals {
		if item.ID == itemID {
			itemIdx = i
			break
		}
	}
	if itemIdx < 0 {
		return s, false
	}
	item := srcSlot.Meals[itemIdx]

	// Resolve the target before detaching so a missing target leaves the
	// item where it was.
	dstData, ok := s[targetDay]
	if !ok {
		return s, false
	}
	dstIdx := FindSlot(dstData, targetSlotID)
	if dstIdx < 0 {
		return s, false
	}

	remaining := make([]FoodItem, 0, len(srcSlot.Meals)-1)
	remaining = append(remaining, srcSlot.Meals[:itemIdx]...)
	remaining = append(remaining, srcSlot.Meals[itemIdx+1:]...)
	srcSlot.Meals = remaining
	srcData = withSlot(srcData, srcIdx, srcSlot)

	next = withDay(s, sourceDay, srcData)

	// Same day: continue from the already-updated day so both edits land.
	dstData = next[targetDay]
	dstSlot := dstData.Meals[dstIdx]
	appended := make([]FoodItem, len(dstSlot.Meals), len(dstSlot.Meals)+1)
	copy(appended, dstSlot.Meals)
	dstSlot.Meals = append(appended, item)
	dstData = withSlot(dstData, dstIdx, dstSlot)

	next[targetDay] = dstData
	return next, true
}

// withDay returns a shallow copy of s with day replaced.
func withDay(s WeekSchedule, day string, data DayData) WeekSchedule {
	next := make(WeekSchedule, len(s))
	for k, v := range s {
		next[k] = v
	}
	next[day] = data
	return next
}

// withSlot returns data with a fresh slot slice whose idx entry is slot.
func withSlot(data DayData, idx int, slot MealSlot) DayData {
	slots := make([]MealSlot, len(data.Meals))
	copy(slots, data.Meals)
	slots[idx] = slot
	data.Meals = slots
	return data
}
