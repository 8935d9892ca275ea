package planner

import "github.com/fdg312/fitplanner/internal/weekplan"

// MoveRequest identifies an item and its source and target slots.
type MoveRequest struct {
	SourceDay    string `json:"sourceDay"`
	SourceSlotID string `json:"sourceSlotId"`
	TargetDay    string `json:"targetDay"`
	TargetSlotID string `json:"targetSlotId"`
	ItemID       string `json:"itemId"`
}

type MoveResponse struct {
	Moved    bool                  `json:"moved"`
	Schedule weekplan.WeekSchedule `json:"schedule"`
}

type GeneratePlanRequest struct {
	Preference string `json:"preference"`
}

type NutritionEstimateRequest struct {
	FoodName string `json:"foodName"`
	Quantity string `json:"quantity"`
}

// ScheduleResponse wraps the schedule with its week totals.
type ScheduleResponse struct {
	Schedule weekplan.WeekSchedule   `json:"schedule"`
	Totals   weekplan.NutritionFacts `json:"totals"`
}

func newScheduleResponse(s weekplan.WeekSchedule) ScheduleResponse {
	return ScheduleResponse{Schedule: s, Totals: weekplan.WeekTotals(s)}
}
