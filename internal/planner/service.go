package planner

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/fdg312/fitplanner/internal/ai"
	"github.com/fdg312/fitplanner/internal/persist"
	"github.com/fdg312/fitplanner/internal/weekplan"
)

var (
	ErrUnknownDay      = errors.New("unknown day")
	ErrInvalidRequest  = errors.New("invalid request")
	ErrNotFound        = errors.New("not found")
	ErrRequestInFlight = errors.New("request already in flight")
	ErrNoGeneratedPlan = errors.New("no generated plan")
	ErrPlanUnavailable = errors.New("meal plan unavailable")
	ErrStaleResult     = errors.New("result discarded: plan was cleared")
)

// Nutrition estimate sources.
const (
	SourceAI     = "ai"
	SourceManual = "manual"
)

type Logger interface {
	Printf(format string, v ...any)
}

// NutritionEstimate is the result of a nutrition lookup. Source is
// SourceManual when the provider gave no result and the caller should
// fall back to manual entry.
type NutritionEstimate struct {
	Nutrition weekplan.NutritionFacts `json:"nutrition"`
	Source    string                  `json:"source"`
}

// Service owns the authoritative schedule, profile and latest generated
// plan. Every successful mutation is written through to the repository;
// write failures are logged by the repository and never surface here.
type Service struct {
	repo     *persist.Repository
	provider ai.Provider
	logger   Logger

	mu        sync.Mutex
	schedule  weekplan.WeekSchedule
	profile   weekplan.Profile
	plan      *weekplan.GeneratedPlan
	planEpoch uint64

	generating atomic.Bool
	estimating atomic.Bool
}

// NewService loads the persisted state once; from then on the in-memory
// copy is authoritative.
func NewService(ctx context.Context, repo *persist.Repository, provider ai.Provider, logger Logger) *Service {
	return &Service{
		repo:     repo,
		provider: provider,
		logger:   logger,
		schedule: repo.LoadSchedule(ctx),
		profile:  repo.LoadProfile(ctx),
		plan:     repo.LoadGeneratedPlan(ctx),
	}
}

func (s *Service) Schedule() weekplan.WeekSchedule {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.schedule
}

func (s *Service) Summary() weekplan.WeekSummary {
	return weekplan.Summarize(s.Schedule())
}

// ResetSchedule replaces the schedule with a fresh default. Profile and
// generated plan are left alone.
func (s *Service) ResetSchedule(ctx context.Context) weekplan.WeekSchedule {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.schedule = s.repo.ResetSchedule(ctx)
	s.logf("INFO planner: schedule reset")
	return s.schedule
}

func (s *Service) AddExercise(ctx context.Context, day string, in weekplan.ExerciseInput) (weekplan.Exercise, error) {
	day, in, err := validateExercise(day, in)
	if err != nil {
		return weekplan.Exercise{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	next := weekplan.AddOrUpdateExercise(s.schedule, day, in, "")
	exercises := next[day].Exercises
	s.commit(ctx, next)
	return exercises[len(exercises)-1], nil
}

func (s *Service) UpdateExercise(ctx context.Context, day, id string, in weekplan.ExerciseInput) (weekplan.Exercise, error) {
	day, in, err := validateExercise(day, in)
	if err != nil {
		return weekplan.Exercise{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := weekplan.FindExercise(s.schedule, day, id); !ok {
		return weekplan.Exercise{}, fmt.Errorf("exercise %s: %w", id, ErrNotFound)
	}
	next := weekplan.AddOrUpdateExercise(s.schedule, day, in, id)
	s.commit(ctx, next)
	ex, _ := weekplan.FindExercise(next, day, id)
	return ex, nil
}

// DeleteExercise is idempotent: deleting an absent id succeeds without a write.
func (s *Service) DeleteExercise(ctx context.Context, day, id string) error {
	day, ok := weekplan.CanonicalDay(day)
	if !ok {
		return ErrUnknownDay
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := weekplan.FindExercise(s.schedule, day, id); !ok {
		return nil
	}
	s.commit(ctx, weekplan.DeleteExercise(s.schedule, day, id))
	return nil
}

func (s *Service) AddMealItem(ctx context.Context, day, slotID string, in weekplan.FoodItemInput) (weekplan.FoodItem, error) {
	day, in, err := validateFoodItem(day, in)
	if err != nil {
		return weekplan.FoodItem{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	idx := weekplan.FindSlot(s.schedule[day], slotID)
	if idx < 0 {
		return weekplan.FoodItem{}, fmt.Errorf("slot %s: %w", slotID, ErrNotFound)
	}
	next := weekplan.AddOrUpdateMealItem(s.schedule, day, slotID, in, "")
	items := next[day].Meals[idx].Meals
	s.commit(ctx, next)
	return items[len(items)-1], nil
}

func (s *Service) UpdateMealItem(ctx context.Context, day, slotID, id string, in weekplan.FoodItemInput) (weekplan.FoodItem, error) {
	day, in, err := validateFoodItem(day, in)
	if err != nil {
		return weekplan.FoodItem{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := weekplan.FindMealItem(s.schedule, day, slotID, id); !ok {
		return weekplan.FoodItem{}, fmt.Errorf("meal item %s: %w", id, ErrNotFound)
	}
	next := weekplan.AddOrUpdateMealItem(s.schedule, day, slotID, in, id)
	s.commit(ctx, next)
	item, _ := weekplan.FindMealItem(next, day, slotID, id)
	return item, nil
}

// DeleteMealItem is idempotent like DeleteExercise.
func (s *Service) DeleteMealItem(ctx context.Context, day, slotID, id string) error {
	day, ok := weekplan.CanonicalDay(day)
	if !ok {
		return ErrUnknownDay
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := weekplan.FindMealItem(s.schedule, day, slotID, id); !ok {
		return nil
	}
	s.commit(ctx, weekplan.DeleteMealItem(s.schedule, day, slotID, id))
	return nil
}

// MoveMealItem applies a move. An unresolvable source or target, or a move
// onto the same slot, is a no-op reported through the moved result.
func (s *Service) MoveMealItem(ctx context.Context, req MoveRequest) (weekplan.WeekSchedule, bool, error) {
	sourceDay, ok := weekplan.CanonicalDay(req.SourceDay)
	if !ok {
		return nil, false, ErrUnknownDay
	}
	targetDay, ok := weekplan.CanonicalDay(req.TargetDay)
	if !ok {
		return nil, false, ErrUnknownDay
	}
	if strings.TrimSpace(req.ItemID) == "" {
		return nil, false, fmt.Errorf("%w: itemId is required", ErrInvalidRequest)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	next, moved := weekplan.MoveMealItem(s.schedule, sourceDay, req.SourceSlotID, targetDay, req.TargetSlotID, req.ItemID)
	if !moved {
		s.logf("INFO planner: move skipped item=%s from=%s/%s to=%s/%s", req.ItemID, sourceDay, req.SourceSlotID, targetDay, req.TargetSlotID)
		return s.schedule, false, nil
	}
	s.commit(ctx, next)
	return next, true, nil
}

func (s *Service) Profile() weekplan.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile
}

func (s *Service) UpdateProfile(ctx context.Context, p weekplan.Profile) (weekplan.Profile, error) {
	measures := []struct {
		name string
		v    float64
	}{{"age", p.Age}, {"height", p.Height}, {"weight", p.Weight}}
	for _, m := range measures {
		if math.IsNaN(m.v) || math.IsInf(m.v, 0) || m.v <= 0 {
			return weekplan.Profile{}, fmt.Errorf("%w: %s must be a positive number", ErrInvalidRequest, m.name)
		}
	}
	goal, ok := weekplan.NormalizeGoal(p.Goal)
	if !ok {
		return weekplan.Profile{}, fmt.Errorf("%w: goal must be one of reduce, maintain, gain", ErrInvalidRequest)
	}
	p.Goal = goal

	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile = p
	s.repo.SaveProfile(ctx, p)
	return p, nil
}

func (s *Service) GeneratedPlan() (*weekplan.GeneratedPlan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.plan == nil {
		return nil, ErrNoGeneratedPlan
	}
	return s.plan, nil
}

// ClearGeneratedPlan removes the stored plan. A generation still in
// flight will have its result discarded.
func (s *Service) ClearGeneratedPlan(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.plan = nil
	s.planEpoch++
	s.repo.SaveGeneratedPlan(ctx, nil)
}

// GeneratePlan asks the provider for a 7-day plan for the current profile.
// Only one generation runs at a time. On failure the previously stored
// plan is kept.
func (s *Service) GeneratePlan(ctx context.Context, preference string) (*weekplan.GeneratedPlan, error) {
	if !s.generating.CompareAndSwap(false, true) {
		return nil, ErrRequestInFlight
	}
	defer s.generating.Store(false)

	s.mu.Lock()
	profile := s.profile
	epoch := s.planEpoch
	s.mu.Unlock()

	plan, err := s.provider.GenerateMealPlan(ctx, profile, preference)
	if err != nil {
		s.logf("WARN planner: generate_plan failed err=%q", err.Error())
		return nil, fmt.Errorf("%w: %w", ErrPlanUnavailable, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.planEpoch != epoch {
		s.logf("INFO planner: generate_plan result discarded, plan cleared meanwhile")
		return nil, ErrStaleResult
	}
	s.plan = &plan
	s.repo.SaveGeneratedPlan(ctx, s.plan)
	s.logf("INFO planner: generate_plan ok days=%d", len(plan.Plan))
	return s.plan, nil
}

// ApplyGeneratedPlan rebuilds the schedule from the stored plan. Any
// manual exercises and meals are discarded.
func (s *Service) ApplyGeneratedPlan(ctx context.Context) (weekplan.WeekSchedule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.plan == nil {
		return nil, ErrNoGeneratedPlan
	}
	next := weekplan.ApplyGeneratedPlan(*s.plan)
	s.commit(ctx, next)
	return next, nil
}

// EstimateNutrition looks up macros for a food. A provider failure is not
// an error: the estimate comes back zeroed with SourceManual.
func (s *Service) EstimateNutrition(ctx context.Context, foodName, quantity string) (NutritionEstimate, error) {
	foodName = strings.TrimSpace(foodName)
	if foodName == "" {
		return NutritionEstimate{}, fmt.Errorf("%w: foodName is required", ErrInvalidRequest)
	}
	if !s.estimating.CompareAndSwap(false, true) {
		return NutritionEstimate{}, ErrRequestInFlight
	}
	defer s.estimating.Store(false)

	facts, err := s.provider.EstimateNutrition(ctx, foodName, strings.TrimSpace(quantity))
	if err != nil {
		s.logf("WARN planner: estimate_nutrition failed food=%q err=%q", foodName, err.Error())
		return NutritionEstimate{Source: SourceManual}, nil
	}
	return NutritionEstimate{Nutrition: facts.Sanitize(), Source: SourceAI}, nil
}

// commit must be called with mu held.
func (s *Service) commit(ctx context.Context, next weekplan.WeekSchedule) {
	s.schedule = next
	s.repo.SaveSchedule(ctx, next)
}

func (s *Service) logf(format string, v ...any) {
	if s.logger != nil {
		s.logger.Printf(format, v...)
	}
}

func validateExercise(day string, in weekplan.ExerciseInput) (string, weekplan.ExerciseInput, error) {
	canonical, ok := weekplan.CanonicalDay(day)
	if !ok {
		return "", in, ErrUnknownDay
	}
	in.Name = strings.TrimSpace(in.Name)
	in.Duration = strings.TrimSpace(in.Duration)
	in.SetsReps = strings.TrimSpace(in.SetsReps)
	if in.Name == "" {
		return "", in, fmt.Errorf("%w: name is required", ErrInvalidRequest)
	}
	return canonical, in, nil
}

func validateFoodItem(day string, in weekplan.FoodItemInput) (string, weekplan.FoodItemInput, error) {
	canonical, ok := weekplan.CanonicalDay(day)
	if !ok {
		return "", in, ErrUnknownDay
	}
	in.Name = strings.TrimSpace(in.Name)
	in.Quantity = strings.TrimSpace(in.Quantity)
	if in.Name == "" {
		return "", in, fmt.Errorf("%w: name is required", ErrInvalidRequest)
	}
	in.NutritionFacts = in.NutritionFacts.Sanitize()
	return canonical, in, nil
}
