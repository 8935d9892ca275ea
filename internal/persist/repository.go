package persist

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"math"

	"github.com/fdg312/fitplanner/internal/storage"
	"github.com/fdg312/fitplanner/internal/weekplan"
)

// Storage keys. The schedule key carries a version suffix: data written
// under older layouts is never read back.
const (
	KeySchedule      = "fitnessPlannerWeekData_v2"
	KeyProfile       = "fitnessPlannerProfile"
	// Written as {"plan":[...]}. Older writers stored the bare day array
	// under the same key; LoadGeneratedPlan reads both.
	KeyGeneratedPlan = "fitnessPlannerGeneratedPlan"
)

type Logger interface {
	Printf(format string, v ...any)
}

// Repository stores the schedule, profile and latest generated plan as
// three JSON documents. Loads never fail: missing or unreadable data
// yields defaults. Write errors are logged and swallowed.
type Repository struct {
	kv     storage.KVStore
	logger Logger
}

func NewRepository(kv storage.KVStore, logger Logger) *Repository {
	return &Repository{kv: kv, logger: logger}
}

func (r *Repository) LoadSchedule(ctx context.Context) weekplan.WeekSchedule {
	raw, ok := r.read(ctx, KeySchedule)
	if !ok {
		return weekplan.BuildDefaultSchedule()
	}
	s, ok := weekplan.DecodeSchedule(raw)
	if !ok {
		r.logf("WARN persist: key=%s code=invalid_shape, using default schedule", KeySchedule)
		return weekplan.BuildDefaultSchedule()
	}
	return s
}

func (r *Repository) SaveSchedule(ctx context.Context, s weekplan.WeekSchedule) {
	r.write(ctx, KeySchedule, s)
}

// ResetSchedule discards the stored schedule and returns a fresh default.
func (r *Repository) ResetSchedule(ctx context.Context) weekplan.WeekSchedule {
	if err := r.kv.Delete(ctx, KeySchedule); err != nil {
		r.logf("WARN persist: key=%s delete_failed=%q", KeySchedule, err.Error())
	}
	return weekplan.BuildDefaultSchedule()
}

func (r *Repository) LoadProfile(ctx context.Context) weekplan.Profile {
	raw, ok := r.read(ctx, KeyProfile)
	if !ok {
		return weekplan.DefaultProfile()
	}
	var p weekplan.Profile
	if err := json.Unmarshal(raw, &p); err != nil {
		r.logf("WARN persist: key=%s parse_failed=%q, using default profile", KeyProfile, err.Error())
		return weekplan.DefaultProfile()
	}
	goal, ok := weekplan.NormalizeGoal(p.Goal)
	if !ok {
		goal = weekplan.GoalMaintain
	}
	p.Goal = goal
	if !validMeasure(p.Age) || !validMeasure(p.Height) || !validMeasure(p.Weight) {
		def := weekplan.DefaultProfile()
		def.Goal = goal
		return def
	}
	return p
}

func (r *Repository) SaveProfile(ctx context.Context, p weekplan.Profile) {
	r.write(ctx, KeyProfile, p)
}

// LoadGeneratedPlan returns nil when no plan is stored.
func (r *Repository) LoadGeneratedPlan(ctx context.Context) *weekplan.GeneratedPlan {
	raw, ok := r.read(ctx, KeyGeneratedPlan)
	if !ok {
		return nil
	}
	var plan weekplan.GeneratedPlan
	var err error
	if trimmed := bytes.TrimLeft(raw, " \t\r\n"); len(trimmed) > 0 && trimmed[0] == '[' {
		err = json.Unmarshal(trimmed, &plan.Plan)
	} else {
		err = json.Unmarshal(raw, &plan)
	}
	if err != nil || plan.Plan == nil {
		r.logf("WARN persist: key=%s code=invalid_shape, ignoring stored plan", KeyGeneratedPlan)
		return nil
	}
	return &plan
}

// SaveGeneratedPlan stores plan, or removes the key when plan is nil.
func (r *Repository) SaveGeneratedPlan(ctx context.Context, plan *weekplan.GeneratedPlan) {
	if plan == nil {
		if err := r.kv.Delete(ctx, KeyGeneratedPlan); err != nil {
			r.logf("WARN persist: key=%s delete_failed=%q", KeyGeneratedPlan, err.Error())
		}
		return
	}
	r.write(ctx, KeyGeneratedPlan, plan)
}

func (r *Repository) read(ctx context.Context, key string) ([]byte, bool) {
	raw, err := r.kv.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			r.logf("WARN persist: key=%s read_failed=%q", key, err.Error())
		}
		return nil, false
	}
	return raw, true
}

func (r *Repository) write(ctx context.Context, key string, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		r.logf("WARN persist: key=%s encode_failed=%q", key, err.Error())
		return
	}
	if err := r.kv.Set(ctx, key, raw); err != nil {
		r.logf("WARN persist: key=%s write_failed=%q", key, err.Error())
	}
}

func (r *Repository) logf(format string, v ...any) {
	if r.logger == nil {
		return
	}
	r.logger.Printf(format, v...)
}

func validMeasure(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
