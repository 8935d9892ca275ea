package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fdg312/fitplanner/internal/weekplan"
)

// ErrNoResult is the single "no result" outcome callers test for. Every
// provider failure wraps it.
var ErrNoResult = errors.New("ai: no result")

var (
	// ErrInvalidResponse: the model answered but the payload did not match the schema.
	ErrInvalidResponse = fmt.Errorf("%w: invalid response", ErrNoResult)
	// ErrProviderFailed: transport error, non-2xx status or unreadable envelope.
	ErrProviderFailed = fmt.Errorf("%w: provider failed", ErrNoResult)
)

// Provider is the AI plan bridge. Each call is a single attempt; there is
// no retry and no caching.
type Provider interface {
	// GenerateMealPlan returns a 7-day plan for the profile, honoring the
	// free-text preference when non-empty.
	GenerateMealPlan(ctx context.Context, profile weekplan.Profile, preference string) (weekplan.GeneratedPlan, error)

	// EstimateNutrition returns the macros of quantity of foodName.
	EstimateNutrition(ctx context.Context, foodName, quantity string) (weekplan.NutritionFacts, error)

	// Reply answers the last user message of an assistant conversation.
	Reply(ctx context.Context, req ReplyRequest) (ReplyResponse, error)
}

type ChatMessage struct {
	Role      string
	Content   string
	CreatedAt time.Time
}

type ReplyRequest struct {
	Messages []ChatMessage
	Profile  weekplan.Profile
}

type ReplyResponse struct {
	AssistantText string
}
