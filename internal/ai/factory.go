package ai

import (
	"strings"

	"github.com/fdg312/fitplanner/internal/config"
)

const (
	ModeMock   = config.AIModeMock
	ModeOpenAI = config.AIModeOpenAI
)

func NewProvider(cfg *config.Config) Provider {
	mode := strings.ToLower(strings.TrimSpace(cfg.AIMode))
	if mode == "" {
		mode = ModeMock
	}

	switch mode {
	case ModeOpenAI:
		return NewOpenAIProvider(cfg)
	default:
		return NewMockProvider()
	}
}
