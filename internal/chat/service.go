package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/fdg312/fitplanner/internal/ai"
	"github.com/fdg312/fitplanner/internal/weekplan"
	"github.com/google/uuid"
)

var (
	ErrInvalidRequest = errors.New("invalid request")
	ErrAIFailed       = errors.New("ai failed")
)

const fallbackReply = "I could not come up with an answer. Try rephrasing the question."

// ProfileSource supplies the current user profile for each reply.
type ProfileSource interface {
	Profile() weekplan.Profile
}

// Service is a pass-through to the completion provider. History lives in
// memory only and keeps the newest historyLimit messages.
type Service struct {
	provider     ai.Provider
	profiles     ProfileSource
	historyLimit int
	now          func() time.Time

	mu      sync.Mutex
	history []storedMessage
}

func NewService(provider ai.Provider, profiles ProfileSource, historyLimit int) *Service {
	if historyLimit <= 0 {
		historyLimit = 50
	}
	return &Service{
		provider:     provider,
		profiles:     profiles,
		historyLimit: historyLimit,
		now:          time.Now,
	}
}

func (s *Service) ListMessages(limit int) *ListMessagesResponse {
	s.mu.Lock()
	defer s.mu.Unlock()

	limit = normalizeLimit(limit, s.historyLimit)
	start := 0
	if len(s.history) > limit {
		start = len(s.history) - limit
	}
	messages := make([]ChatMessageDTO, 0, len(s.history)-start)
	for _, msg := range s.history[start:] {
		messages = append(messages, messageToDTO(msg))
	}
	return &ListMessagesResponse{Messages: messages}
}

// SendMessage records the user message and asks the provider for a single
// reply. A failed reply leaves the user message in history.
func (s *Service) SendMessage(ctx context.Context, req SendMessageRequest) (*SendMessageResponse, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, ErrInvalidRequest
	}

	userMessage := s.newMessage("user", content)
	s.mu.Lock()
	s.append(userMessage)
	aiMessages := make([]ai.ChatMessage, 0, len(s.history))
	for _, msg := range s.history {
		aiMessages = append(aiMessages, msg.ChatMessage)
	}
	s.mu.Unlock()

	profile := weekplan.DefaultProfile()
	if s.profiles != nil {
		profile = s.profiles.Profile()
	}

	reply, err := s.provider.Reply(ctx, ai.ReplyRequest{
		Messages: aiMessages,
		Profile:  profile,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAIFailed, err)
	}

	assistantText := strings.TrimSpace(reply.AssistantText)
	if assistantText == "" {
		assistantText = fallbackReply
	}

	assistantMessage := s.newMessage("assistant", assistantText)
	s.mu.Lock()
	s.append(assistantMessage)
	s.mu.Unlock()

	return &SendMessageResponse{
		UserMessage:      messageToDTO(userMessage),
		AssistantMessage: messageToDTO(assistantMessage),
	}, nil
}

// ClearHistory drops every stored message.
func (s *Service) ClearHistory() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = nil
}

func (s *Service) newMessage(role, content string) storedMessage {
	return storedMessage{
		ID: uuid.NewString(),
		ChatMessage: ai.ChatMessage{
			Role:      role,
			Content:   content,
			CreatedAt: s.now().UTC(),
		},
	}
}

// append must be called with mu held.
func (s *Service) append(msg storedMessage) {
	s.history = append(s.history, msg)
	if over := len(s.history) - s.historyLimit; over > 0 {
		s.history = append([]storedMessage(nil), s.history[over:]...)
	}
}

func normalizeLimit(limit, ceiling int) int {
	if limit <= 0 || limit > ceiling {
		return ceiling
	}
	return limit
}
