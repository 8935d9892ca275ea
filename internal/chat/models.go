package chat

import (
	"time"

	"github.com/fdg312/fitplanner/internal/ai"
)

type ChatMessageDTO struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

type SendMessageRequest struct {
	Content string `json:"content"`
}

type SendMessageResponse struct {
	UserMessage      ChatMessageDTO `json:"user_message"`
	AssistantMessage ChatMessageDTO `json:"assistant_message"`
}

type ListMessagesResponse struct {
	Messages []ChatMessageDTO `json:"messages"`
}

type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// storedMessage is one history entry; the provider sees it as ai.ChatMessage.
type storedMessage struct {
	ID string
	ai.ChatMessage
}

func messageToDTO(msg storedMessage) ChatMessageDTO {
	return ChatMessageDTO{
		ID:        msg.ID,
		Role:      msg.Role,
		Content:   msg.Content,
		CreatedAt: msg.CreatedAt,
	}
}
