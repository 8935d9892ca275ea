package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/fdg312/fitplanner/internal/config"
	"github.com/fdg312/fitplanner/internal/weekplan"
)

type OpenAIProvider struct {
	apiKey      string
	model       string
	baseURL     string
	maxTokens   int
	temperature float64
	httpClient  *http.Client
}

// NewOpenAIProvider reads the key and model from cfg once. A zero
// AITimeoutSeconds leaves the client without a timeout; request contexts
// still apply.
func NewOpenAIProvider(cfg *config.Config) *OpenAIProvider {
	client := &http.Client{}
	if cfg.AITimeoutSeconds > 0 {
		client.Timeout = time.Duration(cfg.AITimeoutSeconds) * time.Second
	}

	baseURL := strings.TrimRight(cfg.OpenAIBaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}

	return &OpenAIProvider{
		apiKey:      cfg.OpenAIAPIKey,
		model:       cfg.OpenAIModel,
		baseURL:     baseURL,
		maxTokens:   cfg.AIMaxOutputTokens,
		temperature: cfg.AITemperature,
		httpClient:  client,
	}
}

func (p *OpenAIProvider) GenerateMealPlan(ctx context.Context, profile weekplan.Profile, preference string) (weekplan.GeneratedPlan, error) {
	content, err := p.complete(ctx, []chatMessageRequest{
		{Role: "user", Content: mealPlanPrompt(profile, preference)},
	}, &responseFormat{
		Type:       "json_schema",
		JSONSchema: &jsonSchemaSpec{Name: "weekly_meal_plan", Strict: true, Schema: mealPlanSchema()},
	})
	if err != nil {
		return weekplan.GeneratedPlan{}, err
	}
	return parseMealPlan(content)
}

func (p *OpenAIProvider) EstimateNutrition(ctx context.Context, foodName, quantity string) (weekplan.NutritionFacts, error) {
	content, err := p.complete(ctx, []chatMessageRequest{
		{Role: "user", Content: nutritionPrompt(foodName, quantity)},
	}, &responseFormat{
		Type:       "json_schema",
		JSONSchema: &jsonSchemaSpec{Name: "nutrition_facts", Strict: true, Schema: nutritionSchema()},
	})
	if err != nil {
		return weekplan.NutritionFacts{}, err
	}
	return parseNutrition(content)
}

func (p *OpenAIProvider) Reply(ctx context.Context, req ReplyRequest) (ReplyResponse, error) {
	content, err := p.complete(ctx, p.buildMessages(req), nil)
	if err != nil {
		return ReplyResponse{}, err
	}
	if content == "" {
		return ReplyResponse{}, fmt.Errorf("%w: empty reply", ErrInvalidResponse)
	}
	return ReplyResponse{AssistantText: content}, nil
}

func (p *OpenAIProvider) buildMessages(req ReplyRequest) []chatMessageRequest {
	messages := make([]chatMessageRequest, 0, len(req.Messages)+1)
	messages = append(messages, chatMessageRequest{
		Role:    "system",
		Content: systemPrompt(req),
	})
	for _, msg := range req.Messages {
		role := strings.TrimSpace(msg.Role)
		if role == "" {
			continue
		}
		messages = append(messages, chatMessageRequest{
			Role:    role,
			Content: msg.Content,
		})
	}
	return messages
}

// complete performs one chat completions call and returns the trimmed
// content of the first choice.
func (p *OpenAIProvider) complete(ctx context.Context, messages []chatMessageRequest, format *responseFormat) (string, error) {
	requestPayload := chatCompletionsRequest{
		Model:          p.model,
		Temperature:    p.temperature,
		MaxTokens:      p.maxTokens,
		Messages:       messages,
		ResponseFormat: format,
	}

	body, err := json.Marshal(requestPayload)
	if err != nil {
		return "", fmt.Errorf("%w: encode request: %v", ErrProviderFailed, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrProviderFailed, err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrProviderFailed, err)
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: read body: %v", ErrProviderFailed, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: openai request failed with status %d", ErrProviderFailed, resp.StatusCode)
	}

	var parsed chatCompletionsResponse
	if err := json.Unmarshal(responseBody, &parsed); err != nil {
		return "", fmt.Errorf("%w: decode envelope: %v", ErrProviderFailed, err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("%w: openai response does not contain choices", ErrInvalidResponse)
	}

	choice := parsed.Choices[0]
	if choice.Message.Refusal != "" {
		return "", fmt.Errorf("%w: model refused: %s", ErrInvalidResponse, choice.Message.Refusal)
	}
	if choice.FinishReason == "length" {
		return "", fmt.Errorf("%w: output truncated at max tokens", ErrInvalidResponse)
	}

	return strings.TrimSpace(choice.Message.Content), nil
}

type chatCompletionsRequest struct {
	Model          string               `json:"model"`
	Messages       []chatMessageRequest `json:"messages"`
	Temperature    float64              `json:"temperature"`
	MaxTokens      int                  `json:"max_tokens,omitempty"`
	ResponseFormat *responseFormat      `json:"response_format,omitempty"`
}

type chatMessageRequest struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type       string          `json:"type"`
	JSONSchema *jsonSchemaSpec `json:"json_schema,omitempty"`
}

type jsonSchemaSpec struct {
	Name   string         `json:"name"`
	Strict bool           `json:"strict"`
	Schema map[string]any `json:"schema"`
}

type chatCompletionsResponse struct {
	Choices []struct {
		FinishReason string `json:"finish_reason"`
		Message      struct {
			Role    string `json:"role"`
			Content string `json:"content"`
			Refusal string `json:"refusal"`
		} `json:"message"`
	} `json:"choices"`
}
