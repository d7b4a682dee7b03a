package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/chatly/chat_management_backend/cache"
	"github.com/chatly/chat_management_backend/models"
	"github.com/sirupsen/logrus"
)

// Supported assistant personas.
const (
	AITypeWayne      = "wayneAI"
	AITypeConsulting = "consultingAI"
)

// Conversation context kept per (room, user): the last N turns only.
const maxContextMessages = 10

type aiPreset struct {
	Model            string
	Temperature      float64
	MaxTokens        int
	PresencePenalty  float64
	FrequencyPenalty float64
	SystemPrompt     string
}

var aiPresets = map[string]aiPreset{
	AITypeWayne: {
		Model:            "gpt-4",
		Temperature:      0.7,
		MaxTokens:        150,
		PresencePenalty:  0.6,
		FrequencyPenalty: 0.5,
		SystemPrompt: "You are Wayne, a friendly and knowledgeable AI assistant. " +
			"You have expertise in various topics and can provide helpful insights. " +
			"Always maintain a professional yet approachable tone.",
	},
	AITypeConsulting: {
		Model:            "gpt-4",
		Temperature:      0.5,
		MaxTokens:        300,
		PresencePenalty:  0.3,
		FrequencyPenalty: 0.3,
		SystemPrompt: "You are a professional business consultant with expertise in " +
			"strategy, management, and problem-solving. " +
			"Provide clear, actionable advice and maintain a formal tone.",
	},
}

// AIService proxies response generation to an OpenAI-compatible completion
// provider. Room AI settings gate and parameterize each call; the engine
// itself never talks to the provider elsewhere.
type AIService struct {
	rooms      *RoomService
	cache      *cache.Client
	httpClient *http.Client
	apiKey     string
	apiURL     string
	log        *logrus.Entry
}

func NewAIService(rooms *RoomService, cacheClient *cache.Client, apiKey, apiURL string) *AIService {
	return &AIService{
		rooms:      rooms,
		cache:      cacheClient,
		httpClient: &http.Client{Timeout: 120 * time.Second},
		apiKey:     apiKey,
		apiURL:     apiURL,
		log:        logrus.WithField("component", "AIService"),
	}
}

// IsAvailable reports whether a provider credential is configured.
func (s *AIService) IsAvailable() bool {
	return s.apiKey != ""
}

type GenerateInput struct {
	RoomID  string
	Message string
}

type GenerateResult struct {
	AIType   string        `json:"ai_type"`
	Response string        `json:"response"`
	Usage    *chatUsage    `json:"usage,omitempty"`
	Context  []chatMessage `json:"context"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model            string        `json:"model"`
	Messages         []chatMessage `json:"messages"`
	Temperature      float64       `json:"temperature,omitempty"`
	MaxTokens        int           `json:"max_tokens,omitempty"`
	PresencePenalty  float64       `json:"presence_penalty,omitempty"`
	FrequencyPenalty float64       `json:"frequency_penalty,omitempty"`
}

type chatUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Usage *chatUsage `json:"usage,omitempty"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// GenerateResponse produces an assistant reply for the caller in a room.
// Authorization follows the room read contract; a room with AI disabled is
// rejected before any provider call.
func (s *AIService) GenerateResponse(ctx context.Context, ident models.Identity, input GenerateInput) (*GenerateResult, error) {
	if strings.TrimSpace(input.Message) == "" {
		return nil, newValidationError("message is required")
	}

	settings, err := s.rooms.GetAISettings(ctx, input.RoomID, ident.UserID)
	if err != nil {
		return nil, err
	}
	if !settings.Enabled {
		return nil, newValidationError("AI is not enabled for this room")
	}

	aiType := settings.AIType
	if aiType == "" {
		aiType = AITypeWayne
	}
	preset, ok := aiPresets[aiType]
	if !ok {
		return nil, newValidationError("invalid AI type")
	}
	if settings.SystemPrompt != "" {
		preset.SystemPrompt = settings.SystemPrompt
	}
	if settings.Temperature > 0 {
		preset.Temperature = settings.Temperature
	}

	contextKey := input.RoomID + ":" + ident.UserID
	var history []chatMessage
	if s.cache != nil {
		s.cache.Get(ctx, cache.KeyAIContext, contextKey, &history)
	}
	history = trimContext(history)

	messages := make([]chatMessage, 0, len(history)+2)
	messages = append(messages, chatMessage{Role: "system", Content: preset.SystemPrompt})
	messages = append(messages, history...)
	messages = append(messages, chatMessage{Role: "user", Content: input.Message})

	reply, usage, err := s.complete(ctx, preset, messages)
	if err != nil {
		s.log.WithError(err).WithField("roomId", input.RoomID).Error("AI response generation failed")
		return nil, newPersistenceError("failed to generate AI response", err)
	}

	history = trimContext(append(history,
		chatMessage{Role: "user", Content: input.Message},
		chatMessage{Role: "assistant", Content: reply},
	))
	if s.cache != nil {
		s.cache.Set(ctx, cache.KeyAIContext, contextKey, history, 0)
	}

	return &GenerateResult{
		AIType:   aiType,
		Response: reply,
		Usage:    usage,
		Context:  history,
	}, nil
}

// ResetContext drops the cached conversation for the caller in a room.
func (s *AIService) ResetContext(ctx context.Context, ident models.Identity, roomID string) error {
	if _, err := s.rooms.GetRoom(ctx, roomID, ident.UserID); err != nil {
		return err
	}
	if s.cache != nil {
		s.cache.Delete(ctx, cache.KeyAIContext, roomID+":"+ident.UserID)
	}
	return nil
}

func (s *AIService) complete(ctx context.Context, preset aiPreset, messages []chatMessage) (string, *chatUsage, error) {
	payload, err := json.Marshal(chatRequest{
		Model:            preset.Model,
		Messages:         messages,
		Temperature:      preset.Temperature,
		MaxTokens:        preset.MaxTokens,
		PresencePenalty:  preset.PresencePenalty,
		FrequencyPenalty: preset.FrequencyPenalty,
	})
	if err != nil {
		return "", nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL, bytes.NewReader(payload))
	if err != nil {
		return "", nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", nil, err
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", nil, fmt.Errorf("invalid provider response: %w", err)
	}
	if parsed.Error != nil {
		return "", nil, fmt.Errorf("provider error: %s", parsed.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return "", nil, fmt.Errorf("provider returned status %d", resp.StatusCode)
	}
	if len(parsed.Choices) == 0 {
		return "", nil, fmt.Errorf("provider returned no choices")
	}
	return parsed.Choices[0].Message.Content, parsed.Usage, nil
}

func trimContext(history []chatMessage) []chatMessage {
	if len(history) > maxContextMessages {
		return history[len(history)-maxContextMessages:]
	}
	return history
}
