package api

import (
	"time"

	"github.com/nulzo/model-radar/internal/core/domain"
)

type ChatResponse struct {
	ID      string         `json:"id"`
	Choices []Choice       `json:"choices"`
	Model   string         `json:"model"`
	Usage   *ResponseUsage `json:"usage,omitempty"`
}

type Choice struct {
	Index        int          `json:"index"`
	Message      *ChatMessage `json:"message,omitempty"`
	FinishReason string       `json:"finish_reason"`
}

type ResponseUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Content returns the text of the first choice, or "" when absent.
func (r *ChatResponse) Content() string {
	if r == nil || len(r.Choices) == 0 || r.Choices[0].Message == nil {
		return ""
	}
	return r.Choices[0].Message.Content
}

// ListResponse wraps a snapshot read.
type ListResponse[T any] struct {
	Object      string    `json:"object"`
	Data        []T       `json:"data"`
	GeneratedAt time.Time `json:"generated_at"`
}

// DealsResponse is returned by GET /v1/deals.
type DealsResponse struct {
	Thresholds any          `json:"thresholds"`
	Deals      domain.Deals `json:"deals"`
}

// RunAccepted acknowledges a pipeline run started in the background.
type RunAccepted struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// ProviderInfo is the public view of a configured provider. Keys are never exposed.
type ProviderInfo struct {
	Name            string              `json:"name"`
	Type            domain.ProviderType `json:"type"`
	APIBase         string              `json:"api_base"`
	Local           bool                `json:"local"`
	HasKey          bool                `json:"has_key"`
	ModelsSuggested []string            `json:"models_suggested"`
}
