package api

type ChatRequest struct {
	Model     string        `json:"model"`
	Messages  []ChatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens,omitempty"`
	Stream    bool          `json:"stream"`
}

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// UserPrompt builds a single-turn, non-streaming request.
func UserPrompt(model, prompt string, maxTokens int) *ChatRequest {
	return &ChatRequest{
		Model:     model,
		Messages:  []ChatMessage{{Role: "user", Content: prompt}},
		MaxTokens: maxTokens,
		Stream:    false,
	}
}

// RankingsQuery binds the query string of GET /v1/rankings.
type RankingsQuery struct {
	Limit int `form:"limit" binding:"omitempty,min=1,max=1000"`
}

// RunQuery binds the query string of POST /v1/pipeline/runs.
type RunQuery struct {
	Wait bool `form:"wait"`
}
