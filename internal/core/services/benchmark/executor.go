package benchmark

import (
	"context"
	"fmt"
	"time"

	"github.com/nulzo/model-radar/internal/core/ports"
	"github.com/nulzo/model-radar/pkg/api"
)

// DefaultCallTimeout bounds a single real chat completion.
const DefaultCallTimeout = 15 * time.Second

// Executor runs a task against a live provider.
type Executor struct {
	scorer    ports.Scorer
	timeout   time.Duration
	maxTokens int
	now       func() time.Time
}

func NewExecutor(scorer ports.Scorer, timeout time.Duration, maxTokens int) *Executor {
	if scorer == nil {
		scorer = LengthScorer{}
	}
	if timeout <= 0 {
		timeout = DefaultCallTimeout
	}
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	return &Executor{scorer: scorer, timeout: timeout, maxTokens: maxTokens, now: time.Now}
}

// Execute issues one chat completion and scores it. Speed is total tokens per second
// of measured latency; a response without a usable token total counts as one token.
func (e *Executor) Execute(ctx context.Context, p ports.ModelProvider, modelID string, task Task) (Outcome, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	start := e.now()
	resp, err := p.Chat(ctx, api.UserPrompt(modelID, task.Prompt, e.maxTokens))
	latency := e.now().Sub(start)
	if err != nil {
		return Outcome{}, fmt.Errorf("%s on %s: %w", modelID, p.Name(), err)
	}

	tokens := 1
	if resp.Usage != nil && resp.Usage.TotalTokens > 0 {
		tokens = resp.Usage.TotalTokens
	}
	seconds := latency.Seconds()
	if seconds <= 0 {
		seconds = time.Millisecond.Seconds()
	}

	return Outcome{
		Score:   e.scorer.Score(task.Name, resp.Content()),
		Speed:   round(float64(tokens)/seconds, 2),
		Latency: latency,
		Real:    true,
	}, nil
}
