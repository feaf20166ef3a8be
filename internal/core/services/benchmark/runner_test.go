package benchmark

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/nulzo/model-radar/internal/adapters/providers/openai"
	"github.com/nulzo/model-radar/internal/core/domain"
	"github.com/nulzo/model-radar/internal/core/ports"
	"github.com/nulzo/model-radar/internal/core/ports/mocks"
	"github.com/nulzo/model-radar/internal/store/memory"
	"github.com/nulzo/model-radar/pkg/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func chatReply(content string, tokens int) *api.ChatResponse {
	return &api.ChatResponse{
		Choices: []api.Choice{{Message: &api.ChatMessage{Role: "assistant", Content: content}}},
		Usage:   &api.ResponseUsage{TotalTokens: tokens},
	}
}

func newRunner(repo *memory.Repository, providers []ports.ModelProvider, opts ...Option) *Runner {
	base := []Option{
		WithSampler(NewSampler(10, nil, seeded())),
		WithSimulator(NewSimulator(fixedJitter(0))),
	}
	return NewRunner(zap.NewNop(), repo, providers, append(base, opts...)...)
}

func TestRun_SimulatedWhenNever(t *testing.T) {
	p := mocks.NewProvider("openai")
	p.Desc.APIKey = "sk-test"
	repo := memory.New()

	r := newRunner(repo, []ports.ModelProvider{p}, WithRealMode(RealNever))
	catalog := []domain.CatalogEntry{{Provider: "openai", ModelID: "gpt-4o"}, {Provider: "openai", ModelID: "babbage-002"}}

	results, err := r.Run(context.Background(), catalog)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, map[string]float64{"Coding": 0.85, "Math": 0.85, "Reasoning": 0.85}, results[0].Scores)
	assert.InDelta(t, 83.33, results[0].AvgSpeed, 1e-9)
	assert.Equal(t, domain.ModeSimulated, results[0].Mode)
	assert.InDelta(t, 500, results[1].AvgSpeed, 1e-9)

	stored, err := repo.Benchmarks().List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, results, stored)
	p.AssertNotCalled(t, "Chat", mock.Anything, mock.Anything)
}

func TestRun_RealExecution(t *testing.T) {
	p := mocks.NewProvider("openai")
	p.Desc.APIKey = "sk-test"
	p.On("Chat", mock.Anything, mock.MatchedBy(func(req *api.ChatRequest) bool {
		return req.Model == "gpt-4o-mini" && req.MaxTokens == DefaultMaxTokens && !req.Stream
	})).Return(chatReply("def quicksort(arr): return arr", 40), nil)

	r := newRunner(memory.New(), []ports.ModelProvider{p})
	results, err := r.Run(context.Background(), []domain.CatalogEntry{{Provider: "openai", ModelID: "gpt-4o-mini"}})
	require.NoError(t, err)
	require.Len(t, results, 1)

	assert.Equal(t, domain.ModeReal, results[0].Mode)
	assert.Equal(t, map[string]float64{"Coding": 1, "Math": 1, "Reasoning": 1}, results[0].Scores)
	assert.Greater(t, results[0].AvgSpeed, 0.0)
	p.AssertNumberOfCalls(t, "Chat", 3)
}

func TestRun_FailedCallsAreSimulated(t *testing.T) {
	p := mocks.NewProvider("openai")
	p.Desc.APIKey = "sk-test"
	p.On("Chat", mock.Anything, mock.MatchedBy(func(req *api.ChatRequest) bool {
		return req.Messages[0].Content == DefaultTasks()[0].Prompt
	})).Return(nil, errors.New("502 bad gateway"))
	p.On("Chat", mock.Anything, mock.Anything).Return(chatReply("C", 10), nil)

	r := newRunner(memory.New(), []ports.ModelProvider{p})
	results, err := r.Run(context.Background(), []domain.CatalogEntry{{Provider: "openai", ModelID: "o1-preview"}})
	require.NoError(t, err)

	res := results[0]
	assert.Equal(t, domain.ModeMixed, res.Mode)
	assert.Equal(t, 0.6, res.Scores["Coding"])
	assert.Equal(t, 0.5, res.Scores["Math"])
	assert.Equal(t, 0.5, res.Scores["Reasoning"])
}

func TestRun_TimeoutFallsBackToSimulation(t *testing.T) {
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer slow.Close()

	p, err := openai.NewAdapter(domain.ProviderDescriptor{Name: "groq", APIBase: slow.URL, APIKey: "gsk"}, slow.Client())
	require.NoError(t, err)

	r := newRunner(memory.New(), []ports.ModelProvider{p},
		WithExecutor(NewExecutor(LengthScorer{}, 50*time.Millisecond, 0)),
		WithRealMode(RealAlways))

	start := time.Now()
	results, err := r.Run(context.Background(), []domain.CatalogEntry{{Provider: "groq", ModelID: "llama-3.1-70b-versatile"}})
	require.NoError(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)

	res := results[0]
	assert.Equal(t, domain.ModeSimulated, res.Mode)
	for task, score := range res.Scores {
		assert.GreaterOrEqual(t, score, 0.8, task)
		assert.LessOrEqual(t, score, 0.9, task)
	}
	assert.InDelta(t, 250, res.AvgSpeed, 1e-9)
}

func TestRun_LocalAndKeylessProvidersAreSimulated(t *testing.T) {
	local := mocks.NewProvider("ollama")
	local.Desc.Type = domain.ProviderOllama
	local.Desc.APIKey = "unused"
	keyless := mocks.NewProvider("keyless-provider-xyz")

	r := newRunner(memory.New(), []ports.ModelProvider{local, keyless}, WithRealMode(RealAlways))
	results, err := r.Run(context.Background(), []domain.CatalogEntry{
		{Provider: "ollama", ModelID: "llama3"},
		{Provider: "keyless-provider-xyz", ModelID: "m"},
	})
	require.NoError(t, err)
	for _, res := range results {
		assert.Equal(t, domain.ModeSimulated, res.Mode)
	}
	local.AssertNotCalled(t, "Chat", mock.Anything, mock.Anything)
	keyless.AssertNotCalled(t, "Chat", mock.Anything, mock.Anything)
}

func TestRealEnabled(t *testing.T) {
	withKey := mocks.NewProvider("with-key")
	withKey.Desc.APIKey = "k"
	local := mocks.NewProvider("local")
	local.Desc.Local = true
	local.Desc.APIKey = "k"

	assert.True(t, newRunner(memory.New(), []ports.ModelProvider{withKey}).RealEnabled())
	assert.False(t, newRunner(memory.New(), []ports.ModelProvider{local}).RealEnabled())
	assert.False(t, newRunner(memory.New(), []ports.ModelProvider{withKey}, WithRealMode(RealNever)).RealEnabled())
	assert.True(t, newRunner(memory.New(), nil, WithRealMode(RealAlways)).RealEnabled())
}

func TestRun_EmptyCatalog(t *testing.T) {
	_, err := newRunner(memory.New(), nil).Run(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrNoArtifact)
}

func TestRunFromStore_MissingCatalog(t *testing.T) {
	_, err := newRunner(memory.New(), nil).RunFromStore(context.Background())
	assert.ErrorIs(t, err, domain.ErrPrerequisiteMissing)
}

func TestParseRealMode(t *testing.T) {
	m, err := ParseRealMode("")
	require.NoError(t, err)
	assert.Equal(t, RealAuto, m)

	m, err = ParseRealMode(" Always ")
	require.NoError(t, err)
	assert.Equal(t, RealAlways, m)

	_, err = ParseRealMode("sometimes")
	var cfgErr *domain.ConfigError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestExecutor_SpeedFromUsage(t *testing.T) {
	p := mocks.NewProvider("openai")
	p.On("Chat", mock.Anything, mock.Anything).Return(chatReply("5602", 50), nil).Once()
	p.On("Chat", mock.Anything, mock.Anything).Return(&api.ChatResponse{
		Choices: []api.Choice{{Message: &api.ChatMessage{Content: "a longer answer"}}},
	}, nil).Once()

	e := NewExecutor(nil, time.Second, 0)
	base := time.Unix(0, 0)
	calls := 0
	e.now = func() time.Time {
		calls++
		if calls%2 == 1 {
			return base
		}
		return base.Add(2 * time.Second)
	}

	out, err := e.Execute(context.Background(), p, "gpt-4o", DefaultTasks()[1])
	require.NoError(t, err)
	assert.Equal(t, 25.0, out.Speed)
	assert.Equal(t, 0.5, out.Score)
	assert.True(t, out.Real)

	// no usage block counts as a single token
	out, err = e.Execute(context.Background(), p, "gpt-4o", DefaultTasks()[0])
	require.NoError(t, err)
	assert.Equal(t, 0.5, out.Speed)
	assert.Equal(t, 1.0, out.Score)
}

func TestExecutor_UsageWithoutTotalCountsOneToken(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"choices":[{"message":{"role":"assistant","content":"42"}}],"usage":{"prompt_tokens":12}}`)
	}))
	defer upstream.Close()

	p, err := openai.NewAdapter(domain.ProviderDescriptor{Name: "OpenAI", Type: domain.ProviderOpenAI, APIBase: upstream.URL, APIKey: "sk-test"}, upstream.Client())
	require.NoError(t, err)

	e := NewExecutor(nil, time.Second, 0)
	base := time.Unix(0, 0)
	calls := 0
	e.now = func() time.Time {
		calls++
		if calls%2 == 1 {
			return base
		}
		return base.Add(4 * time.Second)
	}

	out, err := e.Execute(context.Background(), p, "gpt-4o", DefaultTasks()[1])
	require.NoError(t, err)
	assert.Equal(t, 0.25, out.Speed)
	assert.True(t, out.Real)
}
