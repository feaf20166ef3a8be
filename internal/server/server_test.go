package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nulzo/model-radar/internal/adapters/cache/memory"
	"github.com/nulzo/model-radar/internal/config"
	"github.com/nulzo/model-radar/internal/core/domain"
	"github.com/nulzo/model-radar/internal/core/services/arbitrage"
	"github.com/nulzo/model-radar/internal/core/services/feed"
	"github.com/nulzo/model-radar/internal/core/services/pipeline"
	"github.com/nulzo/model-radar/internal/core/services/ranking"
	memstore "github.com/nulzo/model-radar/internal/store/memory"
	"github.com/nulzo/model-radar/internal/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakePipeline struct {
	err    error
	report *pipeline.Report
}

func (f *fakePipeline) Run(context.Context) (*pipeline.Report, error) { return f.report, f.err }

func (f *fakePipeline) Start(context.Context) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "run-1", nil
}

type harness struct {
	repo    *memstore.Repository
	pipe    *fakePipeline
	metrics *telemetry.Metrics
	handler http.Handler
}

func newHarness(t *testing.T, mutate ...func(*config.Config)) *harness {
	t.Helper()
	cfg := &config.Config{
		Server: config.ServerConfig{Port: "0", Env: "test"},
		Cache:  config.CacheConfig{TTL: time.Minute},
		Providers: []domain.ProviderDescriptor{
			{Name: "Groq", Type: domain.ProviderOpenAI, APIBase: "https://api.groq.com/openai/v1", APIKey: "gsk-secret"},
			{Name: "Ollama (Local)", Type: domain.ProviderOllama, APIBase: "http://localhost:11434/v1"},
		},
	}
	for _, m := range mutate {
		m(cfg)
	}

	repo := memstore.New()
	pipe := &fakePipeline{report: &pipeline.Report{Run: domain.RunRecord{ID: "sync-run", Status: domain.RunSucceeded}}}
	metrics := telemetry.NewMetrics()

	srv := New(cfg, zap.NewNop(), Deps{
		Repo:     repo,
		Pipeline: pipe,
		Deals:    arbitrage.NewDetector(zap.NewNop(), repo, nil, arbitrage.DefaultThresholds()),
		Feed:     feed.NewGenerator(zap.NewNop(), repo, arbitrage.FeedThresholds(), 2),
		Cache:    memory.NewMemoryCache(),
		Metrics:  metrics,
	})
	return &harness{repo: repo, pipe: pipe, metrics: metrics, handler: srv.Handler()}
}

func (h *harness) seed(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	catalog := []domain.CatalogEntry{
		{Provider: "Groq", ModelID: "llama-3.1-8b-instant", InputPrice: 0.05, OutputPrice: 0.08, PriceSource: domain.PriceFromTable},
		{Provider: "OpenAI", ModelID: "gpt-4o", InputPrice: 5, OutputPrice: 15, PriceSource: domain.PriceFromTable},
		{Provider: "Groq", ModelID: "mixtral-8x7b", InputPrice: 0.24, OutputPrice: 0.24, PriceSource: domain.PriceFromTable},
	}
	results := []domain.BenchmarkResult{
		{Provider: "Groq", ModelID: "llama-3.1-8b-instant", Scores: map[string]float64{"reasoning": 0.9}, AvgSpeed: 250, Mode: domain.ModeSimulated},
		{Provider: "OpenAI", ModelID: "gpt-4o", Scores: map[string]float64{"reasoning": 0.95}, AvgSpeed: 80, Mode: domain.ModeSimulated},
		{Provider: "Groq", ModelID: "mixtral-8x7b", Scores: map[string]float64{"reasoning": 0.7}, AvgSpeed: 300, Mode: domain.ModeSimulated},
	}
	require.NoError(t, h.repo.Catalog().Replace(ctx, catalog))
	require.NoError(t, h.repo.Benchmarks().Replace(ctx, results))
	_, err := ranking.NewEngine(zap.NewNop(), h.repo).Apply(ctx, catalog, results)
	require.NoError(t, err)
}

func (h *harness) do(method, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	w := httptest.NewRecorder()
	h.handler.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body
}

func TestHealth(t *testing.T) {
	h := newHarness(t)

	w := h.do(http.MethodGet, "/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", decode(t, w)["status"])

	w = h.do(http.MethodGet, "/ready")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	h.seed(t)
	w = h.do(http.MethodGet, "/ready")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 3, decode(t, w)["ranked_count"])
}

func TestSnapshotReads_MissingSnapshotIsProblem(t *testing.T) {
	h := newHarness(t)

	for _, path := range []string{"/v1/catalog", "/v1/benchmarks", "/v1/rankings", "/v1/feed"} {
		w := h.do(http.MethodGet, path)
		assert.Equal(t, http.StatusConflict, w.Code, path)
		assert.Equal(t, "application/problem+json", w.Header().Get("Content-Type"), path)

		body := decode(t, w)
		assert.Equal(t, "Prerequisite Missing", body["title"], path)
		assert.Equal(t, path, body["instance"], path)
	}
}

func TestSnapshotReads(t *testing.T) {
	h := newHarness(t)
	h.seed(t)

	w := h.do(http.MethodGet, "/v1/catalog")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "list", body["object"])
	assert.Len(t, body["data"], 3)
	assert.NotEmpty(t, body["generated_at"])

	w = h.do(http.MethodGet, "/v1/benchmarks")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["data"], 3)

	w = h.do(http.MethodGet, "/v1/rankings?limit=1")
	require.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w)["data"].([]any)
	require.Len(t, data, 1)
	top := data[0].(map[string]any)
	assert.EqualValues(t, 1, top["rank"])
	assert.Equal(t, "llama-3.1-8b-instant", top["model_id"])
}

func TestRankings_InvalidLimit(t *testing.T) {
	h := newHarness(t)
	h.seed(t)

	w := h.do(http.MethodGet, "/v1/rankings?limit=-3")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decode(t, w)
	assert.Equal(t, "Validation Error", body["title"])
	assert.Contains(t, body["errors"], "limit")

	w = h.do(http.MethodGet, "/v1/rankings?limit=lots")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeals(t *testing.T) {
	h := newHarness(t)
	h.seed(t)

	w := h.do(http.MethodGet, "/v1/deals")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)

	deals := body["deals"].(map[string]any)
	assert.Contains(t, deals, string(domain.ValueKing))
	assert.Contains(t, deals, string(domain.SpeedDemon))
	assert.Contains(t, body["thresholds"], "performance_floor")
}

func TestDeals_DoesNotRankOnRead(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	require.NoError(t, h.repo.Catalog().Replace(ctx, []domain.CatalogEntry{
		{Provider: "Groq", ModelID: "llama-3.1-8b-instant", InputPrice: 0.05, OutputPrice: 0.08},
	}))
	require.NoError(t, h.repo.Benchmarks().Replace(ctx, []domain.BenchmarkResult{
		{Provider: "Groq", ModelID: "llama-3.1-8b-instant", Scores: map[string]float64{"reasoning": 0.9}, AvgSpeed: 250},
	}))

	w := h.do(http.MethodGet, "/v1/deals")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "rankings", decode(t, w)["snapshot"])

	_, err := h.repo.Snapshot(ctx, domain.SnapshotRankings)
	assert.ErrorIs(t, err, domain.ErrPrerequisiteMissing)
}

func TestPipelineShuttingDownIsUnavailable(t *testing.T) {
	h := newHarness(t)
	h.pipe.err = domain.ErrShuttingDown

	w := h.do(http.MethodPost, "/v1/pipeline/runs")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "Shutting Down", decode(t, w)["title"])
}

func TestFeed_CachedPerRankingsSnapshot(t *testing.T) {
	h := newHarness(t)
	h.seed(t)

	first := h.do(http.MethodGet, "/v1/feed")
	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "MISS", first.Header().Get("X-Cache"))

	second := h.do(http.MethodGet, "/v1/feed")
	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, "HIT", second.Header().Get("X-Cache"))
	assert.JSONEq(t, first.Body.String(), second.Body.String())

	body := decode(t, second)
	assert.Len(t, body["top_value_models"], 2)
	assert.EqualValues(t, 3, body["metadata"].(map[string]any)["total_models_scanned"])

	// a new rankings snapshot changes the cache key
	time.Sleep(time.Millisecond)
	h.seed(t)
	third := h.do(http.MethodGet, "/v1/feed")
	assert.Equal(t, "MISS", third.Header().Get("X-Cache"))
}

func TestTriggerRun(t *testing.T) {
	h := newHarness(t)

	w := h.do(http.MethodPost, "/v1/pipeline/runs")
	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, "run-1", decode(t, w)["id"])

	w = h.do(http.MethodPost, "/v1/pipeline/runs?wait=true")
	assert.Equal(t, http.StatusOK, w.Code)
	run := decode(t, w)["run"].(map[string]any)
	assert.Equal(t, "sync-run", run["id"])

	h.pipe.err = domain.ErrRunInProgress
	w = h.do(http.MethodPost, "/v1/pipeline/runs")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "Run In Progress", decode(t, w)["title"])
}

func TestTriggerRun_StageFailure(t *testing.T) {
	h := newHarness(t)
	h.pipe.err = &domain.StageError{Stage: domain.StageCatalog, Err: domain.ErrNoArtifact}

	w := h.do(http.MethodPost, "/v1/pipeline/runs?wait=true")
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, "catalog", decode(t, w)["stage"])
}

func TestLatestRun(t *testing.T) {
	h := newHarness(t)

	w := h.do(http.MethodGet, "/v1/pipeline/runs/latest")
	assert.Equal(t, http.StatusNotFound, w.Code)

	now := time.Now().UTC()
	require.NoError(t, h.repo.Runs().Record(context.Background(), &domain.RunRecord{
		ID: "abc", Mode: "strict", Stage: domain.StageComplete, Status: domain.RunSucceeded,
		StartedAt: now.Add(-time.Second), FinishedAt: now,
	}))

	w = h.do(http.MethodGet, "/v1/pipeline/runs/latest")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "abc", decode(t, w)["id"])
}

func TestProviders_HidesKeys(t *testing.T) {
	h := newHarness(t)

	w := h.do(http.MethodGet, "/v1/providers")
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "gsk-secret")

	data := decode(t, w)["data"].([]any)
	require.Len(t, data, 2)
	assert.Equal(t, true, data[0].(map[string]any)["has_key"])
	assert.Equal(t, true, data[1].(map[string]any)["local"])
}

func TestRateLimit(t *testing.T) {
	h := newHarness(t, func(c *config.Config) {
		c.RateLimit = config.RateLimitConfig{RequestsPerSecond: 0.001, Burst: 1}
	})

	assert.Equal(t, http.StatusNotFound, h.do(http.MethodGet, "/v1/pipeline/runs/latest").Code)

	w := h.do(http.MethodGet, "/v1/pipeline/runs/latest")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
	assert.Equal(t, "Too Many Requests", decode(t, w)["title"])

	// health is outside the limited group
	assert.Equal(t, http.StatusOK, h.do(http.MethodGet, "/health").Code)
}

func TestMetricsEndpoint(t *testing.T) {
	h := newHarness(t)
	h.do(http.MethodGet, "/health")

	w := h.do(http.MethodGet, "/metrics")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), `radar_http_requests_total{code="200",route="/health"} 1`), w.Body.String())
}
