package domain

import "time"

// PriceSource records how a catalog price was obtained.
type PriceSource string

const (
	PriceFromTable PriceSource = "table"
	PriceSynthetic PriceSource = "synthetic"
)

// Price is a price per million tokens in USD.
type Price struct {
	Input  float64     `json:"input"`
	Output float64     `json:"output"`
	Source PriceSource `json:"source"`
}

// CatalogEntry is a (provider, model) pair with attached pricing.
type CatalogEntry struct {
	Provider    string      `db:"provider" json:"provider" yaml:"provider"`
	ModelID     string      `db:"model_id" json:"model_id" yaml:"model_id"`
	InputPrice  float64     `db:"input_price" json:"input_price" yaml:"input_price"`
	OutputPrice float64     `db:"output_price" json:"output_price" yaml:"output_price"`
	PriceSource PriceSource `db:"price_source" json:"price_source" yaml:"price_source"`
	Created     *int64      `db:"created" json:"created,omitempty" yaml:"created,omitempty"`
	OwnedBy     string      `db:"owned_by" json:"owned_by,omitempty" yaml:"owned_by,omitempty"`
}

// Key uniquely identifies a catalog row.
func (e CatalogEntry) Key() ModelKey {
	return ModelKey{Provider: e.Provider, ModelID: e.ModelID}
}

// ModelKey is the (provider, model_id) join key shared by every snapshot.
type ModelKey struct {
	Provider string
	ModelID  string
}

// ExecutionMode tells how the tasks of a benchmark result were executed.
type ExecutionMode string

const (
	ModeReal      ExecutionMode = "real"
	ModeSimulated ExecutionMode = "simulated"
	ModeMixed     ExecutionMode = "mixed"
)

// BenchmarkResult holds per-task scores (0.0-1.0) and the mean speed of one model.
type BenchmarkResult struct {
	ModelID  string             `json:"model_id"`
	Provider string             `json:"provider"`
	Scores   map[string]float64 `json:"scores"`
	AvgSpeed float64            `json:"avg_speed"`
	Mode     ExecutionMode      `json:"mode"`
}

// Key returns the join key of the result.
func (r BenchmarkResult) Key() ModelKey {
	return ModelKey{Provider: r.Provider, ModelID: r.ModelID}
}

// RankedModel is the derived value view of a catalog entry joined with its benchmark.
type RankedModel struct {
	Rank        int     `db:"rank" json:"rank"`
	ModelID     string  `db:"model_id" json:"model_id"`
	Provider    string  `db:"provider" json:"provider"`
	AvgPerf     float64 `db:"avg_perf" json:"avg_perf"`
	AvgCost     float64 `db:"avg_cost" json:"avg_cost"`
	ValueScore  float64 `db:"value_score" json:"value_score"`
	AvgSpeed    float64 `db:"avg_speed" json:"avg_speed"`
	InputPrice  float64 `db:"input_price" json:"input_price"`
	OutputPrice float64 `db:"output_price" json:"output_price"`
}

// DealCategory names an arbitrage classification.
type DealCategory string

const (
	ValueKing  DealCategory = "value_king"
	SpeedDemon DealCategory = "speed_demon"
)

// Deals groups ranked models by arbitrage category. Both categories are always present.
type Deals map[DealCategory][]RankedModel

// Stage is a node of the pipeline state machine.
type Stage string

const (
	StageStart     Stage = "start"
	StageCatalog   Stage = "catalog"
	StageBenchmark Stage = "benchmark"
	StageRank      Stage = "rank"
	StageComplete  Stage = "complete"
)

// PipelineState is owned by the orchestrator for the duration of one run.
type PipelineState struct {
	Stage           Stage `json:"stage"`
	CatalogReady    bool  `json:"catalog_ready"`
	BenchmarksReady bool  `json:"benchmarks_ready"`
	RankingsReady   bool  `json:"rankings_ready"`
}

// RunStatus is the outcome of a pipeline run.
type RunStatus string

const (
	RunSucceeded RunStatus = "succeeded"
	RunFailed    RunStatus = "failed"
	RunDegraded  RunStatus = "degraded"
)

// RunRecord summarises the latest pipeline invocation.
type RunRecord struct {
	ID         string    `db:"id" json:"id"`
	Mode       string    `db:"mode" json:"mode"`
	Stage      Stage     `db:"stage" json:"stage"`
	Status     RunStatus `db:"status" json:"status"`
	Error      string    `db:"error" json:"error,omitempty"`
	StartedAt  time.Time `db:"started_at" json:"started_at"`
	FinishedAt time.Time `db:"finished_at" json:"finished_at"`
}
