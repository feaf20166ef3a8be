package model

import (
	"github.com/nulzo/model-radar/internal/core/domain"
)

// CatalogRow is a catalog entry with its position in catalog order.
type CatalogRow struct {
	Position int `db:"position"`
	domain.CatalogEntry
}

// BenchmarkRow is the scalar part of a benchmark result.
type BenchmarkRow struct {
	Position int                  `db:"position"`
	Provider string               `db:"provider"`
	ModelID  string               `db:"model_id"`
	AvgSpeed float64              `db:"avg_speed"`
	Mode     domain.ExecutionMode `db:"mode"`
}

// ScoreRow is one per-task score of a benchmark result.
type ScoreRow struct {
	Provider string  `db:"provider"`
	ModelID  string  `db:"model_id"`
	Task     string  `db:"task"`
	Score    float64 `db:"score"`
}

// SplitResults flattens benchmark results into rows.
func SplitResults(results []domain.BenchmarkResult) ([]BenchmarkRow, []ScoreRow) {
	rows := make([]BenchmarkRow, 0, len(results))
	var scores []ScoreRow
	for i, r := range results {
		rows = append(rows, BenchmarkRow{
			Position: i,
			Provider: r.Provider,
			ModelID:  r.ModelID,
			AvgSpeed: r.AvgSpeed,
			Mode:     r.Mode,
		})
		for task, score := range r.Scores {
			scores = append(scores, ScoreRow{Provider: r.Provider, ModelID: r.ModelID, Task: task, Score: score})
		}
	}
	return rows, scores
}

// JoinResults rebuilds benchmark results from rows ordered by position.
func JoinResults(rows []BenchmarkRow, scores []ScoreRow) []domain.BenchmarkResult {
	byKey := make(map[domain.ModelKey]map[string]float64, len(rows))
	for _, s := range scores {
		key := domain.ModelKey{Provider: s.Provider, ModelID: s.ModelID}
		if byKey[key] == nil {
			byKey[key] = make(map[string]float64)
		}
		byKey[key][s.Task] = s.Score
	}

	results := make([]domain.BenchmarkResult, 0, len(rows))
	for _, r := range rows {
		key := domain.ModelKey{Provider: r.Provider, ModelID: r.ModelID}
		taskScores := byKey[key]
		if taskScores == nil {
			taskScores = map[string]float64{}
		}
		results = append(results, domain.BenchmarkResult{
			ModelID:  r.ModelID,
			Provider: r.Provider,
			Scores:   taskScores,
			AvgSpeed: r.AvgSpeed,
			Mode:     r.Mode,
		})
	}
	return results
}
