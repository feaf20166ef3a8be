package store

import (
	"context"
	"time"

	"github.com/nulzo/model-radar/internal/core/domain"
)

// Repository is the main contract for the data layer. Each snapshot is replaced as a
// whole; readers never observe a partially written snapshot.
type Repository interface {
	Catalog() CatalogRepository
	Benchmarks() BenchmarkRepository
	Rankings() RankingRepository
	Runs() RunRepository

	// Snapshot returns metadata for a snapshot, or a PrerequisiteError when it was never written.
	Snapshot(ctx context.Context, name domain.Snapshot) (*SnapshotInfo, error)

	// transaction support
	WithTx(ctx context.Context, fn func(repo Repository) error) error

	Close() error
}

// SnapshotInfo describes the last successful write of a snapshot.
type SnapshotInfo struct {
	Name        domain.Snapshot `db:"name" json:"name"`
	GeneratedAt time.Time       `db:"generated_at" json:"generated_at"`
	RowCount    int             `db:"row_count" json:"row_count"`
}

type CatalogRepository interface {
	// Replace overwrites the catalog snapshot, preserving the given order.
	Replace(ctx context.Context, entries []domain.CatalogEntry) error
	// List returns the catalog in catalog order.
	List(ctx context.Context) ([]domain.CatalogEntry, error)
}

type BenchmarkRepository interface {
	Replace(ctx context.Context, results []domain.BenchmarkResult) error
	List(ctx context.Context) ([]domain.BenchmarkResult, error)
}

type RankingRepository interface {
	Replace(ctx context.Context, ranked []domain.RankedModel) error
	// List returns rankings ordered by rank; limit <= 0 means all rows.
	List(ctx context.Context, limit int) ([]domain.RankedModel, error)
}

type RunRepository interface {
	// Record stores a finished run and prunes history beyond the retention window.
	Record(ctx context.Context, run *domain.RunRecord) error
	// Latest returns the most recent run, or nil when none was recorded.
	Latest(ctx context.Context) (*domain.RunRecord, error)
}

// RunRetention bounds how many run records are kept.
const RunRetention = 20
