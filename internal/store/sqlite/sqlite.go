package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/nulzo/model-radar/internal/core/domain"
	"github.com/nulzo/model-radar/internal/store"
	"github.com/nulzo/model-radar/internal/store/model"
)

// DB defines the interface for database operations (satisfied by *sqlx.DB and *sqlx.Tx)
type DB interface {
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	NamedExecContext(ctx context.Context, query string, arg interface{}) (sql.Result, error)
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// SqliteRepository implements store.Repository
type SqliteRepository struct {
	db       *sqlx.DB // Required for starting new transactions
	executor DB       // Used for actual queries (can be *sqlx.DB or *sqlx.Tx)
	inTx     bool
}

func NewSqliteRepository(db *sqlx.DB) *SqliteRepository {
	return &SqliteRepository{
		db:       db,
		executor: db,
	}
}

func (r *SqliteRepository) Close() error {
	return r.db.Close()
}

func (r *SqliteRepository) WithTx(ctx context.Context, fn func(repo store.Repository) error) error {
	// already inside a transaction; sqlite has no nested transactions
	if r.inTx {
		return fn(r)
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}

	txRepo := &SqliteRepository{
		db:       r.db,
		executor: tx,
		inTx:     true,
	}

	if err := fn(txRepo); err != nil {
		// attempt rollback, but prioritize original error
		_ = tx.Rollback()
		return err
	}

	return tx.Commit()
}

// atomic runs fn against a transactional executor.
func (r *SqliteRepository) atomic(ctx context.Context, fn func(db DB) error) error {
	return r.WithTx(ctx, func(repo store.Repository) error {
		return fn(repo.(*SqliteRepository).executor)
	})
}

func (r *SqliteRepository) Catalog() store.CatalogRepository {
	return &catalogRepo{repo: r}
}

func (r *SqliteRepository) Benchmarks() store.BenchmarkRepository {
	return &benchmarkRepo{repo: r}
}

func (r *SqliteRepository) Rankings() store.RankingRepository {
	return &rankingRepo{repo: r}
}

func (r *SqliteRepository) Runs() store.RunRepository {
	return &runRepo{db: r.executor}
}

func (r *SqliteRepository) Snapshot(ctx context.Context, name domain.Snapshot) (*store.SnapshotInfo, error) {
	return snapshotInfo(ctx, r.executor, name)
}

func snapshotInfo(ctx context.Context, db DB, name domain.Snapshot) (*store.SnapshotInfo, error) {
	var info store.SnapshotInfo
	err := db.GetContext(ctx, &info, `SELECT name, generated_at, row_count FROM snapshots WHERE name = ?`, name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.PrerequisiteMissing(name)
	}
	if err != nil {
		return nil, err
	}
	return &info, nil
}

func markSnapshot(ctx context.Context, db DB, name domain.Snapshot, rows int) error {
	query := `
	INSERT INTO snapshots (name, generated_at, row_count) VALUES (?, ?, ?)
	ON CONFLICT(name) DO UPDATE SET generated_at = excluded.generated_at, row_count = excluded.row_count`
	_, err := db.ExecContext(ctx, query, name, time.Now().UTC(), rows)
	return err
}

type catalogRepo struct {
	repo *SqliteRepository
}

func (r *catalogRepo) Replace(ctx context.Context, entries []domain.CatalogEntry) error {
	return r.repo.atomic(ctx, func(db DB) error {
		if _, err := db.ExecContext(ctx, `DELETE FROM catalog_entries`); err != nil {
			return err
		}
		query := `
		INSERT INTO catalog_entries (position, provider, model_id, input_price, output_price, price_source, created, owned_by)
		VALUES (:position, :provider, :model_id, :input_price, :output_price, :price_source, :created, :owned_by)`
		for i, e := range entries {
			row := model.CatalogRow{Position: i, CatalogEntry: e}
			if _, err := db.NamedExecContext(ctx, query, row); err != nil {
				return err
			}
		}
		return markSnapshot(ctx, db, domain.SnapshotCatalog, len(entries))
	})
}

func (r *catalogRepo) List(ctx context.Context) ([]domain.CatalogEntry, error) {
	if _, err := snapshotInfo(ctx, r.repo.executor, domain.SnapshotCatalog); err != nil {
		return nil, err
	}
	var rows []model.CatalogRow
	if err := r.repo.executor.SelectContext(ctx, &rows, `SELECT * FROM catalog_entries ORDER BY position`); err != nil {
		return nil, err
	}
	entries := make([]domain.CatalogEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, row.CatalogEntry)
	}
	return entries, nil
}

type benchmarkRepo struct {
	repo *SqliteRepository
}

func (r *benchmarkRepo) Replace(ctx context.Context, results []domain.BenchmarkResult) error {
	rows, scores := model.SplitResults(results)
	return r.repo.atomic(ctx, func(db DB) error {
		if _, err := db.ExecContext(ctx, `DELETE FROM benchmark_scores`); err != nil {
			return err
		}
		if _, err := db.ExecContext(ctx, `DELETE FROM benchmark_results`); err != nil {
			return err
		}
		for _, row := range rows {
			query := `
			INSERT INTO benchmark_results (position, provider, model_id, avg_speed, mode)
			VALUES (:position, :provider, :model_id, :avg_speed, :mode)`
			if _, err := db.NamedExecContext(ctx, query, row); err != nil {
				return err
			}
		}
		for _, s := range scores {
			query := `
			INSERT INTO benchmark_scores (provider, model_id, task, score)
			VALUES (:provider, :model_id, :task, :score)`
			if _, err := db.NamedExecContext(ctx, query, s); err != nil {
				return err
			}
		}
		return markSnapshot(ctx, db, domain.SnapshotBenchmarks, len(results))
	})
}

func (r *benchmarkRepo) List(ctx context.Context) ([]domain.BenchmarkResult, error) {
	db := r.repo.executor
	if _, err := snapshotInfo(ctx, db, domain.SnapshotBenchmarks); err != nil {
		return nil, err
	}
	var rows []model.BenchmarkRow
	if err := db.SelectContext(ctx, &rows, `SELECT * FROM benchmark_results ORDER BY position`); err != nil {
		return nil, err
	}
	var scores []model.ScoreRow
	if err := db.SelectContext(ctx, &scores, `SELECT * FROM benchmark_scores`); err != nil {
		return nil, err
	}
	return model.JoinResults(rows, scores), nil
}

type rankingRepo struct {
	repo *SqliteRepository
}

func (r *rankingRepo) Replace(ctx context.Context, ranked []domain.RankedModel) error {
	return r.repo.atomic(ctx, func(db DB) error {
		if _, err := db.ExecContext(ctx, `DELETE FROM ranked_models`); err != nil {
			return err
		}
		query := `
		INSERT INTO ranked_models (rank, provider, model_id, avg_perf, avg_cost, value_score, avg_speed, input_price, output_price)
		VALUES (:rank, :provider, :model_id, :avg_perf, :avg_cost, :value_score, :avg_speed, :input_price, :output_price)`
		for _, m := range ranked {
			if _, err := db.NamedExecContext(ctx, query, m); err != nil {
				return err
			}
		}
		return markSnapshot(ctx, db, domain.SnapshotRankings, len(ranked))
	})
}

func (r *rankingRepo) List(ctx context.Context, limit int) ([]domain.RankedModel, error) {
	db := r.repo.executor
	if _, err := snapshotInfo(ctx, db, domain.SnapshotRankings); err != nil {
		return nil, err
	}
	var ranked []domain.RankedModel
	var err error
	if limit > 0 {
		err = db.SelectContext(ctx, &ranked, `SELECT * FROM ranked_models ORDER BY rank LIMIT ?`, limit)
	} else {
		err = db.SelectContext(ctx, &ranked, `SELECT * FROM ranked_models ORDER BY rank`)
	}
	if err != nil {
		return nil, err
	}
	if ranked == nil {
		ranked = []domain.RankedModel{}
	}
	return ranked, nil
}

type runRepo struct {
	db DB
}

func (r *runRepo) Record(ctx context.Context, run *domain.RunRecord) error {
	query := `
	INSERT INTO pipeline_runs (id, mode, stage, status, error, started_at, finished_at)
	VALUES (:id, :mode, :stage, :status, :error, :started_at, :finished_at)`
	if _, err := r.db.NamedExecContext(ctx, query, run); err != nil {
		return err
	}
	prune := `
	DELETE FROM pipeline_runs WHERE id NOT IN (
		SELECT id FROM pipeline_runs ORDER BY started_at DESC LIMIT ?
	)`
	_, err := r.db.ExecContext(ctx, prune, store.RunRetention)
	return err
}

func (r *runRepo) Latest(ctx context.Context) (*domain.RunRecord, error) {
	var run domain.RunRecord
	err := r.db.GetContext(ctx, &run, `SELECT * FROM pipeline_runs ORDER BY started_at DESC LIMIT 1`)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}
