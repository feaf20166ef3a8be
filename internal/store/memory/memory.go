package memory

import (
	"context"
	"maps"
	"sort"
	"sync"
	"time"

	"github.com/nulzo/model-radar/internal/core/domain"
	"github.com/nulzo/model-radar/internal/store"
)

type state struct {
	catalog    []domain.CatalogEntry
	benchmarks []domain.BenchmarkResult
	rankings   []domain.RankedModel
	runs       []domain.RunRecord
	snapshots  map[domain.Snapshot]store.SnapshotInfo
}

// Repository is an in-process store.Repository backing the service and HTTP tests.
type Repository struct {
	mu *sync.RWMutex
	st *state
	tx bool
}

func New() *Repository {
	return &Repository{
		mu: &sync.RWMutex{},
		st: &state{snapshots: make(map[domain.Snapshot]store.SnapshotInfo)},
	}
}

func (r *Repository) Close() error { return nil }

// WithTx applies fn to a copy of the state and swaps it in only when fn succeeds.
func (r *Repository) WithTx(ctx context.Context, fn func(repo store.Repository) error) error {
	if r.tx {
		return fn(r)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	txRepo := &Repository{mu: &sync.RWMutex{}, st: r.st.clone(), tx: true}
	if err := fn(txRepo); err != nil {
		return err
	}
	r.st = txRepo.st
	return nil
}

func (r *Repository) read() func() {
	if r.tx {
		return func() {}
	}
	r.mu.RLock()
	return r.mu.RUnlock
}

func (r *Repository) write() func() {
	if r.tx {
		return func() {}
	}
	r.mu.Lock()
	return r.mu.Unlock
}

func (r *Repository) Snapshot(_ context.Context, name domain.Snapshot) (*store.SnapshotInfo, error) {
	defer r.read()()
	info, ok := r.st.snapshots[name]
	if !ok {
		return nil, domain.PrerequisiteMissing(name)
	}
	return &info, nil
}

func (r *Repository) mark(name domain.Snapshot, rows int) {
	r.st.snapshots[name] = store.SnapshotInfo{Name: name, GeneratedAt: time.Now().UTC(), RowCount: rows}
}

func (r *Repository) Catalog() store.CatalogRepository      { return catalogRepo{r} }
func (r *Repository) Benchmarks() store.BenchmarkRepository { return benchmarkRepo{r} }
func (r *Repository) Rankings() store.RankingRepository     { return rankingRepo{r} }
func (r *Repository) Runs() store.RunRepository             { return runRepo{r} }

type catalogRepo struct{ r *Repository }

func (c catalogRepo) Replace(_ context.Context, entries []domain.CatalogEntry) error {
	defer c.r.write()()
	c.r.st.catalog = append([]domain.CatalogEntry(nil), entries...)
	c.r.mark(domain.SnapshotCatalog, len(entries))
	return nil
}

func (c catalogRepo) List(_ context.Context) ([]domain.CatalogEntry, error) {
	defer c.r.read()()
	if _, ok := c.r.st.snapshots[domain.SnapshotCatalog]; !ok {
		return nil, domain.PrerequisiteMissing(domain.SnapshotCatalog)
	}
	return append([]domain.CatalogEntry{}, c.r.st.catalog...), nil
}

type benchmarkRepo struct{ r *Repository }

func (b benchmarkRepo) Replace(_ context.Context, results []domain.BenchmarkResult) error {
	defer b.r.write()()
	b.r.st.benchmarks = cloneResults(results)
	b.r.mark(domain.SnapshotBenchmarks, len(results))
	return nil
}

func (b benchmarkRepo) List(_ context.Context) ([]domain.BenchmarkResult, error) {
	defer b.r.read()()
	if _, ok := b.r.st.snapshots[domain.SnapshotBenchmarks]; !ok {
		return nil, domain.PrerequisiteMissing(domain.SnapshotBenchmarks)
	}
	out := cloneResults(b.r.st.benchmarks)
	if out == nil {
		out = []domain.BenchmarkResult{}
	}
	return out, nil
}

type rankingRepo struct{ r *Repository }

func (k rankingRepo) Replace(_ context.Context, ranked []domain.RankedModel) error {
	defer k.r.write()()
	k.r.st.rankings = append([]domain.RankedModel(nil), ranked...)
	k.r.mark(domain.SnapshotRankings, len(ranked))
	return nil
}

func (k rankingRepo) List(_ context.Context, limit int) ([]domain.RankedModel, error) {
	defer k.r.read()()
	if _, ok := k.r.st.snapshots[domain.SnapshotRankings]; !ok {
		return nil, domain.PrerequisiteMissing(domain.SnapshotRankings)
	}
	out := k.r.st.rankings
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return append([]domain.RankedModel{}, out...), nil
}

type runRepo struct{ r *Repository }

func (u runRepo) Record(_ context.Context, run *domain.RunRecord) error {
	defer u.r.write()()
	u.r.st.runs = append(u.r.st.runs, *run)
	sort.SliceStable(u.r.st.runs, func(i, j int) bool {
		return u.r.st.runs[i].StartedAt.Before(u.r.st.runs[j].StartedAt)
	})
	if n := len(u.r.st.runs); n > store.RunRetention {
		u.r.st.runs = append([]domain.RunRecord(nil), u.r.st.runs[n-store.RunRetention:]...)
	}
	return nil
}

func (u runRepo) Latest(_ context.Context) (*domain.RunRecord, error) {
	defer u.r.read()()
	if len(u.r.st.runs) == 0 {
		return nil, nil
	}
	run := u.r.st.runs[len(u.r.st.runs)-1]
	return &run, nil
}

func (s *state) clone() *state {
	return &state{
		catalog:    append([]domain.CatalogEntry(nil), s.catalog...),
		benchmarks: cloneResults(s.benchmarks),
		rankings:   append([]domain.RankedModel(nil), s.rankings...),
		runs:       append([]domain.RunRecord(nil), s.runs...),
		snapshots:  maps.Clone(s.snapshots),
	}
}

func cloneResults(in []domain.BenchmarkResult) []domain.BenchmarkResult {
	if in == nil {
		return nil
	}
	out := make([]domain.BenchmarkResult, len(in))
	for i, r := range in {
		r.Scores = maps.Clone(r.Scores)
		out[i] = r
	}
	return out
}
