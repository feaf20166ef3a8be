package benchmark

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/nulzo/model-radar/internal/core/domain"
	"github.com/stretchr/testify/assert"
)

func catalogOf(ids ...string) []domain.CatalogEntry {
	out := make([]domain.CatalogEntry, 0, len(ids))
	for _, id := range ids {
		out = append(out, domain.CatalogEntry{Provider: "p", ModelID: id})
	}
	return out
}

func seeded() *rand.Rand { return rand.New(rand.NewPCG(1, 2)) }

func keys(entries []domain.CatalogEntry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.ModelID)
	}
	return out
}

func TestSample_SmallCatalogIsFullyCovered(t *testing.T) {
	catalog := catalogOf("a", "b", "c")
	got := NewSampler(10, nil, seeded()).Sample(catalog)
	// head already covers everything; random picks are duplicates
	assert.Equal(t, []string{"a", "b", "c"}, keys(got))
}

func TestSample_UnionOfHeadRandomAndKeywords(t *testing.T) {
	var ids []string
	for i := 0; i < 40; i++ {
		ids = append(ids, fmt.Sprintf("model-%02d", i))
	}
	ids[35] = "gemini-1.5-flash"
	ids[36] = "gpt-4o-MINI"
	ids[37] = "llama-3.1-8b-instant"
	catalog := catalogOf(ids...)

	got := NewSampler(3, nil, seeded()).Sample(catalog)

	// head first, in catalog order
	assert.Equal(t, []string{"model-00", "model-01", "model-02"}, keys(got[:3]))
	// every keyword row is present regardless of the random draw
	assert.Contains(t, keys(got), "gemini-1.5-flash")
	assert.Contains(t, keys(got), "gpt-4o-MINI")
	assert.Contains(t, keys(got), "llama-3.1-8b-instant")
	// at most head + random + keyword rows, never duplicated
	assert.LessOrEqual(t, len(got), 3+3+3)
	seen := map[string]bool{}
	for _, id := range keys(got) {
		assert.False(t, seen[id], "duplicate %s", id)
		seen[id] = true
	}
}

func TestSample_DeterministicWithSeed(t *testing.T) {
	var ids []string
	for i := 0; i < 100; i++ {
		ids = append(ids, fmt.Sprintf("m%d", i))
	}
	catalog := catalogOf(ids...)

	a := NewSampler(5, []string{}, seeded()).Sample(catalog)
	b := NewSampler(5, []string{}, seeded()).Sample(catalog)
	assert.Equal(t, a, b)
	assert.GreaterOrEqual(t, len(a), 5)
	assert.LessOrEqual(t, len(a), 10)
}

func TestSample_DedupesOnProviderAndModel(t *testing.T) {
	catalog := []domain.CatalogEntry{
		{Provider: "groq", ModelID: "llama-3.1-70b"},
		{Provider: "together", ModelID: "llama-3.1-70b"},
	}
	got := NewSampler(1, nil, seeded()).Sample(catalog)
	assert.Len(t, got, 2)
}

func TestSample_Empty(t *testing.T) {
	assert.Empty(t, NewSampler(10, nil, seeded()).Sample(nil))
}
