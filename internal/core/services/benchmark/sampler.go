package benchmark

import (
	"math/rand/v2"
	"strings"

	"github.com/nulzo/model-radar/internal/core/domain"
)

// Sampler picks the catalog rows to benchmark: the first N rows, N random rows and
// every row whose model id contains one of the keywords. The union keeps the order
// in which rows were first selected.
type Sampler struct {
	N        int
	Keywords []string
	Rand     *rand.Rand
}

func NewSampler(n int, keywords []string, rng *rand.Rand) *Sampler {
	if n <= 0 {
		n = DefaultSampleSize
	}
	if keywords == nil {
		keywords = DefaultKeywords()
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	lowered := make([]string, 0, len(keywords))
	for _, k := range keywords {
		if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
			lowered = append(lowered, k)
		}
	}
	return &Sampler{N: n, Keywords: lowered, Rand: rng}
}

func (s *Sampler) Sample(catalog []domain.CatalogEntry) []domain.CatalogEntry {
	if len(catalog) == 0 {
		return nil
	}

	seen := make(map[domain.ModelKey]struct{}, len(catalog))
	var out []domain.CatalogEntry
	add := func(e domain.CatalogEntry) {
		if _, ok := seen[e.Key()]; ok {
			return
		}
		seen[e.Key()] = struct{}{}
		out = append(out, e)
	}

	n := min(s.N, len(catalog))

	for _, e := range catalog[:n] {
		add(e)
	}

	for _, idx := range s.Rand.Perm(len(catalog))[:n] {
		add(catalog[idx])
	}

	for _, e := range catalog {
		if s.matches(e.ModelID) {
			add(e)
		}
	}

	return out
}

func (s *Sampler) matches(modelID string) bool {
	id := strings.ToLower(modelID)
	for _, k := range s.Keywords {
		if strings.Contains(id, k) {
			return true
		}
	}
	return false
}
