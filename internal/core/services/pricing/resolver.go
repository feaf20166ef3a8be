package pricing

import (
	"hash/fnv"
	"math"
	"sort"
	"strings"

	"github.com/nulzo/model-radar/internal/core/domain"
	"github.com/nulzo/model-radar/internal/modeldata"
)

const (
	minSyntheticPrice = 0.1
	maxSyntheticPrice = 5.0
	// synthetic prices are quantised to 0.001 USD
	syntheticSteps = int((maxSyntheticPrice-minSyntheticPrice)*1000) + 1

	outputMultiplier = 1.5
)

type tableEntry struct {
	fragment string
	price    domain.Price
}

// Resolver resolves prices by fragment match against a static table, falling back to a
// synthetic price derived from the model identifier.
type Resolver struct {
	table []tableEntry
}

// NewResolver builds a resolver over the given table. A nil table uses modeldata.KnownPrices.
func NewResolver(table map[string]domain.Price) *Resolver {
	if table == nil {
		table = modeldata.KnownPrices
	}

	entries := make([]tableEntry, 0, len(table))
	for fragment, price := range table {
		entries = append(entries, tableEntry{fragment: strings.ToLower(fragment), price: price})
	}

	// longest fragment wins so "gpt-4o-mini" is preferred over "gpt-4o"
	sort.Slice(entries, func(i, j int) bool {
		if len(entries[i].fragment) != len(entries[j].fragment) {
			return len(entries[i].fragment) > len(entries[j].fragment)
		}
		return entries[i].fragment < entries[j].fragment
	})

	return &Resolver{table: entries}
}

// Resolve never fails.
func (r *Resolver) Resolve(modelID string) domain.Price {
	id := strings.ToLower(modelID)
	for _, e := range r.table {
		if strings.Contains(id, e.fragment) {
			return domain.Price{Input: e.price.Input, Output: e.price.Output, Source: domain.PriceFromTable}
		}
	}
	return SyntheticPrice(modelID)
}

// SyntheticPrice derives a stable placeholder price from the identifier alone: the FNV-1a
// hash of the lower-cased id selects an input price in [0.1, 5.0] and output is 1.5x input.
// The same identifier always yields the same price across runs and processes.
func SyntheticPrice(modelID string) domain.Price {
	h := fnv.New64a()
	_, _ = h.Write([]byte(strings.ToLower(modelID)))

	step := h.Sum64() % uint64(syntheticSteps)
	input := minSyntheticPrice + float64(step)/1000
	input = round(input, 3)

	return domain.Price{
		Input:  input,
		Output: round(input*outputMultiplier, 4),
		Source: domain.PriceSynthetic,
	}
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
