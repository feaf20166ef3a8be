package main

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/nulzo/model-radar/internal/cli"
	"github.com/nulzo/model-radar/internal/core/domain"
	"github.com/nulzo/model-radar/internal/core/services/pipeline"
)

func money(v float64) string { return "$" + strconv.FormatFloat(v, 'f', 2, 64) }

func num(v float64, prec int) string { return strconv.FormatFloat(v, 'f', prec, 64) }

func printCatalog(w io.Writer, entries []domain.CatalogEntry) {
	t := cli.NewTable("PROVIDER", "MODEL", "INPUT/M", "OUTPUT/M", "PRICE")
	for _, e := range entries {
		t.Append(e.Provider, e.ModelID, money(e.InputPrice), money(e.OutputPrice), string(e.PriceSource))
	}
	t.Render(w)
	fmt.Fprintf(w, "\n%d models\n", len(entries))
}

func printBenchmarks(w io.Writer, results []domain.BenchmarkResult) {
	// task columns in stable order
	taskSet := map[string]struct{}{}
	for _, r := range results {
		for task := range r.Scores {
			taskSet[task] = struct{}{}
		}
	}
	tasks := make([]string, 0, len(taskSet))
	for task := range taskSet {
		tasks = append(tasks, task)
	}
	sort.Strings(tasks)

	headers := append([]string{"PROVIDER", "MODEL"}, upper(tasks)...)
	t := cli.NewTable(append(headers, "SPEED", "MODE")...)
	for _, r := range results {
		row := []string{r.Provider, r.ModelID}
		for _, task := range tasks {
			if s, ok := r.Scores[task]; ok {
				row = append(row, num(s, 2))
			} else {
				row = append(row, "-")
			}
		}
		t.Append(append(row, num(r.AvgSpeed, 1), string(r.Mode))...)
	}
	t.Render(w)
	fmt.Fprintf(w, "\n%d models benchmarked\n", len(results))
}

func printRanked(w io.Writer, ranked []domain.RankedModel) {
	t := cli.NewTable("#", "PROVIDER", "MODEL", "PERF", "COST/M", "VALUE", "SPEED")
	for _, r := range ranked {
		t.Append(strconv.Itoa(r.Rank), r.Provider, r.ModelID, num(r.AvgPerf, 3), money(r.AvgCost), num(r.ValueScore, 2), num(r.AvgSpeed, 1))
	}
	t.Render(w)
}

func printDeals(w io.Writer, deals domain.Deals) {
	sections := []struct {
		category domain.DealCategory
		title    string
	}{
		{domain.ValueKing, "Value kings"},
		{domain.SpeedDemon, "Speed demons"},
	}
	for i, s := range sections {
		if i > 0 {
			fmt.Fprintln(w)
		}
		models := deals[s.category]
		fmt.Fprintf(w, "%s %s (%d)\n", cli.Arrow(), cli.Style(s.title, cli.BoldCode), len(models))
		if len(models) == 0 {
			fmt.Fprintln(w, cli.Style("  none", cli.DimCode))
			continue
		}
		printRanked(w, models)
	}
}

func printReport(w io.Writer, r *pipeline.Report) {
	mark := cli.CheckMark()
	switch r.Run.Status {
	case domain.RunFailed:
		mark = cli.CrossMark()
	case domain.RunDegraded:
		mark = cli.Style("!", cli.Yellow)
	}

	fmt.Fprintf(w, "%s run %s %s (stage %s, %s)\n", mark, r.Run.ID, r.Run.Status, r.State.Stage,
		r.Run.FinishedAt.Sub(r.Run.StartedAt).Round(time.Millisecond))
	fmt.Fprintf(w, "  catalog %d, benchmarked %d, ranked %d\n", r.Catalog, r.Benchmarked, len(r.Ranked))
	for _, warning := range r.Warnings {
		fmt.Fprintf(w, "  %s %s\n", cli.Style("warning:", cli.Yellow), warning)
	}

	if len(r.Ranked) > 0 {
		fmt.Fprintln(w)
		top := r.Ranked
		if len(top) > 10 {
			top = top[:10]
		}
		printRanked(w, top)
	}
	if r.Deals != nil {
		fmt.Fprintln(w)
		printDeals(w, r.Deals)
	}
}

func upper(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToUpper(s)
	}
	return out
}
