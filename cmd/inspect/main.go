package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/pdunmore/driftgate/internal/turnlog"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to driftgate.db")
	last := flag.Int("last", 20, "show N most recent attempts")
	jsonOut := flag.Bool("json", false, "output as JSON instead of a table")
	flag.Parse()

	if *dbPath == "" {
		fmt.Fprintln(os.Stderr, "usage: inspect --db path/to/driftgate.db [--last N] [--json]")
		os.Exit(2)
	}

	store, err := turnlog.Open(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	if err := run(store, *last, *jsonOut); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region report

type report struct {
	Attempts []turnlog.Row   `json:"attempts"`
	Metrics  turnlog.Metrics `json:"metrics"`
}

func run(store *turnlog.Store, last int, jsonOut bool) error {
	rows, err := store.Recent(last)
	if err != nil {
		return err
	}
	metrics, err := store.LoadMetrics()
	if err != nil {
		return err
	}

	if jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report{Attempts: rows, Metrics: metrics})
	}

	if len(rows) == 0 {
		fmt.Println("no attempts recorded")
	} else {
		fmt.Printf("%-10s %-3s %-5s %-9s %-16s %-6s %s\n",
			"turn", "try", "agg", "label", "action", "forced", "reason")
		for _, r := range rows {
			forced := ""
			if r.Forced {
				forced = "yes"
			}
			fmt.Printf("%-10s %-3d %-5.1f %-9s %-16s %-6s %s\n",
				shortID(r.TurnID), r.Attempt, r.Aggregate, r.Label, r.Action, forced, r.Reason)
		}
	}

	fmt.Println()
	fmt.Printf("outputs=%d regens=%d fatigue=%d drift=%d empty=%d\n",
		metrics.TotalOutputs, metrics.TotalRegens,
		metrics.FatigueDetections, metrics.DriftDetections, metrics.EmptyResults)
	if metrics.TotalOutputs > 0 {
		n := float64(metrics.TotalOutputs)
		fmt.Printf("regen rate %.1f%% | fatigue rate %.1f%% | drift rate %.1f%%\n",
			100*float64(metrics.TotalRegens)/n,
			100*float64(metrics.FatigueDetections)/n,
			100*float64(metrics.DriftDetections)/n)
	}
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// #endregion report
