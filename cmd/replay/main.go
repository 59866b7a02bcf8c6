package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/pdunmore/driftgate/internal/replay"
)

// #region main

func main() {
	fixturePath := flag.String("fixture", "", "path to fixture JSON")
	verbose := flag.Bool("v", false, "print per-turn results")
	flag.Parse()

	if *fixturePath == "" {
		fmt.Fprintln(os.Stderr, "usage: replay --fixture path/to/fixture.json [-v]")
		os.Exit(2)
	}

	os.Exit(runFixture(*fixturePath, *verbose))
}

// #endregion main

// #region fixture-mode

func runFixture(path string, verbose bool) int {
	fixture, err := replay.LoadFixture(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load fixture: %v\n", err)
		return 2
	}
	cfg, err := fixture.Config.ToConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "fixture config: %v\n", err)
		return 2
	}

	if fixture.Description != "" {
		fmt.Printf("replaying: %s\n", fixture.Description)
	}

	results, sum := replay.Replay(cfg, fixture.Turns)

	if verbose {
		for _, r := range results {
			fmt.Printf("  %-12s attempts=%d action=%-16s label=%-9s aggregate=%.1f\n",
				r.TurnID, r.Attempts, r.Action, r.Label, r.Aggregate)
		}
	}

	fmt.Printf("turns=%d accepts=%d forced=%d starved=%d attempts=%d\n",
		sum.TotalTurns, sum.Accepts, sum.ForcedAccepts, sum.Starved, sum.TotalAttempts)

	// Verify expectations when the fixture pins them.
	failures := 0
	byID := make(map[string]replay.Result, len(results))
	for _, r := range results {
		byID[r.TurnID] = r
	}
	for _, want := range fixture.ExpectedResults {
		got, ok := byID[want.TurnID]
		if !ok {
			fmt.Fprintf(os.Stderr, "MISMATCH %s: no result\n", want.TurnID)
			failures++
			continue
		}
		if got.Action != want.Action {
			fmt.Fprintf(os.Stderr, "MISMATCH %s: action %s, want %s\n", want.TurnID, got.Action, want.Action)
			failures++
		}
		if want.Label != "" && got.Label != want.Label {
			fmt.Fprintf(os.Stderr, "MISMATCH %s: label %s, want %s\n", want.TurnID, got.Label, want.Label)
			failures++
		}
	}
	if failures > 0 {
		fmt.Fprintf(os.Stderr, "%d expectation(s) failed\n", failures)
		return 1
	}
	if len(fixture.ExpectedResults) > 0 {
		fmt.Println("all expectations met")
	}
	return 0
}

// #endregion fixture-mode
