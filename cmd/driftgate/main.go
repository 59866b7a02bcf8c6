package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/pdunmore/driftgate/internal/config"
	"github.com/pdunmore/driftgate/internal/gate"
	"github.com/pdunmore/driftgate/internal/host"
	"github.com/pdunmore/driftgate/internal/logging"
	"github.com/pdunmore/driftgate/internal/session"
	"github.com/pdunmore/driftgate/internal/turnlog"
)

// #region main

func main() {
	cfgPath := envOr("DRIFTGATE_CONFIG", "driftgate.yaml")
	hostAddr := envOr("DRIFTGATE_HOST", "http://localhost:8090")
	dbPath := envOr("DRIFTGATE_DB", "driftgate.db")

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("configuration error: %v", err)
	}

	diag := logging.New(cfg.Debug)
	defer diag.Sync()

	turns, err := turnlog.Open(dbPath)
	if err != nil {
		log.Fatalf("failed to open turn log: %v", err)
	}
	defer turns.Close()

	client := host.NewClient(hostAddr)
	sess := session.New()
	g := gate.New(cfg, sess, client, client, diag, turns)

	fmt.Println("driftgate ready.")
	fmt.Printf("  host: %s | db: %s | k=%d tau=%.2f\n", hostAddr, dbPath, cfg.CandidateCount, cfg.Tau)
	fmt.Println("Type your input (or 'quit' to exit):")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if input == "quit" || input == "exit" {
			break
		}

		text, ok := runTurn(g, client, input)
		if !ok {
			continue
		}
		fmt.Printf("\n%s\n\n", strings.TrimSpace(text))
	}

	sum := sess.Summary()
	fmt.Printf("session: outputs=%d regens=%d (%.0f%%) fatigue=%.0f%% drift=%.0f%%\n",
		sum.TotalOutputs, sum.TotalRegens, sum.RegenRate, sum.FatigueRate, sum.DriftRate)
}

// #endregion main

// #region turn-loop

// runTurn drives one logical turn: the gate signals retry and this loop,
// which owns the generate call, re-enters from directive synthesis.
func runTurn(g *gate.Gate, gen host.Generator, input string) (string, bool) {
	for {
		ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
		directive := g.BeginTurn(ctx)

		raw, err := gen.Generate(ctx, input+"\n\n"+directive)
		cancel()
		if err != nil {
			log.Printf("generator error: %v", err)
			return "", false
		}

		out := g.EvaluateGeneration(context.Background(), raw)
		if out.Accepted() {
			if out.Forced {
				log.Printf("[turn %s] accepted after retry cap (%s)", out.TurnID, out.Scores.Label)
			}
			return out.Text, true
		}
		log.Printf("[turn %s] regenerating (attempt %d): %s",
			out.TurnID, out.Attempt, strings.Join(out.Diagnostics, "; "))
	}
}

// #endregion turn-loop

// #region helpers

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// #endregion helpers
