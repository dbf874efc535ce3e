// Command benchmark measures every tool against the live D&D 5e API.
//
// Usage:
//
//	go run ./cmd/benchmark -n 5
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/olgasafonova/dnd5e-mcp-server/internal/config"
	"github.com/olgasafonova/dnd5e-mcp-server/internal/dnd5e"
)

type call struct {
	tool string
	args string
}

type stats struct {
	min, max, total time.Duration
	runs, failures  int
	lastError       string
}

func (s *stats) add(d time.Duration, env dnd5e.Envelope) {
	if s.runs == 0 || d < s.min {
		s.min = d
	}
	if d > s.max {
		s.max = d
	}
	s.total += d
	s.runs++
	if env.IsError {
		s.failures++
		s.lastError = env.Text
	}
}

func (s *stats) avg() time.Duration {
	if s.runs == 0 {
		return 0
	}
	return s.total / time.Duration(s.runs)
}

// pickIndex lists a category and returns the first index in it, so the
// single-resource calls fetch something that exists.
func pickIndex(ctx context.Context, d *dnd5e.Dispatcher, category, fallback string) string {
	env := d.Dispatch(ctx, dnd5e.ToolListResources, json.RawMessage(`{"endpoint":"`+category+`"}`))
	if env.IsError {
		return fallback
	}
	var list dnd5e.ListResponse
	if err := json.Unmarshal([]byte(env.Text), &list); err != nil || len(list.Results) == 0 {
		return fallback
	}
	return list.Results[0].Index
}

func measureTools(ctx context.Context, d *dnd5e.Dispatcher, runs int) {
	fmt.Println("=== Per-tool latency ===")
	fmt.Println()

	spell := pickIndex(ctx, d, "spells", "fireball")
	class := pickIndex(ctx, d, "classes", "wizard")
	fmt.Printf("Using spell %q and class %q\n\n", spell, class)

	calls := []call{
		{dnd5e.ToolListEndpoints, `{}`},
		{dnd5e.ToolListResources, `{"endpoint":"monsters"}`},
		{dnd5e.ToolGetResource, `{"endpoint":"spells","index":"` + spell + `"}`},
		{dnd5e.ToolSearchSpells, `{"level":3,"school":"evocation"}`},
		{dnd5e.ToolSearchMonsters, `{"challenge_rating":5}`},
		{dnd5e.ToolGetClassLevels, `{"class_index":"` + class + `","level":5}`},
		{dnd5e.ToolGetClassSpells, `{"class_index":"` + class + `"}`},
	}

	fmt.Printf("%-18s %10s %10s %10s %8s\n", "tool", "min", "avg", "max", "errors")
	for _, c := range calls {
		var s stats
		for i := 0; i < runs; i++ {
			start := time.Now()
			env := d.Dispatch(ctx, c.tool, json.RawMessage(c.args))
			s.add(time.Since(start), env)
		}
		fmt.Printf("%-18s %10v %10v %10v %8d\n",
			c.tool, s.min.Round(time.Millisecond), s.avg().Round(time.Millisecond), s.max.Round(time.Millisecond), s.failures)
		if s.lastError != "" {
			fmt.Printf("  last error: %s\n", s.lastError)
		}
	}
	fmt.Println()
}

// measureConcurrency compares sequential and concurrent calls over the shared
// connection pool.
func measureConcurrency(ctx context.Context, d *dnd5e.Dispatcher) {
	fmt.Println("=== Sequential vs concurrent ===")
	fmt.Println()

	classes := []string{"barbarian", "bard", "cleric", "druid", "fighter", "monk"}
	run := func(class string) {
		d.Dispatch(ctx, dnd5e.ToolGetClassSpells, json.RawMessage(`{"class_index":"`+class+`"}`))
	}

	start := time.Now()
	for _, class := range classes {
		run(class)
	}
	sequential := time.Since(start)

	start = time.Now()
	var wg sync.WaitGroup
	for _, class := range classes {
		wg.Add(1)
		go func(class string) {
			defer wg.Done()
			run(class)
		}(class)
	}
	wg.Wait()
	concurrent := time.Since(start)

	fmt.Printf("   %d calls sequential: %v\n", len(classes), sequential.Round(time.Millisecond))
	fmt.Printf("   %d calls concurrent: %v\n", len(classes), concurrent.Round(time.Millisecond))
	if concurrent > 0 {
		fmt.Printf("   Speedup: %.1fx\n", float64(sequential)/float64(concurrent))
	}
	fmt.Println()
}

func main() {
	runs := flag.Int("n", 3, "Calls per tool")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	client := dnd5e.NewClient(
		dnd5e.WithTimeout(cfg.Timeout),
		dnd5e.WithUserAgent(cfg.UserAgent),
		dnd5e.WithLogger(logger),
	)
	defer client.Close()
	dispatcher := dnd5e.NewDispatcher(client, logger)

	fmt.Println("D&D 5e MCP Server - Live API Benchmark")
	fmt.Println("======================================")
	fmt.Printf("API: %s\n\n", dnd5e.BaseURL)

	ctx := context.Background()
	measureTools(ctx, dispatcher, max(*runs, 1))
	measureConcurrency(ctx, dispatcher)
}
