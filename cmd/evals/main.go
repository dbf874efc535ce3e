// Command evals runs the D&D 5e tool evaluations.
//
// Usage:
//
//	go run ./cmd/evals -dir ./evals -suite all
//
// The paths suite runs offline and exits non-zero on any failure. The tool
// selection suite needs an LLM; this command only reports its coverage. To
// score a model, implement evals.ToolSelector and call EvaluateToolSelection.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/olgasafonova/dnd5e-mcp-server/evals"
	"github.com/olgasafonova/dnd5e-mcp-server/internal/dnd5e"
)

func main() {
	dir := flag.String("dir", "./evals", "Directory containing eval JSON files")
	suite := flag.String("suite", "all", "Suite to load: paths, tool_selection, or all")
	verbose := flag.Bool("verbose", false, "Show detailed test information")
	flag.Parse()

	fmt.Println("D&D 5e MCP Server - Evaluation Framework")
	fmt.Println("========================================")

	ok := true
	switch *suite {
	case "paths":
		ok = runPaths(*dir, *verbose)
	case "tool_selection":
		describeToolSelection(*dir, *verbose)
	case "all":
		ok = runPaths(*dir, *verbose)
		describeToolSelection(*dir, *verbose)
	default:
		fmt.Fprintf(os.Stderr, "Unknown suite: %s\n", *suite)
		os.Exit(2)
	}

	if !ok {
		os.Exit(1)
	}
}

func runPaths(dir string, verbose bool) bool {
	suite, err := evals.LoadPathSuite(filepath.Join(dir, "paths.json"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading path suite: %v\n", err)
		os.Exit(1)
	}

	metrics, results := evals.RunPathSuite(suite)
	fmt.Print(evals.FormatMetrics(metrics, suite.Name))

	if verbose {
		fmt.Println("\nCases:")
		for _, r := range results {
			mark := "✓"
			if !r.Passed {
				mark = "✗"
			}
			fmt.Printf("  %s [%s] %s → %s\n", mark, r.CaseID, r.Tool, r.Got)
		}
	}
	return metrics.FailedTests == 0
}

func describeToolSelection(dir string, verbose bool) {
	suite, err := evals.LoadToolSelectionSuite(filepath.Join(dir, "tool_selection.json"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading tool selection suite: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("\nTool Selection Suite: %s\n", suite.Name)
	fmt.Printf("Version: %s\n", suite.Version)
	fmt.Printf("Description: %s\n", suite.Description)
	fmt.Printf("Total Tests: %d\n\n", len(suite.Tests))

	counts := make(map[string]int)
	for _, test := range suite.Tests {
		counts[test.ExpectedTool]++
	}

	fmt.Println("Tests by Tool:")
	var uncovered []string
	for _, name := range dnd5e.ToolNames() {
		fmt.Printf("  %-20s: %d\n", name, counts[name])
		if counts[name] == 0 {
			uncovered = append(uncovered, name)
		}
	}
	if len(uncovered) > 0 {
		sort.Strings(uncovered)
		fmt.Printf("\nUncovered tools: %v\n", uncovered)
	}

	if verbose {
		fmt.Println("\nTest Cases:")
		for _, test := range suite.Tests {
			fmt.Printf("  [%s] %s\n", test.ID, test.Input)
			fmt.Printf("    → %s %s\n", test.ExpectedTool, test.ExpectedPath)
			if len(test.NotTools) > 0 {
				fmt.Printf("    ✗ %v\n", test.NotTools)
			}
		}
	}
}
