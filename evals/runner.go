// Package evals checks tool calls against recorded expectations.
//
// Two suites live next to this file. paths.json pins the exact API path (or
// error) every tool call resolves to and runs without a network or an LLM.
// tool_selection.json pairs natural language requests with the tool call an
// LLM should make; a ToolSelector supplies the calls and they are judged by
// the path they resolve to, so equivalent argument spellings pass.
package evals

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/olgasafonova/dnd5e-mcp-server/internal/dnd5e"
)

// PathCase is one tool call and the request path or error it must produce.
// Exactly one of ExpectedPath and ExpectedError is set; ExpectedError is a
// prefix of the error text.
type PathCase struct {
	ID            string          `json:"id"`
	Category      string          `json:"category"`
	Tool          string          `json:"tool"`
	Args          json.RawMessage `json:"args,omitempty"`
	ExpectedPath  string          `json:"expected_path,omitempty"`
	ExpectedError string          `json:"expected_error,omitempty"`
}

// PathSuite contains all path cases
type PathSuite struct {
	Name        string     `json:"name"`
	Version     string     `json:"version"`
	Description string     `json:"description"`
	Cases       []PathCase `json:"cases"`
}

// PathResult is the outcome of one PathCase
type PathResult struct {
	CaseID string
	Tool   string
	Got    string // resolved path, or error text
	Passed bool
	Reason string
}

// ToolSelectionTest represents a single tool selection evaluation case
type ToolSelectionTest struct {
	ID           string   `json:"id"`
	Category     string   `json:"category"`
	Input        string   `json:"input"`
	ExpectedTool string   `json:"expected_tool"`
	ExpectedPath string   `json:"expected_path"`
	NotTools     []string `json:"not_tools,omitempty"`
}

// ToolSelectionSuite contains all tool selection tests
type ToolSelectionSuite struct {
	Name        string              `json:"name"`
	Version     string              `json:"version"`
	Description string              `json:"description"`
	Tests       []ToolSelectionTest `json:"tests"`
}

// ToolSelectionResult represents the result of a single tool selection evaluation
type ToolSelectionResult struct {
	TestID       string
	Input        string
	ExpectedTool string
	ActualTool   string
	ActualPath   string
	Passed       bool
	Errors       []string
}

// ToolSelector is an interface that an LLM or mock can implement for testing
type ToolSelector interface {
	// SelectTool returns the tool name and raw JSON arguments for a natural language input
	SelectTool(input string) (toolName string, args json.RawMessage, err error)
}

// EvalMetrics contains aggregate metrics for an evaluation run
type EvalMetrics struct {
	TotalTests    int
	PassedTests   int
	FailedTests   int
	Accuracy      float64 // PassedTests / TotalTests
	ByCategory    map[string]*CategoryMetrics
	ByTool        map[string]*CategoryMetrics
	FailedDetails []string
}

// CategoryMetrics counts results in one bucket
type CategoryMetrics struct {
	Total  int
	Passed int
	Failed int
}

func newMetrics() *EvalMetrics {
	return &EvalMetrics{
		ByCategory: make(map[string]*CategoryMetrics),
		ByTool:     make(map[string]*CategoryMetrics),
	}
}

// record counts one result under its category and tool.
func (m *EvalMetrics) record(category, tool string, passed bool, detail string) {
	m.TotalTests++
	for _, bucket := range []*CategoryMetrics{bucketFor(m.ByCategory, category), bucketFor(m.ByTool, tool)} {
		bucket.Total++
		if passed {
			bucket.Passed++
		} else {
			bucket.Failed++
		}
	}
	if passed {
		m.PassedTests++
	} else {
		m.FailedTests++
		m.FailedDetails = append(m.FailedDetails, detail)
	}
	m.Accuracy = float64(m.PassedTests) / float64(m.TotalTests)
}

func bucketFor(buckets map[string]*CategoryMetrics, key string) *CategoryMetrics {
	b, ok := buckets[key]
	if !ok {
		b = &CategoryMetrics{}
		buckets[key] = b
	}
	return b
}

// LoadPathSuite loads path cases from a JSON file
func LoadPathSuite(path string) (*PathSuite, error) {
	var suite PathSuite
	if err := loadJSON(path, &suite); err != nil {
		return nil, err
	}
	for i, c := range suite.Cases {
		if (c.ExpectedPath == "") == (c.ExpectedError == "") {
			return nil, fmt.Errorf("case %d (%s): set exactly one of expected_path and expected_error", i, c.ID)
		}
	}
	return &suite, nil
}

// LoadToolSelectionSuite loads tool selection tests from a JSON file
func LoadToolSelectionSuite(path string) (*ToolSelectionSuite, error) {
	var suite ToolSelectionSuite
	if err := loadJSON(path, &suite); err != nil {
		return nil, err
	}
	return &suite, nil
}

func loadJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading file: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parsing JSON: %w", err)
	}
	return nil
}

// LoadAllEvals loads both suites from a directory
func LoadAllEvals(dir string) (*PathSuite, *ToolSelectionSuite, error) {
	paths, err := LoadPathSuite(filepath.Join(dir, "paths.json"))
	if err != nil {
		return nil, nil, fmt.Errorf("loading paths: %w", err)
	}
	selection, err := LoadToolSelectionSuite(filepath.Join(dir, "tool_selection.json"))
	if err != nil {
		return nil, nil, fmt.Errorf("loading tool selection: %w", err)
	}
	return paths, selection, nil
}

// RunPathSuite resolves every case with dnd5e.BuildPath. No request is sent.
func RunPathSuite(suite *PathSuite) (*EvalMetrics, []PathResult) {
	metrics := newMetrics()
	results := make([]PathResult, 0, len(suite.Cases))

	for _, c := range suite.Cases {
		result := PathResult{CaseID: c.ID, Tool: c.Tool}

		path, err := dnd5e.BuildPath(c.Tool, c.Args)
		switch {
		case err != nil:
			result.Got = err.Error()
			if c.ExpectedError == "" {
				result.Reason = fmt.Sprintf("expected path %s, got error %q", c.ExpectedPath, result.Got)
			} else if !strings.HasPrefix(result.Got, c.ExpectedError) {
				result.Reason = fmt.Sprintf("expected error %q, got %q", c.ExpectedError, result.Got)
			}
		default:
			result.Got = path
			if c.ExpectedPath == "" {
				result.Reason = fmt.Sprintf("expected error %q, got path %s", c.ExpectedError, path)
			} else if path != c.ExpectedPath {
				result.Reason = fmt.Sprintf("expected path %s, got %s", c.ExpectedPath, path)
			}
		}
		result.Passed = result.Reason == ""

		metrics.record(c.Category, c.Tool, result.Passed, fmt.Sprintf("[%s] %s", c.ID, result.Reason))
		results = append(results, result)
	}

	return metrics, results
}

// EvaluateToolSelection runs tool selection tests against a selector. A test
// passes when the selector picks the expected tool, avoids every NotTools
// entry, and its arguments resolve to ExpectedPath.
func EvaluateToolSelection(suite *ToolSelectionSuite, selector ToolSelector) (*EvalMetrics, []ToolSelectionResult) {
	metrics := newMetrics()
	results := make([]ToolSelectionResult, 0, len(suite.Tests))

	for _, test := range suite.Tests {
		actualTool, args, err := selector.SelectTool(test.Input)

		result := ToolSelectionResult{
			TestID:       test.ID,
			Input:        test.Input,
			ExpectedTool: test.ExpectedTool,
			ActualTool:   actualTool,
		}

		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("selector error: %v", err))
		} else {
			if actualTool != test.ExpectedTool {
				result.Errors = append(result.Errors,
					fmt.Sprintf("wrong tool: expected %s, got %s", test.ExpectedTool, actualTool))
			}
			for _, forbidden := range test.NotTools {
				if actualTool == forbidden {
					result.Errors = append(result.Errors, fmt.Sprintf("selected forbidden tool: %s", forbidden))
				}
			}
			path, pathErr := dnd5e.BuildPath(actualTool, args)
			if pathErr != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("unusable arguments: %v", pathErr))
			} else {
				result.ActualPath = path
				if test.ExpectedPath != "" && path != test.ExpectedPath {
					result.Errors = append(result.Errors,
						fmt.Sprintf("wrong path: expected %s, got %s", test.ExpectedPath, path))
				}
			}
		}
		result.Passed = len(result.Errors) == 0

		metrics.record(test.Category, test.ExpectedTool, result.Passed,
			fmt.Sprintf("[%s] %s: %s", test.ID, test.Input, strings.Join(result.Errors, "; ")))
		results = append(results, result)
	}

	return metrics, results
}

// FormatMetrics returns a human-readable summary of evaluation metrics
func FormatMetrics(metrics *EvalMetrics, suiteName string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "\n=== %s ===\n", suiteName)
	fmt.Fprintf(&b, "Total: %d tests\n", metrics.TotalTests)
	fmt.Fprintf(&b, "Passed: %d (%.1f%%)\n", metrics.PassedTests, metrics.Accuracy*100)
	fmt.Fprintf(&b, "Failed: %d\n", metrics.FailedTests)

	writeBuckets(&b, "By Category", metrics.ByCategory)
	writeBuckets(&b, "By Tool", metrics.ByTool)

	const maxShown = 10
	if n := len(metrics.FailedDetails); n > 0 {
		shown := metrics.FailedDetails
		if n > maxShown {
			shown = shown[:maxShown]
			fmt.Fprintf(&b, "\nFailed Tests (showing first %d of %d):\n", maxShown, n)
		} else {
			b.WriteString("\nFailed Tests:\n")
		}
		for _, detail := range shown {
			fmt.Fprintf(&b, "  - %s\n", detail)
		}
	}

	return b.String()
}

func writeBuckets(b *strings.Builder, title string, buckets map[string]*CategoryMetrics) {
	if len(buckets) == 0 {
		return
	}
	keys := make([]string, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fmt.Fprintf(b, "\n%s:\n", title)
	for _, k := range keys {
		m := buckets[k]
		if m.Total == 0 {
			continue
		}
		acc := float64(m.Passed) / float64(m.Total) * 100
		fmt.Fprintf(b, "  %-25s: %d/%d (%.0f%%)\n", k, m.Passed, m.Total, acc)
	}
}
