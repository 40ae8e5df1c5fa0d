// Package evals provides an evaluation framework for EVA Wiki tool selection.
// It checks that an LLM picks the right tool and extracts the right arguments
// from natural language requests, and that the suites cover the tool catalog.
package evals

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"reflect"
	"sort"
	"strings"

	"github.com/vsevolodlukovsky/evawiki-mcp/internal/jsonx"
)

// Suite file names inside an evals directory.
const (
	ToolSelectionFile = "tool_selection.json"
	ConfusionPairFile = "confusion_pairs.json"
	ArgumentFile      = "argument_correctness.json"
)

//go:embed *.json
var embedded embed.FS

// ToolSelectionTest represents a single tool selection evaluation case
type ToolSelectionTest struct {
	ID           string         `json:"id"`
	Category     string         `json:"category"`
	Input        string         `json:"input"`
	ExpectedTool string         `json:"expected_tool"`
	ExpectedArgs map[string]any `json:"expected_args"`
	NotTools     []string       `json:"not_tools"`
}

// ToolSelectionSuite contains all tool selection tests
type ToolSelectionSuite struct {
	Name        string              `json:"name"`
	Version     string              `json:"version"`
	Description string              `json:"description"`
	Tests       []ToolSelectionTest `json:"tests"`
}

// ConfusionPairTest represents a single disambiguation test
type ConfusionPairTest struct {
	Input    string `json:"input"`
	Expected string `json:"expected"`
	Reason   string `json:"reason"`
}

// ConfusionPair represents a pair of tools that are commonly confused
type ConfusionPair struct {
	ID             string              `json:"id"`
	Tools          []string            `json:"tools"`
	Disambiguation string              `json:"disambiguation"`
	Tests          []ConfusionPairTest `json:"tests"`
}

// ConfusionPairSuite contains all confusion pair tests
type ConfusionPairSuite struct {
	Name        string          `json:"name"`
	Version     string          `json:"version"`
	Description string          `json:"description"`
	Pairs       []ConfusionPair `json:"pairs"`
}

// ArgumentTest represents a single argument correctness test
type ArgumentTest struct {
	ID            string         `json:"id"`
	Tool          string         `json:"tool"`
	Input         string         `json:"input"`
	RequiredArgs  []string       `json:"required_args"`
	ExpectedArgs  map[string]any `json:"expected_args"`
	ForbiddenArgs []string       `json:"forbidden_args"`
	ArgNotes      string         `json:"arg_notes,omitempty"`
}

// ValidationRules documents argument conventions shared by the EVA tools
type ValidationRules struct {
	CodeFormat        string `json:"code_format"`
	FilterFormat      string `json:"filter_format"`
	BooleanHandling   string `json:"boolean_handling"`
	PaginationDefault string `json:"pagination_default"`
}

// ArgumentSuite contains all argument correctness tests
type ArgumentSuite struct {
	Name            string          `json:"name"`
	Version         string          `json:"version"`
	Description     string          `json:"description"`
	Tests           []ArgumentTest  `json:"tests"`
	ValidationRules ValidationRules `json:"validation_rules"`
}

// Suites bundles the three evaluation suites.
type Suites struct {
	ToolSelection  *ToolSelectionSuite
	ConfusionPairs *ConfusionPairSuite
	Arguments      *ArgumentSuite
}

// ToolSelectionResult represents the result of a single tool selection evaluation
type ToolSelectionResult struct {
	TestID       string
	Input        string
	ExpectedTool string
	ActualTool   string
	Passed       bool
	Errors       []string
}

// ConfusionPairResult represents the result of a confusion pair evaluation
type ConfusionPairResult struct {
	PairID       string
	TestInput    string
	ExpectedTool string
	ActualTool   string
	Reason       string
	Passed       bool
}

// ArgumentResult represents the result of an argument correctness evaluation
type ArgumentResult struct {
	TestID       string
	Tool         string
	Input        string
	ActualTool   string
	Passed       bool
	MissingArgs  []string
	WrongArgs    map[string]string // arg -> "expected X, got Y"
	ForbiddenHit []string
	Errors       []string
}

// EvalMetrics contains aggregate metrics for an evaluation run
type EvalMetrics struct {
	TotalTests    int
	PassedTests   int
	FailedTests   int
	Accuracy      float64 // PassedTests / TotalTests
	ByCategory    map[string]*CategoryMetrics
	ByTool        map[string]*ToolMetrics
	FailedDetails []string
}

// CategoryMetrics contains metrics per category
type CategoryMetrics struct {
	Total  int
	Passed int
	Failed int
}

// ToolMetrics contains metrics per tool
type ToolMetrics struct {
	ExpectedCount  int // times tool was expected
	SelectedCount  int // times tool was actually selected
	CorrectCount   int
	FalsePositives int // selected when another tool was expected
	FalseNegatives int // expected but another tool was selected
}

func newEvalMetrics() *EvalMetrics {
	return &EvalMetrics{
		ByCategory: make(map[string]*CategoryMetrics),
		ByTool:     make(map[string]*ToolMetrics),
	}
}

func (m *EvalMetrics) category(name string) *CategoryMetrics {
	c, ok := m.ByCategory[name]
	if !ok {
		c = &CategoryMetrics{}
		m.ByCategory[name] = c
	}
	return c
}

func (m *EvalMetrics) tool(name string) *ToolMetrics {
	t, ok := m.ByTool[name]
	if !ok {
		t = &ToolMetrics{}
		m.ByTool[name] = t
	}
	return t
}

// record counts one test outcome under category.
func (m *EvalMetrics) record(category string, passed bool, detail string) {
	m.TotalTests++
	c := m.category(category)
	c.Total++
	if passed {
		m.PassedTests++
		c.Passed++
		return
	}
	m.FailedTests++
	c.Failed++
	m.FailedDetails = append(m.FailedDetails, detail)
}

// selection counts which tool was picked against which was expected.
func (m *EvalMetrics) selection(expected, actual string) {
	m.tool(expected).ExpectedCount++
	m.tool(actual).SelectedCount++
	if expected == actual {
		m.tool(expected).CorrectCount++
		return
	}
	m.tool(expected).FalseNegatives++
	m.tool(actual).FalsePositives++
}

func (m *EvalMetrics) finish() {
	if m.TotalTests > 0 {
		m.Accuracy = float64(m.PassedTests) / float64(m.TotalTests)
	}
}

// LoadToolSelectionSuite loads tool selection tests from a JSON file
func LoadToolSelectionSuite(path string) (*ToolSelectionSuite, error) {
	return loadFile[ToolSelectionSuite](path)
}

// LoadConfusionPairSuite loads confusion pair tests from a JSON file
func LoadConfusionPairSuite(path string) (*ConfusionPairSuite, error) {
	return loadFile[ConfusionPairSuite](path)
}

// LoadArgumentSuite loads argument correctness tests from a JSON file
func LoadArgumentSuite(path string) (*ArgumentSuite, error) {
	return loadFile[ArgumentSuite](path)
}

func loadFile[T any](path string) (*T, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}
	return decode[T](data)
}

func loadFS[T any](fsys fs.FS, name string) (*T, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	return decode[T](data)
}

func decode[T any](data []byte) (*T, error) {
	var suite T
	if err := jsonx.Unmarshal(data, &suite); err != nil {
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}
	return &suite, nil
}

// LoadAllEvals loads all evaluation suites from a directory
func LoadAllEvals(dir string) (*Suites, error) {
	return LoadAllEvalsFS(os.DirFS(dir))
}

// LoadEmbedded loads the suites compiled into the binary.
func LoadEmbedded() (*Suites, error) {
	return LoadAllEvalsFS(embedded)
}

// LoadAllEvalsFS loads all evaluation suites from fsys.
func LoadAllEvalsFS(fsys fs.FS) (*Suites, error) {
	toolSelection, err := loadFS[ToolSelectionSuite](fsys, ToolSelectionFile)
	if err != nil {
		return nil, fmt.Errorf("loading tool selection: %w", err)
	}

	confusionPairs, err := loadFS[ConfusionPairSuite](fsys, ConfusionPairFile)
	if err != nil {
		return nil, fmt.Errorf("loading confusion pairs: %w", err)
	}

	arguments, err := loadFS[ArgumentSuite](fsys, ArgumentFile)
	if err != nil {
		return nil, fmt.Errorf("loading arguments: %w", err)
	}

	return &Suites{
		ToolSelection:  toolSelection,
		ConfusionPairs: confusionPairs,
		Arguments:      arguments,
	}, nil
}

// TestCount returns the number of test cases across all suites.
func (s *Suites) TestCount() int {
	n := len(s.ToolSelection.Tests) + len(s.Arguments.Tests)
	for _, pair := range s.ConfusionPairs.Pairs {
		n += len(pair.Tests)
	}
	return n
}

// ToolSelector is an interface that an LLM or mock can implement for testing
type ToolSelector interface {
	// SelectTool returns the tool name and arguments for a given natural language input
	SelectTool(input string) (toolName string, args map[string]any, err error)
}

// EvaluateToolSelection runs tool selection tests against a selector
func EvaluateToolSelection(suite *ToolSelectionSuite, selector ToolSelector) (*EvalMetrics, []ToolSelectionResult) {
	metrics := newEvalMetrics()
	results := make([]ToolSelectionResult, 0, len(suite.Tests))

	for _, test := range suite.Tests {
		actualTool, actualArgs, err := selector.SelectTool(test.Input)
		metrics.selection(test.ExpectedTool, actualTool)

		result := ToolSelectionResult{
			TestID:       test.ID,
			Input:        test.Input,
			ExpectedTool: test.ExpectedTool,
			ActualTool:   actualTool,
		}
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("selector error: %v", err))
		}
		if actualTool != test.ExpectedTool {
			result.Errors = append(result.Errors,
				fmt.Sprintf("wrong tool: expected %s, got %s", test.ExpectedTool, actualTool))
		}
		for _, forbidden := range test.NotTools {
			if actualTool == forbidden {
				result.Errors = append(result.Errors, fmt.Sprintf("selected forbidden tool: %s", forbidden))
			}
		}
		for _, key := range sortedKeys(test.ExpectedArgs) {
			expected := test.ExpectedArgs[key]
			actual, ok := actualArgs[key]
			switch {
			case !ok:
				result.Errors = append(result.Errors, fmt.Sprintf("missing arg %s (expected %v)", key, expected))
			case !compareValues(expected, actual):
				result.Errors = append(result.Errors,
					fmt.Sprintf("wrong arg %s: expected %v, got %v", key, expected, actual))
			}
		}

		result.Passed = len(result.Errors) == 0
		metrics.record(test.Category, result.Passed,
			fmt.Sprintf("[%s] %s: %s", test.ID, test.Input, strings.Join(result.Errors, "; ")))
		results = append(results, result)
	}

	metrics.finish()
	return metrics, results
}

// EvaluateConfusionPairs runs confusion pair tests against a selector
func EvaluateConfusionPairs(suite *ConfusionPairSuite, selector ToolSelector) (*EvalMetrics, []ConfusionPairResult) {
	metrics := newEvalMetrics()
	var results []ConfusionPairResult

	for _, pair := range suite.Pairs {
		for _, test := range pair.Tests {
			actualTool, _, err := selector.SelectTool(test.Input)
			metrics.selection(test.Expected, actualTool)

			result := ConfusionPairResult{
				PairID:       pair.ID,
				TestInput:    test.Input,
				ExpectedTool: test.Expected,
				ActualTool:   actualTool,
				Reason:       test.Reason,
				Passed:       err == nil && actualTool == test.Expected,
			}
			metrics.record(pair.ID, result.Passed,
				fmt.Sprintf("[%s] %s: expected %s, got %s (%s)",
					pair.ID, test.Input, test.Expected, actualTool, test.Reason))
			results = append(results, result)
		}
	}

	metrics.finish()
	return metrics, results
}

// EvaluateArguments runs argument correctness tests against a selector.
// A wrong tool or a selector error fails the test without checking arguments.
func EvaluateArguments(suite *ArgumentSuite, selector ToolSelector) (*EvalMetrics, []ArgumentResult) {
	metrics := newEvalMetrics()
	results := make([]ArgumentResult, 0, len(suite.Tests))

	for _, test := range suite.Tests {
		actualTool, actualArgs, err := selector.SelectTool(test.Input)

		result := ArgumentResult{
			TestID:     test.ID,
			Tool:       test.Tool,
			Input:      test.Input,
			ActualTool: actualTool,
			WrongArgs:  make(map[string]string),
		}

		switch {
		case err != nil:
			result.Errors = append(result.Errors, fmt.Sprintf("selector error: %v", err))
		case actualTool != test.Tool:
			result.Errors = append(result.Errors, fmt.Sprintf("wrong tool: expected %s, got %s", test.Tool, actualTool))
		default:
			checkArguments(&result, test, actualArgs)
		}

		result.Passed = len(result.Errors) == 0 && len(result.MissingArgs) == 0 &&
			len(result.WrongArgs) == 0 && len(result.ForbiddenHit) == 0

		metrics.record(test.Tool, result.Passed,
			fmt.Sprintf("[%s] %s: %s", test.ID, test.Input, strings.Join(argumentErrors(result), "; ")))
		results = append(results, result)
	}

	metrics.finish()
	return metrics, results
}

func checkArguments(result *ArgumentResult, test ArgumentTest, args map[string]any) {
	for _, name := range test.RequiredArgs {
		if _, ok := args[name]; !ok {
			result.MissingArgs = append(result.MissingArgs, name)
		}
	}
	for _, key := range sortedKeys(test.ExpectedArgs) {
		actual, ok := args[key]
		if !ok {
			if !contains(result.MissingArgs, key) {
				result.MissingArgs = append(result.MissingArgs, key)
			}
			continue
		}
		if expected := test.ExpectedArgs[key]; !compareValues(expected, actual) {
			result.WrongArgs[key] = fmt.Sprintf("expected %v, got %v", expected, actual)
		}
	}
	for _, forbidden := range test.ForbiddenArgs {
		if _, ok := args[forbidden]; ok {
			result.ForbiddenHit = append(result.ForbiddenHit, forbidden)
		}
	}
}

func argumentErrors(result ArgumentResult) []string {
	details := append([]string(nil), result.Errors...)
	if len(result.MissingArgs) > 0 {
		details = append(details, fmt.Sprintf("missing: %v", result.MissingArgs))
	}
	for _, k := range sortedKeys(result.WrongArgs) {
		details = append(details, fmt.Sprintf("%s: %s", k, result.WrongArgs[k]))
	}
	if len(result.ForbiddenHit) > 0 {
		details = append(details, fmt.Sprintf("forbidden: %v", result.ForbiddenHit))
	}
	return details
}

// Coverage reports how the suites relate to the registered tool catalog.
type Coverage struct {
	Covered   []string // catalog tools referenced by at least one test
	Uncovered []string // catalog tools no test references
	Unknown   []string // tools referenced by tests but missing from the catalog
}

// Complete reports whether every catalog tool is tested and no test names an unknown tool.
func (c *Coverage) Complete() bool {
	return len(c.Uncovered) == 0 && len(c.Unknown) == 0
}

// CheckCoverage compares the tools referenced by the suites against catalog.
func CheckCoverage(suites *Suites, catalog []string) *Coverage {
	referenced := make(map[string]bool)
	for _, test := range suites.ToolSelection.Tests {
		referenced[test.ExpectedTool] = true
		for _, name := range test.NotTools {
			referenced[name] = true
		}
	}
	for _, pair := range suites.ConfusionPairs.Pairs {
		for _, name := range pair.Tools {
			referenced[name] = true
		}
		for _, test := range pair.Tests {
			referenced[test.Expected] = true
		}
	}
	for _, test := range suites.Arguments.Tests {
		referenced[test.Tool] = true
	}

	known := make(map[string]bool, len(catalog))
	coverage := &Coverage{}
	for _, name := range catalog {
		known[name] = true
		if referenced[name] {
			coverage.Covered = append(coverage.Covered, name)
		} else {
			coverage.Uncovered = append(coverage.Uncovered, name)
		}
	}
	for _, name := range sortedKeys(referenced) {
		if !known[name] {
			coverage.Unknown = append(coverage.Unknown, name)
		}
	}
	sort.Strings(coverage.Covered)
	sort.Strings(coverage.Uncovered)
	return coverage
}

// compareValues compares expected and actual values, treating all numeric
// representations (json.Number, ints, floats) as equal when their values match.
func compareValues(expected, actual any) bool {
	if expected == nil || actual == nil {
		return expected == nil && actual == nil
	}

	if ef, ok := toFloat(expected); ok {
		af, ok := toFloat(actual)
		return ok && ef == af
	}

	ev := reflect.ValueOf(expected)
	av := reflect.ValueOf(actual)
	if ev.Kind() == reflect.Slice && av.Kind() == reflect.Slice {
		if ev.Len() != av.Len() {
			return false
		}
		for i := 0; i < ev.Len(); i++ {
			if !compareValues(ev.Index(i).Interface(), av.Index(i).Interface()) {
				return false
			}
		}
		return true
	}

	return reflect.DeepEqual(expected, actual)
}

func toFloat(v any) (float64, bool) {
	if n, ok := v.(json.Number); ok {
		f, err := n.Float64()
		return f, err == nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return 0, false
}

// FormatMetrics returns a human-readable summary of evaluation metrics
func FormatMetrics(metrics *EvalMetrics, suiteName string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "\n=== %s ===\n", suiteName)
	fmt.Fprintf(&b, "Total: %d tests\n", metrics.TotalTests)
	fmt.Fprintf(&b, "Passed: %d (%.1f%%)\n", metrics.PassedTests, metrics.Accuracy*100)
	fmt.Fprintf(&b, "Failed: %d\n", metrics.FailedTests)

	if len(metrics.ByCategory) > 0 {
		b.WriteString("\nBy Category:\n")
		for _, cat := range sortedKeys(metrics.ByCategory) {
			m := metrics.ByCategory[cat]
			if m.Total > 0 {
				acc := float64(m.Passed) / float64(m.Total) * 100
				fmt.Fprintf(&b, "  %-25s: %d/%d (%.0f%%)\n", cat, m.Passed, m.Total, acc)
			}
		}
	}

	const maxShown = 10
	if n := len(metrics.FailedDetails); n > 0 {
		shown := metrics.FailedDetails
		if n > maxShown {
			fmt.Fprintf(&b, "\nFailed Tests (showing first %d of %d):\n", maxShown, n)
			shown = shown[:maxShown]
		} else {
			b.WriteString("\nFailed Tests:\n")
		}
		for _, detail := range shown {
			fmt.Fprintf(&b, "  - %s\n", detail)
		}
	}

	return b.String()
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
