// Command evals reports on the EVA Wiki tool selection evaluation suites.
//
// Usage:
//
//	go run ./cmd/evals --suite all
//	go run ./cmd/evals --dir ./evals --suite confusion_pairs --verbose
//
// Without --dir the suites compiled into the binary are used. The command
// fails when the suites reference tools missing from the catalog. For actual
// LLM evaluation, implement evals.ToolSelector and call the Evaluate functions.
package main

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/vsevolodlukovsky/evawiki-mcp/evals"
	"github.com/vsevolodlukovsky/evawiki-mcp/tools"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		dir     string
		suite   string
		verbose bool
	)

	cmd := &cobra.Command{
		Use:          "evals",
		Short:        "Summarize the EVA Wiki tool evaluation suites",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			suites, err := load(dir)
			if err != nil {
				return err
			}
			return report(cmd.OutOrStdout(), suites, suite, verbose)
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "Directory containing eval JSON files (default: embedded suites)")
	cmd.Flags().StringVar(&suite, "suite", "all", "Suite to show: tool_selection, confusion_pairs, arguments, or all")
	cmd.Flags().BoolVar(&verbose, "verbose", false, "Show detailed test information")
	return cmd
}

func load(dir string) (*evals.Suites, error) {
	if dir == "" {
		return evals.LoadEmbedded()
	}
	return evals.LoadAllEvals(dir)
}

func report(w io.Writer, suites *evals.Suites, suite string, verbose bool) error {
	fmt.Fprintln(w, "EVA Wiki MCP Server - Evaluation Framework")
	fmt.Fprintln(w, "==========================================")
	fmt.Fprintln(w)

	switch suite {
	case "tool_selection":
		printToolSelection(w, suites.ToolSelection, verbose)
	case "confusion_pairs":
		printConfusionPairs(w, suites.ConfusionPairs, verbose)
	case "arguments":
		printArguments(w, suites.Arguments, verbose)
	case "all":
		printSummary(w, suites)
	default:
		return fmt.Errorf("unknown suite: %s", suite)
	}

	return printCoverage(w, suites, verbose)
}

func printToolSelection(w io.Writer, suite *evals.ToolSelectionSuite, verbose bool) {
	fmt.Fprintf(w, "Tool Selection Suite: %s\n", suite.Name)
	fmt.Fprintf(w, "Version: %s\n", suite.Version)
	fmt.Fprintf(w, "Description: %s\n", suite.Description)
	fmt.Fprintf(w, "Total Tests: %d\n\n", len(suite.Tests))

	categories := make(map[string]int)
	byTool := make(map[string]int)
	for _, test := range suite.Tests {
		categories[test.Category]++
		byTool[test.ExpectedTool]++
	}

	fmt.Fprintln(w, "Tests by Category:")
	printCounts(w, categories, 15)
	fmt.Fprintln(w, "Tests by Tool:")
	printCounts(w, byTool, 40)

	if verbose {
		fmt.Fprintln(w, "Test Cases:")
		for _, test := range suite.Tests {
			fmt.Fprintf(w, "  [%s] %s\n", test.ID, test.Input)
			fmt.Fprintf(w, "    -> %s\n", test.ExpectedTool)
			if len(test.NotTools) > 0 {
				fmt.Fprintf(w, "    not %v\n", test.NotTools)
			}
		}
		fmt.Fprintln(w)
	}
}

func printConfusionPairs(w io.Writer, suite *evals.ConfusionPairSuite, verbose bool) {
	fmt.Fprintf(w, "Confusion Pairs Suite: %s\n", suite.Name)
	fmt.Fprintf(w, "Version: %s\n", suite.Version)
	fmt.Fprintf(w, "Description: %s\n", suite.Description)
	fmt.Fprintf(w, "Total Pairs: %d\n\n", len(suite.Pairs))

	fmt.Fprintln(w, "Confusion Pairs:")
	for _, pair := range suite.Pairs {
		fmt.Fprintf(w, "\n  %s:\n", pair.ID)
		fmt.Fprintf(w, "    Tools: %v\n", pair.Tools)
		fmt.Fprintf(w, "    Rule: %s\n", pair.Disambiguation)
		fmt.Fprintf(w, "    Tests: %d\n", len(pair.Tests))

		if verbose {
			for _, test := range pair.Tests {
				fmt.Fprintf(w, "      %q\n", test.Input)
				fmt.Fprintf(w, "        -> %s (%s)\n", test.Expected, test.Reason)
			}
		}
	}
	fmt.Fprintln(w)
}

func printArguments(w io.Writer, suite *evals.ArgumentSuite, verbose bool) {
	fmt.Fprintf(w, "Argument Suite: %s\n", suite.Name)
	fmt.Fprintf(w, "Version: %s\n", suite.Version)
	fmt.Fprintf(w, "Description: %s\n", suite.Description)
	fmt.Fprintf(w, "Total Tests: %d\n\n", len(suite.Tests))

	byTool := make(map[string]int)
	for _, test := range suite.Tests {
		byTool[test.Tool]++
	}
	fmt.Fprintln(w, "Tests by Tool:")
	printCounts(w, byTool, 40)

	rules := suite.ValidationRules
	fmt.Fprintln(w, "Validation Rules:")
	fmt.Fprintf(w, "  Code Format: %s\n", rules.CodeFormat)
	fmt.Fprintf(w, "  Filter Format: %s\n", rules.FilterFormat)
	fmt.Fprintf(w, "  Boolean Handling: %s\n", rules.BooleanHandling)
	fmt.Fprintf(w, "  Pagination Default: %s\n\n", rules.PaginationDefault)

	if verbose {
		fmt.Fprintln(w, "Test Cases:")
		for _, test := range suite.Tests {
			fmt.Fprintf(w, "  [%s] %s\n", test.ID, test.Input)
			fmt.Fprintf(w, "    Tool: %s\n", test.Tool)
			fmt.Fprintf(w, "    Required: %v\n", test.RequiredArgs)
			fmt.Fprintf(w, "    Expected: %v\n", test.ExpectedArgs)
			if len(test.ForbiddenArgs) > 0 {
				fmt.Fprintf(w, "    Forbidden: %v\n", test.ForbiddenArgs)
			}
			if test.ArgNotes != "" {
				fmt.Fprintf(w, "    Notes: %s\n", test.ArgNotes)
			}
		}
		fmt.Fprintln(w)
	}
}

func printSummary(w io.Writer, suites *evals.Suites) {
	confusionTests := 0
	for _, pair := range suites.ConfusionPairs.Pairs {
		confusionTests += len(pair.Tests)
	}

	fmt.Fprintln(w, "Summary:")
	fmt.Fprintln(w, "--------")
	fmt.Fprintf(w, "Tool Selection Tests:   %d\n", len(suites.ToolSelection.Tests))
	fmt.Fprintf(w, "Confusion Pair Tests:   %d (across %d pairs)\n", confusionTests, len(suites.ConfusionPairs.Pairs))
	fmt.Fprintf(w, "Argument Tests:         %d\n", len(suites.Arguments.Tests))
	fmt.Fprintln(w, "--------------------------")
	fmt.Fprintf(w, "Total Evaluation Tests: %d\n\n", suites.TestCount())
}

// printCoverage lists catalog coverage and fails if a suite names an unknown tool.
func printCoverage(w io.Writer, suites *evals.Suites, verbose bool) error {
	catalog := tools.Names()
	coverage := evals.CheckCoverage(suites, catalog)

	fmt.Fprintf(w, "Tool Coverage: %d of %d catalog tools tested\n", len(coverage.Covered), len(catalog))
	for _, name := range coverage.Uncovered {
		fmt.Fprintf(w, "  untested: %s\n", name)
	}
	if verbose {
		for _, name := range coverage.Covered {
			fmt.Fprintf(w, "  tested:   %s\n", name)
		}
	}

	if len(coverage.Unknown) > 0 {
		for _, name := range coverage.Unknown {
			fmt.Fprintf(w, "  unknown:  %s\n", name)
		}
		return fmt.Errorf("suites reference %d tools not in the catalog", len(coverage.Unknown))
	}
	return nil
}

func printCounts(w io.Writer, counts map[string]int, width int) {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "  %-*s: %d\n", width, k, counts[k])
	}
	fmt.Fprintln(w)
}
