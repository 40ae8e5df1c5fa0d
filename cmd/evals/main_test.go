package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/vsevolodlukovsky/evawiki-mcp/evals"
)

func runEvals(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	if args == nil {
		// cobra falls back to os.Args when args is nil
		args = []string{}
	}
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestEvalsAllSuites(t *testing.T) {
	out, err := runEvals(t)
	if err != nil {
		t.Fatalf("evals failed: %v\n%s", err, out)
	}
	for _, want := range []string{"Summary:", "Total Evaluation Tests:", "Tool Coverage: 11 of 11"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "untested:") {
		t.Errorf("every tool should be covered:\n%s", out)
	}
}

func TestEvalsSingleSuites(t *testing.T) {
	tests := []struct {
		suite string
		want  string
	}{
		{"tool_selection", "Tests by Category:"},
		{"confusion_pairs", "update-vs-publish"},
		{"arguments", "Validation Rules:"},
	}

	for _, tt := range tests {
		t.Run(tt.suite, func(t *testing.T) {
			out, err := runEvals(t, "--suite", tt.suite, "--verbose")
			if err != nil {
				t.Fatalf("evals failed: %v", err)
			}
			if !strings.Contains(out, tt.want) {
				t.Errorf("output missing %q:\n%s", tt.want, out)
			}
		})
	}
}

func TestEvalsFromDir(t *testing.T) {
	out, err := runEvals(t, "--dir", "../../evals")
	if err != nil {
		t.Fatalf("evals failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Summary:") {
		t.Errorf("output:\n%s", out)
	}
}

func TestEvalsUnknownSuite(t *testing.T) {
	if _, err := runEvals(t, "--suite", "bogus"); err == nil || !strings.Contains(err.Error(), "unknown suite") {
		t.Errorf("expected unknown suite error, got %v", err)
	}
}

func TestEvalsMissingDir(t *testing.T) {
	if _, err := runEvals(t, "--dir", t.TempDir()); err == nil {
		t.Error("expected error for a directory without suites")
	}
}

func TestPrintCoverageUnknownTool(t *testing.T) {
	suites := &evals.Suites{
		ToolSelection: &evals.ToolSelectionSuite{Tests: []evals.ToolSelectionTest{
			{ExpectedTool: "evawiki_removed_tool"},
		}},
		ConfusionPairs: &evals.ConfusionPairSuite{},
		Arguments:      &evals.ArgumentSuite{},
	}

	var out bytes.Buffer
	err := printCoverage(&out, suites, false)
	if err == nil {
		t.Fatal("expected error for unknown tool")
	}
	if !strings.Contains(out.String(), "unknown:  evawiki_removed_tool") {
		t.Errorf("output:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "untested: evawiki_ping") {
		t.Errorf("output should list untested tools:\n%s", out.String())
	}
}
