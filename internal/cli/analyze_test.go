package cli

import (
	"testing"

	"github.com/depexplain/depexplain/pkg/rules"
)

func TestPluralize(t *testing.T) {
	if got := pluralize("conflict", 1); got != "conflict" {
		t.Errorf("pluralize(1) = %q", got)
	}
	if got := pluralize("conflict", 2); got != "conflicts" {
		t.Errorf("pluralize(2) = %q", got)
	}
}

func TestPredicateRange(t *testing.T) {
	if got := predicateRange(rules.Predicate{Name: "torch"}); got != "(any)" {
		t.Errorf("empty range = %q", got)
	}
	if got := predicateRange(rules.Predicate{Name: "torch", Range: "<2.0"}); got != "<2.0" {
		t.Errorf("range = %q", got)
	}
}

func TestSeverityStyleFallback(t *testing.T) {
	// Unknown severities must still render, just dimmed.
	style := severityStyle(rules.SeverityUnknown)
	if style.Render("x") == "" {
		t.Error("style produced no output")
	}
}
