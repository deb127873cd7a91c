// Package match compares a parsed requirement set against a conflict rule
// table and reports findings.
//
// Matching is pure and deterministic: the same requirements and table always
// produce the same findings in the same order, and nothing is mutated.
// It is a lookup against the static rule table, not a dependency resolver.
package match

import (
	"github.com/depexplain/depexplain/pkg/requirements"
	"github.com/depexplain/depexplain/pkg/rules"
)

// Kind classifies what a finding represents.
type Kind string

const (
	// KindVersionIncompatibility is a match of a conflict rule: two
	// requirements whose versions fall in a rule's incompatible ranges.
	KindVersionIncompatibility Kind = "version_incompatibility"

	// KindDuplicate is the same package requested twice with different
	// version constraints.
	KindDuplicate Kind = "duplicate"
)

// DuplicateRule is the synthetic rule backing duplicate findings, so that
// every finding references exactly one rule. For duplicates, Left is the
// occurrence that won and Right the one it replaced.
var DuplicateRule = rules.Rule{
	ID:       "duplicate-requirement",
	Severity: rules.SeverityHigh,
	Reason:   "the same package is requested with different version constraints",
	Summary:  "{{.Left.Name}} is requested as {{.Left.Constraint}} and as {{.Right.Constraint}}",
	Why:      "The same package is specified multiple times with different versions, which makes it ambiguous which version should be installed.",
	Fix:      "Remove the duplicate entries and keep a single version specification for {{.Left.Name}}.",
}

// Finding is one detected conflict: a rule plus the two requirements that
// satisfied it. Findings are 1:1 with the explanations produced later.
type Finding struct {
	Kind     Kind                     `json:"kind"`
	Rule     *rules.Rule              `json:"rule"`
	Left     requirements.Requirement `json:"left"`  // satisfies Rule.Left
	Right    requirements.Requirement `json:"right"` // satisfies Rule.Right
	Severity rules.Severity           `json:"severity"`
}

// Packages returns the distinct package names involved in the finding.
func (f Finding) Packages() []string {
	if f.Left.Name == f.Right.Name {
		return []string{f.Left.Name}
	}
	return []string{f.Left.Name, f.Right.Name}
}

// Find matches the parse result against the rule table.
//
// Duplicate requirements come first (they are conflicts in their own right),
// followed by rule matches for every unordered requirement pair in input
// order. A rule matches when its package names match the pair
// order-independently and both version predicates hold.
func Find(res *requirements.Result, table *rules.Table) []Finding {
	var findings []Finding

	for _, d := range res.Duplicates {
		findings = append(findings, Finding{
			Kind:     KindDuplicate,
			Rule:     &DuplicateRule,
			Left:     d.Kept,
			Right:    d.Dropped,
			Severity: DuplicateRule.Severity,
		})
	}

	reqs := res.Requirements
	for i := range reqs {
		for j := i + 1; j < len(reqs); j++ {
			for _, rule := range table.ForPair(reqs[i].Name, reqs[j].Name) {
				if f, ok := applyRule(rule, reqs[i], reqs[j]); ok {
					findings = append(findings, f)
				}
			}
		}
	}
	return findings
}

// applyRule orients the pair against the rule's sides and evaluates both
// version predicates.
func applyRule(rule *rules.Rule, a, b requirements.Requirement) (Finding, bool) {
	left, right := a, b
	if rule.Left.Name != left.Name {
		left, right = right, left
	}
	if rule.Left.Name != left.Name || rule.Right.Name != right.Name {
		return Finding{}, false
	}
	if !rule.Left.Matches(left.Version()) || !rule.Right.Matches(right.Version()) {
		return Finding{}, false
	}
	return Finding{
		Kind:     KindVersionIncompatibility,
		Rule:     rule,
		Left:     left,
		Right:    right,
		Severity: rule.Severity,
	}, true
}
