// Package report assembles pipeline results into shareable reports and
// renders them as JSON, plain text, Markdown, or a conflict graph.
package report

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/depexplain/depexplain/pkg/explain"
	"github.com/depexplain/depexplain/pkg/match"
	"github.com/depexplain/depexplain/pkg/pipeline"
	"github.com/depexplain/depexplain/pkg/requirements"
	"github.com/depexplain/depexplain/pkg/rules"
)

// Finding is one conflict in a report: the matched pair plus its
// explanation.
type Finding struct {
	Kind        match.Kind          `json:"kind"`
	RuleID      string              `json:"rule_id"`
	Severity    rules.Severity      `json:"severity"`
	Packages    []string            `json:"packages"`
	Left        string              `json:"left"`
	Right       string              `json:"right"`
	Explanation explain.Explanation `json:"explanation"`
}

// Report is the complete outcome of analyzing one requirements document.
type Report struct {
	ID           uuid.UUID                  `json:"id"`
	Input        string                     `json:"input"`
	GeneratedAt  time.Time                  `json:"generated_at"`
	Requirements []requirements.Requirement `json:"requirements"`
	Warnings     []requirements.Warning     `json:"warnings"`
	Findings     []Finding                  `json:"findings"`
	Compatible   bool                       `json:"compatible"`
	Stats        pipeline.Stats             `json:"stats"`
}

// New builds a report from a pipeline result. Findings without an
// explanation (explain stage skipped) get a template explanation so the
// report is always self-contained.
func New(res *pipeline.Result) *Report {
	r := &Report{
		ID:           uuid.New(),
		Input:        res.Input,
		GeneratedAt:  time.Now().UTC(),
		Requirements: res.Parse.Requirements,
		Warnings:     res.Parse.Warnings,
		Compatible:   res.Compatible(),
		Stats:        res.Stats,
	}

	engine := explain.New()
	for i, f := range res.Findings {
		var exp explain.Explanation
		if i < len(res.Explanations) {
			exp = res.Explanations[i]
		} else {
			exp = engine.Explain(context.Background(), f)
		}
		r.Findings = append(r.Findings, Finding{
			Kind:        f.Kind,
			RuleID:      f.Rule.ID,
			Severity:    f.Severity,
			Packages:    f.Packages(),
			Left:        f.Left.String(),
			Right:       f.Right.String(),
			Explanation: exp,
		})
	}
	return r
}

// MaxSeverity returns the highest severity among the report's findings,
// or SeverityUnknown for a compatible report.
func (r *Report) MaxSeverity() rules.Severity {
	max := rules.SeverityUnknown
	for _, f := range r.Findings {
		if f.Severity.Rank() > max.Rank() {
			max = f.Severity
		}
	}
	return max
}
