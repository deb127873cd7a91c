// Package pipeline provides the core analysis pipeline.
//
// This package implements the complete parse → match → explain pipeline that
// can be used by CLI and API components. By centralizing this logic, we
// ensure consistent behavior across all entry points and avoid code
// duplication.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Parse: Read requirement declarations from a requirements.txt document
//  2. Match: Compare the parsed requirements against the conflict rule table
//  3. Explain: Produce a human readable explanation for each finding
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(rules.Builtin(), engine, logger)
//	opts := pipeline.Options{Content: input, Input: "requirements.txt"}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, exp := range result.Explanations {
//	    fmt.Println(exp.Summary)
//	}
package pipeline

import (
	"time"

	dperrors "github.com/depexplain/depexplain/pkg/errors"
	"github.com/depexplain/depexplain/pkg/explain"
	"github.com/depexplain/depexplain/pkg/match"
	"github.com/depexplain/depexplain/pkg/requirements"
)

// MaxInputSize bounds the accepted document size. Requirements files are
// small; anything past this is almost certainly not one.
const MaxInputSize = 1 << 20

// Options configures a pipeline run.
type Options struct {
	// Content is the requirements document to analyze. Exactly one of
	// Content and Path must be set.
	Content string

	// Path reads the document from a file instead of Content.
	Path string

	// Input names the document in reports and logs. Defaults to Path, or
	// "requirements.txt" when parsing Content.
	Input string

	// NoExplain skips the explain stage. Findings are still produced.
	NoExplain bool
}

// ValidateAndSetDefaults checks the options and fills in defaults.
func (o *Options) ValidateAndSetDefaults() error {
	if o.Content == "" && o.Path == "" {
		return dperrors.New(dperrors.ErrCodeInvalidInput, "no input: provide content or a file path")
	}
	if o.Content != "" && o.Path != "" {
		return dperrors.New(dperrors.ErrCodeInvalidInput, "both content and a file path were provided")
	}
	if len(o.Content) > MaxInputSize {
		return dperrors.New(dperrors.ErrCodeInvalidInput, "input exceeds the 1 MiB limit")
	}
	if o.Input == "" {
		if o.Path != "" {
			o.Input = o.Path
		} else {
			o.Input = "requirements.txt"
		}
	}
	return nil
}

// Stats holds per-stage timing and counts for a run.
type Stats struct {
	ParseTime    time.Duration `json:"parse_time"`
	MatchTime    time.Duration `json:"match_time"`
	ExplainTime  time.Duration `json:"explain_time"`
	Requirements int           `json:"requirements"`
	Warnings     int           `json:"warnings"`
	Findings     int           `json:"findings"`
}

// Result is the outcome of a pipeline run. Findings and Explanations are
// index-aligned; Explanations is empty when the explain stage was skipped.
type Result struct {
	Input        string
	Parse        *requirements.Result
	Findings     []match.Finding
	Explanations []explain.Explanation
	Stats        Stats
}

// Compatible reports whether the run found no conflicts.
func (r *Result) Compatible() bool { return len(r.Findings) == 0 }
