package pipeline

import (
	"context"
	"os"
	"time"

	"github.com/charmbracelet/log"

	dperrors "github.com/depexplain/depexplain/pkg/errors"
	"github.com/depexplain/depexplain/pkg/explain"
	"github.com/depexplain/depexplain/pkg/match"
	"github.com/depexplain/depexplain/pkg/observability"
	"github.com/depexplain/depexplain/pkg/requirements"
	"github.com/depexplain/depexplain/pkg/rules"
)

// Runner encapsulates pipeline execution. It is stateless except for the
// rule table, engine, and logger, so multiple goroutines can safely share
// one Runner with different options.
type Runner struct {
	Table  *rules.Table
	Engine *explain.Engine
	Logger *log.Logger
}

// NewRunner creates a runner.
// If table is nil, the builtin rule table is used.
// If engine is nil, a template-only engine is used.
func NewRunner(table *rules.Table, engine *explain.Engine, logger *log.Logger) *Runner {
	if table == nil {
		table = rules.Builtin()
	}
	if engine == nil {
		engine = explain.New()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Table: table, Engine: engine, Logger: logger}
}

// Execute runs the complete parse → match → explain pipeline.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	result := &Result{Input: opts.Input}
	hooks := observability.Analysis()

	// Stage 1: Parse
	parseStart := time.Now()
	hooks.OnParseStart(ctx, opts.Input)
	parsed, err := r.parse(opts)
	if err != nil {
		return nil, err
	}
	result.Parse = parsed
	result.Stats.ParseTime = time.Since(parseStart)
	result.Stats.Requirements = len(parsed.Requirements)
	result.Stats.Warnings = len(parsed.Warnings)
	hooks.OnParseComplete(ctx, opts.Input, len(parsed.Requirements), len(parsed.Warnings), result.Stats.ParseTime)

	r.Logger.Info("parsed requirements",
		"input", opts.Input,
		"requirements", len(parsed.Requirements),
		"warnings", len(parsed.Warnings),
		"duration", result.Stats.ParseTime)

	// Stage 2: Match
	matchStart := time.Now()
	result.Findings = match.Find(parsed, r.Table)
	result.Stats.MatchTime = time.Since(matchStart)
	result.Stats.Findings = len(result.Findings)
	hooks.OnMatchComplete(ctx, len(parsed.Requirements), len(result.Findings), result.Stats.MatchTime)

	r.Logger.Info("matched rules",
		"rules", r.Table.Len(),
		"findings", len(result.Findings),
		"duration", result.Stats.MatchTime)

	// Stage 3: Explain
	if !opts.NoExplain {
		explainStart := time.Now()
		result.Explanations = r.explainAll(ctx, result.Findings)
		result.Stats.ExplainTime = time.Since(explainStart)

		r.Logger.Info("explained findings",
			"explanations", len(result.Explanations),
			"duration", result.Stats.ExplainTime)
	}

	return result, nil
}

func (r *Runner) parse(opts Options) (*requirements.Result, error) {
	if opts.Path != "" {
		if info, err := os.Stat(opts.Path); err == nil && info.Size() > MaxInputSize {
			return nil, dperrors.New(dperrors.ErrCodeInvalidInput, "%s exceeds the 1 MiB limit", opts.Path)
		}
		parsed, err := requirements.ParseFile(opts.Path)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, dperrors.Wrap(dperrors.ErrCodeFileNotFound, err, "requirements file not found: %s", opts.Path)
			}
			return nil, dperrors.Wrap(dperrors.ErrCodeInvalidInput, err, "reading %s", opts.Path)
		}
		return parsed, nil
	}
	return requirements.ParseString(opts.Content), nil
}

func (r *Runner) explainAll(ctx context.Context, findings []match.Finding) []explain.Explanation {
	hooks := observability.Analysis()
	out := make([]explain.Explanation, 0, len(findings))
	for _, f := range findings {
		start := time.Now()
		hooks.OnExplainStart(ctx, f.Rule.ID)
		exp := r.Engine.Explain(ctx, f)
		hooks.OnExplainComplete(ctx, f.Rule.ID, string(exp.Source), time.Since(start))
		out = append(out, exp)
	}
	return out
}
