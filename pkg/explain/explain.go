// Package explain turns conflict findings into human readable explanations.
//
// Explanations come from a remote text generation provider when one is
// configured and reachable, and from the matched rule's templates
// otherwise. Explain never fails: every finding gets an explanation,
// and the Source field records which path produced it.
package explain

import (
	"context"
	"strings"
	"time"

	"github.com/depexplain/depexplain/pkg/match"
	"github.com/depexplain/depexplain/pkg/observability"
	"github.com/depexplain/depexplain/pkg/rules"
)

// Source records how an explanation was produced.
type Source string

const (
	// SourceRemote marks explanations generated by an external provider.
	SourceRemote Source = "remote"
	// SourceTemplate marks explanations rendered from rule templates.
	SourceTemplate Source = "template"
)

// Explanation is the human readable account of one finding.
type Explanation struct {
	Summary  string         `json:"summary"`
	Text     string         `json:"text"`
	Why      string         `json:"why"`
	Fix      string         `json:"fix"`
	Packages []string       `json:"packages"`
	Severity rules.Severity `json:"severity"`
	Source   Source         `json:"source"`
}

// Provider generates free-form text for a prompt. Both the Hugging Face
// and Gemini clients satisfy it.
type Provider interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Name() string
	Model() string
}

// DefaultTimeout bounds a single remote generation call.
const DefaultTimeout = 10 * time.Second

// Engine produces explanations for findings.
type Engine struct {
	provider Provider
	timeout  time.Duration
}

// Option configures an Engine.
type Option func(*Engine)

// WithProvider sets the remote generation provider. Without one the
// engine always renders templates.
func WithProvider(p Provider) Option {
	return func(e *Engine) { e.provider = p }
}

// WithTimeout overrides the per-call remote timeout.
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// New creates an explanation engine.
func New(opts ...Option) *Engine {
	e := &Engine{timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Explain produces an explanation for a single finding. It tries the
// remote provider first and falls back to rule templates on any error,
// timeout, or unusable output.
func (e *Engine) Explain(ctx context.Context, f match.Finding) Explanation {
	fallback := renderTemplate(f)
	if e.provider == nil {
		return fallback
	}

	hooks := observability.LLM()
	prompt := BuildPrompt(f)
	hooks.OnCall(ctx, e.provider.Name(), e.provider.Model())

	callCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	start := time.Now()
	text, err := e.provider.Generate(callCtx, prompt)
	hooks.OnResult(ctx, e.provider.Name(), e.provider.Model(), time.Since(start), err)
	if err != nil {
		hooks.OnFallback(ctx, e.provider.Name(), err.Error())
		return fallback
	}
	text = strings.TrimSpace(text)
	if text == "" {
		hooks.OnFallback(ctx, e.provider.Name(), "empty generation")
		return fallback
	}

	out := Explanation{
		Summary:  fallback.Summary,
		Text:     text,
		Why:      extractWhy(text),
		Fix:      extractFix(text),
		Packages: f.Packages(),
		Severity: f.Severity,
		Source:   SourceRemote,
	}
	// Keyword extraction can come up empty on free-form output. The
	// template sentences are still accurate, so use them.
	if out.Why == "" {
		out.Why = fallback.Why
	}
	if out.Fix == "" {
		out.Fix = fallback.Fix
	}
	return out
}

// ExplainAll explains every finding in order. A canceled context stops
// remote calls but still yields template explanations for the rest.
func (e *Engine) ExplainAll(ctx context.Context, findings []match.Finding) []Explanation {
	out := make([]Explanation, 0, len(findings))
	for _, f := range findings {
		out = append(out, e.Explain(ctx, f))
	}
	return out
}
