package explain

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/depexplain/depexplain/pkg/match"
)

// side is one half of the template data: the matched requirement as the
// rule templates see it.
type side struct {
	Name       string // normalized package name
	Version    string // effective version, "unspecified" if none
	Constraint string // the raw specifier, e.g. "==1.8.0"
}

// templateData is the execution context for rule explanation templates.
type templateData struct {
	Left  side
	Right side
}

func dataFor(f match.Finding) templateData {
	return templateData{Left: sideFor(f, true), Right: sideFor(f, false)}
}

func sideFor(f match.Finding, left bool) side {
	req := f.Right
	if left {
		req = f.Left
	}
	s := side{
		Name:       req.Name,
		Version:    req.Version(),
		Constraint: req.Specifier.String(),
	}
	if s.Version == "" {
		s.Version = "unspecified"
	}
	if s.Constraint == "" {
		s.Constraint = "any version"
	}
	return s
}

// renderTemplate produces the deterministic template explanation for a
// finding. It is total: a broken template degrades to generic wording
// instead of failing, since every conflict must be reportable without
// network access.
func renderTemplate(f match.Finding) Explanation {
	data := dataFor(f)

	summary := renderString(f.Rule.Summary, data, genericSummary(data))
	why := renderString(f.Rule.Why, data, genericWhy)
	fix := renderString(f.Rule.Fix, data, genericFix)

	return Explanation{
		Summary:  summary,
		Text:     why + " " + fix,
		Why:      why,
		Fix:      fix,
		Packages: f.Packages(),
		Severity: f.Severity,
		Source:   SourceTemplate,
	}
}

// renderString executes a template body with data, returning fallback for
// empty bodies, parse errors, or execution errors.
func renderString(body string, data templateData, fallback string) string {
	if strings.TrimSpace(body) == "" {
		return fallback
	}
	tmpl, err := template.New("rule").Parse(body)
	if err != nil {
		return fallback
	}
	var b strings.Builder
	if err := tmpl.Execute(&b, data); err != nil {
		return fallback
	}
	if out := strings.TrimSpace(b.String()); out != "" {
		return out
	}
	return fallback
}

func genericSummary(data templateData) string {
	if data.Left.Name == data.Right.Name {
		return fmt.Sprintf("conflicting version constraints for %s", data.Left.Name)
	}
	return fmt.Sprintf("%s %s is incompatible with %s %s",
		data.Left.Name, data.Left.Version, data.Right.Name, data.Right.Version)
}

const (
	genericWhy = "This dependency conflict occurs due to incompatible version requirements between the packages."
	genericFix = "Review the version constraints and adjust them to versions that are compatible with each other."
)
