package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	dperrors "github.com/depexplain/depexplain/pkg/errors"
)

// Format constants for report output formats.
const (
	FormatJSON     = "json"
	FormatText     = "text"
	FormatMarkdown = "markdown"
	FormatDOT      = "dot"
	FormatSVG      = "svg"
)

// ValidFormats is the set of supported report formats.
var ValidFormats = map[string]bool{
	FormatJSON:     true,
	FormatText:     true,
	FormatMarkdown: true,
	FormatDOT:      true,
	FormatSVG:      true,
}

// Render writes the report in the named format.
func Render(w io.Writer, r *Report, format string) error {
	switch format {
	case FormatJSON:
		return RenderJSON(w, r)
	case FormatText:
		return RenderText(w, r)
	case FormatMarkdown:
		return RenderMarkdown(w, r)
	case FormatDOT:
		_, err := io.WriteString(w, ToDOT(r))
		return err
	case FormatSVG:
		svg, err := RenderSVG(ToDOT(r))
		if err != nil {
			return err
		}
		_, err = w.Write(svg)
		return err
	default:
		return dperrors.New(dperrors.ErrCodeUnsupported, "unknown report format %q", format)
	}
}

// RenderJSON writes the report as indented JSON.
func RenderJSON(w io.Writer, r *Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// RenderText writes a plain text report suitable for files and terminals
// without styling.
func RenderText(w io.Writer, r *Report) error {
	fmt.Fprintf(w, "Dependency analysis: %s\n", r.Input)
	fmt.Fprintf(w, "Report %s, generated %s\n\n", r.ID, r.GeneratedAt.Format("2006-01-02 15:04:05 UTC"))
	fmt.Fprintf(w, "Requirements: %d\n", len(r.Requirements))

	if len(r.Warnings) > 0 {
		fmt.Fprintf(w, "Warnings: %d\n", len(r.Warnings))
		for _, warn := range r.Warnings {
			fmt.Fprintf(w, "  - %s\n", warn)
		}
	}

	if r.Compatible {
		fmt.Fprintf(w, "\nNo conflicts detected.\n")
		return nil
	}

	fmt.Fprintf(w, "\nConflicts: %d (max severity %s)\n", len(r.Findings), r.MaxSeverity())
	for i, f := range r.Findings {
		fmt.Fprintf(w, "\n%d. [%s] %s\n", i+1, strings.ToUpper(f.Severity.String()), f.Explanation.Summary)
		fmt.Fprintf(w, "   Between: %s and %s\n", f.Left, f.Right)
		fmt.Fprintf(w, "   Why: %s\n", f.Explanation.Why)
		fmt.Fprintf(w, "   Fix: %s\n", f.Explanation.Fix)
	}
	return nil
}

// RenderMarkdown writes the report as a Markdown document.
func RenderMarkdown(w io.Writer, r *Report) error {
	fmt.Fprintf(w, "# Dependency analysis: %s\n\n", r.Input)
	fmt.Fprintf(w, "Report `%s`, generated %s.\n\n", r.ID, r.GeneratedAt.Format("2006-01-02 15:04:05 UTC"))

	fmt.Fprintf(w, "## Requirements (%d)\n\n", len(r.Requirements))
	for _, req := range r.Requirements {
		fmt.Fprintf(w, "- `%s`\n", req)
	}

	if len(r.Warnings) > 0 {
		fmt.Fprintf(w, "\n## Warnings (%d)\n\n", len(r.Warnings))
		for _, warn := range r.Warnings {
			fmt.Fprintf(w, "- %s\n", warn)
		}
	}

	if r.Compatible {
		fmt.Fprintf(w, "\n## Result\n\nNo conflicts detected.\n")
		return nil
	}

	fmt.Fprintf(w, "\n## Conflicts (%d)\n", len(r.Findings))
	for _, f := range r.Findings {
		fmt.Fprintf(w, "\n### %s (%s)\n\n", f.Explanation.Summary, f.Severity)
		fmt.Fprintf(w, "Between `%s` and `%s`.\n\n", f.Left, f.Right)
		fmt.Fprintf(w, "**Why:** %s\n\n", f.Explanation.Why)
		fmt.Fprintf(w, "**Fix:** %s\n", f.Explanation.Fix)
	}
	return nil
}
