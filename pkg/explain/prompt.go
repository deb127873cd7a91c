package explain

import (
	"fmt"

	"github.com/depexplain/depexplain/pkg/match"
)

// BuildPrompt constructs the generation prompt for one finding. It asks for
// short plain language output so that answers fit terminal and API
// responses without truncation.
func BuildPrompt(f match.Finding) string {
	data := dataFor(f)
	summary := renderString(f.Rule.Summary, data, genericSummary(data))

	return fmt.Sprintf(`Explain this Python dependency conflict in simple terms:

Conflict: %s
Package 1: %s (constraint: %s)
Package 2: %s (constraint: %s)
Severity: %s

Provide a brief explanation of why this conflict occurs and how to fix it. Keep it under 100 words and use plain language.`,
		summary,
		data.Left.Name, data.Left.Constraint,
		data.Right.Name, data.Right.Constraint,
		f.Severity,
	)
}
