package explain

import "strings"

var (
	whyKeywords = []string{"because", "due to", "requires", "needs", "since", "expects", "incompatible"}
	fixKeywords = []string{"upgrade", "downgrade", "pin", "fix", "change", "update", "remove", "install"}
)

// extractWhy pulls the sentence most likely to explain the cause out of a
// generated explanation. Empty result means no sentence matched.
func extractWhy(text string) string {
	return firstSentenceWith(text, whyKeywords)
}

// extractFix pulls the sentence most likely to describe the remedy.
func extractFix(text string) string {
	return firstSentenceWith(text, fixKeywords)
}

func firstSentenceWith(text string, keywords []string) string {
	for _, sentence := range splitSentences(text) {
		lower := strings.ToLower(sentence)
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				return sentence
			}
		}
	}
	return ""
}

func splitSentences(text string) []string {
	var out []string
	var b strings.Builder
	for _, r := range text {
		b.WriteRune(r)
		if r == '.' || r == '!' || r == '?' {
			if s := strings.TrimSpace(b.String()); s != "" {
				out = append(out, s)
			}
			b.Reset()
		}
	}
	if s := strings.TrimSpace(b.String()); s != "" {
		out = append(out, s)
	}
	return out
}
