// Package requirements parses requirements.txt style dependency lists
// into structured requirements.
//
// Parsing is tolerant by design: malformed lines, include directives, and
// URL requirements are skipped and reported as warnings, never as a fatal
// error. The caller always receives every requirement that could be read.
//
// Package names are normalized per PEP 503 (lowercase, runs of "-", "_",
// "." collapse to "-") so that "PyYAML", "pyyaml" and "PyYaml" all refer
// to the same package. Version constraints are modeled by [Specifier].
package requirements

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
)

var (
	nameRE      = regexp.MustCompile(`^([a-zA-Z0-9][-a-zA-Z0-9._]*)`)
	extrasRE    = regexp.MustCompile(`^\[([^\]]*)\]`)
	normalizeRE = regexp.MustCompile(`[-_.]+`)
)

// Requirement is one parsed dependency: a normalized package name plus its
// version constraint. Immutable after creation.
type Requirement struct {
	Name      string    `json:"name"`
	Extras    []string  `json:"extras,omitempty"`
	Specifier Specifier `json:"specifier"`
	Marker    string    `json:"marker,omitempty"`
	Raw       string    `json:"raw"`
	Line      int       `json:"line"`
}

// Version returns the effective version of the requirement, derived from
// its specifier. Empty for unversioned requirements.
func (r Requirement) Version() string {
	return r.Specifier.EffectiveVersion()
}

// String renders the requirement in requirements.txt notation.
func (r Requirement) String() string {
	var b strings.Builder
	b.WriteString(r.Name)
	if len(r.Extras) > 0 {
		b.WriteString("[" + strings.Join(r.Extras, ",") + "]")
	}
	b.WriteString(r.Specifier.String())
	if r.Marker != "" {
		b.WriteString("; " + r.Marker)
	}
	return b.String()
}

// Warning records a non-fatal parse problem for one input line.
type Warning struct {
	Line   int    `json:"line"`
	Text   string `json:"text"`
	Reason string `json:"reason"`
}

func (w Warning) String() string {
	return fmt.Sprintf("line %d: %s (%s)", w.Line, w.Reason, w.Text)
}

// Duplicate records a package that was requested twice with differing
// version constraints. The later occurrence wins in the requirement list.
type Duplicate struct {
	Name    string      `json:"name"`
	Kept    Requirement `json:"kept"`    // the later occurrence
	Dropped Requirement `json:"dropped"` // the earlier occurrence it replaced
}

// Result holds the outcome of one parse run.
type Result struct {
	Requirements []Requirement `json:"requirements"`
	Warnings     []Warning     `json:"warnings,omitempty"`
	Duplicates   []Duplicate   `json:"duplicates,omitempty"`
}

// NormalizeName converts a package name to its canonical PEP 503 form.
func NormalizeName(name string) string {
	return normalizeRE.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "-")
}

// Parse reads requirements.txt content from r.
// It never fails on malformed content; only read errors are returned.
func Parse(r io.Reader) (*Result, error) {
	res := &Result{}
	index := make(map[string]int) // name -> position in res.Requirements

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = stripInlineComment(line)
		if line == "" {
			continue
		}

		if reason, skip := skipReason(line); skip {
			res.Warnings = append(res.Warnings, Warning{Line: lineNo, Text: line, Reason: reason})
			continue
		}

		req, err := parseLine(line, lineNo)
		if err != nil {
			res.Warnings = append(res.Warnings, Warning{Line: lineNo, Text: line, Reason: err.Error()})
			continue
		}

		if pos, seen := index[req.Name]; seen {
			prev := res.Requirements[pos]
			if prev.Specifier.String() != req.Specifier.String() {
				res.Duplicates = append(res.Duplicates, Duplicate{
					Name:    req.Name,
					Kept:    req,
					Dropped: prev,
				})
			}
			// Last occurrence wins, keeping the original position.
			res.Requirements[pos] = req
			continue
		}

		index[req.Name] = len(res.Requirements)
		res.Requirements = append(res.Requirements, req)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

// ParseString parses requirements.txt content from a string.
func ParseString(s string) *Result {
	res, _ := Parse(strings.NewReader(s)) // string reads cannot fail
	return res
}

// ParseFile parses a requirements file from disk.
func ParseFile(path string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f)
}

// skipReason classifies lines that are valid in requirements files but do
// not name an installable requirement (pip options, includes, URLs).
func skipReason(line string) (string, bool) {
	switch {
	case strings.HasPrefix(line, "-"):
		return "pip option or include directive", true
	case strings.Contains(line, "://"):
		return "URL requirement", true
	case strings.HasPrefix(line, "git+"):
		return "VCS requirement", true
	}
	return "", false
}

// stripInlineComment removes an inline comment. Per pip, a comment needs
// whitespace before the "#" unless it starts the line.
func stripInlineComment(line string) string {
	for i := range len(line) {
		if line[i] == '#' && (i == 0 || line[i-1] == ' ' || line[i-1] == '\t') {
			return strings.TrimSpace(line[:i])
		}
	}
	return line
}

func parseLine(line string, lineNo int) (Requirement, error) {
	m := nameRE.FindString(line)
	if m == "" {
		return Requirement{}, fmt.Errorf("no package name")
	}

	req := Requirement{
		Name: NormalizeName(m),
		Raw:  line,
		Line: lineNo,
	}
	rest := strings.TrimSpace(line[len(m):])

	if em := extrasRE.FindStringSubmatch(rest); em != nil {
		for _, extra := range strings.Split(em[1], ",") {
			if extra = strings.TrimSpace(extra); extra != "" {
				req.Extras = append(req.Extras, NormalizeName(extra))
			}
		}
		rest = strings.TrimSpace(rest[len(em[0]):])
	}

	if specStr, marker, found := strings.Cut(rest, ";"); found {
		req.Marker = strings.TrimSpace(marker)
		rest = strings.TrimSpace(specStr)
	}

	spec, err := ParseSpecifier(rest)
	if err != nil {
		return Requirement{}, err
	}
	req.Specifier = spec
	return req, nil
}
