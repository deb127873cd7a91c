package requirements

import (
	"strconv"
	"strings"

	"github.com/depexplain/depexplain/pkg/errors"
)

// Operators accepted in version clauses, longest first so that parsing
// never splits "==" into "=" + "=".
var operators = []string{"===", "==", "!=", ">=", "<=", "~=", ">", "<"}

// Clause is a single version constraint, e.g. ">=2.0".
type Clause struct {
	Op      string `json:"op" toml:"op"`
	Version string `json:"version" toml:"version"`
}

// Specifier is a comma-separated set of version clauses, e.g. ">=1.8,<2.0".
// The zero value is the empty specifier, which matches every version.
type Specifier struct {
	Clauses []Clause `json:"clauses,omitempty"`
}

// ParseSpecifier parses a PEP 440 style version specifier.
// An empty string yields the empty specifier.
func ParseSpecifier(s string) (Specifier, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Specifier{}, nil
	}

	var spec Specifier
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		clause, err := parseClause(part)
		if err != nil {
			return Specifier{}, err
		}
		spec.Clauses = append(spec.Clauses, clause)
	}
	return spec, nil
}

func parseClause(s string) (Clause, error) {
	for _, op := range operators {
		if strings.HasPrefix(s, op) {
			ver := strings.TrimSpace(strings.TrimPrefix(s, op))
			if ver == "" {
				return Clause{}, errors.New(errors.ErrCodeInvalidSpecifier, "missing version after %q", op)
			}
			return Clause{Op: op, Version: ver}, nil
		}
	}
	return Clause{}, errors.New(errors.ErrCodeInvalidSpecifier, "no comparison operator in %q", s)
}

// IsEmpty reports whether the specifier has no clauses.
func (s Specifier) IsEmpty() bool { return len(s.Clauses) == 0 }

// String renders the specifier in requirements.txt notation.
func (s Specifier) String() string {
	parts := make([]string, len(s.Clauses))
	for i, c := range s.Clauses {
		parts[i] = c.Op + c.Version
	}
	return strings.Join(parts, ",")
}

// Match reports whether version satisfies every clause of the specifier.
// The empty specifier matches everything. An empty version only matches
// the empty specifier.
func (s Specifier) Match(version string) bool {
	if s.IsEmpty() {
		return true
	}
	if version == "" {
		return false
	}
	for _, c := range s.Clauses {
		if !c.match(version) {
			return false
		}
	}
	return true
}

func (c Clause) match(version string) bool {
	switch c.Op {
	case "===":
		return strings.TrimSpace(version) == c.Version
	case "==":
		if pfx, ok := strings.CutSuffix(c.Version, ".*"); ok {
			return releasePrefixMatch(version, pfx)
		}
		return CompareVersions(version, c.Version) == 0
	case "!=":
		if pfx, ok := strings.CutSuffix(c.Version, ".*"); ok {
			return !releasePrefixMatch(version, pfx)
		}
		return CompareVersions(version, c.Version) != 0
	case ">=":
		return CompareVersions(version, c.Version) >= 0
	case "<=":
		return CompareVersions(version, c.Version) <= 0
	case ">":
		return CompareVersions(version, c.Version) > 0
	case "<":
		return CompareVersions(version, c.Version) < 0
	case "~=":
		// Compatible release: ~=2.2.0 means >=2.2.0, ==2.2.*
		if CompareVersions(version, c.Version) < 0 {
			return false
		}
		segs := releaseSegments(c.Version)
		if len(segs) < 2 {
			return true
		}
		prefix := make([]string, len(segs)-1)
		for i, n := range segs[:len(segs)-1] {
			prefix[i] = strconv.Itoa(n)
		}
		return releasePrefixMatch(version, strings.Join(prefix, "."))
	default:
		return false
	}
}

// EffectiveVersion extracts the single version a specifier pins or bounds:
// the version of an exact (== / ===) clause if present, otherwise the lower
// bound of a >= or ~= clause, otherwise empty. Rule predicates are evaluated
// against this version, mirroring how pip users read a requirements line.
func (s Specifier) EffectiveVersion() string {
	for _, c := range s.Clauses {
		if c.Op == "==" || c.Op == "===" {
			return strings.TrimSuffix(c.Version, ".*")
		}
	}
	for _, c := range s.Clauses {
		if c.Op == ">=" || c.Op == "~=" {
			return c.Version
		}
	}
	return ""
}

// parsedVersion is the comparable form of a PEP 440 version.
// Only the commonly used fields are modeled: epoch, release segments,
// pre-release (a/b/rc), post-release, and dev-release. Local version
// labels (+suffix) are ignored for ordering.
type parsedVersion struct {
	epoch   int
	release []int
	phase   int // ordering: dev < alpha < beta < rc < final < post
	phaseN  int
}

const (
	phaseDev   = 0
	phaseAlpha = 1
	phaseBeta  = 2
	phaseRC    = 3
	phaseFinal = 4
	phasePost  = 5
)

// CompareVersions compares two version strings per a practical subset of
// PEP 440. Returns -1, 0, or +1. Versions that cannot be parsed at all
// compare as plain strings.
func CompareVersions(a, b string) int {
	va, okA := parseVersion(a)
	vb, okB := parseVersion(b)
	if !okA || !okB {
		return strings.Compare(strings.TrimSpace(a), strings.TrimSpace(b))
	}

	if va.epoch != vb.epoch {
		return cmpInt(va.epoch, vb.epoch)
	}
	if c := cmpRelease(va.release, vb.release); c != 0 {
		return c
	}
	if va.phase != vb.phase {
		return cmpInt(va.phase, vb.phase)
	}
	return cmpInt(va.phaseN, vb.phaseN)
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// cmpRelease compares release segments, zero-padding the shorter side
// so that 2.0 == 2.0.0.
func cmpRelease(a, b []int) int {
	n := max(len(a), len(b))
	for i := range n {
		var x, y int
		if i < len(a) {
			x = a[i]
		}
		if i < len(b) {
			y = b[i]
		}
		if x != y {
			return cmpInt(x, y)
		}
	}
	return 0
}

func parseVersion(s string) (parsedVersion, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.TrimPrefix(s, "v")
	if s == "" {
		return parsedVersion{}, false
	}

	// Drop local version label.
	if i := strings.IndexByte(s, '+'); i >= 0 {
		s = s[:i]
	}

	v := parsedVersion{phase: phaseFinal}

	if i := strings.IndexByte(s, '!'); i >= 0 {
		epoch, err := strconv.Atoi(s[:i])
		if err != nil {
			return parsedVersion{}, false
		}
		v.epoch = epoch
		s = s[i+1:]
	}

	rest := s
	for rest != "" {
		seg, tail := nextSegment(rest)
		rest = tail

		if n, err := strconv.Atoi(seg); err == nil {
			if v.phase != phaseFinal {
				// Numeric segment after a phase marker is its number.
				v.phaseN = n
				continue
			}
			v.release = append(v.release, n)
			continue
		}

		phase, num, ok := parsePhase(seg)
		if !ok {
			return parsedVersion{}, false
		}
		v.phase = phase
		v.phaseN = num
	}

	if len(v.release) == 0 {
		return parsedVersion{}, false
	}
	return v, true
}

// nextSegment splits off the leading version segment. Separators are dots,
// hyphens, and underscores; letter/digit boundaries also separate segments
// so that "1.0a1" parses as 1, 0, a1.
func nextSegment(s string) (seg, rest string) {
	for i := range len(s) {
		ch := s[i]
		if ch == '.' || ch == '-' || ch == '_' {
			return s[:i], s[i+1:]
		}
		if i > 0 && isDigit(s[i-1]) != isDigit(ch) {
			return s[:i], s[i:]
		}
	}
	return s, ""
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

// parsePhase interprets a non-numeric segment as a pre/post/dev marker,
// possibly with an attached number (e.g. "rc1").
func parsePhase(seg string) (phase, num int, ok bool) {
	i := 0
	for i < len(seg) && !isDigit(seg[i]) {
		i++
	}
	word, digits := seg[:i], seg[i:]
	if digits != "" {
		n, err := strconv.Atoi(digits)
		if err != nil {
			return 0, 0, false
		}
		num = n
	}

	switch word {
	case "a", "alpha":
		return phaseAlpha, num, true
	case "b", "beta":
		return phaseBeta, num, true
	case "rc", "c", "pre", "preview":
		return phaseRC, num, true
	case "post", "rev", "r":
		return phasePost, num, true
	case "dev":
		return phaseDev, num, true
	default:
		return 0, 0, false
	}
}

// releaseSegments returns the numeric release segments of a version,
// ignoring any pre/post/dev suffix.
func releaseSegments(s string) []int {
	v, ok := parseVersion(s)
	if !ok {
		return nil
	}
	return v.release
}

// releasePrefixMatch reports whether version's release starts with the
// release segments of prefix (used for ==X.Y.* wildcards and ~=).
func releasePrefixMatch(version, prefix string) bool {
	vs := releaseSegments(version)
	ps := releaseSegments(prefix)
	if vs == nil || ps == nil || len(ps) > len(vs) {
		return false
	}
	for i, p := range ps {
		if vs[i] != p {
			return false
		}
	}
	return true
}
