// Package rules holds the static table of known-incompatible package
// version combinations.
//
// Rules are declared in TOML. A built-in table covering well-known Python
// ecosystem breaks ships embedded in the binary; additional tables can be
// loaded from disk and merged. Tables are loaded once at startup and are
// immutable afterwards.
package rules

import (
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/depexplain/depexplain/pkg/errors"
	"github.com/depexplain/depexplain/pkg/requirements"
)

// Predicate names one side of a conflict rule: a package and the version
// range for which the rule applies. An empty range matches any version.
type Predicate struct {
	Name  string `toml:"name" json:"name"`
	Range string `toml:"range" json:"range,omitempty"`

	spec requirements.Specifier
}

// Matches reports whether the given version falls in the predicate's range.
func (p Predicate) Matches(version string) bool {
	if p.spec.IsEmpty() {
		return true
	}
	return p.spec.Match(version)
}

// Rule describes one known-incompatible pair of package version ranges,
// together with the human-readable strings used for template explanations.
// Summary, Why, and Fix are text/template bodies executed with the matched
// requirement data (see the explain package).
type Rule struct {
	ID       string    `toml:"id" json:"id"`
	Left     Predicate `toml:"left" json:"left"`
	Right    Predicate `toml:"right" json:"right"`
	Severity Severity  `toml:"severity" json:"severity"`
	Reason   string    `toml:"reason" json:"reason"`
	Summary  string    `toml:"summary" json:"summary"`
	Why      string    `toml:"why" json:"why"`
	Fix      string    `toml:"fix" json:"fix"`
}

// Table is an immutable set of conflict rules indexed by package pair.
type Table struct {
	rules  []Rule
	byPair map[[2]string][]*Rule
}

// tableFile is the TOML document shape.
type tableFile struct {
	Rules []Rule `toml:"rule"`
}

// Parse reads a rule table from TOML data and validates every rule.
func Parse(data []byte) (*Table, error) {
	var f tableFile
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "rule table is not valid TOML")
	}
	return build(f.Rules)
}

// Load reads a rule table from a TOML file on disk.
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "cannot read rule table %s", path)
	}
	return Parse(data)
}

func build(rs []Rule) (*Table, error) {
	t := &Table{byPair: make(map[[2]string][]*Rule)}
	seen := make(map[string]bool)

	for _, r := range rs {
		if err := validate(&r, seen); err != nil {
			return nil, err
		}
		r.Left.Name = requirements.NormalizeName(r.Left.Name)
		r.Right.Name = requirements.NormalizeName(r.Right.Name)
		t.rules = append(t.rules, r)
	}

	// Index after append so the pointers are stable.
	for i := range t.rules {
		r := &t.rules[i]
		t.byPair[pairKey(r.Left.Name, r.Right.Name)] = append(t.byPair[pairKey(r.Left.Name, r.Right.Name)], r)
	}
	return t, nil
}

func validate(r *Rule, seen map[string]bool) error {
	if r.ID == "" {
		return errors.New(errors.ErrCodeInvalidRule, "rule without id")
	}
	if seen[r.ID] {
		return errors.New(errors.ErrCodeInvalidRule, "duplicate rule id %q", r.ID)
	}
	seen[r.ID] = true

	if r.Left.Name == "" || r.Right.Name == "" {
		return errors.New(errors.ErrCodeInvalidRule, "rule %q: both packages must be named", r.ID)
	}
	if requirements.NormalizeName(r.Left.Name) == requirements.NormalizeName(r.Right.Name) {
		return errors.New(errors.ErrCodeInvalidRule, "rule %q: packages must differ", r.ID)
	}
	if r.Severity == "" {
		r.Severity = SeverityMedium
	} else if sev, err := ParseSeverity(string(r.Severity)); err != nil {
		return errors.New(errors.ErrCodeInvalidRule, "rule %q: %v", r.ID, err)
	} else {
		r.Severity = sev
	}

	var err error
	if r.Left.spec, err = requirements.ParseSpecifier(r.Left.Range); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidRule, err, "rule %q: left range", r.ID)
	}
	if r.Right.spec, err = requirements.ParseSpecifier(r.Right.Range); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidRule, err, "rule %q: right range", r.ID)
	}
	return nil
}

// pairKey builds an order-independent index key for two package names.
func pairKey(a, b string) [2]string {
	if strings.Compare(a, b) > 0 {
		a, b = b, a
	}
	return [2]string{a, b}
}

// Rules returns all rules in declaration order.
func (t *Table) Rules() []Rule {
	out := make([]Rule, len(t.rules))
	copy(out, t.rules)
	return out
}

// Len returns the number of rules in the table.
func (t *Table) Len() int { return len(t.rules) }

// ForPair returns the rules declared for the unordered package pair (a, b).
func (t *Table) ForPair(a, b string) []*Rule {
	return t.byPair[pairKey(requirements.NormalizeName(a), requirements.NormalizeName(b))]
}

// Merge returns a new table containing the rules of t followed by those of
// other. Duplicate rule IDs are rejected.
func (t *Table) Merge(other *Table) (*Table, error) {
	combined := make([]Rule, 0, len(t.rules)+len(other.rules))
	combined = append(combined, t.rules...)
	combined = append(combined, other.rules...)
	return build(combined)
}
