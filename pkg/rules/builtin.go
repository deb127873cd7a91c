package rules

import (
	_ "embed"
	"fmt"
)

//go:embed rules.toml
var builtinTOML []byte

// Builtin returns the rule table shipped with the binary.
// The embedded table is validated at startup; a broken build is a
// programming error, hence the panic.
func Builtin() *Table {
	t, err := Parse(builtinTOML)
	if err != nil {
		panic(fmt.Sprintf("embedded rule table invalid: %v", err))
	}
	return t
}
