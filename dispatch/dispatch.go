// Package dispatch synthesizes the Python routing code that selects which
// exported function to run based on the method name the runtime supplies.
package dispatch

import (
	"fmt"
	"strings"
)

// SelectorVar is the free variable the runtime binds to the requested method
// name. It is declared to the bytecode compiler as an external input.
const SelectorVar = "method_name"

// Synthesize returns a Python fragment routing SelectorVar to the matching
// exported function. The chain is ordered: the first name gets the `if`
// branch, the rest get `elif` branches, each body a zero-argument call. There
// is no `else` branch; an unknown selector falls through and the dispatcher
// returns without calling anything.
func Synthesize(names []string) string {
	var b strings.Builder
	for i, name := range names {
		keyword := "elif"
		if i == 0 {
			keyword = "if"
		}
		fmt.Fprintf(&b, "%s %s == %q:\n    %s()\n", keyword, SelectorVar, name, name)
	}
	return b.String()
}

// Program returns the full compilation unit: the original source followed by
// a blank line and the synthesized dispatcher.
func Program(source string, names []string) string {
	return strings.TrimRight(source, "\n") + "\n\n" + Synthesize(names)
}
