// Package discover finds the exported entry points of a contract source file.
//
// An entry point is a top-level function definition whose name does not start
// with an underscore. Parsing is delegated to gpython's parser; only the
// module's top-level statement list is walked, so functions nested in
// conditionals, classes, or other functions are never exported.
package discover

import (
	"fmt"
	"strings"

	"github.com/go-python/gpython/ast"
	"github.com/go-python/gpython/parser"
	"github.com/go-python/gpython/py"
)

// ParseError indicates the source is not valid Python.
type ParseError struct {
	Filename string
	Err      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: parse error: %v", e.Filename, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// NoExportsError indicates the source defines no exported top-level functions.
type NoExportsError struct {
	Filename string
}

func (e *NoExportsError) Error() string {
	return fmt.Sprintf("%s: no exported functions found (top-level functions must not start with _)", e.Filename)
}

// Exports parses source and returns the names of its exported top-level
// functions in source order. A name defined more than once at top level is
// reported once, at its first position.
func Exports(source, filename string) ([]string, error) {
	tree, err := parser.Parse(strings.NewReader(stripFStringPrefixes(source)), filename, py.ExecMode)
	if err != nil {
		return nil, &ParseError{Filename: filename, Err: err}
	}

	module, ok := tree.(*ast.Module)
	if !ok {
		return nil, &ParseError{Filename: filename, Err: fmt.Errorf("expected module, got %T", tree)}
	}

	var names []string
	seen := make(map[string]bool)
	for _, stmt := range module.Body {
		fn, ok := stmt.(*ast.FunctionDef)
		if !ok {
			continue
		}
		name := string(fn.Name)
		if strings.HasPrefix(name, "_") || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}

	if len(names) == 0 {
		return nil, &NoExportsError{Filename: filename}
	}
	return names, nil
}

// stripFStringPrefixes rewrites f-string literals into plain string literals
// by dropping the f from the prefix. The parser predates PEP 498; only the
// top-level statement structure matters here, so literal bodies can pass
// through as ordinary text.
func stripFStringPrefixes(source string) string {
	var b strings.Builder
	b.Grow(len(source))
	for i := 0; i < len(source); {
		c := source[i]
		switch {
		case c == '#':
			end := strings.IndexByte(source[i:], '\n')
			if end < 0 {
				b.WriteString(source[i:])
				return b.String()
			}
			b.WriteString(source[i : i+end])
			i += end
		case c == '\'' || c == '"':
			i = copyStringLiteral(&b, source, i)
		case isStringPrefixByte(c) && (i == 0 || !isIdentByte(source[i-1])):
			j := i
			for j < len(source) && j-i < 2 && isStringPrefixByte(source[j]) {
				j++
			}
			if j < len(source) && (source[j] == '\'' || source[j] == '"') {
				for k := i; k < j; k++ {
					if source[k] != 'f' && source[k] != 'F' {
						b.WriteByte(source[k])
					}
				}
				i = copyStringLiteral(&b, source, j)
			} else {
				b.WriteByte(c)
				i++
			}
		default:
			b.WriteByte(c)
			i++
		}
	}
	return b.String()
}

// copyStringLiteral copies the literal starting at source[i] (a quote byte)
// to b verbatim and returns the index just past it. Unterminated literals are
// copied as far as they go; the parser reports them.
func copyStringLiteral(b *strings.Builder, source string, i int) int {
	q := source[i]
	n := len(source)
	if i+2 < n && source[i+1] == q && source[i+2] == q {
		b.WriteString(source[i : i+3])
		i += 3
		for i < n {
			if source[i] == '\\' && i+1 < n {
				b.WriteString(source[i : i+2])
				i += 2
				continue
			}
			if source[i] == q && i+2 < n && source[i+1] == q && source[i+2] == q {
				b.WriteString(source[i : i+3])
				return i + 3
			}
			b.WriteByte(source[i])
			i++
		}
		return i
	}
	b.WriteByte(q)
	i++
	for i < n {
		switch {
		case source[i] == '\\' && i+1 < n:
			b.WriteString(source[i : i+2])
			i += 2
		case source[i] == q:
			b.WriteByte(q)
			return i + 1
		case source[i] == '\n':
			return i
		default:
			b.WriteByte(source[i])
			i++
		}
	}
	return i
}

func isStringPrefixByte(c byte) bool {
	switch c {
	case 'b', 'B', 'f', 'F', 'r', 'R', 'u', 'U':
		return true
	}
	return false
}

func isIdentByte(c byte) bool {
	return c == '_' || c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}
