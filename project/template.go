package project

import (
	_ "embed"
	"fmt"
	"strings"
)

//go:embed lib.rs.tmpl
var libTemplateText string

// Template insertion point names.
const (
	PointBytecode = "bytecode"
	PointExports  = "exports"
)

var libMarkers = map[string]string{
	PointBytecode: "// @MONTY_BYTECODE",
	PointExports:  "// @MONTY_EXPORTS",
}

// TemplateIntegrityError reports a template whose marker set does not match
// its declared insertion points. This is a defect in the template, not in
// user input.
type TemplateIntegrityError struct {
	Template string
	Point    string
	Count    int
}

func (e *TemplateIntegrityError) Error() string {
	return fmt.Sprintf("template %s: insertion point %q appears %d times, want exactly 1",
		e.Template, e.Point, e.Count)
}

// Template is a text template with named insertion points, each anchored to a
// marker line that must appear exactly once. Validation happens at parse
// time so a drifted template fails loudly instead of splicing nothing.
type Template struct {
	name    string
	text    string
	markers map[string]string
}

// ParseTemplate validates that every declared insertion point occurs exactly
// once in text.
func ParseTemplate(name, text string, markers map[string]string) (*Template, error) {
	for point, marker := range markers {
		if n := strings.Count(text, marker); n != 1 {
			return nil, &TemplateIntegrityError{Template: name, Point: point, Count: n}
		}
	}
	return &Template{name: name, text: text, markers: markers}, nil
}

// Fill replaces each insertion point's marker with the supplied fragment.
// Every declared point must be given, and no unknown points are accepted.
func (t *Template) Fill(fragments map[string]string) (string, error) {
	for point := range fragments {
		if _, ok := t.markers[point]; !ok {
			return "", fmt.Errorf("template %s: unknown insertion point %q", t.name, point)
		}
	}
	out := t.text
	for point, marker := range t.markers {
		fragment, ok := fragments[point]
		if !ok {
			return "", fmt.Errorf("template %s: no fragment for insertion point %q", t.name, point)
		}
		out = strings.Replace(out, marker, fragment, 1)
	}
	return out, nil
}

// LibTemplate parses the embedded lib.rs glue template.
func LibTemplate() (*Template, error) {
	return ParseTemplate("lib.rs", libTemplateText, libMarkers)
}
