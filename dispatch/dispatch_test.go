package dispatch

import (
	"strings"
	"testing"
)

func TestSynthesizeChain(t *testing.T) {
	got := Synthesize([]string{"a", "b", "c"})
	want := `if method_name == "a":
    a()
elif method_name == "b":
    b()
elif method_name == "c":
    c()
`
	if got != want {
		t.Errorf("Synthesize:\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestSynthesizeSingleName(t *testing.T) {
	got := Synthesize([]string{"hello"})
	want := "if method_name == \"hello\":\n    hello()\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestSynthesizeNoElseBranch(t *testing.T) {
	got := Synthesize([]string{"a", "b"})
	if strings.Contains(got, "else:") {
		t.Errorf("dispatcher must not have an else branch:\n%s", got)
	}
}

func TestProgramSeparatesWithBlankLine(t *testing.T) {
	source := "def hello():\n    pass\n"
	got := Program(source, []string{"hello"})
	want := "def hello():\n    pass\n\nif method_name == \"hello\":\n    hello()\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
