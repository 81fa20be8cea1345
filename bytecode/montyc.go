package bytecode

import (
	"bytes"
	"fmt"
	"os/exec"
	"strings"
)

// DefaultTool is the bytecode compiler executable resolved from PATH.
const DefaultTool = "montyc"

// ToolCompiler invokes the external montyc executable. Source is fed on
// stdin, the blob is read from stdout, diagnostics come back on stderr.
type ToolCompiler struct {
	// Tool overrides the executable name; empty means DefaultTool.
	Tool string
}

type toolProgram struct {
	blob []byte
}

func (p *toolProgram) Dump() ([]byte, error) {
	if len(p.blob) == 0 {
		return nil, fmt.Errorf("compiler produced an empty blob")
	}
	return p.blob, nil
}

// Compile runs montyc over source. Free variables and host functions are
// passed as repeated --input and --extern flags.
func (t *ToolCompiler) Compile(source, filename string, freeVars, hostFuncs []string) (Program, error) {
	tool := t.Tool
	if tool == "" {
		tool = DefaultTool
	}

	args := []string{"--file-name", filename}
	for _, v := range freeVars {
		args = append(args, "--input", v)
	}
	for _, fn := range hostFuncs {
		args = append(args, "--extern", fn)
	}

	cmd := exec.Command(tool, args...)
	cmd.Stdin = strings.NewReader(source)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		diag := strings.TrimSpace(stderr.String())
		if diag == "" {
			diag = err.Error()
		}
		return nil, fmt.Errorf("%s: %s", tool, diag)
	}

	return &toolProgram{blob: stdout.Bytes()}, nil
}
