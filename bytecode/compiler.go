// Package bytecode adapts the external Monty bytecode compiler to the build
// pipeline. The compiler itself is a collaborator: it takes Python source, a
// filename tag for diagnostics, the free variable names the runtime will
// bind, and the host function names the contract may call, and produces a
// serialized bytecode blob.
package bytecode

import (
	"fmt"

	"github.com/montylang/monty-near/dispatch"
	"github.com/montylang/monty-near/nearapi"
)

// Program is a compiled Monty program that can be serialized to a blob.
type Program interface {
	Dump() ([]byte, error)
}

// Compiler compiles Python source to a Monty program.
type Compiler interface {
	Compile(source, filename string, freeVars, hostFuncs []string) (Program, error)
}

// Stages at which compilation can fail.
const (
	StageCompile   = "compile"
	StageSerialize = "serialize"
)

// CompilationFailed wraps a compiler or serializer failure with the stage it
// came from.
type CompilationFailed struct {
	Stage   string
	Message string
	Err     error
}

func (e *CompilationFailed) Error() string {
	return fmt.Sprintf("bytecode %s failed: %s", e.Stage, e.Message)
}

func (e *CompilationFailed) Unwrap() error { return e.Err }

// Build compiles the dispatcher-augmented source to a single bytecode blob.
// The method selector is declared as the only free variable and the NEAR host
// catalog as the callable externs.
func Build(c Compiler, source, filename string) ([]byte, error) {
	program, err := c.Compile(source, filename, []string{dispatch.SelectorVar}, nearapi.HostFunctions())
	if err != nil {
		return nil, &CompilationFailed{Stage: StageCompile, Message: err.Error(), Err: err}
	}

	blob, err := program.Dump()
	if err != nil {
		return nil, &CompilationFailed{Stage: StageSerialize, Message: err.Error(), Err: err}
	}
	return blob, nil
}
