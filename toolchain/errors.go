// Package toolchain drives the external native build tools: cargo for the
// WASM build, wasm-opt for size reduction, wasm-validate for the legacy
// instruction-set check. Each tool runs as a blocking child process with its
// output captured in full before the pipeline moves on.
package toolchain

import "fmt"

// BuildFailed reports a non-zero cargo exit, with both streams verbatim.
type BuildFailed struct {
	Stdout string
	Stderr string
}

func (e *BuildFailed) Error() string {
	return fmt.Sprintf("cargo build failed:\n--- stderr ---\n%s\n--- stdout ---\n%s", e.Stderr, e.Stdout)
}

// ArtifactMissing reports a zero cargo exit with no artifact at the expected
// path. That breaks cargo's contract; it is never retried.
type ArtifactMissing struct {
	Path string
}

func (e *ArtifactMissing) Error() string {
	return fmt.Sprintf("WASM output not found at %s despite successful build", e.Path)
}

// OptimizationFailed reports a non-zero wasm-opt exit.
type OptimizationFailed struct {
	Stderr string
}

func (e *OptimizationFailed) Error() string {
	return fmt.Sprintf("wasm-opt failed: %s", e.Stderr)
}

// VerificationFailed reports that the legacy binary still contains disallowed
// instructions. The generated toolchain configuration should have prevented
// this, so it is a pipeline defect rather than a user error.
type VerificationFailed struct {
	Output string
}

func (e *VerificationFailed) Error() string {
	return fmt.Sprintf("binary failed legacy instruction check (this is a monty-near bug): %s", e.Output)
}

// ToolNotFound reports an absent optional tool. Callers downgrade it to a
// warning and continue.
type ToolNotFound struct {
	Tool string
}

func (e *ToolNotFound) Error() string {
	return fmt.Sprintf("%s not found on PATH", e.Tool)
}
