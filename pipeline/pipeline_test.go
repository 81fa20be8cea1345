package pipeline

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/montylang/monty-near/bytecode"
	"github.com/montylang/monty-near/discover"
	"github.com/montylang/monty-near/history"
	"github.com/montylang/monty-near/toolchain"
)

const contractSource = `def hello():
    name = input()
    return f"Hello, {name}!"

def counter():
    pass

def _helper():
    pass
`

// fakeCompiler returns a fixed blob without consulting any external tool.
type fakeCompiler struct {
	calls int
	blob  []byte
	err   error
}

type fakeProgram struct{ blob []byte }

func (p *fakeProgram) Dump() ([]byte, error) { return p.blob, nil }

func (f *fakeCompiler) Compile(source, filename string, freeVars, hostFuncs []string) (bytecode.Program, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &fakeProgram{blob: f.blob}, nil
}

func stubTool(t *testing.T, dir, tool, script string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, tool), []byte("#!/bin/sh\n"+script), 0755); err != nil {
		t.Fatal(err)
	}
}

// stubCargo produces the artifact cargo would.
func stubCargo(t *testing.T, dir string) {
	stubTool(t, dir, "cargo", `
mkdir -p target/wasm32-unknown-unknown/release
printf 'wasm-module-bytes' > target/wasm32-unknown-unknown/release/monty_near_contract.wasm
`)
}

func prependPath(t *testing.T, dir string) {
	t.Helper()
	t.Setenv("PATH", dir+string(os.PathListSeparator)+os.Getenv("PATH"))
}

func writeSource(t *testing.T, source string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "contract.py")
	if err := os.WriteFile(path, []byte(source), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunDefaultProfile(t *testing.T) {
	bin := t.TempDir()
	stubCargo(t, bin)
	stubTool(t, bin, "wasm-opt", `
for last; do :; done
printf 'opt' > "$last"
`)
	validateMarker := filepath.Join(bin, "validated")
	stubTool(t, bin, "wasm-validate", "touch "+validateMarker+"\n")
	prependPath(t, bin)

	scratch := filepath.Join(t.TempDir(), "scratch")
	output := filepath.Join(t.TempDir(), "out.wasm")
	var progress bytes.Buffer

	result, err := Run(Options{
		Input:      writeSource(t, contractSource),
		Output:     output,
		ScratchDir: scratch,
		Compiler:   &fakeCompiler{blob: []byte{1, 2, 3}},
		Progress:   &progress,
	})
	if err != nil {
		t.Fatalf("Run: %v\nprogress:\n%s", err, progress.String())
	}

	if len(result.Methods) != 2 || result.Methods[0] != "hello" || result.Methods[1] != "counter" {
		t.Errorf("Methods = %v", result.Methods)
	}
	if result.Profile != "default" {
		t.Errorf("Profile = %q", result.Profile)
	}
	if result.ArtifactSize != int64(len("wasm-module-bytes")) {
		t.Errorf("ArtifactSize = %d", result.ArtifactSize)
	}
	if result.FinalSize != int64(len("opt")) {
		t.Errorf("FinalSize = %d", result.FinalSize)
	}
	if _, err := os.Stat(output); err != nil {
		t.Errorf("output not copied: %v", err)
	}
	if _, err := os.Stat(validateMarker); err == nil {
		t.Error("default profile must not run wasm-validate")
	}

	// Bookkeeping artifacts.
	receipt, err := ReadReceipt(filepath.Join(scratch, ReceiptFile))
	if err != nil {
		t.Fatalf("ReadReceipt: %v", err)
	}
	if receipt.Profile != "default" || len(receipt.Methods) != 2 || len(receipt.BytecodeSHA256) != 32 {
		t.Errorf("receipt = %+v", receipt)
	}
	ledger, err := history.Open(filepath.Join(scratch, HistoryFile))
	if err != nil {
		t.Fatalf("history.Open: %v", err)
	}
	defer ledger.Close()
	entries, err := ledger.Recent(1)
	if err != nil || len(entries) != 1 {
		t.Fatalf("Recent: %v, %d entries", err, len(entries))
	}
	if entries[0].Profile != "default" {
		t.Errorf("history entry = %+v", entries[0])
	}
	if entries[0].OptimizedSize != int64(len("opt")) {
		t.Errorf("OptimizedSize = %d, want %d", entries[0].OptimizedSize, len("opt"))
	}
}

func TestRunSkipOptimize(t *testing.T) {
	bin := t.TempDir()
	stubCargo(t, bin)
	optMarker := filepath.Join(bin, "optimized")
	stubTool(t, bin, "wasm-opt", "touch "+optMarker+"\n")
	prependPath(t, bin)

	scratch := filepath.Join(t.TempDir(), "scratch")
	output := filepath.Join(t.TempDir(), "out.wasm")
	result, err := Run(Options{
		Input:        writeSource(t, contractSource),
		Output:       output,
		SkipOptimize: true,
		ScratchDir:   scratch,
		Compiler:     &fakeCompiler{blob: []byte{1}},
		Progress:     &bytes.Buffer{},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if _, err := os.Stat(optMarker); err == nil {
		t.Error("wasm-opt invoked despite SkipOptimize")
	}
	if result.FinalSize != result.ArtifactSize {
		t.Errorf("FinalSize = %d, want pre-optimization %d", result.FinalSize, result.ArtifactSize)
	}

	// The ledger records a zero optimized size for skipped runs.
	ledger, err := history.Open(filepath.Join(scratch, HistoryFile))
	if err != nil {
		t.Fatalf("history.Open: %v", err)
	}
	defer ledger.Close()
	entries, err := ledger.Recent(1)
	if err != nil || len(entries) != 1 {
		t.Fatalf("Recent: %v, %d entries", err, len(entries))
	}
	if entries[0].OptimizedSize != 0 {
		t.Errorf("OptimizedSize = %d, want 0", entries[0].OptimizedSize)
	}
	if entries[0].ArtifactSize != result.ArtifactSize {
		t.Errorf("ArtifactSize = %d, want %d", entries[0].ArtifactSize, result.ArtifactSize)
	}
}

func TestRunOptimizerMissingIsWarning(t *testing.T) {
	bin := t.TempDir()
	stubCargo(t, bin)
	// No wasm-opt stub: PATH contains only cargo plus system dirs that may
	// not have it either. Restrict PATH to the stub dir and the shell's.
	t.Setenv("PATH", bin+string(os.PathListSeparator)+"/bin"+string(os.PathListSeparator)+"/usr/bin")
	if _, err := os.Stat("/usr/bin/wasm-opt"); err == nil {
		t.Skip("wasm-opt installed system-wide")
	}

	var progress bytes.Buffer
	output := filepath.Join(t.TempDir(), "out.wasm")
	result, err := Run(Options{
		Input:      writeSource(t, contractSource),
		Output:     output,
		ScratchDir: filepath.Join(t.TempDir(), "scratch"),
		Compiler:   &fakeCompiler{blob: []byte{1}},
		Progress:   &progress,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !strings.Contains(progress.String(), "warning") {
		t.Errorf("expected warning in progress:\n%s", progress.String())
	}
	if result.FinalSize != result.ArtifactSize {
		t.Errorf("unoptimized artifact size must be final")
	}
}

func TestRunLegacyVerificationFailure(t *testing.T) {
	bin := t.TempDir()
	stubCargo(t, bin)
	stubTool(t, bin, "wasm-validate", "echo 'sign-extension found'\nexit 1\n")
	prependPath(t, bin)

	output := filepath.Join(t.TempDir(), "out.wasm")
	_, err := Run(Options{
		Input:        writeSource(t, contractSource),
		Output:       output,
		Legacy:       true,
		SkipOptimize: true,
		ScratchDir:   filepath.Join(t.TempDir(), "scratch"),
		Compiler:     &fakeCompiler{blob: []byte{1}},
		Progress:     &bytes.Buffer{},
	})
	var failed *toolchain.VerificationFailed
	if !errors.As(err, &failed) {
		t.Fatalf("got %v, want VerificationFailed", err)
	}
	// The copy happens before verification; the output exists even though
	// the build failed.
	if _, err := os.Stat(output); err != nil {
		t.Errorf("output missing: %v", err)
	}
}

func TestRunNoExportsHasNoSideEffects(t *testing.T) {
	scratch := filepath.Join(t.TempDir(), "scratch")
	compiler := &fakeCompiler{blob: []byte{1}}

	_, err := Run(Options{
		Input:      writeSource(t, "def _private():\n    pass\n"),
		Output:     filepath.Join(t.TempDir(), "out.wasm"),
		ScratchDir: scratch,
		Compiler:   compiler,
		Progress:   &bytes.Buffer{},
	})
	var noExports *discover.NoExportsError
	if !errors.As(err, &noExports) {
		t.Fatalf("got %v, want NoExportsError", err)
	}
	if compiler.calls != 0 {
		t.Error("compiler invoked despite discovery failure")
	}
	if _, err := os.Stat(scratch); !os.IsNotExist(err) {
		t.Error("scratch dir created despite discovery failure")
	}
}

func TestRunClearsStaleGeneratedSources(t *testing.T) {
	bin := t.TempDir()
	stubCargo(t, bin)
	prependPath(t, bin)

	scratch := filepath.Join(t.TempDir(), "scratch")
	stale := filepath.Join(scratch, "src", "stale.bin")
	if err := os.MkdirAll(filepath.Dir(stale), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(stale, []byte("old"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := Run(Options{
		Input:        writeSource(t, contractSource),
		Output:       filepath.Join(t.TempDir(), "out.wasm"),
		SkipOptimize: true,
		ScratchDir:   scratch,
		Compiler:     &fakeCompiler{blob: []byte{1}},
		Progress:     &bytes.Buffer{},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Error("stale generated source survived the rebuild")
	}
}

func TestRunCompilationFailure(t *testing.T) {
	scratch := filepath.Join(t.TempDir(), "scratch")
	_, err := Run(Options{
		Input:      writeSource(t, contractSource),
		Output:     filepath.Join(t.TempDir(), "out.wasm"),
		ScratchDir: scratch,
		Compiler:   &fakeCompiler{err: fmt.Errorf("boom")},
		Progress:   &bytes.Buffer{},
	})
	var failed *bytecode.CompilationFailed
	if !errors.As(err, &failed) {
		t.Fatalf("got %v, want CompilationFailed", err)
	}
	if _, statErr := os.Stat(scratch); !os.IsNotExist(statErr) {
		t.Error("scratch dir created despite compilation failure")
	}
}

func TestReceiptRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), ReceiptFile)
	in := &Receipt{
		Input:          "contract.py",
		Profile:        "legacy",
		Methods:        []string{"hello"},
		BytecodeSHA256: bytes.Repeat([]byte{0xAB}, 32),
		BytecodeSize:   128,
		ArtifactSize:   4096,
		BuiltAt:        1756250000,
	}
	if err := WriteReceipt(path, in); err != nil {
		t.Fatalf("WriteReceipt: %v", err)
	}
	out, err := ReadReceipt(path)
	if err != nil {
		t.Fatalf("ReadReceipt: %v", err)
	}
	if out.Profile != in.Profile || out.BytecodeSize != in.BytecodeSize || out.BuiltAt != in.BuiltAt {
		t.Errorf("round trip mismatch: %+v", out)
	}
	if !bytes.Equal(out.BytecodeSHA256, in.BytecodeSHA256) {
		t.Error("hash mismatch after round trip")
	}
}
