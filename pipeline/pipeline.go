// Package pipeline sequences a full contract build: discover entry points,
// synthesize the dispatcher, compile to bytecode, generate the native
// project, build it, then optimize, copy out, and verify. Stages run strictly
// in order; the first failure halts the run and nothing is retried.
package pipeline

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tliron/commonlog"

	"github.com/montylang/monty-near/bytecode"
	"github.com/montylang/monty-near/discover"
	"github.com/montylang/monty-near/dispatch"
	"github.com/montylang/monty-near/history"
	"github.com/montylang/monty-near/project"
	"github.com/montylang/monty-near/toolchain"

	_ "github.com/tliron/commonlog/simple"
)

var log = commonlog.GetLogger("monty-near.pipeline")

// HistoryFile is the build ledger's filename inside the scratch directory.
const HistoryFile = "history.db"

// Options configures one build invocation.
type Options struct {
	// Input is the Python source file.
	Input string

	// Output is where the final WASM lands; relative paths resolve against
	// the current working directory.
	Output string

	// Legacy selects the legacy-compatible profile.
	Legacy bool

	// SkipOptimize disables the wasm-opt stage.
	SkipOptimize bool

	// ScratchDir overrides the build directory. Empty means
	// <cwd>/target/monty-near-build.
	ScratchDir string

	// Compiler overrides the bytecode compiler; nil means the external
	// montyc tool.
	Compiler bytecode.Compiler

	// Progress receives human-readable progress lines; nil means os.Stderr.
	Progress io.Writer
}

// Result summarizes a completed build.
type Result struct {
	Methods      []string
	Profile      string
	BytecodeSize int64
	ArtifactSize int64 // before optimization
	FinalSize    int64
	Output       string
}

// DefaultScratchDir returns the build directory used when none is configured.
func DefaultScratchDir() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(cwd, "target", "monty-near-build"), nil
}

// Run executes the whole pipeline.
func Run(opts Options) (*Result, error) {
	start := time.Now()

	progress := opts.Progress
	if progress == nil {
		progress = os.Stderr
	}
	compiler := opts.Compiler
	if compiler == nil {
		compiler = &bytecode.ToolCompiler{}
	}
	prof := project.Select(opts.Legacy)

	fmt.Fprintf(progress, "  Parsing %s...\n", opts.Input)
	sourceBytes, err := os.ReadFile(opts.Input)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", opts.Input, err)
	}
	source := string(sourceBytes)
	filename := filepath.Base(opts.Input)

	methods, err := discover.Exports(source, filename)
	if err != nil {
		return nil, err
	}
	log.Infof("discovered %d methods in %s", len(methods), opts.Input)
	fmt.Fprintf(progress, "  Found %d methods: %s\n", len(methods), strings.Join(methods, ", "))

	fmt.Fprintf(progress, "  Compiling bytecode...")
	program := dispatch.Program(source, methods)
	blob, err := bytecode.Build(compiler, program, filename)
	if err != nil {
		fmt.Fprintln(progress)
		return nil, err
	}
	fmt.Fprintf(progress, " %d bytes\n", len(blob))

	scratch := opts.ScratchDir
	if scratch == "" {
		scratch, err = DefaultScratchDir()
		if err != nil {
			return nil, err
		}
	}
	// Stale glue must never survive into a new build; the toolchain's own
	// incremental cache under target/ is kept.
	if err := os.RemoveAll(filepath.Join(scratch, "src")); err != nil {
		return nil, fmt.Errorf("clearing generated sources: %w", err)
	}
	if err := project.Generate(scratch, blob, methods, prof); err != nil {
		return nil, err
	}
	log.Infof("generated %s project in %s", prof.Name, scratch)

	fmt.Fprintf(progress, "  Building WASM (%s profile)...\n", prof.Name)
	wasmPath, err := toolchain.BuildWasm(scratch, prof)
	if err != nil {
		return nil, err
	}

	artifactSize, err := fileSize(wasmPath)
	if err != nil {
		return nil, err
	}
	finalSize := artifactSize
	// Zero until wasm-opt actually runs; the ledger distinguishes skipped
	// optimization from an optimized artifact.
	var optimizedSize int64

	if opts.SkipOptimize {
		fmt.Fprintf(progress, "  Skipping optimization\n")
	} else {
		before, after, err := toolchain.Optimize(wasmPath, prof)
		var notFound *toolchain.ToolNotFound
		switch {
		case errors.As(err, &notFound):
			log.Warningf("%v; keeping unoptimized artifact", notFound)
			fmt.Fprintf(progress, "  warning: %v; keeping unoptimized artifact\n", notFound)
		case err != nil:
			return nil, err
		default:
			finalSize = after
			optimizedSize = after
			saved := before - after
			fmt.Fprintf(progress, "  Optimized: %d -> %d bytes (%.1f%% smaller)\n",
				before, after, 100*float64(saved)/float64(before))
		}
	}

	outputAbs, err := absOutput(opts.Output)
	if err != nil {
		return nil, err
	}
	if err := copyFile(wasmPath, outputAbs); err != nil {
		return nil, fmt.Errorf("copying artifact to %s: %w", outputAbs, err)
	}

	// Verification runs after the copy; a failure still fails the build.
	if prof.Verify {
		err := toolchain.Verify(wasmPath)
		var notFound *toolchain.ToolNotFound
		switch {
		case errors.As(err, &notFound):
			log.Warningf("%v; skipping legacy instruction check", notFound)
			fmt.Fprintf(progress, "  warning: %v; skipping legacy instruction check\n", notFound)
		case err != nil:
			return nil, err
		default:
			fmt.Fprintf(progress, "  Verified: no post-MVP instructions\n")
		}
	}

	result := &Result{
		Methods:      methods,
		Profile:      prof.Name,
		BytecodeSize: int64(len(blob)),
		ArtifactSize: artifactSize,
		FinalSize:    finalSize,
		Output:       outputAbs,
	}
	recordBuild(scratch, opts, result, blob, wasmPath, start, optimizedSize)

	fmt.Fprintf(progress, "\n  ✓ %s (%.0f KB)\n", outputAbs, float64(finalSize)/1024.0)
	return result, nil
}

// recordBuild writes the receipt and the history row. Both are bookkeeping;
// failures are warnings, never build failures.
func recordBuild(scratch string, opts Options, result *Result, blob []byte, wasmPath string, start time.Time, optimizedSize int64) {
	blobSum := sha256.Sum256(blob)
	receipt := &Receipt{
		Input:          opts.Input,
		Profile:        result.Profile,
		Methods:        result.Methods,
		BytecodeSHA256: blobSum[:],
		BytecodeSize:   result.BytecodeSize,
		ArtifactSize:   result.FinalSize,
		BuiltAt:        start.Unix(),
	}
	if data, err := os.ReadFile(wasmPath); err == nil {
		artifactSum := sha256.Sum256(data)
		receipt.ArtifactSHA256 = artifactSum[:]
	}
	if err := WriteReceipt(filepath.Join(scratch, ReceiptFile), receipt); err != nil {
		log.Warningf("writing build receipt: %v", err)
	}

	ledger, err := history.Open(filepath.Join(scratch, HistoryFile))
	if err != nil {
		log.Warningf("opening build history: %v", err)
		return
	}
	defer ledger.Close()
	err = ledger.Record(history.Entry{
		BuiltAt:       start,
		Input:         opts.Input,
		Profile:       result.Profile,
		Methods:       result.Methods,
		ArtifactSize:  result.ArtifactSize,
		OptimizedSize: optimizedSize,
		Output:        result.Output,
		Duration:      time.Since(start),
	})
	if err != nil {
		log.Warningf("recording build history: %v", err)
	}
}

func fileSize(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

func absOutput(output string) (string, error) {
	if output == "" {
		output = "contract.wasm"
	}
	if filepath.IsAbs(output) {
		return output, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(cwd, output), nil
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0644)
}
