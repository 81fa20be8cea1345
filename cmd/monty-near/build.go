package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/tliron/commonlog"

	"github.com/montylang/monty-near/manifest"
	"github.com/montylang/monty-near/pipeline"
)

// handleBuildCommand processes the `monty-near build` subcommand.
// Usage:
//
//	monty-near build contract.py                # ./contract.wasm
//	monty-near build -o out.wasm contract.py    # custom output
//	monty-near build --legacy contract.py       # legacy-compatible runtime
func handleBuildCommand(args []string) {
	m, err := manifest.FindAndLoad(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading manifest: %v\n", err)
		os.Exit(1)
	}

	opts, verbose, err := parseBuildArgs(args, m)
	if err != nil {
		os.Exit(1)
	}

	verbosity := 0
	if verbose {
		verbosity = 1
	}
	commonlog.Configure(verbosity, nil)

	if _, err := pipeline.Run(*opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// parseBuildArgs resolves pipeline options from flags, falling back to the
// manifest (which may be nil) for anything not given on the command line.
func parseBuildArgs(args []string, m *manifest.Manifest) (*pipeline.Options, bool, error) {
	defaultOutput := "contract.wasm"
	defaultLegacy := false
	defaultSkipOptimize := false
	defaultScratch := ""
	if m != nil {
		defaultOutput = m.Build.Output
		defaultLegacy = m.Legacy()
		defaultSkipOptimize = m.Build.SkipOptimize
		defaultScratch = m.Build.ScratchDir
	}

	fs := flag.NewFlagSet("build", flag.ContinueOnError)
	output := fs.String("o", defaultOutput, "Output path for the WASM binary")
	fs.StringVar(output, "output", defaultOutput, "Output path for the WASM binary")
	legacy := fs.Bool("legacy", defaultLegacy, "Target legacy runtimes without post-MVP instruction support")
	noOptimize := fs.Bool("no-optimize", defaultSkipOptimize, "Skip the wasm-opt size optimization pass")
	scratch := fs.String("scratch-dir", defaultScratch, "Build scratch directory (default target/monty-near-build)")
	verbose := fs.Bool("v", false, "Verbose output")

	if err := fs.Parse(args); err != nil {
		return nil, false, err
	}

	input := ""
	if fs.NArg() > 0 {
		input = fs.Arg(0)
	} else if m != nil {
		input = m.SourcePath()
	}
	if input == "" {
		fmt.Fprintln(os.Stderr, "Error: no input file (pass a .py file or set contract.source in monty.toml)")
		return nil, false, fmt.Errorf("no input file")
	}
	if fs.NArg() > 1 {
		fmt.Fprintf(os.Stderr, "Error: unexpected arguments: %v\n", fs.Args()[1:])
		return nil, false, fmt.Errorf("unexpected arguments")
	}

	return &pipeline.Options{
		Input:        input,
		Output:       *output,
		Legacy:       *legacy,
		SkipOptimize: *noOptimize,
		ScratchDir:   *scratch,
	}, *verbose, nil
}
