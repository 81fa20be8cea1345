package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/montylang/monty-near/history"
	"github.com/montylang/monty-near/manifest"
	"github.com/montylang/monty-near/pipeline"
)

// handleHistoryCommand processes the `monty-near history` subcommand: it
// lists recent builds recorded in the scratch directory's ledger.
func handleHistoryCommand(args []string) {
	fs := flag.NewFlagSet("history", flag.ContinueOnError)
	n := fs.Int("n", 10, "Number of builds to show")
	scratch := fs.String("scratch-dir", "", "Build scratch directory (default target/monty-near-build)")
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	dir := *scratch
	if dir == "" {
		if m, err := manifest.FindAndLoad("."); err == nil && m != nil {
			dir = m.Build.ScratchDir
		}
	}
	if dir == "" {
		var err error
		dir, err = pipeline.DefaultScratchDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	dbPath := filepath.Join(dir, pipeline.HistoryFile)
	if _, err := os.Stat(dbPath); err != nil {
		fmt.Fprintln(os.Stderr, "No build history yet")
		return
	}

	ledger, err := history.Open(dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer ledger.Close()

	entries, err := ledger.Recent(*n)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if len(entries) == 0 {
		fmt.Fprintln(os.Stderr, "No build history yet")
		return
	}

	for _, e := range entries {
		// OptimizedSize is zero for builds that skipped wasm-opt.
		size := e.OptimizedSize
		if size == 0 {
			size = e.ArtifactSize
		}
		fmt.Printf("%s  %-7s  %2d methods  %7.0f KB  %s  (%s)\n",
			e.BuiltAt.Local().Format("2006-01-02 15:04"),
			e.Profile,
			len(e.Methods),
			float64(size)/1024.0,
			e.Output,
			e.Duration.Round(time.Millisecond))
	}
}
