// monty-near CLI - compile Python source files into NEAR-deployable WASM
// contract modules.
package main

import (
	"fmt"
	"os"
)

func printUsage() {
	fmt.Fprintf(os.Stderr, "Usage: monty-near <command> [options]\n\n")
	fmt.Fprintf(os.Stderr, "Commands:\n")
	fmt.Fprintf(os.Stderr, "  build <input.py>   Build a Python file into a NEAR WASM contract\n")
	fmt.Fprintf(os.Stderr, "  history            Show recent builds from the scratch directory ledger\n")
	fmt.Fprintf(os.Stderr, "\nExamples:\n")
	fmt.Fprintf(os.Stderr, "  monty-near build contract.py                  # -> ./contract.wasm\n")
	fmt.Fprintf(os.Stderr, "  monty-near build -o out.wasm contract.py\n")
	fmt.Fprintf(os.Stderr, "  monty-near build --legacy contract.py         # pre-sign-ext runtimes\n")
	fmt.Fprintf(os.Stderr, "  monty-near build --no-optimize contract.py\n")
	fmt.Fprintf(os.Stderr, "  monty-near history -n 5\n")
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "build":
		handleBuildCommand(os.Args[2:])
	case "history":
		handleHistoryCommand(os.Args[2:])
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command %q\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}
