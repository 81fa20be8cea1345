package toolchain

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/montylang/monty-near/project"
)

// OptimizerTool is the binaryen size optimizer.
const OptimizerTool = "wasm-opt"

// Optimize shrinks the WASM module in place with wasm-opt -Oz, passing the
// profile's instruction-set feature flags. Returns the byte size before and
// after. An absent wasm-opt is reported as *ToolNotFound so the caller can
// keep the unoptimized artifact.
func Optimize(path string, p *project.Profile) (before, after int64, err error) {
	tool, err := exec.LookPath(OptimizerTool)
	if err != nil {
		return 0, 0, &ToolNotFound{Tool: OptimizerTool}
	}

	info, err := os.Stat(path)
	if err != nil {
		return 0, 0, fmt.Errorf("stat %s: %w", path, err)
	}
	before = info.Size()

	args := []string{"-Oz"}
	args = append(args, p.OptimizerFlags...)
	args = append(args, "-o", path, path)

	cmd := exec.Command(tool, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return 0, 0, &OptimizationFailed{Stderr: strings.TrimSpace(stderr.String())}
	}

	info, err = os.Stat(path)
	if err != nil {
		return 0, 0, fmt.Errorf("stat %s after optimize: %w", path, err)
	}
	return before, info.Size(), nil
}
