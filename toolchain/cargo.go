package toolchain

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/montylang/monty-near/project"
)

// rustupToolchainEnv is stripped from the child environment: a value leaking
// from the invoking shell would override the project's rust-toolchain.toml
// pin and can select a toolchain without the wasm target.
const rustupToolchainEnv = "RUSTUP_TOOLCHAIN"

func cargoEnv() []string {
	env := os.Environ()
	out := env[:0]
	for _, kv := range env {
		if strings.HasPrefix(kv, rustupToolchainEnv+"=") {
			continue
		}
		out = append(out, kv)
	}
	return out
}

// BuildWasm runs `cargo build --release` (plus the profile's extra args) in
// projectDir and returns the path of the produced WASM module.
func BuildWasm(projectDir string, p *project.Profile) (string, error) {
	args := append([]string{"build", "--release"}, p.CargoArgs...)
	cmd := exec.Command("cargo", args...)
	cmd.Dir = projectDir
	cmd.Env = cargoEnv()

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if _, ok := err.(*exec.ExitError); ok {
			return "", &BuildFailed{Stdout: stdout.String(), Stderr: stderr.String()}
		}
		return "", fmt.Errorf("running cargo: %w", err)
	}

	wasmPath := project.ArtifactPath(projectDir)
	if _, err := os.Stat(wasmPath); err != nil {
		return "", &ArtifactMissing{Path: wasmPath}
	}
	return wasmPath, nil
}
