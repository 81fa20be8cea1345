package project

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// BlobFile is the binary resource the glue code embeds.
const BlobFile = "contract.bin"

// BlobIdent is the Rust identifier bound to the embedded blob.
const BlobIdent = "CONTRACT_BYTECODE"

// GenerateGlue splices the bytecode static and one export per method into the
// lib.rs template. Each export is a no-argument extern "C" symbol whose body
// hands the shared blob and its own name to the runtime dispatch routine.
func GenerateGlue(methods []string) (string, error) {
	tmpl, err := LibTemplate()
	if err != nil {
		return "", err
	}

	bytecodeDecl := fmt.Sprintf("static %s: &[u8] = include_bytes!(%q);", BlobIdent, BlobFile)

	var exports strings.Builder
	for i, name := range methods {
		if i > 0 {
			exports.WriteString("\n")
		}
		fmt.Fprintf(&exports,
			"#[no_mangle]\npub extern \"C\" fn %s() {\n    run_bytecode(%s, %q);\n}\n",
			name, BlobIdent, name)
	}

	return tmpl.Fill(map[string]string{
		PointBytecode: bytecodeDecl,
		PointExports:  exports.String(),
	})
}

// Generate writes the full native project under dir: the profile's three
// manifests, the spliced glue source, and the blob as a binary resource.
// Every write is a full-file overwrite; the caller clears dir/src beforehand.
func Generate(dir string, blob []byte, methods []string, p *Profile) error {
	cargoToml, err := p.CargoTOML()
	if err != nil {
		return err
	}
	toolchainToml, err := p.ToolchainTOML()
	if err != nil {
		return err
	}
	configToml, err := p.CargoConfigTOML()
	if err != nil {
		return err
	}
	glue, err := GenerateGlue(methods)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating project dir: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "Cargo.toml"), cargoToml, 0644); err != nil {
		return fmt.Errorf("writing Cargo.toml: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "rust-toolchain.toml"), toolchainToml, 0644); err != nil {
		return fmt.Errorf("writing rust-toolchain.toml: %w", err)
	}

	cargoDir := filepath.Join(dir, ".cargo")
	if err := os.MkdirAll(cargoDir, 0755); err != nil {
		return fmt.Errorf("creating .cargo dir: %w", err)
	}
	if err := os.WriteFile(filepath.Join(cargoDir, "config.toml"), configToml, 0644); err != nil {
		return fmt.Errorf("writing .cargo/config.toml: %w", err)
	}

	srcDir := filepath.Join(dir, "src")
	if err := os.MkdirAll(srcDir, 0755); err != nil {
		return fmt.Errorf("creating src dir: %w", err)
	}
	if err := os.WriteFile(filepath.Join(srcDir, "lib.rs"), []byte(glue), 0644); err != nil {
		return fmt.Errorf("writing lib.rs: %w", err)
	}
	if err := os.WriteFile(filepath.Join(srcDir, BlobFile), blob, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", BlobFile, err)
	}

	return nil
}
