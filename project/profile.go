// Package project materializes the native Rust host project that embeds a
// compiled contract blob and exposes its methods as WASM exports.
package project

import (
	"bytes"
	"fmt"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// PackageName is the fixed crate name of the generated project. The build
// artifact path derives from it.
const PackageName = "monty_near_contract"

// ArtifactPath returns the path cargo writes the WASM module to, relative to
// the project root. Profile-independent.
func ArtifactPath(dir string) string {
	return filepath.Join(dir, "target", "wasm32-unknown-unknown", "release", PackageName+".wasm")
}

// ---------------------------------------------------------------------------
// TOML shapes for the generated manifests
// ---------------------------------------------------------------------------

type cargoManifest struct {
	Package      cargoPackage            `toml:"package"`
	Lib          cargoLib                `toml:"lib"`
	Dependencies map[string]cargoDep     `toml:"dependencies"`
	Profile      map[string]cargoProfile `toml:"profile"`
}

type cargoPackage struct {
	Name    string `toml:"name"`
	Version string `toml:"version"`
	Edition string `toml:"edition"`
}

type cargoLib struct {
	CrateType []string `toml:"crate-type"`
}

type cargoDep struct {
	Version  string   `toml:"version"`
	Features []string `toml:"features,omitempty"`
}

type cargoProfile struct {
	OptLevel     string `toml:"opt-level"`
	LTO          bool   `toml:"lto"`
	CodegenUnits int    `toml:"codegen-units"`
	Panic        string `toml:"panic"`
	Strip        bool   `toml:"strip"`
}

type toolchainFile struct {
	Toolchain toolchainSpec `toml:"toolchain"`
}

type toolchainSpec struct {
	Channel    string   `toml:"channel"`
	Components []string `toml:"components,omitempty"`
	Targets    []string `toml:"targets"`
}

type cargoConfig struct {
	Build  buildSection             `toml:"build"`
	Target map[string]targetSection `toml:"target"`
}

type buildSection struct {
	Target string `toml:"target"`
}

type targetSection struct {
	Rustflags []string `toml:"rustflags"`
}

// ---------------------------------------------------------------------------
// Build profiles
// ---------------------------------------------------------------------------

// Profile carries every profile-specific decision the pipeline makes:
// manifest contents, toolchain pin, cargo flags, optimizer flags, and whether
// the post-build instruction check runs. It is constructed once per build and
// threaded through all stages.
type Profile struct {
	Name string

	// CargoArgs are appended to `cargo build --release`.
	CargoArgs []string

	// OptimizerFlags are passed to wasm-opt in addition to -Oz.
	OptimizerFlags []string

	// Verify selects the post-build instruction-set validation stage.
	Verify bool

	manifest  cargoManifest
	toolchain toolchainFile
	config    cargoConfig
}

const wasmTarget = "wasm32-unknown-unknown"

func baseManifest() cargoManifest {
	return cargoManifest{
		Package: cargoPackage{
			Name:    PackageName,
			Version: "0.1.0",
			Edition: "2021",
		},
		Lib: cargoLib{CrateType: []string{"cdylib"}},
		Dependencies: map[string]cargoDep{
			"monty-runtime": {Version: "0.3", Features: []string{"near"}},
		},
		Profile: map[string]cargoProfile{
			"release": {
				OptLevel:     "z",
				LTO:          true,
				CodegenUnits: 1,
				Panic:        "abort",
				Strip:        true,
			},
		},
	}
}

// DefaultProfile builds with the stable toolchain and prebuilt std. The
// optimizer must be told which post-MVP features the toolchain emits so it
// does not reject them.
func DefaultProfile() *Profile {
	return &Profile{
		Name: "default",
		OptimizerFlags: []string{
			"--enable-sign-ext",
			"--enable-bulk-memory",
			"--enable-nontrapping-float-to-int",
			"--enable-mutable-globals",
		},
		manifest: baseManifest(),
		toolchain: toolchainFile{
			Toolchain: toolchainSpec{
				Channel: "stable",
				Targets: []string{wasmTarget},
			},
		},
		config: cargoConfig{
			Build: buildSection{Target: wasmTarget},
			Target: map[string]targetSection{
				wasmTarget: {Rustflags: []string{"-C", "link-arg=-s"}},
			},
		},
	}
}

// LegacyProfile targets runtimes without post-MVP instruction support.
// target-cpu=mvp is incompatible with the prebuilt std, so the toolchain is
// pinned to nightly with rust-src and std is rebuilt from source.
func LegacyProfile() *Profile {
	m := baseManifest()
	m.Dependencies["getrandom"] = cargoDep{Version: "0.3", Features: []string{"custom"}}
	return &Profile{
		Name:      "legacy",
		CargoArgs: []string{"-Z", "build-std=std,panic_abort"},
		Verify:    true,
		manifest:  m,
		toolchain: toolchainFile{
			Toolchain: toolchainSpec{
				Channel:    "nightly",
				Components: []string{"rust-src"},
				Targets:    []string{wasmTarget},
			},
		},
		config: cargoConfig{
			Build: buildSection{Target: wasmTarget},
			Target: map[string]targetSection{
				wasmTarget: {Rustflags: []string{
					"-C", "link-arg=-s",
					"-C", "target-cpu=mvp",
					"--cfg", `getrandom_backend="custom"`,
				}},
			},
		},
	}
}

// Select returns the profile for the legacy flag.
func Select(legacy bool) *Profile {
	if legacy {
		return LegacyProfile()
	}
	return DefaultProfile()
}

func encodeTOML(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(v); err != nil {
		return nil, fmt.Errorf("encoding TOML: %w", err)
	}
	return buf.Bytes(), nil
}

// CargoTOML renders the package manifest.
func (p *Profile) CargoTOML() ([]byte, error) { return encodeTOML(p.manifest) }

// ToolchainTOML renders the rust-toolchain.toml pin.
func (p *Profile) ToolchainTOML() ([]byte, error) { return encodeTOML(p.toolchain) }

// CargoConfigTOML renders .cargo/config.toml.
func (p *Profile) CargoConfigTOML() ([]byte, error) { return encodeTOML(p.config) }
