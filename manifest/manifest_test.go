package manifest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeManifest(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, "monty.toml"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, `
[contract]
source = "contract.py"

[build]
output = "out.wasm"
profile = "legacy"
skip-optimize = true
`)

	m, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if m.Contract.Source != "contract.py" {
		t.Errorf("Source = %q", m.Contract.Source)
	}
	if m.Build.Output != "out.wasm" {
		t.Errorf("Output = %q", m.Build.Output)
	}
	if !m.Legacy() {
		t.Error("expected legacy profile")
	}
	if !m.Build.SkipOptimize {
		t.Error("expected skip-optimize")
	}
	if m.SourcePath() != filepath.Join(m.Dir, "contract.py") {
		t.Errorf("SourcePath = %q", m.SourcePath())
	}
}

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, `
[contract]
source = "contract.py"
`)

	m, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if m.Build.Output != "contract.wasm" {
		t.Errorf("default Output = %q", m.Build.Output)
	}
	if m.Build.Profile != "default" {
		t.Errorf("default Profile = %q", m.Build.Profile)
	}
	if m.Legacy() {
		t.Error("default profile reported as legacy")
	}
}

func TestLoadRejectsUnknownProfile(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, `
[contract]
source = "contract.py"

[build]
profile = "turbo"
`)

	_, err := Load(dir)
	if err == nil {
		t.Fatal("expected error for unknown profile")
	}
	if !strings.Contains(err.Error(), "invalid manifest") {
		t.Errorf("error = %v", err)
	}
}

func TestFindAndLoadWalksUp(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, "[contract]\nsource = \"contract.py\"\n")
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}

	m, err := FindAndLoad(nested)
	if err != nil {
		t.Fatalf("FindAndLoad: %v", err)
	}
	if m == nil {
		t.Fatal("manifest not found from nested dir")
	}
	if m.Contract.Source != "contract.py" {
		t.Errorf("Source = %q", m.Contract.Source)
	}
}

func TestFindAndLoadAbsent(t *testing.T) {
	m, err := FindAndLoad(t.TempDir())
	if err != nil {
		t.Fatalf("FindAndLoad: %v", err)
	}
	if m != nil {
		t.Errorf("expected nil manifest, got %+v", m)
	}
}
