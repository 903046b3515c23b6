package main

import (
	"os"
	"path/filepath"
	"testing"
)

func writeManifest(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "ownlint.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	return path
}

func TestFindOwnlintTomlWalksUpward(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	want := writeManifest(t, root, "[package]\nname = \"demo\"\n")

	got, ok, err := findOwnlintToml(nested)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok || got != want {
		t.Fatalf("findOwnlintToml returned (%q, %v), want (%q, true)", got, ok, want)
	}
}

func TestFindOwnlintTomlMissing(t *testing.T) {
	_, ok, err := findOwnlintToml(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatalf("expected no manifest in an empty tree")
	}
}

func TestLoadProjectConfig(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, `
[package]
name = "demo"

[check]
max_diagnostics = 25
jobs = 4
cache = true
`)
	cfg, err := loadProjectConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Package.Name != "demo" {
		t.Fatalf("package name lost: %q", cfg.Package.Name)
	}
	if cfg.Check.MaxDiagnostics != 25 || cfg.Check.Jobs != 4 || !cfg.Check.Cache {
		t.Fatalf("check section mangled: %+v", cfg.Check)
	}
	if cfg.Check.TwoPhaseRequested {
		t.Fatalf("two-phase must not be requested when unset")
	}
}

func TestLoadProjectConfigMissingName(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, "[package]\n")
	if _, err := loadProjectConfig(path); err == nil {
		t.Fatalf("expected an error for a manifest without [package].name")
	}
}

func TestLoadProjectConfigTwoPhaseRequest(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, `
[package]
name = "demo"

[check]
strict_two_phase = false
`)
	cfg, err := loadProjectConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cfg.Check.TwoPhaseRequested {
		t.Fatalf("explicit strict_two_phase = false must be recorded")
	}
}

func TestReadUIMode(t *testing.T) {
	cases := map[string]uiMode{
		"":     uiModeAuto,
		"auto": uiModeAuto,
		"ON":   uiModeOn,
		"off":  uiModeOff,
	}
	for in, want := range cases {
		got, err := readUIMode(in)
		if err != nil || got != want {
			t.Errorf("readUIMode(%q) = (%v, %v), want %v", in, got, err, want)
		}
	}
	if _, err := readUIMode("sometimes"); err == nil {
		t.Errorf("expected an error for an invalid mode")
	}
}
