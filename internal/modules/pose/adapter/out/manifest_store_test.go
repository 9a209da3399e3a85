package out_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	poseout "plank/internal/modules/pose/adapter/out"
)

func TestFileManifestStoreLoadMissingReturnsEmpty(t *testing.T) {
	t.Parallel()
	base := t.TempDir()
	store := poseout.NewFileManifestStore(base, filepath.Join(base, "detectors", "detectors.json"))
	manifests, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("load manifests: %v", err)
	}
	if len(manifests) != 0 {
		t.Fatalf("expected empty manifests, got %d", len(manifests))
	}
}

func writeManifests(t *testing.T, base, raw string) string {
	t.Helper()
	dir := filepath.Join(base, "detectors")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir detectors: %v", err)
	}
	path := filepath.Join(dir, "detectors.json")
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write detectors.json: %v", err)
	}
	return path
}

func TestFileManifestStoreResolvesRelativeBinary(t *testing.T) {
	t.Parallel()
	base := t.TempDir()
	path := writeManifests(t, base, `[
  {
    "name": "synthetic",
    "version": "1.0.0",
    "binary": "detectors/synthetic",
    "sha256": "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa",
    "enabled": true
  }
]`)
	manifests, err := poseout.NewFileManifestStore(base, path).Load(context.Background())
	if err != nil {
		t.Fatalf("load manifests: %v", err)
	}
	if len(manifests) != 1 {
		t.Fatalf("expected one manifest, got %d", len(manifests))
	}
	if manifests[0].Binary != filepath.Join(base, "detectors", "synthetic") {
		t.Fatalf("expected binary resolved under data dir, got %s", manifests[0].Binary)
	}
}

func TestFileManifestStoreRejectsUnknownField(t *testing.T) {
	t.Parallel()
	base := t.TempDir()
	path := writeManifests(t, base, `[{"name": "synthetic", "version": "1.0.0", "binary": "/tmp/x", "sha256": "", "enabled": true, "capabilities": []}]`)
	if _, err := poseout.NewFileManifestStore(base, path).Load(context.Background()); err == nil {
		t.Fatalf("expected unknown field error")
	}
}

func TestFileManifestStoreReadsYAML(t *testing.T) {
	t.Parallel()
	base := t.TempDir()
	path := filepath.Join(base, "detectors.yaml")
	raw := "- name: synthetic\n  version: 1.0.0\n  binary: /opt/plank/synthetic\n  sha256: " +
		"bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb\n  enabled: false\n"
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write detectors.yaml: %v", err)
	}
	manifests, err := poseout.NewFileManifestStore(base, path).Load(context.Background())
	if err != nil {
		t.Fatalf("load manifests: %v", err)
	}
	if len(manifests) != 1 || manifests[0].Binary != "/opt/plank/synthetic" || manifests[0].Enabled {
		t.Fatalf("unexpected manifests: %+v", manifests)
	}

	if err := os.WriteFile(path, []byte("- name: x\n  model: y\n"), 0o644); err != nil {
		t.Fatalf("rewrite detectors.yaml: %v", err)
	}
	if _, err := poseout.NewFileManifestStore(base, path).Load(context.Background()); err == nil {
		t.Fatalf("expected unknown field error for yaml")
	}
}

func TestFileManifestStoreEmptyYAMLIsEmpty(t *testing.T) {
	t.Parallel()
	base := t.TempDir()
	path := filepath.Join(base, "detectors.yml")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatalf("write detectors.yml: %v", err)
	}
	manifests, err := poseout.NewFileManifestStore(base, path).Load(context.Background())
	if err != nil {
		t.Fatalf("load manifests: %v", err)
	}
	if len(manifests) != 0 {
		t.Fatalf("expected no manifests, got %d", len(manifests))
	}
}
