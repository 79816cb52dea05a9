package registry

import (
	"os"
	"path/filepath"
	"testing"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestLoadDirFindsGGUF(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "tinyllama.Q4_K_M.gguf"))
	touch(t, filepath.Join(dir, "notes.txt"))
	touch(t, filepath.Join(dir, "llava-v1.6.Q5_K_S.gguf"))

	models, err := LoadDir(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(models) != 2 {
		t.Fatalf("expected 2 models, got %d", len(models))
	}
	byID := map[string]string{}
	quants := map[string]string{}
	for _, m := range models {
		byID[m.ID] = m.Modality
		quants[m.ID] = m.Quant
	}
	if byID["tinyllama.Q4_K_M.gguf"] != "text" {
		t.Fatalf("expected text modality, got %q", byID["tinyllama.Q4_K_M.gguf"])
	}
	if byID["llava-v1.6.Q5_K_S.gguf"] != "vision" {
		t.Fatalf("expected vision modality, got %q", byID["llava-v1.6.Q5_K_S.gguf"])
	}
	if quants["tinyllama.Q4_K_M.gguf"] != "Q4_K_M" {
		t.Fatalf("quant: %q", quants["tinyllama.Q4_K_M.gguf"])
	}
}

func TestLoadDirMissing(t *testing.T) {
	if _, err := LoadDir(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Fatalf("expected error for missing dir")
	}
}

func TestLoadAdaptersDir(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "sql-style", "adapter_config.json"))
	touch(t, filepath.Join(dir, "tone", "adapter_model.safetensors"))
	// A plain directory is not an adapter.
	if err := os.MkdirAll(filepath.Join(dir, "scratch"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	adapters, err := LoadAdaptersDir(dir)
	if err != nil {
		t.Fatalf("load adapters: %v", err)
	}
	if len(adapters) != 2 {
		t.Fatalf("expected 2 adapters, got %d", len(adapters))
	}
}

func TestLoadAdaptersDirEmptySetting(t *testing.T) {
	adapters, err := LoadAdaptersDir("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if adapters != nil {
		t.Fatalf("expected nil adapters for empty setting")
	}
}
