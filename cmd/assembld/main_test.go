package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"assembld/internal/config"
)

func TestModelsCommandListsGGUF(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "tiny.Q4_K_M.gguf"), []byte("g"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	root := buildRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"models", "--models-dir", dir})
	if err := root.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !strings.Contains(out.String(), "tiny.Q4_K_M") {
		t.Errorf("output = %q", out.String())
	}
}

func TestServeUnknownConfigExtension(t *testing.T) {
	p := filepath.Join(t.TempDir(), "cfg.ini")
	if err := os.WriteFile(p, []byte("addr=:1\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := loadConfig(p); err == nil {
		t.Fatal("expected error for unsupported extension")
	}
}

func TestMergeFlagsPrecedence(t *testing.T) {
	flags := config.Config{Addr: ":8080", ModelsDir: "~/models/llm", VRAMBudgetMB: 4096}
	cmd := &cobra.Command{Use: "serve"}
	cmd.Flags().String("addr", ":8080", "")
	cmd.Flags().String("models-dir", "~/models/llm", "")
	cmd.Flags().String("adapters-dir", "", "")
	cmd.Flags().String("default-model", "", "")
	cmd.Flags().Int("vram-budget-mb", 0, "")
	cmd.Flags().Int("vram-margin-mb", 0, "")
	cmd.Flags().Int("max-num-seqs", 0, "")
	cmd.Flags().Bool("force-cpu", false, "")
	cmd.Flags().String("log-level", "", "")
	if err := cmd.Flags().Set("vram-budget-mb", "4096"); err != nil {
		t.Fatalf("set flag: %v", err)
	}

	// file config has an addr; the unset addr flag must not override it,
	// but the explicitly set budget flag must win.
	dst := config.Config{Addr: ":9090", VRAMBudgetMB: 1024, LogLevel: "debug"}
	mergeFlags(cmd, &dst, flags)
	if dst.Addr != ":9090" {
		t.Errorf("Addr = %q, want file value", dst.Addr)
	}
	if dst.VRAMBudgetMB != 4096 {
		t.Errorf("VRAMBudgetMB = %d, want flag value", dst.VRAMBudgetMB)
	}
	if dst.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want file value", dst.LogLevel)
	}
	if dst.ModelsDir != "~/models/llm" {
		t.Errorf("ModelsDir = %q, want flag default", dst.ModelsDir)
	}
}
