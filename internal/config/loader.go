package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config holds runtime parameters for the daemon.
// Zero values mean "unspecified" and will be replaced by defaults in main.
type Config struct {
	Addr         string `json:"addr" yaml:"addr" toml:"addr"`
	ModelsDir    string `json:"models_dir" yaml:"models_dir" toml:"models_dir"`
	AdaptersDir  string `json:"adapters_dir" yaml:"adapters_dir" toml:"adapters_dir"`
	DefaultModel string `json:"default_model" yaml:"default_model" toml:"default_model"`
	VRAMBudgetMB int    `json:"vram_budget_mb" yaml:"vram_budget_mb" toml:"vram_budget_mb"`
	VRAMMarginMB int    `json:"vram_margin_mb" yaml:"vram_margin_mb" toml:"vram_margin_mb"`
	MaxNumSeqs   int    `json:"max_num_seqs" yaml:"max_num_seqs" toml:"max_num_seqs"`
	ForceCPU     bool   `json:"force_cpu" yaml:"force_cpu" toml:"force_cpu"`
	LogLevel     string `json:"log_level" yaml:"log_level" toml:"log_level"`

	PagedAttention PagedAttentionConfig `json:"paged_attention" yaml:"paged_attention" toml:"paged_attention"`
}

// PagedAttentionConfig enables and sizes the paged-attention cache request
// applied to builds that ask for one.
type PagedAttentionConfig struct {
	Enabled           bool    `json:"enabled" yaml:"enabled" toml:"enabled"`
	BlockSize         int     `json:"block_size" yaml:"block_size" toml:"block_size"`
	MemCPUMB          int     `json:"mem_cpu_mb" yaml:"mem_cpu_mb" toml:"mem_cpu_mb"`
	MemGPUUtilization float64 `json:"mem_gpu_utilization" yaml:"mem_gpu_utilization" toml:"mem_gpu_utilization"`
}

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	return cfg, nil
}
