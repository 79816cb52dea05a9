package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"assembld/internal/config"
	"assembld/internal/httpapi"
	"assembld/internal/logging"
	"assembld/internal/manager"
	"assembld/internal/pipeline"
	"assembld/internal/registry"
	"assembld/pkg/types"
)

func main() {
	if err := buildRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func buildRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "assembld",
		Short:         "Local daemon that assembles adapter-augmented model instances",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	var configPath string
	root.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (.toml/.yaml/.json)")

	cfg := config.Config{}
	serve := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			merged, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			mergeFlags(cmd, &merged, cfg)
			return runServe(merged)
		},
	}
	serve.Flags().StringVar(&cfg.Addr, "addr", ":8080", "HTTP listen address")
	serve.Flags().StringVar(&cfg.ModelsDir, "models-dir", "~/models/llm", "Directory to scan for *.gguf model files")
	serve.Flags().StringVar(&cfg.AdaptersDir, "adapters-dir", "", "Directory to scan for LoRA adapter dirs")
	serve.Flags().StringVar(&cfg.DefaultModel, "default-model", "", "Default model id when request omits model")
	serve.Flags().IntVar(&cfg.VRAMBudgetMB, "vram-budget-mb", 0, "VRAM budget in MB for all instances (0=unlimited)")
	serve.Flags().IntVar(&cfg.VRAMMarginMB, "vram-margin-mb", 0, "Reserved VRAM margin in MB to keep free")
	serve.Flags().IntVar(&cfg.MaxNumSeqs, "max-num-seqs", 0, "Default maximum concurrent sequences per instance")
	serve.Flags().BoolVar(&cfg.ForceCPU, "force-cpu", false, "Force CPU loads even when an accelerator is visible")
	serve.Flags().StringVar(&cfg.LogLevel, "log-level", "", "Log level: debug|info|warn|error")

	models := &cobra.Command{
		Use:   "models",
		Short: "List models discovered in the models directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("models-dir")
			reg, err := registry.LoadDir(dir)
			if err != nil {
				return err
			}
			for _, m := range reg {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%s\n", m.ID, m.Quant, m.Modality, m.Path)
			}
			return nil
		},
	}
	models.Flags().String("models-dir", "~/models/llm", "Directory to scan for *.gguf model files")

	root.AddCommand(serve, models)
	return root
}

func loadConfig(path string) (config.Config, error) {
	if path == "" {
		return config.Config{}, nil
	}
	return config.Load(path)
}

// mergeFlags overlays flags the user actually set on top of the file config.
func mergeFlags(cmd *cobra.Command, dst *config.Config, flags config.Config) {
	set := func(name string) bool { return cmd.Flags().Changed(name) }
	if set("addr") || dst.Addr == "" {
		dst.Addr = flags.Addr
	}
	if set("models-dir") || dst.ModelsDir == "" {
		dst.ModelsDir = flags.ModelsDir
	}
	if set("adapters-dir") || dst.AdaptersDir == "" {
		dst.AdaptersDir = flags.AdaptersDir
	}
	if set("default-model") || dst.DefaultModel == "" {
		dst.DefaultModel = flags.DefaultModel
	}
	if set("vram-budget-mb") || dst.VRAMBudgetMB == 0 {
		dst.VRAMBudgetMB = flags.VRAMBudgetMB
	}
	if set("vram-margin-mb") || dst.VRAMMarginMB == 0 {
		dst.VRAMMarginMB = flags.VRAMMarginMB
	}
	if set("max-num-seqs") || dst.MaxNumSeqs == 0 {
		dst.MaxNumSeqs = flags.MaxNumSeqs
	}
	if set("force-cpu") {
		dst.ForceCPU = flags.ForceCPU
	}
	if set("log-level") || dst.LogLevel == "" {
		dst.LogLevel = flags.LogLevel
	}
}

func runServe(cfg config.Config) error {
	if cfg.LogLevel != "" {
		os.Setenv("ASSEMBLD_LOG_LEVEL", cfg.LogLevel)
	}
	logging.Init()
	logger := logging.Logger()

	models, err := registry.LoadDir(cfg.ModelsDir)
	if err != nil {
		return fmt.Errorf("load models: %w", err)
	}
	adapterList, err := loadAdapters(cfg.AdaptersDir)
	if err != nil {
		return fmt.Errorf("load adapters: %w", err)
	}

	var pagedCfg *pipeline.PagedAttnConfig
	if cfg.PagedAttention.Enabled {
		pc := pipeline.PagedAttnConfig{
			MemCPUMB:          cfg.PagedAttention.MemCPUMB,
			MemGPUUtilization: cfg.PagedAttention.MemGPUUtilization,
		}
		if cfg.PagedAttention.BlockSize > 0 {
			bs := cfg.PagedAttention.BlockSize
			pc.BlockSize = &bs
		}
		pagedCfg = &pc
	}

	mgr := manager.NewWithConfig(manager.ManagerConfig{
		Models:         models,
		Adapters:       adapterList,
		BudgetMB:       cfg.VRAMBudgetMB,
		MarginMB:       cfg.VRAMMarginMB,
		DefaultModel:   cfg.DefaultModel,
		MaxNumSeqs:     cfg.MaxNumSeqs,
		PagedAttention: pagedCfg,
		ForceCPU:       cfg.ForceCPU,
	})
	defer mgr.Close()

	baseCtx, cancelBase := context.WithCancel(context.Background())
	defer cancelBase()
	httpapi.SetBaseContext(baseCtx)
	httpapi.SetLogger(logger)

	srv := &http.Server{Addr: cfg.Addr, Handler: httpapi.NewMux(mgr)}
	go func() {
		logger.Info().Str("addr", cfg.Addr).Str("models_dir", cfg.ModelsDir).Msg("assembld listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	// Graceful shutdown (Ctrl+C / SIGTERM)
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	cancelBase()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown error")
	}
	return nil
}

func loadAdapters(dir string) ([]types.Adapter, error) {
	if dir == "" {
		return nil, nil
	}
	return registry.LoadAdaptersDir(dir)
}
