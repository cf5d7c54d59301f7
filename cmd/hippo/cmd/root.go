// Package cmd provides the CLI commands for hippo.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/hippo-mem/hippo/internal/config"
	"github.com/hippo-mem/hippo/internal/embed"
	"github.com/hippo-mem/hippo/internal/engine"
	"github.com/hippo-mem/hippo/internal/logging"
	"github.com/hippo-mem/hippo/internal/store"
	"github.com/hippo-mem/hippo/internal/watcher"
	"github.com/hippo-mem/hippo/pkg/version"
)

// Debug logging flag.
var (
	debugMode      bool
	loggingCleanup func()
)

// dataDirFlag overrides the configured data directory for this invocation.
var dataDirFlag string

// noColorFlag disables ANSI colors/icons in rendered output.
var noColorFlag bool

// NewRootCmd creates the root command for the hippo CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hippo",
		Short: "Local file memory engine",
		Long: `hippo walks one or more directories, derives a "memory" record for
every file it finds -- metadata, tags, a content hash, and an embedding --
and serves hybrid keyword+vector search, duplicate detection, and live
filesystem watching over the result.

It runs entirely locally with zero required configuration.`,
		Version:      version.Short(),
		SilenceUsage: true,
	}

	cmd.SetVersionTemplate("hippo version {{.Version}}\n")

	cmd.PersistentFlags().StringVar(&dataDirFlag, "data-dir", "", "Override the data directory (default: the configured data_dir, ~/.hippo/data unless set)")
	cmd.PersistentFlags().BoolVar(&noColorFlag, "no-color", false, "Disable colored output")
	cmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging to the hippo log file")

	cmd.PersistentPreRunE = startLogging
	cmd.PersistentPostRunE = stopLogging

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newInitCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newSourceCmd())
	cmd.AddCommand(newIndexCmd())
	cmd.AddCommand(newSearchCmd())
	cmd.AddCommand(newStatusCmd())
	cmd.AddCommand(newTagCmd())
	cmd.AddCommand(newWatchCmd())
	cmd.AddCommand(newDedupeCmd())
	cmd.AddCommand(newExportCmd())
	cmd.AddCommand(newImportCmd())
	cmd.AddCommand(newDoctorCmd())

	return cmd
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

func startLogging(_ *cobra.Command, _ []string) error {
	if !debugMode {
		return nil
	}
	logger, cleanup, err := logging.Setup(logging.DebugConfig())
	if err != nil {
		return fmt.Errorf("failed to setup debug logging: %w", err)
	}
	loggingCleanup = cleanup
	slog.SetDefault(logger)
	slog.Info("debug logging enabled", slog.String("log_file", logging.DefaultLogPath()))
	return nil
}

func stopLogging(_ *cobra.Command, _ []string) error {
	if loggingCleanup != nil {
		loggingCleanup()
		loggingCleanup = nil
	}
	return nil
}

// resolveDataDir finds the data directory an invocation should use: the
// --data-dir flag if set, else a loaded Config's DataDir rooted at the
// nearest project marker (or cwd).
func resolveDataDir() (string, *config.Config, error) {
	if dataDirFlag != "" {
		cfg := config.NewConfig()
		cfg.DataDir = dataDirFlag
		return dataDirFlag, cfg, nil
	}

	root, err := config.FindProjectRoot(".")
	if err != nil {
		root, err = os.Getwd()
		if err != nil {
			return "", nil, err
		}
	}

	cfg, err := config.Load(root)
	if err != nil {
		return "", nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg.DataDir, cfg, nil
}

// openEngine builds a Store + Embedder + Engine from the resolved data
// directory, creating the data directory if it does not yet exist.
func openEngine(ctx context.Context, cfg *config.Config) (*engine.Engine, func(), error) {
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(cfg.DataDir, "metadata.db")
	s, err := store.Open(dbPath)
	if err != nil {
		return nil, nil, fmt.Errorf("opening store: %w", err)
	}

	provider := embed.ParseProvider(cfg.Embeddings.Provider)
	embedder, err := embed.NewEmbedder(ctx, provider, cfg.Embeddings.Model)
	if err != nil {
		slog.Warn("embedder unavailable, falling back to static embeddings", slog.String("error", err.Error()))
		embedder = embed.NewStaticEmbedder768()
	}

	eng, err := engine.New(s, engine.Config{
		Embedder:      embedder,
		WatchOptions:  watchOptionsFromConfig(cfg),
		HashSizeLimit: 0,
		ThumbnailDir:  filepath.Join(cfg.DataDir, "thumbnails"),
	})
	if err != nil {
		_ = s.Close()
		return nil, nil, fmt.Errorf("building engine: %w", err)
	}

	cleanup := func() {
		eng.UnwatchAll()
		_ = eng.Close()
		_ = s.Close()
	}
	return eng, cleanup, nil
}

// watchOptionsFromConfig builds watcher.Options from the watch section of
// cfg, leaving the rest at the watcher package's own zero-value defaults.
func watchOptionsFromConfig(cfg *config.Config) watcher.Options {
	return watcher.Options{
		DebounceWindow: cfg.Watch.DebounceWindow,
	}
}
