package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/hippo-mem/hippo/internal/async"
	"github.com/hippo-mem/hippo/internal/engine"
	"github.com/hippo-mem/hippo/internal/memory"
	"github.com/hippo-mem/hippo/internal/output"
	"github.com/hippo-mem/hippo/internal/pipeline"
	"github.com/hippo-mem/hippo/internal/ui"
)

func newIndexCmd() *cobra.Command {
	var forcePlain bool

	cmd := &cobra.Command{
		Use:   "index [path]",
		Short: "Index a directory with a live progress display",
		Long: `Index a directory, registering it as a source if it isn't one
already, and show progress as the run proceeds.

With no path, re-syncs every already-registered source.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIndex(cmd.Context(), cmd, args, forcePlain)
		},
	}

	cmd.Flags().BoolVar(&forcePlain, "plain", false, "Force plain text progress output (no TUI)")
	return cmd
}

func runIndex(ctx context.Context, cmd *cobra.Command, args []string, forcePlain bool) error {
	_, cfg, err := resolveDataDir()
	if err != nil {
		return err
	}
	eng, cleanup, err := openEngine(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	if async.HasIncompleteLock(cfg.DataDir) {
		output.New(cmd.OutOrStdout()).Warning("a previous indexing run did not complete cleanly; re-indexing now")
	}

	var (
		src       memory.Source
		singleRun bool
		projDir   string
	)
	if len(args) == 1 {
		absPath, err := filepath.Abs(args[0])
		if err != nil {
			return fmt.Errorf("resolving path: %w", err)
		}
		src = memory.NewLocalSource(absPath)
		singleRun = true
		projDir = absPath
	}

	uiCfg := ui.NewConfig(cmd.OutOrStdout(), ui.WithForcePlain(forcePlain), ui.WithProjectDir(projDir))
	renderer := ui.NewRenderer(uiCfg)
	if err := renderer.Start(ctx); err != nil {
		return fmt.Errorf("starting progress display: %w", err)
	}
	defer renderer.Stop()

	progress := pipeline.NewProgress(time.Now())
	done := make(chan struct{})
	go pumpProgress(progress.Subscribe(), renderer, done)

	indexer := async.NewBackgroundIndexer(async.IndexerConfig{DataDir: cfg.DataDir})
	indexer.IndexFunc = func(ctx context.Context, _ *async.IndexProgress) error {
		if singleRun {
			return runSingleSource(ctx, eng, src, progress)
		}
		return syncAllWithProgress(ctx, eng, progress)
	}

	start := time.Now()
	indexer.Start(ctx)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	waitErr := make(chan error, 1)
	go func() { waitErr <- indexer.Wait() }()

	var runErr error
	select {
	case <-sigCh:
		indexer.Stop()
		runErr = <-waitErr
	case runErr = <-waitErr:
	}
	close(done)

	snap := progress.Snapshot()
	renderer.Complete(ui.CompletionStats{
		Files:    snap.FilesProcessed,
		Errors:   snap.ErrorCount,
		Duration: time.Since(start),
	})

	return runErr
}

// runSingleSource registers src if it isn't already a known source, then
// runs (or re-runs) its sync through RunWithProgress.
func runSingleSource(ctx context.Context, eng *engine.Engine, src memory.Source, progress *pipeline.Progress) error {
	sources, err := eng.ListSources(ctx)
	if err != nil {
		return fmt.Errorf("listing sources: %w", err)
	}
	for _, s := range sources {
		if s.Source.Key() == src.Key() {
			_, err := eng.RunWithProgress(ctx, src, progress)
			return err
		}
	}
	if err := eng.AddSource(ctx, src); err != nil {
		return fmt.Errorf("adding source: %w", err)
	}
	_, err = eng.RunWithProgress(ctx, src, progress)
	return err
}

// pumpProgress translates pipeline.Snapshot values into ui.ProgressEvent
// updates until done is closed.
func pumpProgress(snapshots <-chan pipeline.Snapshot, renderer ui.Renderer, done <-chan struct{}) {
	for {
		select {
		case snap := <-snapshots:
			renderer.UpdateProgress(ui.ProgressEvent{
				Stage:       ui.StageIndexing,
				Current:     snap.FilesProcessed,
				Total:       snap.FilesScanned,
				CurrentFile: snap.CurrentFile,
			})
		case <-done:
			return
		}
	}
}

func syncAllWithProgress(ctx context.Context, eng *engine.Engine, progress *pipeline.Progress) error {
	sources, err := eng.ListSources(ctx)
	if err != nil {
		return err
	}
	for _, s := range sources {
		if _, err := eng.RunWithProgress(ctx, s.Source, progress); err != nil {
			return err
		}
	}
	return nil
}
