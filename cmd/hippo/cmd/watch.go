package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hippo-mem/hippo/internal/memory"
	"github.com/hippo-mem/hippo/internal/output"
)

func newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch [path]",
		Short: "Watch a source (or every registered source) for live changes",
		Long: `Watch keeps running in the foreground, re-indexing files as they
change until interrupted with Ctrl-C.

With no path, every already-registered source is watched.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd.Context(), cmd, args)
		},
	}
	return cmd
}

func runWatch(ctx context.Context, cmd *cobra.Command, args []string) error {
	out := output.New(cmd.OutOrStdout())

	_, cfg, err := resolveDataDir()
	if err != nil {
		return err
	}
	eng, cleanup, err := openEngine(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	if len(args) == 1 {
		absPath, err := filepath.Abs(args[0])
		if err != nil {
			return fmt.Errorf("resolving path: %w", err)
		}
		src := memory.NewLocalSource(absPath)
		if err := eng.WatchSource(ctx, src); err != nil {
			return fmt.Errorf("starting watch: %w", err)
		}
		out.Statusf("👁️ ", "Watching %s", absPath)
	} else {
		if err := eng.WatchAll(ctx); err != nil {
			return fmt.Errorf("starting watch: %w", err)
		}
		for _, p := range eng.WatchedPaths() {
			out.Statusf("👁️ ", "Watching %s", p)
		}
	}

	if eng.ActiveWatchers() == 0 {
		out.Status("ℹ️ ", "No sources to watch -- run 'hippo source add <path>' first")
		return nil
	}

	out.Status("⏸️ ", "Press Ctrl-C to stop")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	select {
	case <-sigCh:
	case <-ctx.Done():
	}

	out.Newline()
	out.Status("🛑", "Stopping watchers...")
	eng.UnwatchAll()
	return nil
}
