package cmd

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/hippo-mem/hippo/internal/memory"
	"github.com/hippo-mem/hippo/internal/output"
)

func newSourceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "source",
		Short: "Manage indexed directories",
	}

	cmd.AddCommand(newSourceAddCmd())
	cmd.AddCommand(newSourceRemoveCmd())
	cmd.AddCommand(newSourceListCmd())
	cmd.AddCommand(newSourceSyncCmd())

	return cmd
}

func newSourceAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <path>",
		Short: "Register a directory and run its first index",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSourceAdd(cmd.Context(), cmd, args[0])
		},
	}
	return cmd
}

func runSourceAdd(ctx context.Context, cmd *cobra.Command, path string) error {
	out := output.New(cmd.OutOrStdout())

	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolving path: %w", err)
	}

	_, cfg, err := resolveDataDir()
	if err != nil {
		return err
	}
	eng, cleanup, err := openEngine(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	src := memory.NewLocalSource(absPath)
	out.Statusf("📁", "Indexing %s...", absPath)
	if err := eng.AddSource(ctx, src); err != nil {
		return fmt.Errorf("adding source: %w", err)
	}

	stats, err := eng.Stats(ctx)
	if err != nil {
		return err
	}
	out.Successf("Indexed %d memories across %d sources", stats.TotalMemories, stats.Sources)
	return nil
}

func newSourceRemoveCmd() *cobra.Command {
	var deleteMemories bool

	cmd := &cobra.Command{
		Use:   "remove <path>",
		Short: "Deregister a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSourceRemove(cmd.Context(), cmd, args[0], deleteMemories)
		},
	}
	cmd.Flags().BoolVar(&deleteMemories, "delete-memories", false, "Also delete every memory indexed from this source")
	return cmd
}

func runSourceRemove(ctx context.Context, cmd *cobra.Command, path string, deleteMemories bool) error {
	out := output.New(cmd.OutOrStdout())

	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolving path: %w", err)
	}

	_, cfg, err := resolveDataDir()
	if err != nil {
		return err
	}
	eng, cleanup, err := openEngine(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	src := memory.NewLocalSource(absPath)
	if err := eng.RemoveSource(ctx, src, deleteMemories); err != nil {
		return fmt.Errorf("removing source: %w", err)
	}
	out.Success("Source removed")
	return nil
}

func newSourceListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every registered source",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSourceList(cmd.Context(), cmd)
		},
	}
}

func runSourceList(ctx context.Context, cmd *cobra.Command) error {
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

	sources, err := eng.ListSources(ctx)
	if err != nil {
		return fmt.Errorf("listing sources: %w", err)
	}
	if len(sources) == 0 {
		out.Status("ℹ️ ", "No sources registered yet -- run 'hippo source add <path>'")
		return nil
	}
	for _, s := range sources {
		last := "never"
		if s.LastSync != nil {
			last = s.LastSync.Format("2006-01-02 15:04:05")
		}
		out.Statusf("📁", "%s (last sync: %s)", s.Source.Root, last)
	}
	return nil
}

func newSourceSyncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync [path]",
		Short: "Re-sync one source, or every source if no path is given",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSourceSync(cmd.Context(), cmd, args)
		},
	}
}

func runSourceSync(ctx context.Context, cmd *cobra.Command, args []string) error {
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
		if err := eng.SyncSource(ctx, memory.NewLocalSource(absPath)); err != nil {
			return fmt.Errorf("syncing source: %w", err)
		}
		out.Successf("Synced %s", absPath)
		return nil
	}

	sources, err := eng.ListSources(ctx)
	if err != nil {
		return fmt.Errorf("listing sources: %w", err)
	}
	for _, s := range sources {
		if err := eng.SyncSource(ctx, s.Source); err != nil {
			out.Errorf("sync failed for %s: %v", s.Source.Root, err)
			continue
		}
		out.Successf("Synced %s", s.Source.Root)
	}
	return nil
}
