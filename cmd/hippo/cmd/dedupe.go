package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hippo-mem/hippo/internal/output"
	"github.com/hippo-mem/hippo/internal/ui"
)

func newDedupeCmd() *cobra.Command {
	var minSize int64

	cmd := &cobra.Command{
		Use:   "dedupe",
		Short: "Find exact and near-duplicate memories",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDedupe(cmd.Context(), cmd, minSize)
		},
	}

	cmd.Flags().Int64Var(&minSize, "min-size", 0, "Ignore files smaller than this many bytes")
	return cmd
}

func runDedupe(ctx context.Context, cmd *cobra.Command, minSize int64) error {
	_, cfg, err := resolveDataDir()
	if err != nil {
		return err
	}
	eng, cleanup, err := openEngine(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	report, err := eng.FindDuplicates(ctx, minSize)
	if err != nil {
		return fmt.Errorf("scanning for duplicates: %w", err)
	}

	out := output.New(cmd.OutOrStdout())
	if report.Summary.DuplicateGroups == 0 && len(report.Semantic) == 0 {
		out.Status("✨", "No duplicates found")
		return nil
	}

	if len(report.Exact) > 0 {
		out.Statusf("📋", "Exact duplicates: %d groups, %s wasted", report.Summary.DuplicateGroups, ui.FormatBytes(report.Summary.WastedBytes))
		for _, g := range report.Exact {
			out.Statusf("", "  %s (%d copies, %s each)", g.Paths[0], g.DuplicateCount(), ui.FormatBytes(g.Size))
			for _, p := range g.Paths[1:] {
				out.Statusf("", "    = %s", p)
			}
		}
	}

	if len(report.Semantic) > 0 {
		out.Newline()
		out.Statusf("🧩", "Near-duplicate clusters: %d", len(report.Semantic))
		for i, g := range report.Semantic {
			out.Statusf("", "  cluster %d: %d memories", i+1, len(g.IDs))
		}
	}

	return nil
}
