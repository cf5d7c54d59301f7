package cmd

import (
	"context"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/hippo-mem/hippo/internal/output"
	"github.com/hippo-mem/hippo/internal/ui"
)

func newStatusCmd() *cobra.Command {
	var (
		jsonOutput bool
		metrics    bool
	)

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show index health and storage stats",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStatus(cmd.Context(), cmd, jsonOutput, metrics)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.Flags().BoolVar(&metrics, "metrics", false, "Also show search query telemetry")
	return cmd
}

func runStatus(ctx context.Context, cmd *cobra.Command, jsonOutput, showMetrics bool) error {
	_, cfg, err := resolveDataDir()
	if err != nil {
		return err
	}
	eng, cleanup, err := openEngine(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	stats, err := eng.Stats(ctx)
	if err != nil {
		return err
	}

	watcherStatus := "stopped"
	if n := eng.ActiveWatchers(); n > 0 {
		watcherStatus = "running"
	}

	info := ui.StatusInfo{
		ProjectName:    filepath.Base(cfg.DataDir),
		TotalMemories:  stats.TotalMemories,
		TotalTags:      stats.TotalTags,
		FavoriteCount:  stats.FavoriteCount,
		Sources:        stats.Sources,
		MetadataSize:   fileSize(filepath.Join(cfg.DataDir, "metadata.db")),
		VectorSize:     dirSize(filepath.Join(cfg.DataDir, "vectors")),
		EmbedderType:   cfg.Embeddings.Provider,
		EmbedderModel:  cfg.Embeddings.Model,
		EmbedderStatus: "ready",
		WatcherStatus:  watcherStatus,
	}
	info.TotalSize = info.MetadataSize + info.VectorSize

	renderer := ui.NewStatusRenderer(cmd.OutOrStdout(), noColorFlag)
	if jsonOutput {
		if err := renderer.RenderJSON(info); err != nil {
			return err
		}
	} else if err := renderer.Render(info); err != nil {
		return err
	}

	if !showMetrics {
		return nil
	}

	snap := eng.QueryMetrics()
	out := output.New(cmd.OutOrStdout())
	out.Newline()
	out.Statusf("📊", "Query telemetry since %s", snap.Since.Format("2006-01-02 15:04:05"))
	out.Statusf("", "  Total queries:     %d", snap.TotalQueries)
	out.Statusf("", "  Zero-result rate:  %.1f%%", snap.ZeroResultPercentage())
	out.Statusf("", "  Repetition:        %s", snap.RepetitionSummary())
	if len(snap.TopTerms) > 0 {
		out.Status("", "  Top terms:")
		limit := len(snap.TopTerms)
		if limit > 10 {
			limit = 10
		}
		for _, tc := range snap.TopTerms[:limit] {
			out.Statusf("", "    %-20s %d", tc.Term, tc.Count)
		}
	}
	return nil
}

func fileSize(path string) int64 {
	fi, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return fi.Size()
}

func dirSize(root string) int64 {
	var total int64
	_ = filepath.Walk(root, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if !info.IsDir() {
			total += info.Size()
		}
		return nil
	})
	return total
}
