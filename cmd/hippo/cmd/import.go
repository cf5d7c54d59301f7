package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hippo-mem/hippo/internal/engine"
	"github.com/hippo-mem/hippo/internal/output"
)

func newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Merge an exported JSON index into the local one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd.Context(), cmd, args[0])
		},
	}
}

func runImport(ctx context.Context, cmd *cobra.Command, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	var export engine.IndexExport
	if err := json.Unmarshal(data, &export); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	if export.Version > engine.ExportVersion {
		return fmt.Errorf("export schema version %d is newer than this build supports (%d)", export.Version, engine.ExportVersion)
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

	stats, err := eng.ImportIndex(ctx, &export)
	if err != nil {
		return fmt.Errorf("importing index: %w", err)
	}

	out := output.New(cmd.OutOrStdout())
	out.Successf("Imported %d memories, %d sources, %d tags", stats.MemoriesImported, stats.SourcesImported, stats.TagsImported)
	if stats.DuplicatesSkipped > 0 {
		out.Statusf("ℹ️ ", "Skipped %d memories that already exist", stats.DuplicatesSkipped)
	}
	for _, e := range stats.Errors {
		out.Errorf("%s", e)
	}
	return nil
}
