package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hippo-mem/hippo/internal/output"
)

func newExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export <file>",
		Short: "Export the whole index to a JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd.Context(), cmd, args[0])
		},
	}
}

func runExport(ctx context.Context, cmd *cobra.Command, path string) error {
	_, cfg, err := resolveDataDir()
	if err != nil {
		return err
	}
	eng, cleanup, err := openEngine(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	export, err := eng.ExportIndex(ctx)
	if err != nil {
		return fmt.Errorf("exporting index: %w", err)
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding export: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	output.New(cmd.OutOrStdout()).Successf("Exported %d memories to %s", len(export.Memories), path)
	return nil
}
