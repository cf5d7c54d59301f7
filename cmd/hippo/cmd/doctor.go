package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/hippo-mem/hippo/internal/config"
	"github.com/hippo-mem/hippo/internal/preflight"
)

func newDoctorCmd() *cobra.Command {
	var (
		offline bool
		verbose bool
	)

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check the local environment for problems that would block indexing",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDoctor(cmd, offline, verbose)
		},
	}

	cmd.Flags().BoolVar(&offline, "offline", false, "Skip checks that require network access")
	cmd.Flags().BoolVar(&verbose, "verbose", false, "Show passing checks too")
	return cmd
}

func runDoctor(cmd *cobra.Command, offline, verbose bool) error {
	_, cfg, err := resolveDataDir()
	if err != nil {
		return err
	}

	checker := preflight.New(
		preflight.WithOffline(offline),
		preflight.WithVerbose(verbose),
		preflight.WithOutput(cmd.OutOrStdout()),
	)

	projectPath := cfg.DataDir
	if root, err := config.FindProjectRoot("."); err == nil {
		projectPath = root
	}

	results := checker.RunAll(cmd.Context(), projectPath)
	checker.PrintResults(results)

	if checker.HasCriticalFailures(results) {
		os.Exit(1)
	}
	return nil
}
