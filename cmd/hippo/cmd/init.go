package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/hippo-mem/hippo/configs"
	"github.com/hippo-mem/hippo/internal/config"
	"github.com/hippo-mem/hippo/internal/embed"
	"github.com/hippo-mem/hippo/internal/lifecycle"
	"github.com/hippo-mem/hippo/internal/output"
)

func newInitCmd() *cobra.Command {
	var (
		offline bool
		force   bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize hippo for a project",
		Long: `Initialize hippo for the current project.

This command:
1. Generates a .hippo.yaml configuration template
2. Adds .hippo/ to .gitignore
3. Verifies the embedder backend is reachable (unless --offline)

It does not index anything -- run 'hippo source add .' next.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			return runInit(ctx, cmd, offline, force)
		},
	}

	cmd.Flags().BoolVar(&offline, "offline", false, "Skip the embedder readiness check (static embeddings only)")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing .hippo.yaml")

	return cmd
}

func runInit(ctx context.Context, cmd *cobra.Command, offline, force bool) error {
	out := output.New(cmd.OutOrStdout())

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}
	root, err := config.FindProjectRoot(cwd)
	if err != nil {
		root = cwd
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("resolving project root: %w", err)
	}
	out.Statusf("📁", "Project: %s", absRoot)

	if err := generateProjectConfig(out, absRoot, force); err != nil {
		out.Warningf("Could not write .hippo.yaml: %v", err)
	}

	added, err := ensureGitignore(absRoot)
	if err != nil {
		out.Warningf("Could not update .gitignore: %v", err)
	} else if added {
		out.Status("📝", "Added .hippo/ to .gitignore")
	}

	if !offline {
		out.Newline()
		out.Status("🧠", "Checking embedder availability...")
		if err := ensureEmbedderReady(ctx, out); err != nil {
			out.Warningf("%v", err)
			out.Status("💡", "Run 'hippo init --offline' to skip this check")
		} else {
			out.Success("Embedder ready")
		}
	}

	out.Newline()
	out.Success("Initialization complete")
	out.Status("📋", "Next: hippo source add <path> && hippo index")

	if !config.UserConfigExists() {
		out.Newline()
		out.Status("💡", "For machine-wide settings (data dir, embedder host):")
		out.Status("", "   Run 'hippo config init'")
	}

	return nil
}

// generateProjectConfig writes .hippo.yaml from the embedded template
// unless the file (or its .yml sibling) already exists.
func generateProjectConfig(out *output.Writer, projectRoot string, force bool) error {
	yamlPath := filepath.Join(projectRoot, ".hippo.yaml")
	ymlPath := filepath.Join(projectRoot, ".hippo.yml")

	if !force {
		if _, err := os.Stat(yamlPath); err == nil {
			out.Status("ℹ️ ", "Existing .hippo.yaml preserved")
			return nil
		}
		if _, err := os.Stat(ymlPath); err == nil {
			out.Status("ℹ️ ", "Existing .hippo.yml preserved")
			return nil
		}
	}

	if err := os.WriteFile(yamlPath, []byte(configs.ProjectConfigTemplate), 0o644); err != nil {
		return err
	}
	out.Status("📝", "Created .hippo.yaml")
	return nil
}

// hasHippoIgnore checks whether .gitignore already excludes the data dir.
func hasHippoIgnore(content string) bool {
	for _, pattern := range []string{".hippo", ".hippo/", "/.hippo", "/.hippo/"} {
		if bytes.Contains([]byte(content), []byte(pattern+"\n")) || content == pattern {
			return true
		}
	}
	return false
}

// ensureGitignore adds .hippo/ to .gitignore if not already present.
func ensureGitignore(projectRoot string) (bool, error) {
	gitignorePath := filepath.Join(projectRoot, ".gitignore")

	content, err := os.ReadFile(gitignorePath)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return false, fmt.Errorf("reading .gitignore: %w", err)
	}
	if hasHippoIgnore(string(content)) {
		return false, nil
	}

	entry := "# hippo index data (auto-generated)\n.hippo/\n"
	if len(content) > 0 && !bytes.HasSuffix(content, []byte("\n")) {
		content = append(content, '\n')
	}
	content = append(content, []byte(entry)...)

	if err := os.WriteFile(gitignorePath, content, 0o644); err != nil {
		return false, fmt.Errorf("writing .gitignore: %w", err)
	}
	return true, nil
}

// ensureEmbedderReady starts Ollama and pulls the default model if needed.
func ensureEmbedderReady(ctx context.Context, out *output.Writer) error {
	manager := lifecycle.NewOllamaManager()

	if manager.IsRemoteHost() {
		running, err := manager.IsRunning()
		if err != nil {
			return fmt.Errorf("checking remote Ollama: %w", err)
		}
		if !running {
			return fmt.Errorf("remote Ollama at %s is not responding", manager.Host())
		}
		return nil
	}

	status, err := manager.Status(ctx, embed.DefaultOllamaModel)
	if err != nil {
		return fmt.Errorf("checking Ollama status: %w", err)
	}

	if !status.Installed {
		return fmt.Errorf("Ollama is not installed:\n%s", lifecycle.InstallInstructions())
	}

	if !status.Running {
		out.Status("🔄", "Ollama is installed but not running. Starting...")
		if err := manager.Start(); err != nil {
			return fmt.Errorf("starting Ollama: %w", err)
		}
		if err := manager.WaitForReady(ctx, lifecycle.StartupTimeout); err != nil {
			return fmt.Errorf("waiting for Ollama: %w", err)
		}
		status, err = manager.Status(ctx, embed.DefaultOllamaModel)
		if err != nil {
			return fmt.Errorf("checking Ollama status: %w", err)
		}
	}

	if !status.HasModel {
		out.Statusf("📥", "Pulling embedding model %s...", embed.DefaultOllamaModel)
		progressFunc := lifecycle.CreatePullProgressFunc(os.Stdout)
		if err := manager.PullModel(ctx, embed.DefaultOllamaModel, progressFunc); err != nil {
			return fmt.Errorf("pulling model %s: %w", embed.DefaultOllamaModel, err)
		}
		out.Newline()
	}

	return nil
}
