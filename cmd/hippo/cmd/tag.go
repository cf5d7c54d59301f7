package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hippo-mem/hippo/internal/memory"
	"github.com/hippo-mem/hippo/internal/output"
)

func newTagCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tag",
		Short: "Manage tags on indexed memories",
	}

	cmd.AddCommand(newTagAddCmd())
	cmd.AddCommand(newTagRemoveCmd())
	cmd.AddCommand(newTagListCmd())
	cmd.AddCommand(newTagFavoriteCmd())
	cmd.AddCommand(newTagSuggestCmd())

	return cmd
}

func newTagAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <memory-id> <tag>",
		Short: "Attach a user tag to a memory",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTagAdd(cmd.Context(), cmd, args[0], args[1])
		},
	}
}

func runTagAdd(ctx context.Context, cmd *cobra.Command, id, name string) error {
	_, cfg, err := resolveDataDir()
	if err != nil {
		return err
	}
	eng, cleanup, err := openEngine(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	tag := memory.Tag{Name: name, Source: memory.TagSourceUser}
	if err := eng.AddTag(ctx, memory.ID(id), tag); err != nil {
		return fmt.Errorf("adding tag: %w", err)
	}
	output.New(cmd.OutOrStdout()).Successf("Tagged %s with %q", id, name)
	return nil
}

func newTagRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <memory-id> <tag>",
		Short: "Detach a tag from a memory",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTagRemove(cmd.Context(), cmd, args[0], args[1])
		},
	}
}

func runTagRemove(ctx context.Context, cmd *cobra.Command, id, name string) error {
	_, cfg, err := resolveDataDir()
	if err != nil {
		return err
	}
	eng, cleanup, err := openEngine(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := eng.RemoveTag(ctx, memory.ID(id), name); err != nil {
		return fmt.Errorf("removing tag: %w", err)
	}
	output.New(cmd.OutOrStdout()).Successf("Removed tag %q from %s", name, id)
	return nil
}

func newTagListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every tag in use, with counts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTagList(cmd.Context(), cmd)
		},
	}
}

func runTagList(ctx context.Context, cmd *cobra.Command) error {
	_, cfg, err := resolveDataDir()
	if err != nil {
		return err
	}
	eng, cleanup, err := openEngine(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	tags, err := eng.ListTags(ctx)
	if err != nil {
		return fmt.Errorf("listing tags: %w", err)
	}

	out := output.New(cmd.OutOrStdout())
	if len(tags) == 0 {
		out.Status("ℹ️ ", "No tags yet")
		return nil
	}
	for _, t := range tags {
		out.Statusf("🏷️ ", "%-30s %d", t.Name, t.Count)
	}
	return nil
}

func newTagFavoriteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "favorite <memory-id>",
		Short: "Toggle the favorite flag on a memory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTagFavorite(cmd.Context(), cmd, args[0])
		},
	}
}

func runTagFavorite(ctx context.Context, cmd *cobra.Command, id string) error {
	_, cfg, err := resolveDataDir()
	if err != nil {
		return err
	}
	eng, cleanup, err := openEngine(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	favorite, err := eng.ToggleFavorite(ctx, memory.ID(id))
	if err != nil {
		return fmt.Errorf("toggling favorite: %w", err)
	}

	out := output.New(cmd.OutOrStdout())
	if favorite {
		out.Successf("%s marked as favorite", id)
	} else {
		out.Successf("%s unmarked as favorite", id)
	}
	return nil
}

func newTagSuggestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "suggest <prefix>",
		Short: "Suggest tags starting with a prefix",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTagSuggest(cmd.Context(), cmd, args[0])
		},
	}
}

func runTagSuggest(ctx context.Context, cmd *cobra.Command, prefix string) error {
	_, cfg, err := resolveDataDir()
	if err != nil {
		return err
	}
	eng, cleanup, err := openEngine(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	suggestions, err := eng.SuggestTags(ctx, prefix)
	if err != nil {
		return fmt.Errorf("suggesting tags: %w", err)
	}

	out := output.New(cmd.OutOrStdout())
	if len(suggestions) == 0 {
		out.Status("ℹ️ ", "No matching tags")
		return nil
	}
	for _, s := range suggestions {
		out.Statusf("🏷️ ", "%s", s)
	}
	return nil
}
