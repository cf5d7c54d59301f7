package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hippo-mem/hippo/internal/memory"
	"github.com/hippo-mem/hippo/internal/output"
	"github.com/hippo-mem/hippo/internal/search"
)

func newSearchCmd() *cobra.Command {
	var (
		tags       []string
		excludeTag []string
		kinds      []string
		limit      int
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search indexed memories by keyword and meaning",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd.Context(), cmd, args[0], tags, excludeTag, kinds, limit, jsonOutput)
		},
	}

	cmd.Flags().StringSliceVar(&tags, "tag", nil, "Require this tag (repeatable)")
	cmd.Flags().StringSliceVar(&excludeTag, "exclude-tag", nil, "Exclude this tag (repeatable)")
	cmd.Flags().StringSliceVar(&kinds, "kind", nil, "Restrict to this file kind (repeatable)")
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum results to show")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}

func runSearch(ctx context.Context, cmd *cobra.Command, text string, tags, excludeTags, kinds []string, limit int, jsonOutput bool) error {
	_, cfg, err := resolveDataDir()
	if err != nil {
		return err
	}
	eng, cleanup, err := openEngine(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	q := search.SearchQuery{Text: text, Limit: limit}
	for _, t := range tags {
		q.Tags = append(q.Tags, search.TagFilter{Name: t, Mode: search.TagFilterInclude})
	}
	for _, t := range excludeTags {
		q.Tags = append(q.Tags, search.TagFilter{Name: t, Mode: search.TagFilterExclude})
	}
	for _, k := range kinds {
		q.Kinds = append(q.Kinds, memory.KindName(k))
	}

	results, err := eng.SearchAdvanced(ctx, q)
	if err != nil {
		return fmt.Errorf("searching: %w", err)
	}

	if jsonOutput {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	out := output.New(cmd.OutOrStdout())
	if len(results.Results) == 0 {
		out.Status("ℹ️ ", "No matches")
		return nil
	}
	for i, r := range results.Results {
		out.Statusf("🔎", "%2d. %-60s  score=%.3f  (%s)", i+1, r.Memory.Path, r.Score, r.Memory.Kind.Name)
		if len(r.Memory.Tags) > 0 {
			names := make([]string, len(r.Memory.Tags))
			for j, t := range r.Memory.Tags {
				names[j] = t.Name
			}
			out.Statusf("", "      tags: %s", strings.Join(names, ", "))
		}
	}
	if len(results.SuggestedTags) > 0 {
		out.Newline()
		out.Statusf("💡", "Related tags: %s", strings.Join(results.SuggestedTags, ", "))
	}
	return nil
}
