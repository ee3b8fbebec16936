package app

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

// NewRootCommand builds the CLI tree. Running the bare binary performs a
// collection cycle, matching the most common invocation.
func NewRootCommand(a *Application) *cobra.Command {
	root := &cobra.Command{
		Use:           "rssdigest",
		Short:         "Fetch RSS feeds, filter and store articles, and render digests",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.Collect(cmd.Context())
		},
	}

	root.AddCommand(newCollectCommand(a))
	root.AddCommand(newEnrichCommand(a))
	root.AddCommand(newDigestCommand(a))
	root.AddCommand(newStatsCommand(a))
	root.AddCommand(newCleanupCommand(a))
	root.AddCommand(newPurgeCommand(a))
	return root
}

func newCollectCommand(a *Application) *cobra.Command {
	return &cobra.Command{
		Use:   "collect",
		Short: "Fetch configured feeds, filter articles and write the digest",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.Collect(cmd.Context())
		},
	}
}

func newEnrichCommand(a *Application) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "enrich",
		Short: "Scrape, convert and score recent stored articles",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.Enrich(cmd.Context(), limit)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 50, "maximum number of recent articles to enrich")
	return cmd
}

func newDigestCommand(a *Application) *cobra.Command {
	return &cobra.Command{
		Use:   "digest",
		Short: "Assemble the ranked digest from scored documents",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := a.Digest(cmd.Context())
			if err != nil {
				return err
			}
			if path == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "no scored documents, nothing to assemble")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ranked digest written to %s\n", path)
			return nil
		},
	}
}

func newStatsCommand(a *Application) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print article store statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			stats, err := a.Stats(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "total articles: %d\n", stats.Total)
			if stats.LatestCreatedAt != "" {
				fmt.Fprintf(out, "latest stored: %s\n", stats.LatestCreatedAt)
			}
			fmt.Fprintln(out, "by category:")
			printCounts(out, stats.ByCategory)
			fmt.Fprintln(out, "by source:")
			printCounts(out, stats.BySource)
			return nil
		},
	}
}

func newCleanupCommand(a *Application) *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Delete stored articles older than the retention window",
		RunE: func(cmd *cobra.Command, args []string) error {
			deleted, err := a.Cleanup(cmd.Context(), days)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %d article(s)\n", deleted)
			return nil
		},
	}
	cmd.Flags().IntVar(&days, "days", 0, "delete articles older than this many days (0 uses the configured retention)")
	return cmd
}

func newPurgeCommand(a *Application) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Delete every staged page, document and rating",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes && !confirm(cmd, "delete all staged files?") {
				fmt.Fprintln(cmd.OutOrStdout(), "aborted")
				return nil
			}
			removed, err := a.PurgeStaging()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %d staged file(s)\n", removed)
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "skip the confirmation prompt")
	return cmd
}

func printCounts(out io.Writer, counts map[string]int) {
	keys := make([]string, 0, len(counts))
	for key := range counts {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		fmt.Fprintf(out, "  %s: %d\n", key, counts[key])
	}
}

func confirm(cmd *cobra.Command, question string) bool {
	fmt.Fprintf(cmd.OutOrStdout(), "%s [y/N]: ", question)
	reader := bufio.NewReader(cmd.InOrStdin())
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}
