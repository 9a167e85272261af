package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mithrel/mdhistory/internal/github"
	"github.com/mithrel/mdhistory/internal/present"
	"github.com/mithrel/mdhistory/internal/present/format"
	"github.com/mithrel/mdhistory/internal/util"
	"github.com/mithrel/mdhistory/internal/viewer"
	"github.com/mithrel/mdhistory/pkg/api"
)

func newHistoryCmd() *cobra.Command {
	var output string
	var since, until string
	var grep string
	var limit int
	var noHeaders bool
	var indent bool
	cmd := &cobra.Command{
		Use:   "history <url>",
		Short: "List the commits that touched a Markdown file",
		Long: "List the first page of commits that touched a GitHub-hosted file, newest\n" +
			"first. --since/--until accept relative (2h, 3d, 2w, 1mo) or absolute\n" +
			"(2006-01-02, 2006-01-02T15:04, RFC3339) times.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := getApp(cmd)
			mode, ok := present.ParseMode(output)
			if !ok || (mode != present.ModePlain && mode != present.ModeJSON && mode != present.ModeNDJSON) {
				return fmt.Errorf("invalid --output %q (want plain, json or ndjson)", output)
			}
			window, err := util.ParseTimeRange(since, until, time.Now())
			if err != nil {
				return err
			}
			ref, ok := github.ParseBlobURL(args[0])
			if !ok {
				return fmt.Errorf("%w: %q", viewer.ErrInvalidURL, args[0])
			}

			start := time.Now()
			commits, err := app.GitHub.ListCommits(cmd.Context(), ref)
			if err != nil {
				return fmt.Errorf("fetch commits: %w", err)
			}
			app.Log.Debug("commits fetched", "path", ref.Path, "count", len(commits), "took", time.Since(start))

			commits = filterCommits(commits, window, grep, limit)
			return renderCommits(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), commits, present.Options{
				Mode:       mode,
				JSONIndent: indent,
				Headers:    !noHeaders,
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "plain", "output format: plain|json|ndjson")
	cmd.Flags().StringVar(&since, "since", "", "only commits at or after this time")
	cmd.Flags().StringVar(&until, "until", "", "only commits at or before this time")
	cmd.Flags().StringVar(&grep, "grep", "", "fuzzy filter on the commit label")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum commits to print (0 = all)")
	cmd.Flags().BoolVar(&noHeaders, "no-headers", false, "omit the header row in plain output")
	cmd.Flags().BoolVar(&indent, "indent", false, "indent JSON output")
	return cmd
}

// filterCommits keeps commits inside window whose label fuzzy-matches grep,
// preserving order, and truncates to limit when positive.
func filterCommits(commits []api.Commit, window util.TimeRange, grep string, limit int) []api.Commit {
	var inWindow []api.Commit
	for _, c := range commits {
		if window.Contains(c.Date) {
			inWindow = append(inWindow, c)
		}
	}
	labels := make([]string, len(inWindow))
	for i, c := range inWindow {
		labels[i] = format.CommitLabel(c)
	}
	out := make([]api.Commit, 0, len(inWindow))
	for _, i := range util.FuzzyIndices(grep, labels) {
		out = append(out, inWindow[i])
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
