package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mithrel/mdhistory/internal/present"
)

func newShowCmd() *cobra.Command {
	var rev string
	var output string
	cmd := &cobra.Command{
		Use:   "show <url>",
		Short: "Render one revision of a Markdown file",
		Long: "Render one revision of a GitHub-hosted Markdown file. Without --rev the\n" +
			"branch head is shown. Output goes through $PAGER when stdout is a terminal.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := getApp(cmd)
			mode, ok := present.ParseMode(output)
			if !ok || (mode != present.ModePretty && mode != present.ModeHTML && mode != present.ModeMarkdown) {
				return fmt.Errorf("invalid --output %q (want pretty, html or markdown)", output)
			}

			sess := app.NewSession()
			if _, err := sess.Accept(args[0]); err != nil {
				return err
			}
			if err := sess.LoadContent(cmd.Context(), rev); err != nil {
				return fmt.Errorf("fetch markdown: %w", err)
			}

			opts := present.Options{Mode: mode}
			if !cmd.Flags().Changed("width") {
				opts.Width = terminalWidth(cmd.OutOrStdout())
			}
			return renderDocument(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), app.Renderer, sess.Snapshot().Markdown, opts)
		},
	}
	cmd.Flags().StringVar(&rev, "rev", "", "commit SHA to render (default: branch head)")
	cmd.Flags().StringVarP(&output, "output", "o", "pretty", "output format: pretty|html|markdown")
	cmd.Flags().String("style", "", "glamour style (override config render.style)")
	cmd.Flags().Int("width", 0, "word wrap width (override config render.word_wrap)")
	return cmd
}
