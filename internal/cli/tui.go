package cli

import (
	"github.com/spf13/cobra"

	"github.com/mithrel/mdhistory/internal/present/tui"
)

func newTUICmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:         "tui [url]",
		Short:       "Browse a file's history in the terminal",
		Args:        cobra.MaximumNArgs(1),
		Annotations: map[string]string{logFileAnnotation: "tui.log"},
		RunE: func(cmd *cobra.Command, args []string) error {
			app := getApp(cmd)
			var url string
			if len(args) == 1 {
				url = args[0]
			}
			return tui.Run(cmd.Context(), app.NewSession(), app.Renderer, url)
		},
	}
	cmd.Flags().String("style", "", "glamour style (override config render.style)")
	return cmd
}
