package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mithrel/mdhistory/internal/config"
	"github.com/mithrel/mdhistory/internal/wire"
)

type ctxKey string

const appKey ctxKey = "app"

// logFileAnnotation names the log file, under the state dir, a command logs to
// when log.file is unset. Full-screen commands must not write to stderr.
const logFileAnnotation = "mdhistory/log-file"

// noAppAnnotation marks commands that run without loading config, so a broken
// config file can still be regenerated.
const noAppAnnotation = "mdhistory/no-app"

// flagKeys maps command-line flags onto the config keys they override.
var flagKeys = map[string]string{
	"log-level":  "log.level",
	"api-url":    "github.api_url",
	"raw-url":    "github.raw_url",
	"timeout":    "github.timeout",
	"listen":     "http_addr",
	"tls-domain": "tls.domain",
	"tls-email":  "tls.email",
	"style":      "render.style",
	"width":      "render.word_wrap",
}

// Execute is the entrypoint: it builds the root cobra.Command
// and calls its Execute() method to run the CLI.
func Execute() error {
	return NewRootCmd().Execute()
}

// NewRootCmd constructs the Cobra root command and wires dependencies.
func NewRootCmd() *cobra.Command {
	var cfgPath string

	cmd := &cobra.Command{
		Use:           "mdhistory",
		Short:         "Browse the revision history of Markdown files on GitHub",
		SilenceUsage:  true, // don't show usage on runtime errors
		SilenceErrors: true, // let main print errors once
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Annotations[noAppAnnotation] != "" {
				return nil
			}
			v := viper.New()
			if cfgPath != "" {
				v.SetConfigFile(cfgPath)
			}
			if err := config.Load(cmd.Context(), v); err != nil {
				return err
			}
			applyConfigFlagOverrides(cmd, v, flagKeys)
			if name := cmd.Annotations[logFileAnnotation]; name != "" && strings.TrimSpace(v.GetString("log.file")) == "" {
				v.Set("log.file", filepath.Join(config.DefaultStateDir(), name))
			}
			// Wire up the app and stash it in context for subcommands.
			app, err := wire.BuildApp(cmd.Context(), v)
			if err != nil {
				return err
			}
			ctx := context.WithValue(cmd.Context(), appKey, app)
			cmd.SetContext(ctx)
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if app, ok := cmd.Context().Value(appKey).(*wire.App); ok {
				return app.Close()
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&cfgPath, "config", "", "path to config file (yaml|toml)")
	cmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")
	cmd.PersistentFlags().String("api-url", "", "GitHub REST API base URL")
	cmd.PersistentFlags().String("raw-url", "", "GitHub raw-content base URL")
	cmd.PersistentFlags().String("timeout", "", "per-request timeout, e.g. 10s (0s waits indefinitely)")

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newTUICmd())
	cmd.AddCommand(newShowCmd())
	cmd.AddCommand(newHistoryCmd())
	cmd.AddCommand(newCompletionCmd())
	cmd.AddCommand(newConfigCmd())

	cmd.Run = func(cmd *cobra.Command, args []string) { _ = cmd.Help() }

	return cmd
}

func getApp(cmd *cobra.Command) *wire.App {
	v := cmd.Context().Value(appKey)
	if v == nil {
		fmt.Fprintln(os.Stderr, "internal error: app not initialized")
		os.Exit(1)
	}
	return v.(*wire.App)
}
