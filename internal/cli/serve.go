package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mithrel/mdhistory/internal/server"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the web viewer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := getApp(cmd)
			v := app.Cfg
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv, err := server.New(ctx, v, app.NewSession, app.Log)
			if err != nil {
				return err
			}
			if domain := v.GetString("tls.domain"); domain != "" {
				// ACME HTTP challenges must be answered on port 80.
				app.Log.Info("web viewer listening", "addr", ":443", "domain", domain)
				fmt.Fprintf(cmd.OutOrStdout(), "Web viewer listening on https://%s\n", domain)
				return srv.ListenAndServeTLS(ctx, ":443", ":80", server.CertMagicConfig{
					Domain:     domain,
					Email:      v.GetString("tls.email"),
					StorageDir: v.GetString("tls.storage_dir"),
				})
			}
			addr := v.GetString("http_addr")
			if addr == "" {
				addr = ":8080"
			}
			app.Log.Info("web viewer listening", "addr", addr)
			fmt.Fprintf(cmd.OutOrStdout(), "Web viewer listening on %s\n", addr)
			return srv.ListenAndServe(ctx, addr)
		},
	}
	cmd.Flags().String("listen", "", "listen address (override config http_addr)")
	cmd.Flags().String("tls-domain", "", "serve HTTPS for this domain (override config tls.domain)")
	cmd.Flags().String("tls-email", "", "ACME account email (override config tls.email)")
	return cmd
}
