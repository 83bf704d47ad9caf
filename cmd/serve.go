package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/datalens-cli/internal/server"
	"github.com/KaramelBytes/datalens-cli/internal/session"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the upload/clean/summary API over HTTP",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := effectiveConfig()
		if err != nil {
			return err
		}
		addr := c.ListenAddr
		if cmd.Flags().Changed("addr") {
			addr = serveAddr
		}
		lopt, err := loaderOptions()
		if err != nil {
			return err
		}
		store, err := session.Open(c.SessionBackend, c.SessionDB)
		if err != nil {
			return err
		}
		defer store.Close()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		printInfo("Serving on %s (Ctrl+C to stop)", addr)
		slog.Info("starting datalens server", "addr", addr, "sessions", c.SessionBackend, "data_dir", c.DataDir)
		srv := server.New(server.Config{
			DataDir:        c.DataDir,
			MaxUploadBytes: int64(c.MaxUploadMB) << 20,
			PreviewRows:    c.PreviewRows,
			Loader:         lopt,
			Analyzer:       analyzer(),
		}, store, slog.Default())
		return srv.Run(ctx, addr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":5000", "listen address (overrides config listen_addr)")
}
