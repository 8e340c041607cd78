package cmd

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/finsift/finsift/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the finsift HTTP server",
	Long: `Starts the HTTP server exposing document upload, queue status,
search, and signed file serving.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		st, err := buildStack(cfg)
		if err != nil {
			return err
		}
		defer st.close()

		srv := server.New(server.Config{
			Port:          cfg.Server.Port,
			AllowAll:      cfg.Server.AllowAllCORS,
			SigningSecret: cfg.Server.SigningSecret,
		}, st.store, st.queue, st.searcher, st.blobs)

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() {
			errCh <- srv.Start()
		}()

		select {
		case err := <-errCh:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		case <-ctx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
