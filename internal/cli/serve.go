package cli

import (
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"skud-compare-api/internal/server"
)

func newServeCmd() *cobra.Command {
	var sheetURL string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP comparison API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := newRuntime(sheetURL)
			if err != nil {
				return err
			}
			defer rt.cleanup()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			srv := server.New(rt.pipeline, rt.client, rt.metrics, rt.cfg.UploadDir, rt.log)
			if err := srv.ListenAndServe(ctx, rt.cfg.Port); err != nil &&
				!errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&sheetURL, "sheet-url", "", "Google Sheets URL of the tabell (overrides GOOGLE_SHEET_URL)")
	return cmd
}
