package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/matteuzdev/VerbAI-Studio/internal/app"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newServeCommand(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the tenant document HTTP service",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := app.NewService(o.cfg)
			if err != nil {
				return err
			}

			errCh := make(chan error, 1)
			go func() {
				log.Info().Str("addr", svc.HTTP.Addr).Msg("Server listening")
				if err := svc.HTTP.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			var runErr error
			select {
			case runErr = <-errCh:
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := svc.Shutdown(shutdownCtx); err != nil && runErr == nil {
				runErr = err
			}
			return runErr
		},
	}
}
