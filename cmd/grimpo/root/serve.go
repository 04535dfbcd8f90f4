package root

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"grimpo/internal/httpapi"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the garden over HTTP with a live event stream",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			g, cleanup, err := a.openGarden(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			if addr == "" {
				addr = a.cfg.HTTPAddr
			}
			srv := httpapi.NewServer(addr, httpapi.NewRouter(g, a.log))
			srv.BaseContext = func(net.Listener) context.Context { return ctx }

			eg, egCtx := errgroup.WithContext(ctx)
			eg.Go(func() error {
				a.log.Info("serving garden", zap.String("addr", addr), zap.String("key", g.Key()))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			})
			eg.Go(func() error {
				<-egCtx.Done()
				sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				a.log.Info("shutting down")
				return srv.Shutdown(sctx)
			})
			return eg.Wait()
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from GRIMPO_HTTP_ADDR or :8080)")
	return cmd
}
