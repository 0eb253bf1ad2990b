package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/metalagman/paradox/internal/config"
	"github.com/metalagman/paradox/internal/server"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

func serveCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the sentence endpoint over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			app := newServeApp(cfg.Server)
			startCtx, cancel := context.WithTimeout(ctx, fx.DefaultTimeout)
			defer cancel()
			if err := app.Start(startCtx); err != nil {
				return fmt.Errorf("start server: %w", err)
			}

			<-ctx.Done()

			stopCtx, cancelStop := context.WithTimeout(context.Background(), fx.DefaultTimeout)
			defer cancelStop()
			return app.Stop(stopCtx)
		},
	}
	cmd.Flags().StringVarP(&addr, "addr", "a", "", "listen address (overrides server.addr)")
	return cmd
}

func newServeApp(sc config.ServerConfig) *fx.App {
	return fx.New(
		fx.NopLogger,
		fx.Supply(sc),
		fx.Provide(
			newUpstreamClient,
			newEndpoint,
			newHTTPServer,
		),
		fx.Invoke(func(*http.Server) {}),
	)
}

func newUpstreamClient() *http.Client {
	return &http.Client{Timeout: 60 * time.Second}
}

func newEndpoint(sc config.ServerConfig, client *http.Client) *server.Endpoint {
	return server.New(server.Config{
		LoadConfig: loadConfig,
		Client:     client,
		Path:       sc.Path,
	})
}

func newHTTPServer(lc fx.Lifecycle, sc config.ServerConfig, endpoint *server.Endpoint) *http.Server {
	mux := http.NewServeMux()
	endpoint.Register(mux)

	srv := &http.Server{
		Addr:              sc.Addr,
		Handler:           server.AccessLog(log.Logger, mux),
		ReadHeaderTimeout: 5 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			ln, err := net.Listen("tcp", srv.Addr)
			if err != nil {
				return fmt.Errorf("listen %s: %w", srv.Addr, err)
			}
			log.Info().Str("addr", ln.Addr().String()).Str("path", sc.Path).Msg("paradox listening")
			go func() {
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error().Err(err).Msg("http server stopped")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info().Msg("shutting down")
			return srv.Shutdown(ctx)
		},
	})
	return srv
}
