package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bnema/mwa-bridge/internal/adapters/channel"
	"github.com/bnema/mwa-bridge/internal/adapters/metrics/prom"
	"github.com/bnema/mwa-bridge/internal/bridge"
	"github.com/spf13/cobra"
)

const metricsShutdownTimeout = 5 * time.Second

func newServeCmd(app *app) *cobra.Command {
	var metricsListen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the client and wallet method channels over stdin/stdout",
		Long:  "serve reads JSON-lines calls from stdin and writes replies and notifications to stdout. Logs go to stderr.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("metrics-listen") {
				metricsListen = app.settings.Metrics.Listen
			}
			return runServe(cmd, app, metricsListen)
		},
	}

	cmd.Flags().StringVar(&metricsListen, "metrics-listen", "", "Address for the Prometheus /metrics endpoint (empty disables)")

	return cmd
}

func runServe(cmd *cobra.Command, app *app, metricsListen string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if metricsListen != "" {
		shutdown, err := startMetricsServer(app, metricsListen)
		if err != nil {
			return err
		}
		defer shutdown()
	}

	conn := channel.NewConn(cmd.InOrStdin(), cmd.OutOrStdout(), app.logger)
	plugin := bridge.NewPlugin(app.launcher, app.metrics, app.clock, app.logger)

	plugin.OnAttachedToActivity(app.opener, app.resolver)
	defer plugin.OnDetachedFromActivity()
	plugin.OnAttachedToEngine(conn)
	defer plugin.OnDetachedFromEngine()

	app.logger.Info().Str("endpoint", app.launcher.EndpointURI()).Msg("bridge serving")

	err := conn.Serve(ctx)
	if errors.Is(err, context.Canceled) {
		err = nil
	}

	app.logger.Info().Msg("bridge stopped")
	return err
}

func startMetricsServer(app *app, addr string) (func(), error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen metrics endpoint: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", prom.Handler(app.registry))
	server := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if serveErr := server.Serve(listener); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			app.logger.Error().Err(serveErr).Msg("metrics endpoint stopped")
		}
	}()

	app.logger.Info().Str("addr", listener.Addr().String()).Msg("metrics endpoint listening")

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), metricsShutdownTimeout)
		defer cancel()
		_ = server.Shutdown(ctx)
	}, nil
}
