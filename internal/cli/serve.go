package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/robolab/internal/config"
	"github.com/rpggio/robolab/internal/mcp"
	"github.com/rpggio/robolab/internal/telemetry"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

func newServeCommand(opts *globalOptions) *cobra.Command {
	var transport string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the SQLite store as MCP tools",
		Long: `Serve the robot store over MCP. The stdio transport reads JSON-RPC from
stdin; the http transport listens on server.host:server.port and also serves
/health and /metrics.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := opts.loadConfig(cmd)
			if err != nil {
				return err
			}
			if transport != "" {
				cfg.Transport.Mode = transport
				if err := cfg.Validate(); err != nil {
					return err
				}
			}
			return Serve(cmd.Context(), cfg, logger, cmd.Root().Version)
		},
	}
	cmd.Flags().StringVar(&transport, "transport", "", "stdio or http (default from config)")
	return cmd
}

// Serve opens the store and runs the MCP server until ctx is done or the
// stdio peer disconnects.
func Serve(ctx context.Context, cfg config.Config, logger zerolog.Logger, version string) error {
	rt, err := openRuntime(ctx, cfg, logger)
	if err != nil {
		logger.Error().Err(err).Str("path", cfg.DB.Path).Msg("failed to open database")
		return err
	}
	defer rt.Close()

	server := mcp.NewServer(mcp.Config{
		Robots:    rt.robots,
		ExportDir: cfg.Export.Dir,
		Version:   version,
		Logger:    telemetry.Component(logger, "mcp"),
	})

	if cfg.Transport.Mode == "http" {
		return serveHTTP(ctx, logger, cfg.Addr(), mcp.NewHTTPHandler(server, rt.metrics.Handler()))
	}

	logger.Info().Str("transport", "stdio").Msg("starting server")
	if err := server.Run(ctx, &sdkmcp.StdioTransport{}); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error().Err(err).Msg("stdio server error")
		return err
	}
	logger.Info().Msg("shutting down")
	return nil
}

func serveHTTP(ctx context.Context, logger zerolog.Logger, addr string, handler http.Handler) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", addr).Msg("server listening")
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		logger.Error().Err(err).Msg("server error")
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	logger.Info().Msg("shutting down")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("shutdown error")
		return err
	}
	return nil
}
