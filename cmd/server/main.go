package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rpggio/robolab/internal/cli"
	"github.com/rpggio/robolab/internal/config"
	"github.com/rpggio/robolab/internal/telemetry"
)

// Version is set at build time.
var Version = "dev"

func main() {
	os.Exit(run())
}

// run returns the exit code so that deferred cleanup runs before os.Exit.
func run() int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		return 1
	}

	// stdout belongs to JSON-RPC in stdio mode.
	logWriter := io.Writer(os.Stdout)
	if cfg.Transport.Mode == "stdio" {
		logWriter = os.Stderr
	}
	if cfg.Log.Path != "" {
		file, err := telemetry.OpenLogFile(cfg.Log.Path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "log file error: %v\n", err)
		} else {
			defer file.Close()
			logWriter = file
		}
	}
	logger := telemetry.NewLogger(cfg.Log, logWriter)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cli.Serve(ctx, cfg, logger, Version); err != nil {
		return 1
	}
	return 0
}
