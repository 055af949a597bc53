package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rpggio/robolab/internal/config"
	"github.com/rpggio/robolab/internal/domain/robot"
	"github.com/rpggio/robolab/internal/sqlite"
	"github.com/rpggio/robolab/internal/telemetry"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

type runtime struct {
	cfg       config.Config
	logger    zerolog.Logger
	db        *sqlite.DB
	metrics   *telemetry.Metrics
	validator *robot.Validator
	robots    *robot.Service
}

func (g *globalOptions) loadConfig(cmd *cobra.Command) (config.Config, zerolog.Logger, error) {
	path := g.configPath
	if path == "" {
		path = os.Getenv("ROBOLAB_CONFIG_PATH")
	}
	cfg, err := config.LoadFile(path)
	if err != nil {
		return config.Config{}, zerolog.Nop(), err
	}
	if g.dbPath != "" {
		cfg.DB.Path = g.dbPath
	}

	logCfg := cfg.Log
	if g.verbose {
		logCfg.Level = "debug"
	} else if cmd.Name() != "serve" {
		logCfg.Level = "warn"
	}
	w := cmd.ErrOrStderr()
	if cfg.Log.Path != "" && g.logFile == nil {
		lf, err := telemetry.OpenLogFile(cfg.Log.Path)
		if err != nil {
			fmt.Fprintf(w, "log file error: %v\n", err)
		} else {
			g.logFile = lf
		}
	}
	if g.logFile != nil {
		w = g.logFile
	}
	return cfg, telemetry.NewLogger(logCfg, w), nil
}

func (g *globalOptions) closeLog() {
	if g.logFile != nil {
		g.logFile.Close()
		g.logFile = nil
	}
}

// open loads config and opens the migrated relational store.
func (g *globalOptions) open(cmd *cobra.Command) (*runtime, error) {
	cfg, logger, err := g.loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return openRuntime(cmd.Context(), cfg, logger)
}

func openRuntime(ctx context.Context, cfg config.Config, logger zerolog.Logger) (*runtime, error) {
	if err := ensureDBDir(cfg.DB.Path); err != nil {
		return nil, fmt.Errorf("prepare database path: %w", err)
	}
	db, err := sqlite.Open(ctx, cfg.DB.Path, telemetry.Component(logger, "sqlite"))
	if err != nil {
		return nil, err
	}

	rt := &runtime{
		cfg:       cfg,
		logger:    logger,
		db:        db,
		metrics:   telemetry.NewMetrics(cfg.Metrics),
		validator: robot.NewValidator(nil),
	}
	rt.robots = robot.NewService(
		sqlite.NewRobotRepository(db),
		telemetry.Component(logger, "robots"),
		robot.WithValidator(rt.validator),
		robot.WithRecorder(rt.metrics),
	)
	return rt, nil
}

func (r *runtime) Close() {
	if r.db != nil {
		r.db.Close()
	}
}

func ensureDBDir(path string) error {
	if path == ":memory:" || path == "" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
