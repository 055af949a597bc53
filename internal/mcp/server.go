package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/robolab/internal/domain/robot"
	"github.com/rs/zerolog"
)

// RobotService defines robot operations needed by MCP.
type RobotService interface {
	Create(ctx context.Context, in robot.Input) (*robot.Robot, error)
	Update(ctx context.Context, id string, patch robot.Patch) (*robot.Robot, error)
	Remove(ctx context.Context, id string) error
	Archive(ctx context.Context, id string) (*robot.Robot, error)
	Unarchive(ctx context.Context, id string) (*robot.Robot, error)
	Get(ctx context.Context, id string, includeArchived bool) (*robot.Robot, error)
	List(ctx context.Context, opts robot.ListOptions) ([]robot.Robot, error)
	Count(ctx context.Context, includeArchived bool) (int, error)
	IsNameUnique(ctx context.Context, name, excludeID string) (bool, error)
	ExportToFile(ctx context.Context, dir string, includeArchived bool) (*robot.ExportResult, error)
}

// Config contains server configuration.
type Config struct {
	Robots    RobotService
	ExportDir string
	Version   string
	Logger    zerolog.Logger
}

// NewServer creates and configures an MCP server with all tools and middleware.
func NewServer(cfg Config) *sdkmcp.Server {
	version := cfg.Version
	if version == "" {
		version = "0.1.0"
	}
	server := sdkmcp.NewServer(&sdkmcp.Implementation{
		Name:    "robolab",
		Version: version,
	}, &sdkmcp.ServerOptions{
		Instructions: serverInstructions,
	})

	registerDocResources(server)

	server.AddReceivingMiddleware(trafficLoggingMiddleware(cfg.Logger, "inbound"))
	server.AddSendingMiddleware(trafficLoggingMiddleware(cfg.Logger, "outbound"))

	registerTools(server, cfg)

	return server
}
