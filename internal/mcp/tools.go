package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// registerTools exposes the robot service as MCP tools.
func registerTools(server *sdkmcp.Server, cfg Config) {
	svc := cfg.Robots

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "robot_create",
		Description: "Create a robot. Names are unique among active robots, ignoring case.",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in CreateRobotParams) (*sdkmcp.CallToolResult, RobotResult, error) {
		rec, err := svc.Create(ctx, in.input())
		if err != nil {
			return nil, RobotResult{}, MapError(err)
		}
		return nil, RobotResult{Robot: *rec}, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "robot_update",
		Description: "Update the supplied fields of a robot",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in UpdateRobotParams) (*sdkmcp.CallToolResult, RobotResult, error) {
		rec, err := svc.Update(ctx, in.ID, in.patch())
		if err != nil {
			return nil, RobotResult{}, MapError(err)
		}
		return nil, RobotResult{Robot: *rec}, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "robot_delete",
		Description: "Permanently delete a robot",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in RobotIDParams) (*sdkmcp.CallToolResult, DeleteResult, error) {
		if err := svc.Remove(ctx, in.ID); err != nil {
			return nil, DeleteResult{}, MapError(err)
		}
		return nil, DeleteResult{Deleted: true}, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "robot_archive",
		Description: "Archive a robot. Archived robots are hidden from default reads and free their name.",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in RobotIDParams) (*sdkmcp.CallToolResult, RobotResult, error) {
		rec, err := svc.Archive(ctx, in.ID)
		if err != nil {
			return nil, RobotResult{}, MapError(err)
		}
		return nil, RobotResult{Robot: *rec}, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "robot_unarchive",
		Description: "Restore an archived robot. Fails if an active robot now uses its name.",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in RobotIDParams) (*sdkmcp.CallToolResult, RobotResult, error) {
		rec, err := svc.Unarchive(ctx, in.ID)
		if err != nil {
			return nil, RobotResult{}, MapError(err)
		}
		return nil, RobotResult{Robot: *rec}, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "robot_get",
		Description: "Get a robot by id",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in GetRobotParams) (*sdkmcp.CallToolResult, GetRobotResult, error) {
		rec, err := svc.Get(ctx, in.ID, in.IncludeArchived)
		if err != nil {
			return nil, GetRobotResult{}, MapError(err)
		}
		return nil, GetRobotResult{Found: rec != nil, Robot: rec}, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "robot_list",
		Description: "List robots with optional search, sort and paging",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in ListRobotsParams) (*sdkmcp.CallToolResult, ListRobotsResult, error) {
		recs, err := svc.List(ctx, in.options())
		if err != nil {
			return nil, ListRobotsResult{}, MapError(err)
		}
		return nil, ListRobotsResult{Robots: recs}, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "robot_count",
		Description: "Count robots",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in CountRobotsParams) (*sdkmcp.CallToolResult, CountResult, error) {
		n, err := svc.Count(ctx, in.IncludeArchived)
		if err != nil {
			return nil, CountResult{}, MapError(err)
		}
		return nil, CountResult{Count: n}, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "robot_name_available",
		Description: "Check whether a name is free among active robots",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in NameAvailableParams) (*sdkmcp.CallToolResult, NameAvailableResult, error) {
		ok, err := svc.IsNameUnique(ctx, in.Name, in.ExcludeID)
		if err != nil {
			return nil, NameAvailableResult{}, MapError(err)
		}
		return nil, NameAvailableResult{Available: ok}, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "robot_export",
		Description: "Write every robot to a JSON file in the export directory",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in ExportRobotsParams) (*sdkmcp.CallToolResult, ExportResult, error) {
		res, err := svc.ExportToFile(ctx, cfg.ExportDir, in.IncludeArchived)
		if err != nil {
			return nil, ExportResult{}, MapError(err)
		}
		return nil, ExportResult{URL: res.URL, Count: res.Count, Bytes: res.Bytes}, nil
	})
}
