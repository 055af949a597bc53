package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"
)

func trafficLoggingMiddleware(logger zerolog.Logger, direction string) sdkmcp.Middleware {
	return func(next sdkmcp.MethodHandler) sdkmcp.MethodHandler {
		return func(ctx context.Context, method string, req sdkmcp.Request) (sdkmcp.Result, error) {
			if !debugEnabled(logger) {
				return next(ctx, method, req)
			}

			sessionID := requestSessionID(req)
			logger.Debug().
				Str("direction", direction).
				Str("stage", "request").
				Str("method", method).
				Str("session_id", sessionID).
				Str("params", formatPayload(safeParams(req))).
				Msg("mcp traffic")

			result, err := next(ctx, method, req)
			if !strings.HasPrefix(method, "notifications/") {
				logger.Debug().
					Str("direction", direction).
					Str("stage", "response").
					Str("method", method).
					Str("session_id", sessionID).
					Str("result", formatPayload(result)).
					Err(err).
					Msg("mcp traffic")
			}

			return result, err
		}
	}
}

func debugEnabled(logger zerolog.Logger) bool {
	return logger.GetLevel() <= zerolog.DebugLevel && zerolog.GlobalLevel() <= zerolog.DebugLevel
}

func safeSessionID(req sdkmcp.Request) (id string) {
	if req == nil {
		return ""
	}
	defer func() { recover() }()
	session := req.GetSession()
	if session == nil {
		return ""
	}
	return session.ID()
}

// requestSessionID prefers the transport session, then the Mcp-Session-Id
// header, then _meta.session_id.
func requestSessionID(req sdkmcp.Request) string {
	if id := safeSessionID(req); id != "" {
		return id
	}
	if req == nil {
		return ""
	}
	if extra := req.GetExtra(); extra != nil && extra.Header != nil {
		if id := extra.Header.Get("Mcp-Session-Id"); id != "" {
			return id
		}
	}
	return metaSessionID(req)
}

// Some notifications carry nil params behind a non-nil interface.
func metaSessionID(req sdkmcp.Request) (id string) {
	defer func() { recover() }()
	params := req.GetParams()
	if params == nil {
		return ""
	}
	id, _ = params.GetMeta()["session_id"].(string)
	return id
}

func safeParams(req sdkmcp.Request) any {
	if req == nil {
		return nil
	}
	defer func() { recover() }()
	return req.GetParams()
}

func formatPayload(payload any) string {
	if payload == nil {
		return "<nil>"
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Sprintf("%T", payload)
	}
	return string(data)
}
