package mcp

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rpggio/robolab/internal/domain/robot"
)

// APIError represents an MCP tool error.
type APIError struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	Details      any    `json:"details,omitempty"`
	RecoveryHint string `json:"recovery_hint,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// MapError maps domain errors to MCP error codes. Every error maps to a
// non-empty message.
func MapError(err error) *APIError {
	if err == nil {
		return nil
	}
	kind := robot.Kind(err)
	apiErr := &APIError{
		Code:    strings.ToUpper(string(kind)),
		Message: robot.Message(err),
	}

	switch kind {
	case robot.KindDuplicateName:
		apiErr.RecoveryHint = "Pick another name or call robot_name_available first"
	case robot.KindNotFound:
		apiErr.RecoveryHint = "Check the id with robot_list"
	case robot.KindValidation:
		var verr *robot.ValidationError
		if errors.As(err, &verr) {
			apiErr.Details = verr.Fields
		}
	case robot.KindNothingToExport:
		apiErr.RecoveryHint = "Create a robot first"
	}
	return apiErr
}
