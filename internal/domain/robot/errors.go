package robot

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the target robot doesn't exist.
	ErrNotFound = errors.New("robot not found")
	// ErrDuplicateName indicates another active robot already uses the name.
	ErrDuplicateName = errors.New("duplicate robot name")
	// ErrValidation indicates the input failed a schema rule.
	ErrValidation = errors.New("invalid robot input")
	// ErrStorageUnavailable indicates the store could not be opened or migrated.
	ErrStorageUnavailable = errors.New("robot storage unavailable")
	// ErrNothingToExport indicates an export found no records.
	ErrNothingToExport = errors.New("no robots to export")
)

// DuplicateNameError carries the name that collided.
type DuplicateNameError struct {
	Name string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("a robot named %q already exists", e.Name)
}

func (e *DuplicateNameError) Unwrap() error {
	return ErrDuplicateName
}

// ErrorKind categorizes store failures for callers.
type ErrorKind string

const (
	KindDuplicateName      ErrorKind = "duplicate_name"
	KindNotFound           ErrorKind = "not_found"
	KindValidation         ErrorKind = "validation"
	KindStorageUnavailable ErrorKind = "storage_unavailable"
	KindNothingToExport    ErrorKind = "nothing_to_export"
	KindInternal           ErrorKind = "internal"
)

// Kind classifies err. A nil error has no kind.
func Kind(err error) ErrorKind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrDuplicateName):
		return KindDuplicateName
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrStorageUnavailable):
		return KindStorageUnavailable
	case errors.Is(err, ErrNothingToExport):
		return KindNothingToExport
	default:
		return KindInternal
	}
}

// Message returns a human-readable message for err. Unexpected errors get a
// generic message so that no failure is shown as blank.
func Message(err error) string {
	switch Kind(err) {
	case "":
		return ""
	case KindDuplicateName:
		var dup *DuplicateNameError
		if errors.As(err, &dup) {
			return fmt.Sprintf("A robot named %q already exists", dup.Name)
		}
		return "A robot with this name already exists"
	case KindNotFound:
		return "Robot not found"
	case KindValidation:
		var verr *ValidationError
		if errors.As(err, &verr) {
			return verr.Error()
		}
		return "Please fill in every field correctly"
	case KindStorageUnavailable:
		return "Robot storage is unavailable"
	case KindNothingToExport:
		return "No robots to export"
	default:
		return "Something went wrong, please try again"
	}
}
