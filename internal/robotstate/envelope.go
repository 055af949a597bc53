package robotstate

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rpggio/robolab/internal/domain/robot"
)

// SchemaVersion is the snapshot format written by Encode.
const SchemaVersion = 1

// ErrUnsupportedSnapshot is returned for snapshots written by a newer build
// or in an unknown shape.
var ErrUnsupportedSnapshot = errors.New("unsupported snapshot")

type snapshotRecord struct {
	ID    string     `json:"id"`
	Name  string     `json:"name"`
	Label string     `json:"label"`
	Year  int        `json:"year"`
	Type  robot.Type `json:"type"`
}

type envelope struct {
	SchemaVersion int              `json:"schemaVersion"`
	Records       []snapshotRecord `json:"records"`
	SelectedID    string           `json:"selectedId,omitempty"`
}

type legacyState struct {
	Robots     []snapshotRecord `json:"robots"`
	SelectedID string           `json:"selectedId,omitempty"`
}

// rawSnapshot accepts the current envelope and the unversioned layouts:
// {records, selectedId}, {robots, selectedId} and the {state: {...}, version}
// wrapper.
type rawSnapshot struct {
	SchemaVersion *int             `json:"schemaVersion"`
	Records       []snapshotRecord `json:"records"`
	Robots        []snapshotRecord `json:"robots"`
	SelectedID    string           `json:"selectedId"`
	State         *legacyState     `json:"state"`
}

// Encode serializes state in the current snapshot format.
func Encode(state State) ([]byte, error) {
	env := envelope{
		SchemaVersion: SchemaVersion,
		Records:       make([]snapshotRecord, 0, len(state.Records)),
		SelectedID:    state.SelectedID,
	}
	for _, r := range state.Records {
		env.Records = append(env.Records, snapshotRecord{ID: r.ID, Name: r.Name, Label: r.Label, Year: r.Year, Type: r.Type})
	}
	return json.Marshal(env)
}

// Decode parses a snapshot, upgrading unversioned layouts to the current
// version. Records are not validated here.
func Decode(data []byte) (State, int, error) {
	var raw rawSnapshot
	if err := json.Unmarshal(data, &raw); err != nil {
		return State{}, 0, fmt.Errorf("decoding snapshot: %w", err)
	}

	var env envelope
	from := 0
	switch {
	case raw.SchemaVersion == nil:
		env = migrateLegacy(raw)
	case *raw.SchemaVersion > SchemaVersion:
		return State{}, *raw.SchemaVersion, fmt.Errorf("%w: schema version %d is newer than %d", ErrUnsupportedSnapshot, *raw.SchemaVersion, SchemaVersion)
	case *raw.SchemaVersion < 1:
		return State{}, *raw.SchemaVersion, fmt.Errorf("%w: schema version %d", ErrUnsupportedSnapshot, *raw.SchemaVersion)
	default:
		from = *raw.SchemaVersion
		env = envelope{SchemaVersion: from, Records: raw.Records, SelectedID: raw.SelectedID}
	}

	state := State{Records: make([]robot.Robot, 0, len(env.Records)), SelectedID: env.SelectedID}
	for _, r := range env.Records {
		state.Records = append(state.Records, robot.Robot{ID: r.ID, Name: r.Name, Label: r.Label, Year: r.Year, Type: r.Type})
	}
	return state, from, nil
}

func migrateLegacy(raw rawSnapshot) envelope {
	env := envelope{SchemaVersion: SchemaVersion, SelectedID: raw.SelectedID}
	switch {
	case raw.State != nil:
		env.Records = raw.State.Robots
		env.SelectedID = raw.State.SelectedID
	case raw.Records != nil:
		env.Records = raw.Records
	default:
		env.Records = raw.Robots
	}
	return env
}
