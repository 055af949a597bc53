package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/rpggio/robolab/internal/domain/robot"
)

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printRobots(w io.Writer, asJSON bool, recs []robot.Robot) error {
	if asJSON {
		return printJSON(w, recs)
	}
	if len(recs) == 0 {
		_, err := fmt.Fprintln(w, "no robots")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tLABEL\tYEAR\tTYPE\tSTATUS\tUPDATED")
	for _, r := range recs {
		status := "active"
		if r.Archived {
			status = "archived"
		}
		updated := "-"
		if r.UpdatedAt > 0 {
			updated = time.Unix(r.UpdatedAt, 0).UTC().Format(time.RFC3339)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\t%s\n", r.ID, r.Name, r.Label, r.Year, r.Type, status, updated)
	}
	return tw.Flush()
}

func printRobot(w io.Writer, asJSON bool, rec robot.Robot) error {
	if asJSON {
		return printJSON(w, rec)
	}
	return printRobots(w, false, []robot.Robot{rec})
}

type displayError struct {
	msg string
	err error
}

func (e *displayError) Error() string { return e.msg }
func (e *displayError) Unwrap() error { return e.err }

// userError keeps err for errors.Is but shows the user-facing message.
func userError(err error) error {
	if err == nil {
		return nil
	}
	msg := robot.Message(err)
	if k := robot.Kind(err); k == robot.KindInternal || k == robot.KindStorageUnavailable {
		msg = fmt.Sprintf("%s (%v)", msg, err)
	}
	return &displayError{msg: msg, err: err}
}
