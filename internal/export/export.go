// Package export renders a SolutionBundle into the external formats named
// in the canonical field contract: JSON, CSV, and ICS. Every renderer works
// from a SolutionBundle alone — no additional lookups against storage.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shiftforge/roster/internal/model"
)

// JSON writes b as indented JSON, matching the canonical field layout
// (meta/assignments/metrics/violations) byte for byte with json.Marshal's
// own field ordering.
func JSON(w io.Writer, b model.SolutionBundle) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(b)
}

// CSV writes one row per event: event id, type, start, end, resource,
// teams, and assignees pipe-joined.
func CSV(w io.Writer, b model.SolutionBundle) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	header := []string{"event_id", "event_type", "start", "end", "resource_id", "team_ids", "assignees", "assignee_ids"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("export: csv header: %w", err)
	}
	for _, a := range b.Assignments {
		row := []string{
			a.EventID,
			a.EventType,
			a.Start.UTC().Format(time.RFC3339),
			a.End.UTC().Format(time.RFC3339),
			a.ResourceID,
			strings.Join(a.TeamIDs, "|"),
			strings.Join(a.Assignees, "|"),
			strings.Join(a.AssigneeIDs, "|"),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("export: csv row for %s: %w", a.EventID, err)
		}
	}
	return nil
}

// ICS writes one VEVENT per assignment. UID is derived from the event id;
// assignees appear in DESCRIPTION, pipe-joined.
func ICS(w io.Writer, b model.SolutionBundle) error {
	var sb strings.Builder
	sb.WriteString("BEGIN:VCALENDAR\r\n")
	sb.WriteString("VERSION:2.0\r\n")
	sb.WriteString("PRODID:-//shiftforge/roster//EN\r\n")

	for _, a := range b.Assignments {
		sb.WriteString("BEGIN:VEVENT\r\n")
		fmt.Fprintf(&sb, "UID:%s@roster\r\n", icsEscape(a.EventID))
		fmt.Fprintf(&sb, "DTSTART:%s\r\n", a.Start.UTC().Format("20060102T150405Z"))
		fmt.Fprintf(&sb, "DTEND:%s\r\n", a.End.UTC().Format("20060102T150405Z"))
		fmt.Fprintf(&sb, "SUMMARY:%s\r\n", icsEscape(a.EventType))
		fmt.Fprintf(&sb, "DESCRIPTION:%s\r\n", icsEscape(strings.Join(a.Assignees, "|")))
		sb.WriteString("END:VEVENT\r\n")
	}
	sb.WriteString("END:VCALENDAR\r\n")

	_, err := io.WriteString(w, sb.String())
	if err != nil {
		return fmt.Errorf("export: ics write: %w", err)
	}
	return nil
}

func icsEscape(s string) string {
	r := strings.NewReplacer(
		"\\", "\\\\",
		";", "\\;",
		",", "\\,",
		"\n", "\\n",
	)
	return r.Replace(s)
}
