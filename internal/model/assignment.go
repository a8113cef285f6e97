package model

import "time"

// Assignment is the canonical, denormalized record of who covers one event.
// It carries enough of the event's own fields (type, start, end, resource,
// teams) that an external writer can render JSON, CSV, or ICS from a
// SolutionBundle alone, without looking the event back up.
type Assignment struct {
	EventID     string    `json:"event_id"`
	EventType   string    `json:"event_type"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	Assignees   []string  `json:"assignees"`
	AssigneeIDs []string  `json:"assignee_ids"`
	ResourceID  string    `json:"resource_id,omitempty"`
	TeamIDs     []string  `json:"team_ids,omitempty"`
	// Roles is optional: when present it is the same length as AssigneeIDs
	// and names the capability role each person is filling. When absent the
	// role is inferable by intersecting a person's capability roles with
	// the event's role requirement.
	Roles []Role `json:"roles,omitempty"`
}

// RoleOf returns the role the given person fills on this assignment, if
// Roles was populated and the person is present. Returns "" otherwise.
func (a Assignment) RoleOf(personID string) Role {
	for i, pid := range a.AssigneeIDs {
		if pid == personID && i < len(a.Roles) {
			return a.Roles[i]
		}
	}
	return ""
}

// Has reports whether the given person is part of this assignment.
func (a Assignment) Has(personID string) bool {
	for _, pid := range a.AssigneeIDs {
		if pid == personID {
			return true
		}
	}
	return false
}
