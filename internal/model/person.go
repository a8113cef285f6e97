package model

// Role is a capability tag a person carries, e.g. "kitchen" or "L2".
// Matching against an event's role requirement is plain set membership —
// there is no fuzzy or case-insensitive matching.
type Role string

// Person is a scheduling participant: a stable id, a display name, and the
// set of capability roles that make them eligible for role requirements.
type Person struct {
	ID    string `json:"id"`
	OrgID string `json:"org_id"`
	Name  string `json:"name"`
	Roles []Role `json:"roles"`
}

// HasRole reports whether the person holds the given capability role.
func (p Person) HasRole(r Role) bool {
	for _, have := range p.Roles {
		if have == r {
			return true
		}
	}
	return false
}

// Team is an optional named group of people, referenced by events through
// their TeamIDs.
type Team struct {
	ID            string   `json:"id"`
	OrgID         string   `json:"org_id"`
	Name          string   `json:"name"`
	PersonIDs     []string `json:"person_ids"`
	CanonicalRole Role     `json:"canonical_role,omitempty"`
}

// Resource is an optional named location or asset an event may reference.
// The solver treats resource presence as informational unless a constraint
// explicitly declares a capacity rule over it.
type Resource struct {
	ID    string `json:"id"`
	OrgID string `json:"org_id"`
	Name  string `json:"name"`
}
