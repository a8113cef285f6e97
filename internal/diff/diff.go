// Package diff computes a structural comparison between two SolutionBundles
// covering the same event set: which (event, person) pairs were added or
// removed, which events changed, and which people were affected.
package diff

import (
	"sort"

	"github.com/shiftforge/roster/internal/model"
)

// Pair is one (event, person) assignment relationship.
type Pair struct {
	EventID  string `json:"event_id"`
	PersonID string `json:"person_id"`
}

// Result is the structural diff between two solutions.
type Result struct {
	Added           []Pair   `json:"added"`
	Removed         []Pair   `json:"removed"`
	ChangedEventIDs []string `json:"changed_event_ids"`
	AffectedPersons []string `json:"affected_persons"`
	TotalChanges    int      `json:"total_changes"`
}

// Compute diffs old against new. Ordering is deterministic: event id then
// person id for pairs, and ascending id order for the summary lists.
func Compute(oldBundle, newBundle model.SolutionBundle) Result {
	oldPairs := pairSet(oldBundle)
	newPairs := pairSet(newBundle)

	var added, removed []Pair
	changedEvents := make(map[string]struct{})
	affected := make(map[string]struct{})

	for p := range newPairs {
		if _, ok := oldPairs[p]; !ok {
			added = append(added, p)
			changedEvents[p.EventID] = struct{}{}
			affected[p.PersonID] = struct{}{}
		}
	}
	for p := range oldPairs {
		if _, ok := newPairs[p]; !ok {
			removed = append(removed, p)
			changedEvents[p.EventID] = struct{}{}
			affected[p.PersonID] = struct{}{}
		}
	}

	sortPairs(added)
	sortPairs(removed)

	return Result{
		Added:           added,
		Removed:         removed,
		ChangedEventIDs: sortedKeys(changedEvents),
		AffectedPersons: sortedKeys(affected),
		TotalChanges:    len(added) + len(removed),
	}
}

func pairSet(b model.SolutionBundle) map[Pair]struct{} {
	out := make(map[Pair]struct{})
	for _, a := range b.Assignments {
		for _, pid := range a.AssigneeIDs {
			out[Pair{EventID: a.EventID, PersonID: pid}] = struct{}{}
		}
	}
	return out
}

func sortPairs(ps []Pair) {
	sort.Slice(ps, func(i, j int) bool {
		if ps[i].EventID != ps[j].EventID {
			return ps[i].EventID < ps[j].EventID
		}
		return ps[i].PersonID < ps[j].PersonID
	})
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
