package predicates_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/shiftforge/roster/internal/constraints"
	"github.com/shiftforge/roster/internal/model"
	"github.com/shiftforge/roster/internal/predicates"
)

func mkEvent(id string, start time.Time, dur time.Duration) model.Event {
	return model.Event{ID: id, Start: start, End: start.Add(dur)}
}

func TestIsAvailable(t *testing.T) {
	p := model.Person{ID: "p1"}
	e := mkEvent("e1", time.Date(2025, 9, 10, 9, 0, 0, 0, time.UTC), 3*time.Hour)

	assert.True(t, predicates.IsAvailable(p, e, nil))

	avail := []model.Availability{{
		PersonID:  "p1",
		StartDate: time.Date(2025, 9, 8, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, 9, 12, 0, 0, 0, 0, time.UTC),
	}}
	assert.False(t, predicates.IsAvailable(p, e, avail))

	avail[0].PersonID = "someone-else"
	assert.True(t, predicates.IsAvailable(p, e, avail))
}

func TestHasRequiredRole(t *testing.T) {
	p := model.Person{ID: "p1", Roles: []model.Role{"kitchen", "reception"}}
	assert.True(t, predicates.HasRequiredRole(p, "kitchen"))
	assert.False(t, predicates.HasRequiredRole(p, "av_tech"))
}

func TestRespectsRestGap(t *testing.T) {
	p := model.Person{ID: "p1"}
	state := predicates.NewState()

	base := time.Date(2025, 9, 7, 9, 0, 0, 0, time.UTC)
	first := mkEvent("e1", base, 3*time.Hour) // ends 12:00
	state.Assign(p.ID, first)

	tooSoon := mkEvent("e2", base.Add(10*time.Hour), time.Hour) // starts 19:00, gap 7h
	assert.False(t, predicates.RespectsRestGap(p, tooSoon, state, 12))

	farEnough := mkEvent("e3", base.Add(24*time.Hour), time.Hour)
	assert.True(t, predicates.RespectsRestGap(p, farEnough, state, 12))
}

func TestWithinCap_Rolling(t *testing.T) {
	p := model.Person{ID: "p1"}
	state := predicates.NewState()
	period := constraints.Period{Rolling: &constraints.RollingPeriod{Days: 30}}

	base := time.Date(2025, 9, 1, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		e := mkEvent("e"+string(rune('a'+i)), base.Add(time.Duration(i)*7*24*time.Hour), time.Hour)
		state.Assign(p.ID, e)
	}

	withinRange := mkEvent("e-next", base.Add(21*24*time.Hour), time.Hour)
	assert.True(t, predicates.WithinCap(p, withinRange, state, 4, period))
	assert.False(t, predicates.WithinCap(p, withinRange, state, 3, period))
}

func TestWithinCap_CalendarMonth(t *testing.T) {
	p := model.Person{ID: "p1"}
	state := predicates.NewState()
	period := constraints.Period{Calendar: &constraints.CalendarPeriod{Unit: constraints.CalendarMonth}}

	state.Assign(p.ID, mkEvent("e1", time.Date(2025, 9, 3, 0, 0, 0, 0, time.UTC), time.Hour))
	state.Assign(p.ID, mkEvent("e2", time.Date(2025, 9, 17, 0, 0, 0, 0, time.UTC), time.Hour))

	sameMonth := mkEvent("e3", time.Date(2025, 9, 24, 0, 0, 0, 0, time.UTC), time.Hour)
	assert.False(t, predicates.WithinCap(p, sameMonth, state, 2, period))
	assert.True(t, predicates.WithinCap(p, sameMonth, state, 3, period))

	nextMonth := mkEvent("e4", time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC), time.Hour)
	assert.True(t, predicates.WithinCap(p, nextMonth, state, 1, period))
}

func TestIsBlockedByLongWeekend(t *testing.T) {
	holidays := []model.Holiday{{
		Name:      "Labour Day",
		Region:    "CA-ON",
		StartDate: time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC),
	}}

	blockedMonday := mkEvent("e1", time.Date(2025, 9, 1, 9, 0, 0, 0, time.UTC), time.Hour)
	assert.True(t, predicates.IsBlockedByLongWeekend(blockedMonday, holidays, "CA-ON"))

	blockedSaturday := mkEvent("e2", time.Date(2025, 8, 30, 9, 0, 0, 0, time.UTC), time.Hour)
	assert.True(t, predicates.IsBlockedByLongWeekend(blockedSaturday, holidays, "CA-ON"))

	notBlocked := mkEvent("e3", time.Date(2025, 9, 3, 9, 0, 0, 0, time.UTC), time.Hour)
	assert.False(t, predicates.IsBlockedByLongWeekend(notBlocked, holidays, "CA-ON"))

	wrongRegion := mkEvent("e4", time.Date(2025, 9, 1, 9, 0, 0, 0, time.UTC), time.Hour)
	assert.False(t, predicates.IsBlockedByLongWeekend(wrongRegion, holidays, "CA-BC"))
}
