package model_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/shiftforge/roster/internal/model"
)

func TestAvailability_Overlaps(t *testing.T) {
	av := model.Availability{
		PersonID:  "p1",
		StartDate: time.Date(2025, 9, 10, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, 9, 14, 0, 0, 0, 0, time.UTC),
	}

	assert.True(t, av.Overlaps(time.Date(2025, 9, 10, 9, 0, 0, 0, time.UTC)), "window start, inclusive")
	assert.True(t, av.Overlaps(time.Date(2025, 9, 14, 23, 0, 0, 0, time.UTC)), "window end, inclusive")
	assert.True(t, av.Overlaps(time.Date(2025, 9, 12, 12, 0, 0, 0, time.UTC)), "inside window")
	assert.False(t, av.Overlaps(time.Date(2025, 9, 9, 23, 59, 0, 0, time.UTC)), "day before window")
	assert.False(t, av.Overlaps(time.Date(2025, 9, 15, 0, 0, 1, 0, time.UTC)), "day after window")
}

func TestHoliday_Observes(t *testing.T) {
	h := model.Holiday{
		Name:      "Labour Day",
		Region:    "CA-ON",
		StartDate: time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC),
	}

	assert.True(t, h.Observes(time.Date(2025, 9, 1, 10, 0, 0, 0, time.UTC), "CA-ON"))
	assert.True(t, h.Observes(time.Date(2025, 9, 1, 10, 0, 0, 0, time.UTC), ""), "empty region matches any")
	assert.False(t, h.Observes(time.Date(2025, 9, 1, 10, 0, 0, 0, time.UTC), "CA-BC"))
	assert.False(t, h.Observes(time.Date(2025, 9, 2, 10, 0, 0, 0, time.UTC), "CA-ON"))
}

func TestRoleRequirement_Lookup(t *testing.T) {
	rr := model.RoleRequirement{
		{Role: "kitchen", Count: 2},
		{Role: "reception", Count: 1},
	}

	n, ok := rr.Lookup("kitchen")
	assert.True(t, ok)
	assert.Equal(t, 2, n)

	_, ok = rr.Lookup("av_tech")
	assert.False(t, ok)

	assert.Equal(t, []model.Role{"kitchen", "reception"}, rr.Roles())
}

func TestEvent_TotalRequired(t *testing.T) {
	e := model.Event{Roles: model.RoleRequirement{
		{Role: "kitchen", Count: 2},
		{Role: "reception", Count: 2},
		{Role: "av_tech", Count: 1},
	}}
	assert.Equal(t, 5, e.TotalRequired())
}
