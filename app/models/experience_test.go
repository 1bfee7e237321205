package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestExperienceYears(t *testing.T) {
	now := time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)
	start := now.AddDate(-2, 0, 0)

	closed := &Experience{StartDate: start, EndDate: &now}
	require.InDelta(t, 2.0, closed.Years(now), 0.01)

	open := &Experience{StartDate: start}
	require.InDelta(t, 2.0, open.Years(now), 0.01)

	inverted := &Experience{StartDate: now.AddDate(1, 0, 0)}
	require.Zero(t, inverted.Years(now))
}

func TestTotalExperienceYearsRounding(t *testing.T) {
	now := time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)
	end1 := now.AddDate(-1, 0, 0)
	records := []*Experience{
		{StartDate: now.AddDate(-2, 0, 0), EndDate: &end1},
		{StartDate: now.AddDate(0, -6, 0)},
	}

	total := TotalExperienceYears(records, now)
	require.InDelta(t, 1.5, total, 0.02)
	// Stored with two decimal places.
	require.Equal(t, total, float64(int(total*100+0.5))/100)
}
