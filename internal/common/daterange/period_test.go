package daterange

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Thursday, 15 October 2026, 14:30 UTC
var now = time.Date(2026, time.October, 15, 14, 30, 0, 0, time.UTC)

func TestResolve(t *testing.T) {
	day := func(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

	tests := []struct {
		period string
		start  time.Time
		end    time.Time
	}{
		{Today, day(2026, 10, 15), now},
		{Yesterday, day(2026, 10, 14), day(2026, 10, 15).Add(-time.Nanosecond)},
		{ThisWeek, day(2026, 10, 11), now},
		{LastWeek, day(2026, 10, 4), day(2026, 10, 11).Add(-time.Nanosecond)},
		{ThisMonth, day(2026, 10, 1), now},
		{LastMonth, day(2026, 9, 1), day(2026, 10, 1).Add(-time.Nanosecond)},
		{ThisYear, day(2026, 1, 1), now},
		{LastYear, day(2025, 1, 1), day(2026, 1, 1).Add(-time.Nanosecond)},
	}

	for _, tt := range tests {
		t.Run(tt.period, func(t *testing.T) {
			r, ok := Resolve(tt.period, now)
			require.True(t, ok)
			assert.Equal(t, tt.start, r.Start)
			assert.Equal(t, tt.end, r.End)
		})
	}
}

func TestResolveThisPeriodsEndAtNow(t *testing.T) {
	for _, p := range []string{Today, ThisWeek, ThisMonth, ThisYear} {
		r, ok := Resolve(p, now)
		require.True(t, ok)
		assert.Equal(t, now, r.End, p)
	}
}

func TestResolveUnknownPeriod(t *testing.T) {
	_, ok := Resolve("next decade", now)
	assert.False(t, ok)
	assert.False(t, IsPeriod(""))
	assert.True(t, IsPeriod("  Last Month "))
}

func TestSameDay(t *testing.T) {
	assert.True(t, SameDay(now, now.Add(-14*time.Hour)))
	assert.False(t, SameDay(now, now.Add(-15*time.Hour)))
}
