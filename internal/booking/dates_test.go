package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/hotel-booking/internal/repository"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestOverlaps(t *testing.T) {
	cases := []struct {
		name                 string
		aIn, aOut, bIn, bOut string
		want                 bool
	}{
		{"identical intervals", "2026-05-01", "2026-05-05", "2026-05-01", "2026-05-05", true},
		{"partial overlap", "2026-05-01", "2026-05-05", "2026-05-04", "2026-05-10", true},
		{"contained interval", "2026-05-01", "2026-05-10", "2026-05-03", "2026-05-05", true},
		{"back to back, checkout meets checkin", "2026-05-01", "2026-05-05", "2026-05-05", "2026-05-10", false},
		{"back to back, reversed order", "2026-05-05", "2026-05-10", "2026-05-01", "2026-05-05", false},
		{"disjoint", "2026-05-01", "2026-05-03", "2026-05-07", "2026-05-09", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Overlaps(day(tc.aIn), day(tc.aOut), day(tc.bIn), day(tc.bOut))
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestNights(t *testing.T) {
	assert.Equal(t, 1, Nights(day("2026-05-01"), day("2026-05-02")))
	assert.Equal(t, 3, Nights(day("2026-05-02"), day("2026-05-05")))
	assert.Equal(t, 0, Nights(day("2026-05-01"), day("2026-05-01")))
}

func TestValidateStay(t *testing.T) {
	today := day("2026-05-01")

	require.NoError(t, ValidateStay(day("2026-05-01"), day("2026-05-02"), today, 0))
	require.NoError(t, ValidateStay(day("2026-05-02"), day("2026-05-05"), today, 0))

	// Zero nights and reversed intervals are both rejected.
	assert.ErrorIs(t, ValidateStay(day("2026-05-03"), day("2026-05-03"), today, 0), repository.ErrInvalidDateRange)
	assert.ErrorIs(t, ValidateStay(day("2026-05-05"), day("2026-05-03"), today, 0), repository.ErrInvalidDateRange)

	// No backdated check-ins.
	assert.ErrorIs(t, ValidateStay(day("2026-04-30"), day("2026-05-02"), today, 0), repository.ErrInvalidDateRange)

	// Horizon bound: check-in exactly at the horizon is allowed, one day
	// past it is not.
	assert.NoError(t, ValidateStay(day("2026-05-11"), day("2026-05-12"), today, 10))
	assert.ErrorIs(t, ValidateStay(day("2026-05-12"), day("2026-05-13"), today, 10), repository.ErrInvalidDateRange)
}

func TestDateOnlyTruncatesToMidnightUTC(t *testing.T) {
	in := time.Date(2026, 5, 2, 23, 45, 12, 0, time.FixedZone("x", 3*3600))
	got := DateOnly(in)
	assert.Equal(t, time.Date(2026, 5, 2, 0, 0, 0, 0, time.UTC), got)
	assert.Equal(t, time.UTC, got.Location())
}
