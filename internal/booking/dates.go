// Package booking implements the availability and booking-lifecycle
// engine: the booking ledger, the availability resolver and the status
// reconciler.  The package owns all booking lifecycle transitions and the
// derived part of a room's status; callers (the chat workflow and the
// admin panel) only invoke the operations exposed here.
//
// All stay intervals are half-open dates [check_in, check_out): the
// check-out day is not occupied, so a booking ending on a date and one
// starting on the same date never conflict.
package booking

import (
	"time"

	"github.com/iliyamo/hotel-booking/internal/repository"
)

// DefaultHorizonDays bounds how far ahead a stay may begin when no
// explicit horizon is configured.
const DefaultHorizonDays = 365

// DateOnly truncates t to midnight UTC.  All interval arithmetic in this
// package operates on day precision.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Overlaps reports whether the half-open intervals [aIn, aOut) and
// [bIn, bOut) intersect: each must start before the other ends.
func Overlaps(aIn, aOut, bIn, bOut time.Time) bool {
	return aIn.Before(bOut) && bIn.Before(aOut)
}

// Nights returns the number of nights in [checkIn, checkOut).
func Nights(checkIn, checkOut time.Time) int {
	return int(DateOnly(checkOut).Sub(DateOnly(checkIn)).Hours() / 24)
}

// ValidateStay checks that [checkIn, checkOut) is a bookable interval as
// of the given day: at least one night, no backdating, and check-in no
// further out than horizonDays.  It returns ErrInvalidDateRange when any
// rule is violated.
func ValidateStay(checkIn, checkOut, today time.Time, horizonDays int) error {
	in, out := DateOnly(checkIn), DateOnly(checkOut)
	day := DateOnly(today)
	if !out.After(in) {
		return repository.ErrInvalidDateRange
	}
	if in.Before(day) {
		return repository.ErrInvalidDateRange
	}
	if horizonDays <= 0 {
		horizonDays = DefaultHorizonDays
	}
	if in.After(day.AddDate(0, 0, horizonDays)) {
		return repository.ErrInvalidDateRange
	}
	return nil
}
