// Package repository defines error types that are reused across multiple
// repositories and by the booking engine built on top of them. These
// sentinel values allow higher layers such as handlers to distinguish
// between different failure scenarios: validation problems are reported
// synchronously and never retried, ErrRoomNotAvailable is an expected
// recoverable race outcome, and not-found errors let the caller decide
// the user-facing message.
package repository

import "errors"

// ErrRoomNotFound is returned when no room exists for the given id.
var ErrRoomNotFound = errors.New("room not found")

// ErrBookingNotFound is returned when no booking exists for the given id.
var ErrBookingNotFound = errors.New("booking not found")

// ErrUserNotFound is returned when no user exists for the given id.
var ErrUserNotFound = errors.New("user not found")

// ErrDuplicateRoomNumber is returned when creating a room whose number
// already exists. Room numbers are unique across the hotel.
var ErrDuplicateRoomNumber = errors.New("duplicate room number")

// ErrInvalidPrice is returned when a price update or room creation
// specifies a non-positive nightly price.
var ErrInvalidPrice = errors.New("invalid price")

// ErrInvalidDateRange is returned when a stay interval is malformed:
// check-out not after check-in, check-in in the past, or check-in beyond
// the booking horizon.
var ErrInvalidDateRange = errors.New("invalid date range")

// ErrRoomNotAvailable is returned by the atomic re-check inside
// create-booking when an overlapping active booking already holds the
// room, or when the room is under an admin override. This is a normal
// outcome of a lost race, not a bug; callers should re-run the
// availability search and let the guest pick again.
var ErrRoomNotAvailable = errors.New("room not available")

// ErrRoomInUse is returned when deleting a room that is still referenced
// by bookings. Rooms are never deleted out from under their booking
// history.
var ErrRoomInUse = errors.New("room in use")

// ErrInvalidStatus is returned when an admin supplies a status value
// outside the allowed override set.
var ErrInvalidStatus = errors.New("invalid status")
