package model

import "time"

// BookingStatus enumerates the lifecycle states of a booking.  ACTIVE
// bookings are the only ones that occupy a room; CANCELLED and COMPLETED
// are terminal.
type BookingStatus string

const (
	BookingPending   BookingStatus = "PENDING"   // reserved for a pay-before-confirm flow; unused today
	BookingActive    BookingStatus = "ACTIVE"    // confirmed stay, occupies the room for its interval
	BookingCancelled BookingStatus = "CANCELLED" // cancelled by the guest or an admin (terminal)
	BookingCompleted BookingStatus = "COMPLETED" // check-out date has passed (terminal, set by the sweep)
)

// Terminal reports whether s is a final state that no transition may leave.
func (s BookingStatus) Terminal() bool {
	return s == BookingCancelled || s == BookingCompleted
}

// Booking records a guest's stay in a room over a half-open date interval
// [CheckIn, CheckOut).  The check-out day is not occupied: a booking ending
// on a date and one starting on the same date do not conflict.  TotalPrice
// is computed once at creation (nights × nightly price) and never changes,
// even if the room's price is updated later.
//
// Fields:
//  ID              – primary key identifier.
//  UserID          – guest who owns the booking.
//  RoomID          – room being occupied.
//  CheckIn         – first night of the stay (inclusive).
//  CheckOut        – departure date (exclusive).
//  TotalPriceCents – immutable total for the stay in minor units.
//  Paid            – set by the payment-confirmation operation; never unset.
//  Status          – lifecycle state (PENDING/ACTIVE/CANCELLED/COMPLETED).
//  CreatedAt       – timestamp when the booking was created.
//  UpdatedAt       – timestamp of last update.
type Booking struct {
	ID              uint64        // bookings.id
	UserID          uint64        // bookings.user_id
	RoomID          uint64        // bookings.room_id
	CheckIn         time.Time     // bookings.check_in (DATE, inclusive)
	CheckOut        time.Time     // bookings.check_out (DATE, exclusive)
	TotalPriceCents uint64        // bookings.total_price_cents (BIGINT; wide enough for any stay length)
	Paid            bool          // bookings.paid
	Status          BookingStatus // bookings.status
	CreatedAt       time.Time     // bookings.created_at
	UpdatedAt       time.Time     // bookings.updated_at
}
