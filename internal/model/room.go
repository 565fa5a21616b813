package model

import "time"

// RoomStatus enumerates the possible values of the rooms.status column.
// AVAILABLE and BOOKED are derived automatically from the booking set by
// the reconciler.  MAINTENANCE and CLOSED are administrator overrides and
// are never entered or left automatically.
type RoomStatus string

const (
	RoomAvailable   RoomStatus = "AVAILABLE"   // no active booking covers the room
	RoomBooked      RoomStatus = "BOOKED"      // at least one active booking has not checked out yet
	RoomMaintenance RoomStatus = "MAINTENANCE" // admin override: temporarily out of service
	RoomClosed      RoomStatus = "CLOSED"      // admin override: removed from sale
)

// Valid reports whether s is one of the four known statuses.
func (s RoomStatus) Valid() bool {
	switch s {
	case RoomAvailable, RoomBooked, RoomMaintenance, RoomClosed:
		return true
	}
	return false
}

// Override reports whether s is one of the admin-only side states that the
// reconciler must never overwrite.
func (s RoomStatus) Override() bool {
	return s == RoomMaintenance || s == RoomClosed
}

// RoomCategory enumerates the room classes offered by the hotel.  The set
// is small and fixed but stored as a plain string column so new classes
// can be added without a migration.
type RoomCategory string

const (
	CategoryEconomy  RoomCategory = "economy"
	CategoryStandard RoomCategory = "standard"
	CategoryBusiness RoomCategory = "business"
	CategoryVIP      RoomCategory = "vip"
)

// Valid reports whether c is one of the known categories.
func (c RoomCategory) Valid() bool {
	switch c {
	case CategoryEconomy, CategoryStandard, CategoryBusiness, CategoryVIP:
		return true
	}
	return false
}

// Room represents a bookable hotel room as stored in the `rooms` table.
// The Status field is derived state: the reconciler owns the
// AVAILABLE/BOOKED values while administrators own MAINTENANCE/CLOSED.
// ManualOverride disambiguates "AVAILABLE because no bookings" from
// "AVAILABLE because an admin forced it".
//
// Fields:
//  ID             – primary key identifier.
//  Number         – unique human-facing room number (e.g. "S042").
//  Name           – display name shown to guests.
//  Category       – room class (economy/standard/business/vip).
//  PriceCents     – nightly price in minor currency units; always > 0.
//  Capacity       – number of guests the room sleeps; always > 0.
//  Description    – free-text description.
//  Status         – derived or overridden availability status.
//  ManualOverride – true when Status was set by an admin.
//  CreatedAt      – timestamp when the room was created.
//  UpdatedAt      – timestamp of last update.
type Room struct {
	ID             uint64       // rooms.id
	Number         string       // rooms.number (unique)
	Name           string       // rooms.name
	Category       RoomCategory // rooms.category
	PriceCents     uint32       // rooms.price_cents
	Capacity       uint32       // rooms.capacity
	Description    string       // rooms.description
	Status         RoomStatus   // rooms.status
	ManualOverride bool         // rooms.manual_override
	CreatedAt      time.Time    // rooms.created_at
	UpdatedAt      time.Time    // rooms.updated_at
}
