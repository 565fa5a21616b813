// Package queue defines message payloads exchanged over the message broker
// and the background consumer that turns them into audit log lines.
package queue

// Queue names used by the publisher and consumer.  Both queues are
// declared durable so events survive broker restarts.
const (
	ConfirmedQueue = "booking.confirmed"
	CancelledQueue = "booking.cancelled"
)

// BookingConfirmedEvent is published after a booking transaction commits.
// It carries enough information for downstream consumers to log, notify
// or feed analytics without querying the primary database.  EventID is a
// UUID so consumers can deduplicate redeliveries.
type BookingConfirmedEvent struct {
	EventID         string `json:"event_id"`
	BookingID       uint64 `json:"booking_id"`
	UserID          uint64 `json:"user_id"`
	RoomID          uint64 `json:"room_id"`
	RoomNumber      string `json:"room_number"`
	RoomName        string `json:"room_name"`
	CheckIn         string `json:"check_in"`
	CheckOut        string `json:"check_out"`
	Nights          int    `json:"nights"`
	TotalPriceCents uint64 `json:"total_price_cents"`
	ConfirmedAt     string `json:"confirmed_at"`
}

// BookingCancelledEvent is published after a cancellation commits.
type BookingCancelledEvent struct {
	EventID     string `json:"event_id"`
	BookingID   uint64 `json:"booking_id"`
	UserID      uint64 `json:"user_id"`
	RoomID      uint64 `json:"room_id"`
	RoomNumber  string `json:"room_number"`
	CheckIn     string `json:"check_in"`
	CheckOut    string `json:"check_out"`
	CancelledAt string `json:"cancelled_at"`
}
