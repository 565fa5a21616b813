package model

import "time"

// User represents a guest as stored in the `users` table.  Guests are
// identified by the id assigned by the external chat platform; the
// surrogate ID is what bookings reference.  Users are created lazily the
// first time they confirm a booking.
//
// Fields:
//  ID        – primary key identifier.
//  ChatID    – unique id of the guest on the chat platform.
//  Name      – display name.
//  Surname   – display surname (may be empty).
//  CreatedAt – timestamp of creation.
type User struct {
	ID        uint64    // users.id
	ChatID    int64     // users.chat_id (unique)
	Name      string    // users.name
	Surname   string    // users.surname
	CreatedAt time.Time // users.created_at
}
