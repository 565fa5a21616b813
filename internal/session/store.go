// Package session keeps per-guest conversational state for the booking
// flow: which step the guest is on and the dates/room collected so far.
// The state is ephemeral by design — it lives in Redis under a TTL and
// carries no durability guarantee.  A guest who abandons the flow simply
// lets the key expire; nothing reaches the booking ledger until the final
// confirmation step.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Step identifies where in the booking conversation a guest currently is.
type Step string

const (
	StepChoosingDates Step = "choosing_dates" // waiting for check-in/check-out
	StepSelectingRoom Step = "selecting_room" // dates staged, waiting for a room pick
	StepConfirming    Step = "confirming"     // room staged, waiting for confirmation
)

// State is the staged, partial booking for one guest.  Dates are stored
// as YYYY-MM-DD strings so the payload stays human-readable in Redis.
type State struct {
	Step     Step   `json:"step"`
	CheckIn  string `json:"check_in,omitempty"`
	CheckOut string `json:"check_out,omitempty"`
	RoomID   uint64 `json:"room_id,omitempty"`
}

// Dates parses the staged check-in/check-out into times.  It fails when
// either date is missing or malformed.
func (s *State) Dates() (time.Time, time.Time, error) {
	in, err := time.Parse("2006-01-02", s.CheckIn)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("parse check_in: %w", err)
	}
	out, err := time.Parse("2006-01-02", s.CheckOut)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("parse check_out: %w", err)
	}
	return in, out, nil
}

// Store reads and writes session state keyed by chat id.  Every write
// refreshes the TTL so an active conversation never expires mid-flow.
type Store struct {
	rdb    *redis.Client
	ttl    time.Duration
	prefix string
}

// NewStore constructs a Store.  A zero ttl defaults to 30 minutes.
func NewStore(rdb *redis.Client, ttl time.Duration) *Store {
	if rdb == nil {
		panic("nil redis client passed to NewStore")
	}
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &Store{rdb: rdb, ttl: ttl, prefix: "session"}
}

func (s *Store) key(chatID int64) string {
	return fmt.Sprintf("%s:%d", s.prefix, chatID)
}

// Get returns the guest's staged state, or nil when no flow is in
// progress (or the previous one expired).
func (s *Store) Get(ctx context.Context, chatID int64) (*State, error) {
	raw, err := s.rdb.Get(ctx, s.key(chatID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	var st State
	if err := json.Unmarshal([]byte(raw), &st); err != nil {
		return nil, fmt.Errorf("decode session state: %w", err)
	}
	return &st, nil
}

// Set stores the guest's state and resets the expiry.
func (s *Store) Set(ctx context.Context, chatID int64, st *State) error {
	raw, err := json.Marshal(st)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, s.key(chatID), raw, s.ttl).Err()
}

// Clear drops the guest's staged state.  Clearing an absent key is fine.
func (s *Store) Clear(ctx context.Context, chatID int64) error {
	return s.rdb.Del(ctx, s.key(chatID)).Err()
}
