package booking

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/hotel-booking/internal/model"
	"github.com/iliyamo/hotel-booking/internal/repository"
)

// Resolver answers "which rooms are free for this stay?".  It is a
// read-only view: the result is advisory, for display and selection only.
// The resolver trades strict consistency for cheap reads; final
// correctness is enforced by the ledger's atomic re-check at write time,
// so a room returned here may still be lost to a concurrent confirmation.
type Resolver struct {
	db  *sql.DB
	now func() time.Time
}

// NewResolver constructs a Resolver over the given database handle.
func NewResolver(db *sql.DB) *Resolver {
	if db == nil {
		panic("nil db passed to NewResolver")
	}
	return &Resolver{db: db, now: time.Now}
}

// SetClock replaces the resolver's notion of "now".
func (r *Resolver) SetClock(now func() time.Time) { r.now = now }

// FindAvailableRooms returns every room free for the entire half-open
// interval [checkIn, checkOut), excluding rooms under a MAINTENANCE or
// CLOSED override, optionally restricted to one category.  A room is free
// when no ACTIVE booking overlaps the interval; rooms whose derived
// status is BOOKED for other dates are still returned.  Results are
// ordered by nightly price ascending then room number, so paginated
// display is deterministic.  Every call re-reads current store state;
// nothing is cached, since staleness here directly causes double-booking
// attempts downstream.
func (r *Resolver) FindAvailableRooms(ctx context.Context, checkIn, checkOut time.Time, category model.RoomCategory) ([]model.Room, error) {
	in, out := DateOnly(checkIn), DateOnly(checkOut)
	if !out.After(in) {
		return nil, repository.ErrInvalidDateRange
	}
	q := `SELECT id, number, name, category, price_cents, capacity, description, status, manual_override, created_at, updated_at
          FROM rooms
          WHERE status NOT IN ('MAINTENANCE', 'CLOSED')
            AND id NOT IN (
              SELECT room_id FROM bookings
              WHERE status = 'ACTIVE' AND NOT (check_out <= ? OR check_in >= ?)
            )`
	args := []interface{}{in.Format("2006-01-02"), out.Format("2006-01-02")}
	if category != "" {
		q += ` AND category = ?`
		args = append(args, string(category))
	}
	q += ` ORDER BY price_cents ASC, number ASC`

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out2 := make([]model.Room, 0)
	for rows.Next() {
		var rm model.Room
		var desc sql.NullString
		if err := rows.Scan(
			&rm.ID, &rm.Number, &rm.Name, &rm.Category, &rm.PriceCents, &rm.Capacity,
			&desc, &rm.Status, &rm.ManualOverride, &rm.CreatedAt, &rm.UpdatedAt,
		); err != nil {
			return nil, err
		}
		if desc.Valid {
			rm.Description = desc.String
		}
		out2 = append(out2, rm)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out2, nil
}
