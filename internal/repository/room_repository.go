package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"

	"github.com/iliyamo/hotel-booking/internal/model"
)

// mysqlDuplicateEntry is the MySQL error number raised when an INSERT or
// UPDATE violates a unique key (here: rooms.number).
const mysqlDuplicateEntry = 1062

// RoomRepo encapsulates database operations for the rooms table.  Static
// attributes (number, name, category, price, capacity, description) are
// owned by the catalog; the status column is written both here (admin
// overrides) and by the reconciler (derived values).  All timestamps are
// stored in UTC.
type RoomRepo struct {
	db *sql.DB
}

// NewRoomRepo returns a new RoomRepo bound to the given database.
func NewRoomRepo(db *sql.DB) *RoomRepo { return &RoomRepo{db: db} }

// DB exposes the underlying handle so callers can begin transactions that
// span rooms and bookings.
func (r *RoomRepo) DB() *sql.DB { return r.db }

const roomColumns = `id, number, name, category, price_cents, capacity, description, status, manual_override, created_at, updated_at`

// scanRoom reads one rooms row from the given scanner into a model.Room.
func scanRoom(sc interface{ Scan(...interface{}) error }) (*model.Room, error) {
	var rm model.Room
	var desc sql.NullString
	if err := sc.Scan(
		&rm.ID, &rm.Number, &rm.Name, &rm.Category, &rm.PriceCents, &rm.Capacity,
		&desc, &rm.Status, &rm.ManualOverride, &rm.CreatedAt, &rm.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if desc.Valid {
		rm.Description = desc.String
	}
	return &rm, nil
}

// Create inserts a new room.  The room is created AVAILABLE with no
// override.  It returns ErrDuplicateRoomNumber when the number is already
// taken and ErrInvalidPrice when the nightly price is zero.  On success
// the generated ID and timestamps are populated on the passed room.
func (r *RoomRepo) Create(ctx context.Context, rm *model.Room) error {
	if rm.PriceCents == 0 {
		return ErrInvalidPrice
	}
	const q = `INSERT INTO rooms (number, name, category, price_cents, capacity, description, status, manual_override)
               VALUES (?, ?, ?, ?, ?, ?, 'AVAILABLE', FALSE)`
	result, err := r.db.ExecContext(ctx, q,
		rm.Number, rm.Name, string(rm.Category), rm.PriceCents, rm.Capacity, rm.Description)
	if err != nil {
		var me *mysql.MySQLError
		if errors.As(err, &me) && me.Number == mysqlDuplicateEntry {
			return ErrDuplicateRoomNumber
		}
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	rm.ID = uint64(id)
	rm.Status = model.RoomAvailable
	rm.ManualOverride = false
	// Query back the row to populate timestamps set by the database.
	const sel = `SELECT ` + roomColumns + ` FROM rooms WHERE id = ?`
	got, err := scanRoom(r.db.QueryRowContext(ctx, sel, rm.ID))
	if err != nil {
		return err
	}
	*rm = *got
	return nil
}

// GetByID returns the room with the given id or ErrRoomNotFound.
func (r *RoomRepo) GetByID(ctx context.Context, id uint64) (*model.Room, error) {
	const q = `SELECT ` + roomColumns + ` FROM rooms WHERE id = ?`
	rm, err := scanRoom(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}
	return rm, nil
}

// GetForUpdateTx loads a room inside the given transaction while taking a
// row lock (SELECT ... FOR UPDATE).  The lock serialises concurrent
// check-then-insert booking attempts against the same room until the
// transaction commits or rolls back.
func (r *RoomRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Room, error) {
	const q = `SELECT ` + roomColumns + ` FROM rooms WHERE id = ? FOR UPDATE`
	rm, err := scanRoom(tx.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}
	return rm, nil
}

// ListFilter narrows the result of List.  Zero values mean "no filter".
// Limit of zero falls back to a page of 50 rows.
type ListFilter struct {
	Category model.RoomCategory
	Status   model.RoomStatus
	Offset   int
	Limit    int
}

// List returns rooms in creation order, optionally filtered by category
// and/or status, with offset+limit pagination for display.  When no rows
// match, an empty slice is returned.
func (r *RoomRepo) List(ctx context.Context, f ListFilter) ([]model.Room, error) {
	q := `SELECT ` + roomColumns + ` FROM rooms`
	var conds []string
	var args []interface{}
	if f.Category != "" {
		conds = append(conds, "category = ?")
		args = append(args, string(f.Category))
	}
	if f.Status != "" {
		conds = append(conds, "status = ?")
		args = append(args, string(f.Status))
	}
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}
	q += " ORDER BY id ASC LIMIT ? OFFSET ?"
	args = append(args, limit, f.Offset)

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Room, 0)
	for rows.Next() {
		rm, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rm)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdatePrice sets a new nightly price for the room.  Existing bookings
// keep the total computed at their creation time.  Returns ErrInvalidPrice
// for a zero price and ErrRoomNotFound when the room does not exist.
func (r *RoomRepo) UpdatePrice(ctx context.Context, id uint64, priceCents uint32) error {
	if priceCents == 0 {
		return ErrInvalidPrice
	}
	const q = `UPDATE rooms SET price_cents = ? WHERE id = ?`
	result, err := r.db.ExecContext(ctx, q, priceCents, id)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// Distinguish "missing" from "unchanged": an UPDATE to the same
		// value also affects zero rows under MySQL.
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// UpdateDescription replaces the room's free-text description.
func (r *RoomRepo) UpdateDescription(ctx context.Context, id uint64, description string) error {
	const q = `UPDATE rooms SET description = ? WHERE id = ?`
	result, err := r.db.ExecContext(ctx, q, description, id)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// SetOverrideStatus marks the room with an admin-forced status.  Allowed
// values are MAINTENANCE, CLOSED and AVAILABLE; the manual_override flag
// is raised so that the reconciler leaves the room alone until the
// override is cleared.  A forced AVAILABLE is therefore distinguishable
// from "AVAILABLE because no bookings".
func (r *RoomRepo) SetOverrideStatus(ctx context.Context, id uint64, status model.RoomStatus) error {
	if status != model.RoomMaintenance && status != model.RoomClosed && status != model.RoomAvailable {
		return ErrInvalidStatus
	}
	const q = `UPDATE rooms SET status = ?, manual_override = TRUE WHERE id = ?`
	result, err := r.db.ExecContext(ctx, q, string(status), id)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// ClearOverride returns the room to automatic status management.  The
// caller should reconcile the room afterwards so the derived status is
// recomputed from the current booking set.
func (r *RoomRepo) ClearOverride(ctx context.Context, id uint64) error {
	const q = `UPDATE rooms SET manual_override = FALSE WHERE id = ?`
	result, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// SetDerivedStatusTx writes a reconciler-computed status inside the given
// transaction.  The manual_override guard lives in the WHERE clause as a
// backstop: even a racing admin override cannot be overwritten here.
func (r *RoomRepo) SetDerivedStatusTx(ctx context.Context, tx *sql.Tx, id uint64, status model.RoomStatus) error {
	const q = `UPDATE rooms SET status = ? WHERE id = ? AND manual_override = FALSE`
	_, err := tx.ExecContext(ctx, q, string(status), id)
	return err
}

// Delete removes a room that no booking references.  Deletion is refused
// with ErrRoomInUse when any booking row, in any status, still points at
// the room; booking history must never dangle.
func (r *RoomRepo) Delete(ctx context.Context, id uint64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	var refs int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM bookings WHERE room_id = ?`, id,
	).Scan(&refs); err != nil {
		return err
	}
	if refs > 0 {
		return ErrRoomInUse
	}
	result, err := tx.ExecContext(ctx, `DELETE FROM rooms WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrRoomNotFound
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}
