package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/hotel-booking/internal/model"
)

// dateFormat is how DATE columns are bound in queries.  The driver parses
// DATE values back into time.Time (parseTime=true, UTC).
const dateFormat = "2006-01-02"

// BookingRepo provides data access to the bookings table.  Mutations that
// participate in the create/cancel choreography are exposed as ...Tx
// methods so the booking ledger can run its overlap re-check, insert and
// status reconciliation as one atomic unit.  Intervals are half-open:
// [check_in, check_out), the check-out day is not occupied.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

const bookingColumns = `id, user_id, room_id, check_in, check_out, total_price_cents, paid, status, created_at, updated_at`

func scanBooking(sc interface{ Scan(...interface{}) error }) (*model.Booking, error) {
	var b model.Booking
	if err := sc.Scan(
		&b.ID, &b.UserID, &b.RoomID, &b.CheckIn, &b.CheckOut,
		&b.TotalPriceCents, &b.Paid, &b.Status, &b.CreatedAt, &b.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &b, nil
}

// CountOverlappingActiveTx counts ACTIVE bookings for the room whose
// interval overlaps [checkIn, checkOut).  Two half-open intervals overlap
// iff each starts before the other ends, so the predicate excludes rows
// that end on or before the new check-in or start on or after the new
// check-out.  Runs inside the caller's transaction; together with the
// FOR UPDATE lock on the room row this is the race re-check that makes
// double-booking impossible.
func (r *BookingRepo) CountOverlappingActiveTx(ctx context.Context, tx *sql.Tx, roomID uint64, checkIn, checkOut time.Time) (int, error) {
	const q = `SELECT COUNT(*) FROM bookings
               WHERE room_id = ? AND status = 'ACTIVE'
                 AND NOT (check_out <= ? OR check_in >= ?)`
	var n int
	err := tx.QueryRowContext(ctx, q, roomID,
		checkIn.Format(dateFormat), checkOut.Format(dateFormat)).Scan(&n)
	return n, err
}

// CreateTx inserts a new booking within the scope of an existing
// transaction and populates the generated ID and timestamps on the passed
// record.  The caller must commit or roll back the transaction.
func (r *BookingRepo) CreateTx(ctx context.Context, tx *sql.Tx, b *model.Booking) error {
	const q = `INSERT INTO bookings (user_id, room_id, check_in, check_out, total_price_cents, paid, status)
               VALUES (?, ?, ?, ?, ?, ?, ?)`
	result, err := tx.ExecContext(ctx, q,
		b.UserID, b.RoomID,
		b.CheckIn.Format(dateFormat), b.CheckOut.Format(dateFormat),
		b.TotalPriceCents, b.Paid, string(b.Status))
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	const sel = `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ?`
	got, err := scanBooking(tx.QueryRowContext(ctx, sel, b.ID))
	if err != nil {
		return err
	}
	*b = *got
	return nil
}

// GetByID returns the booking with the given id or ErrBookingNotFound.
func (r *BookingRepo) GetByID(ctx context.Context, id uint64) (*model.Booking, error) {
	const q = `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ?`
	b, err := scanBooking(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return b, nil
}

// GetForUpdateTx loads a booking inside the given transaction with a row
// lock, so a cancel cannot race a concurrent status change.
func (r *BookingRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Booking, error) {
	const q = `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ? FOR UPDATE`
	b, err := scanBooking(tx.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return b, nil
}

// UpdateStatusTx sets the booking's lifecycle status within the caller's
// transaction.  Lifecycle rules (terminal states, idempotent cancel) are
// enforced by the ledger, not here.
func (r *BookingRepo) UpdateStatusTx(ctx context.Context, tx *sql.Tx, id uint64, status model.BookingStatus) error {
	const q = `UPDATE bookings SET status = ? WHERE id = ?`
	_, err := tx.ExecContext(ctx, q, string(status), id)
	return err
}

// SetPaid flips the paid flag to true.  The flag never un-flips and the
// lifecycle status is unaffected.
func (r *BookingRepo) SetPaid(ctx context.Context, id uint64) error {
	const q = `UPDATE bookings SET paid = TRUE WHERE id = ?`
	_, err := r.db.ExecContext(ctx, q, id)
	return err
}

// ListByUser returns the user's bookings, newest first.  With activeOnly
// set, only ACTIVE bookings are returned.
func (r *BookingRepo) ListByUser(ctx context.Context, userID uint64, activeOnly bool) ([]model.Booking, error) {
	q := `SELECT ` + bookingColumns + ` FROM bookings WHERE user_id = ?`
	args := []interface{}{userID}
	if activeOnly {
		q += ` AND status = 'ACTIVE'`
	}
	q += ` ORDER BY created_at DESC, id DESC`
	return r.list(ctx, q, args...)
}

// ListUnpaidByUser returns the user's ACTIVE, unpaid bookings whose
// check-out is still in the future as of the given day.
func (r *BookingRepo) ListUnpaidByUser(ctx context.Context, userID uint64, today time.Time) ([]model.Booking, error) {
	const q = `SELECT ` + bookingColumns + ` FROM bookings
               WHERE user_id = ? AND status = 'ACTIVE' AND paid = FALSE AND check_out > ?
               ORDER BY check_in ASC, id ASC`
	return r.list(ctx, q, userID, today.Format(dateFormat))
}

func (r *BookingRepo) list(ctx context.Context, q string, args ...interface{}) ([]model.Booking, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// HasCurrentActiveTx reports whether any ACTIVE booking for the room has
// not checked out yet as of the given day.  The reconciler uses this to
// derive BOOKED versus AVAILABLE.
func (r *BookingRepo) HasCurrentActiveTx(ctx context.Context, tx *sql.Tx, roomID uint64, today time.Time) (bool, error) {
	const q = `SELECT EXISTS (
                 SELECT 1 FROM bookings
                 WHERE room_id = ? AND status = 'ACTIVE' AND check_out >= ?
               )`
	var exists bool
	err := tx.QueryRowContext(ctx, q, roomID, today.Format(dateFormat)).Scan(&exists)
	return exists, err
}

// ExpireCompletedTx transitions every ACTIVE booking whose check-out has
// passed to COMPLETED and returns the ids of the rooms whose booking set
// changed, deduplicated.  The select takes row locks so the sweep cannot
// race a concurrent cancel of the same rows.
func (r *BookingRepo) ExpireCompletedTx(ctx context.Context, tx *sql.Tx, today time.Time) ([]uint64, error) {
	day := today.Format(dateFormat)
	rows, err := tx.QueryContext(ctx,
		`SELECT DISTINCT room_id FROM bookings
         WHERE status = 'ACTIVE' AND check_out < ? FOR UPDATE`, day)
	if err != nil {
		return nil, err
	}
	var roomIDs []uint64
	for rows.Next() {
		var id uint64
		if scanErr := rows.Scan(&id); scanErr != nil {
			rows.Close()
			return nil, scanErr
		}
		roomIDs = append(roomIDs, id)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if len(roomIDs) == 0 {
		return []uint64{}, nil
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE bookings SET status = 'COMPLETED'
         WHERE status = 'ACTIVE' AND check_out < ?`, day); err != nil {
		return nil, err
	}
	return roomIDs, nil
}
