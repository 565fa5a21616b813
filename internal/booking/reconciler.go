package booking

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/hotel-booking/internal/model"
	"github.com/iliyamo/hotel-booking/internal/repository"
)

// Reconciler recomputes each room's derived status from the current
// booking set.  A room is BOOKED while any ACTIVE booking has not checked
// out yet, AVAILABLE otherwise.  Rooms with manual_override set are left
// untouched: MAINTENANCE, CLOSED and a forced AVAILABLE belong to the
// admin until the override is cleared.  Reconciliation is idempotent.
type Reconciler struct {
	db       *sql.DB
	rooms    *repository.RoomRepo
	bookings *repository.BookingRepo
	now      func() time.Time
}

// NewReconciler constructs a Reconciler.
func NewReconciler(db *sql.DB, rooms *repository.RoomRepo, bookings *repository.BookingRepo) *Reconciler {
	if db == nil || rooms == nil || bookings == nil {
		panic("nil dependency passed to NewReconciler")
	}
	return &Reconciler{db: db, rooms: rooms, bookings: bookings, now: time.Now}
}

// SetClock replaces the reconciler's notion of "now".
func (r *Reconciler) SetClock(now func() time.Time) { r.now = now }

// reconcileTx recomputes the status of an already-locked room inside the
// caller's transaction.  The ledger calls this after every booking
// mutation so the displayed status never lags the booking set.
func (r *Reconciler) reconcileTx(ctx context.Context, tx *sql.Tx, room *model.Room, today time.Time) error {
	if room.ManualOverride {
		return nil
	}
	occupied, err := r.bookings.HasCurrentActiveTx(ctx, tx, room.ID, today)
	if err != nil {
		return err
	}
	status := model.RoomAvailable
	if occupied {
		status = model.RoomBooked
	}
	if status == room.Status {
		return nil
	}
	return r.rooms.SetDerivedStatusTx(ctx, tx, room.ID, status)
}

// ReconcileRoom recomputes one room's derived status in its own
// transaction.  Admin flows call this after clearing an override.
func (r *Reconciler) ReconcileRoom(ctx context.Context, roomID uint64) error {
	today := DateOnly(r.now())
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
	room, err := r.rooms.GetForUpdateTx(ctx, tx, roomID)
	if err != nil {
		return err
	}
	if err := r.reconcileTx(ctx, tx, room, today); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// Sweep completes every ACTIVE booking whose check-out has passed and
// reconciles the rooms whose booking set changed, all in one
// transaction.  It returns the number of rooms touched.  Sweep runs on a
// timer and before freshness-sensitive reads such as the admin room list;
// running it with nothing to do is a cheap no-op.
func (r *Reconciler) Sweep(ctx context.Context) (int, error) {
	today := DateOnly(r.now())
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	roomIDs, err := r.bookings.ExpireCompletedTx(ctx, tx, today)
	if err != nil {
		return 0, err
	}
	for _, id := range roomIDs {
		room, err := r.rooms.GetForUpdateTx(ctx, tx, id)
		if err != nil {
			return 0, err
		}
		if err := r.reconcileTx(ctx, tx, room, today); err != nil {
			return 0, err
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	committed = true
	return len(roomIDs), nil
}
