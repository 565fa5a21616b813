package booking

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/hotel-booking/internal/model"
	"github.com/iliyamo/hotel-booking/internal/repository"
)

// Ledger owns the booking lifecycle.  Every mutation runs in a single
// transaction: create re-verifies availability for the exact interval
// after taking a row lock on the room, so two concurrent confirmations
// for the same room and overlapping dates can never both succeed; cancel
// and sweep reuse the same lock to keep the room's derived status in step
// with the booking set.
type Ledger struct {
	db          *sql.DB
	rooms       *repository.RoomRepo
	bookings    *repository.BookingRepo
	reconciler  *Reconciler
	horizonDays int
	now         func() time.Time
}

// NewLedger constructs a Ledger.  horizonDays bounds how far ahead a stay
// may begin; zero selects DefaultHorizonDays.
func NewLedger(db *sql.DB, rooms *repository.RoomRepo, bookings *repository.BookingRepo, reconciler *Reconciler, horizonDays int) *Ledger {
	if db == nil || rooms == nil || bookings == nil || reconciler == nil {
		panic("nil dependency passed to NewLedger")
	}
	if horizonDays <= 0 {
		horizonDays = DefaultHorizonDays
	}
	return &Ledger{
		db:          db,
		rooms:       rooms,
		bookings:    bookings,
		reconciler:  reconciler,
		horizonDays: horizonDays,
		now:         time.Now,
	}
}

// SetClock replaces the ledger's notion of "now".  Tests use this to pin
// the current day.
func (l *Ledger) SetClock(now func() time.Time) { l.now = now }

// CreateBooking books the room for [checkIn, checkOut) on behalf of the
// user.  The total price is computed once as nights × the room's current
// nightly price and never changes afterwards.  Inside one transaction it
// locks the room row, re-checks that no overlapping ACTIVE booking
// exists, inserts the booking as ACTIVE and reconciles the room's derived
// status.  Returns ErrInvalidDateRange, ErrRoomNotFound or
// ErrRoomNotAvailable; the latter is an expected outcome of losing the
// race and the caller should re-run the availability search.
func (l *Ledger) CreateBooking(ctx context.Context, userID, roomID uint64, checkIn, checkOut time.Time) (*model.Booking, error) {
	today := DateOnly(l.now())
	if err := ValidateStay(checkIn, checkOut, today, l.horizonDays); err != nil {
		return nil, err
	}
	checkIn, checkOut = DateOnly(checkIn), DateOnly(checkOut)

	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	// Lock the room row for the duration of check-then-insert.  Every
	// writer touching this room's bookings goes through the same lock.
	room, err := l.rooms.GetForUpdateTx(ctx, tx, roomID)
	if err != nil {
		return nil, err
	}
	if room.Status.Override() {
		return nil, repository.ErrRoomNotAvailable
	}
	n, err := l.bookings.CountOverlappingActiveTx(ctx, tx, roomID, checkIn, checkOut)
	if err != nil {
		return nil, err
	}
	if n > 0 {
		return nil, repository.ErrRoomNotAvailable
	}

	b := &model.Booking{
		UserID:          userID,
		RoomID:          roomID,
		CheckIn:         checkIn,
		CheckOut:        checkOut,
		TotalPriceCents: uint64(Nights(checkIn, checkOut)) * uint64(room.PriceCents),
		Paid:            false,
		Status:          model.BookingActive,
	}
	if err := l.bookings.CreateTx(ctx, tx, b); err != nil {
		return nil, err
	}
	if err := l.reconciler.reconcileTx(ctx, tx, room, today); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return b, nil
}

// CancelBooking transitions the booking to CANCELLED and reconciles the
// room it occupied.  Cancelling an already CANCELLED or COMPLETED booking
// is a no-op, not an error; cancelling an unknown id returns
// ErrBookingNotFound.
func (l *Ledger) CancelBooking(ctx context.Context, bookingID uint64) error {
	today := DateOnly(l.now())

	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	b, err := l.bookings.GetForUpdateTx(ctx, tx, bookingID)
	if err != nil {
		return err
	}
	if b.Status.Terminal() {
		// Nothing to do; keep cancel idempotent.
		if err := tx.Commit(); err != nil {
			return err
		}
		committed = true
		return nil
	}
	if err := l.bookings.UpdateStatusTx(ctx, tx, bookingID, model.BookingCancelled); err != nil {
		return err
	}
	room, err := l.rooms.GetForUpdateTx(ctx, tx, b.RoomID)
	if err != nil {
		return err
	}
	if err := l.reconciler.reconcileTx(ctx, tx, room, today); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// MarkPaid records the payment confirmation for a booking.  The flag is
// flipped by an external trusted caller; marking an already paid booking
// is a no-op and the lifecycle status is never affected.
func (l *Ledger) MarkPaid(ctx context.Context, bookingID uint64) error {
	b, err := l.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return err
	}
	if b.Paid {
		return nil
	}
	return l.bookings.SetPaid(ctx, bookingID)
}

// GetBooking returns a single booking by id.
func (l *Ledger) GetBooking(ctx context.Context, bookingID uint64) (*model.Booking, error) {
	return l.bookings.GetByID(ctx, bookingID)
}

// GetUserBookings lists the user's bookings, optionally restricted to
// ACTIVE ones.
func (l *Ledger) GetUserBookings(ctx context.Context, userID uint64, activeOnly bool) ([]model.Booking, error) {
	return l.bookings.ListByUser(ctx, userID, activeOnly)
}

// GetUnpaidBookings lists the user's ACTIVE, unpaid bookings whose
// check-out is still ahead.
func (l *Ledger) GetUnpaidBookings(ctx context.Context, userID uint64) ([]model.Booking, error) {
	return l.bookings.ListUnpaidByUser(ctx, userID, DateOnly(l.now()))
}
