package booking

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/hotel-booking/internal/model"
	"github.com/iliyamo/hotel-booking/internal/repository"
)

var roomCols = []string{"id", "number", "name", "category", "price_cents", "capacity", "description", "status", "manual_override", "created_at", "updated_at"}

var bookingCols = []string{"id", "user_id", "room_id", "check_in", "check_out", "total_price_cents", "paid", "status", "created_at", "updated_at"}

func roomRow(id uint64, priceCents uint32, status model.RoomStatus, override bool) *sqlmock.Rows {
	ts := day("2026-01-01")
	return sqlmock.NewRows(roomCols).
		AddRow(id, "S1", "Standard room", "standard", priceCents, 2, "city view", string(status), override, ts, ts)
}

func bookingRow(id, userID, roomID uint64, checkIn, checkOut string, total uint64, paid bool, status model.BookingStatus) *sqlmock.Rows {
	ts := day("2026-05-01")
	return sqlmock.NewRows(bookingCols).
		AddRow(id, userID, roomID, day(checkIn), day(checkOut), total, paid, string(status), ts, ts)
}

// newTestEngine builds a ledger and reconciler over a mocked database with
// the clock pinned to 2026-05-01.
func newTestEngine(t *testing.T) (*Ledger, *Reconciler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	rooms := repository.NewRoomRepo(db)
	bookings := repository.NewBookingRepo(db)
	rec := NewReconciler(db, rooms, bookings)
	led := NewLedger(db, rooms, bookings, rec, 0)

	fixed := func() time.Time { return time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC) }
	led.SetClock(fixed)
	rec.SetClock(fixed)
	return led, rec, mock
}

func TestCreateBooking(t *testing.T) {
	led, _, mock := newTestEngine(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM rooms WHERE id = \? FOR UPDATE`).
		WithArgs(uint64(3)).
		WillReturnRows(roomRow(3, 350000, model.RoomAvailable, false))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM bookings`).
		WithArgs(uint64(3), "2026-05-02", "2026-05-05").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec(`INSERT INTO bookings`).
		WithArgs(uint64(9), uint64(3), "2026-05-02", "2026-05-05", uint64(1050000), false, "ACTIVE").
		WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectQuery(`FROM bookings WHERE id = \?`).
		WithArgs(uint64(7)).
		WillReturnRows(bookingRow(7, 9, 3, "2026-05-02", "2026-05-05", 1050000, false, model.BookingActive))
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs(uint64(3), "2026-05-01").
		WillReturnRows(sqlmock.NewRows([]string{"e"}).AddRow(true))
	mock.ExpectExec(`UPDATE rooms SET status = \? WHERE id = \? AND manual_override = FALSE`).
		WithArgs("BOOKED", uint64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	b, err := led.CreateBooking(context.Background(), 9, 3, day("2026-05-02"), day("2026-05-05"))
	require.NoError(t, err)

	// Three nights at 3500.00 each.
	assert.Equal(t, uint64(7), b.ID)
	assert.Equal(t, uint64(1050000), b.TotalPriceCents)
	assert.Equal(t, model.BookingActive, b.Status)
	assert.False(t, b.Paid)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateBookingLongStayTotal(t *testing.T) {
	led, _, mock := newTestEngine(t)

	// 4000 nights at 12000.00 is 4,800,000,000 cents, past what 32 bits
	// can hold; the total must come through unwrapped.
	in := day("2026-05-02")
	out := in.AddDate(0, 0, 4000)
	const total = uint64(4000) * 1200000

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM rooms WHERE id = \? FOR UPDATE`).
		WithArgs(uint64(11)).
		WillReturnRows(roomRow(11, 1200000, model.RoomAvailable, false))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM bookings`).
		WithArgs(uint64(11), in.Format("2006-01-02"), out.Format("2006-01-02")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec(`INSERT INTO bookings`).
		WithArgs(uint64(9), uint64(11), in.Format("2006-01-02"), out.Format("2006-01-02"), total, false, "ACTIVE").
		WillReturnResult(sqlmock.NewResult(12, 1))
	mock.ExpectQuery(`FROM bookings WHERE id = \?`).
		WithArgs(uint64(12)).
		WillReturnRows(sqlmock.NewRows(bookingCols).
			AddRow(12, 9, 11, in, out, total, false, "ACTIVE", day("2026-05-01"), day("2026-05-01")))
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs(uint64(11), "2026-05-01").
		WillReturnRows(sqlmock.NewRows([]string{"e"}).AddRow(true))
	mock.ExpectExec(`UPDATE rooms SET status = \? WHERE id = \? AND manual_override = FALSE`).
		WithArgs("BOOKED", uint64(11)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	b, err := led.CreateBooking(context.Background(), 9, 11, in, out)
	require.NoError(t, err)
	assert.Equal(t, total, b.TotalPriceCents)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateBookingOverlapLosesRace(t *testing.T) {
	led, _, mock := newTestEngine(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM rooms WHERE id = \? FOR UPDATE`).
		WithArgs(uint64(3)).
		WillReturnRows(roomRow(3, 350000, model.RoomBooked, false))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM bookings`).
		WithArgs(uint64(3), "2026-05-02", "2026-05-05").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectRollback()

	_, err := led.CreateBooking(context.Background(), 9, 3, day("2026-05-02"), day("2026-05-05"))
	assert.ErrorIs(t, err, repository.ErrRoomNotAvailable)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateBookingRejectsOverriddenRoom(t *testing.T) {
	led, _, mock := newTestEngine(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM rooms WHERE id = \? FOR UPDATE`).
		WithArgs(uint64(3)).
		WillReturnRows(roomRow(3, 350000, model.RoomMaintenance, true))
	mock.ExpectRollback()

	_, err := led.CreateBooking(context.Background(), 9, 3, day("2026-05-02"), day("2026-05-05"))
	assert.ErrorIs(t, err, repository.ErrRoomNotAvailable)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateBookingValidatesDates(t *testing.T) {
	led, _, mock := newTestEngine(t)

	// Zero nights.
	_, err := led.CreateBooking(context.Background(), 9, 3, day("2026-05-02"), day("2026-05-02"))
	assert.ErrorIs(t, err, repository.ErrInvalidDateRange)

	// Backdated check-in.
	_, err = led.CreateBooking(context.Background(), 9, 3, day("2026-04-20"), day("2026-04-25"))
	assert.ErrorIs(t, err, repository.ErrInvalidDateRange)

	// Nothing reaches the database.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelBooking(t *testing.T) {
	led, _, mock := newTestEngine(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM bookings WHERE id = \? FOR UPDATE`).
		WithArgs(uint64(7)).
		WillReturnRows(bookingRow(7, 9, 3, "2026-05-02", "2026-05-05", 1050000, false, model.BookingActive))
	mock.ExpectExec(`UPDATE bookings SET status = \? WHERE id = \?`).
		WithArgs("CANCELLED", uint64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`FROM rooms WHERE id = \? FOR UPDATE`).
		WithArgs(uint64(3)).
		WillReturnRows(roomRow(3, 350000, model.RoomBooked, false))
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs(uint64(3), "2026-05-01").
		WillReturnRows(sqlmock.NewRows([]string{"e"}).AddRow(false))
	mock.ExpectExec(`UPDATE rooms SET status = \? WHERE id = \? AND manual_override = FALSE`).
		WithArgs("AVAILABLE", uint64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, led.CancelBooking(context.Background(), 7))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelBookingIdempotent(t *testing.T) {
	led, _, mock := newTestEngine(t)

	// Already CANCELLED: no status write, no reconcile.
	mock.ExpectBegin()
	mock.ExpectQuery(`FROM bookings WHERE id = \? FOR UPDATE`).
		WithArgs(uint64(7)).
		WillReturnRows(bookingRow(7, 9, 3, "2026-05-02", "2026-05-05", 1050000, false, model.BookingCancelled))
	mock.ExpectCommit()

	require.NoError(t, led.CancelBooking(context.Background(), 7))

	// Same for COMPLETED.
	mock.ExpectBegin()
	mock.ExpectQuery(`FROM bookings WHERE id = \? FOR UPDATE`).
		WithArgs(uint64(8)).
		WillReturnRows(bookingRow(8, 9, 3, "2026-04-02", "2026-04-05", 1050000, true, model.BookingCompleted))
	mock.ExpectCommit()

	require.NoError(t, led.CancelBooking(context.Background(), 8))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelBookingUnknown(t *testing.T) {
	led, _, mock := newTestEngine(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM bookings WHERE id = \? FOR UPDATE`).
		WithArgs(uint64(404)).
		WillReturnRows(sqlmock.NewRows(bookingCols))
	mock.ExpectRollback()

	err := led.CancelBooking(context.Background(), 404)
	assert.ErrorIs(t, err, repository.ErrBookingNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkPaid(t *testing.T) {
	led, _, mock := newTestEngine(t)

	mock.ExpectQuery(`FROM bookings WHERE id = \?`).
		WithArgs(uint64(7)).
		WillReturnRows(bookingRow(7, 9, 3, "2026-05-02", "2026-05-05", 1050000, false, model.BookingActive))
	mock.ExpectExec(`UPDATE bookings SET paid = TRUE`).
		WithArgs(uint64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, led.MarkPaid(context.Background(), 7))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkPaidAlreadyPaid(t *testing.T) {
	led, _, mock := newTestEngine(t)

	mock.ExpectQuery(`FROM bookings WHERE id = \?`).
		WithArgs(uint64(7)).
		WillReturnRows(bookingRow(7, 9, 3, "2026-05-02", "2026-05-05", 1050000, true, model.BookingActive))

	require.NoError(t, led.MarkPaid(context.Background(), 7))
	assert.NoError(t, mock.ExpectationsWereMet())
}
