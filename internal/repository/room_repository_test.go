package repository

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/hotel-booking/internal/model"
)

func newRoomRepo(t *testing.T) (*RoomRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewRoomRepo(db), mock
}

func TestCreateRoomDuplicateNumber(t *testing.T) {
	repo, mock := newRoomRepo(t)

	mock.ExpectExec(`INSERT INTO rooms`).
		WithArgs("S1", "Standard room", "standard", uint32(350000), uint32(2), "").
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'S1' for key 'rooms.number'"})

	err := repo.Create(context.Background(), &model.Room{
		Number:     "S1",
		Name:       "Standard room",
		Category:   model.CategoryStandard,
		PriceCents: 350000,
		Capacity:   2,
	})
	assert.ErrorIs(t, err, ErrDuplicateRoomNumber)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateRoomRejectsZeroPrice(t *testing.T) {
	repo, mock := newRoomRepo(t)

	err := repo.Create(context.Background(), &model.Room{Number: "S1", Name: "Standard room", Category: model.CategoryStandard})
	assert.ErrorIs(t, err, ErrInvalidPrice)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdatePriceRejectsZero(t *testing.T) {
	repo, mock := newRoomRepo(t)

	assert.ErrorIs(t, repo.UpdatePrice(context.Background(), 3, 0), ErrInvalidPrice)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdatePriceUnknownRoom(t *testing.T) {
	repo, mock := newRoomRepo(t)

	mock.ExpectExec(`UPDATE rooms SET price_cents = \? WHERE id = \?`).
		WithArgs(uint32(400000), uint64(404)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`FROM rooms WHERE id = \?`).
		WithArgs(uint64(404)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	err := repo.UpdatePrice(context.Background(), 404, 400000)
	assert.ErrorIs(t, err, ErrRoomNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetOverrideStatusRejectsDerivedValues(t *testing.T) {
	repo, mock := newRoomRepo(t)

	// BOOKED is reconciler territory, not an admin override.
	assert.ErrorIs(t, repo.SetOverrideStatus(context.Background(), 3, model.RoomBooked), ErrInvalidStatus)
	assert.ErrorIs(t, repo.SetOverrideStatus(context.Background(), 3, model.RoomStatus("bogus")), ErrInvalidStatus)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetOverrideStatusRaisesFlag(t *testing.T) {
	repo, mock := newRoomRepo(t)

	mock.ExpectExec(`UPDATE rooms SET status = \?, manual_override = TRUE WHERE id = \?`).
		WithArgs("MAINTENANCE", uint64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.SetOverrideStatus(context.Background(), 3, model.RoomMaintenance))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteRoomInUse(t *testing.T) {
	repo, mock := newRoomRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM bookings WHERE room_id = \?`).
		WithArgs(uint64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectRollback()

	err := repo.Delete(context.Background(), 3)
	assert.ErrorIs(t, err, ErrRoomInUse)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteRoomUnknown(t *testing.T) {
	repo, mock := newRoomRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM bookings WHERE room_id = \?`).
		WithArgs(uint64(404)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec(`DELETE FROM rooms WHERE id = \?`).
		WithArgs(uint64(404)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.Delete(context.Background(), 404)
	assert.ErrorIs(t, err, ErrRoomNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteRoom(t *testing.T) {
	repo, mock := newRoomRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM bookings WHERE room_id = \?`).
		WithArgs(uint64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec(`DELETE FROM rooms WHERE id = \?`).
		WithArgs(uint64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Delete(context.Background(), 3))
	assert.NoError(t, mock.ExpectationsWereMet())
}
