package session

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*Store, redismock.ClientMock) {
	t.Helper()
	rdb, mock := redismock.NewClientMock()
	t.Cleanup(func() { _ = rdb.Close() })
	return NewStore(rdb, time.Minute), mock
}

func TestGetNoFlowInProgress(t *testing.T) {
	s, mock := newTestStore(t)

	mock.ExpectGet("session:42").RedisNil()

	st, err := s.Get(context.Background(), 42)
	require.NoError(t, err)
	assert.Nil(t, st)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetAndGet(t *testing.T) {
	s, mock := newTestStore(t)

	st := &State{
		Step:     StepConfirming,
		CheckIn:  "2026-05-02",
		CheckOut: "2026-05-05",
		RoomID:   3,
	}
	raw, err := json.Marshal(st)
	require.NoError(t, err)

	mock.ExpectSet("session:42", raw, time.Minute).SetVal("OK")
	require.NoError(t, s.Set(context.Background(), 42, st))

	mock.ExpectGet("session:42").SetVal(string(raw))
	got, err := s.Get(context.Background(), 42)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, st, got)

	in, out, err := got.Dates()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 5, 2, 0, 0, 0, 0, time.UTC), in)
	assert.Equal(t, time.Date(2026, 5, 5, 0, 0, 0, 0, time.UTC), out)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClear(t *testing.T) {
	s, mock := newTestStore(t)

	mock.ExpectDel("session:42").SetVal(1)
	require.NoError(t, s.Clear(context.Background(), 42))

	// Clearing again, with nothing stored, is still fine.
	mock.ExpectDel("session:42").SetVal(0)
	require.NoError(t, s.Clear(context.Background(), 42))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDatesRejectMalformedInput(t *testing.T) {
	st := &State{Step: StepSelectingRoom, CheckIn: "02.05.2026", CheckOut: "2026-05-05"}
	_, _, err := st.Dates()
	assert.Error(t, err)

	st = &State{Step: StepChoosingDates}
	_, _, err = st.Dates()
	assert.Error(t, err)
}
