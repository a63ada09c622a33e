package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/vibe-gaming/publisher/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var deviceSessionRowColumns = []string{"id", "user_id", "device_id", "issued_at", "expires_at", "device_name", "ip", "created_at", "updated_at"}

func TestDeviceSessionRepository_Create(t *testing.T) {
	ctx := context.Background()
	sqlxDB, mock := newMockDB(t)
	r := newDeviceSessionRepository(sqlxDB)

	issuedAt := time.Now().Truncate(time.Millisecond)
	session := &domain.DeviceSession{
		ID:         uuid.New(),
		UserID:     uuid.New(),
		DeviceID:   uuid.New(),
		IssuedAt:   issuedAt,
		ExpiresAt:  issuedAt.Add(time.Hour),
		DeviceName: "Mozilla/5.0",
		IP:         "10.0.0.1",
	}

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO device_session")).
		WithArgs(session.ID, session.UserID, session.DeviceID, session.IssuedAt, session.ExpiresAt, session.DeviceName, session.IP).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, r.Create(ctx, session))
}

func TestDeviceSessionRepository_Rotate(t *testing.T) {
	ctx := context.Background()
	deviceID := uuid.New()
	prev := time.Now().Truncate(time.Millisecond)
	next := prev.Add(time.Second)
	expiresAt := next.Add(time.Hour)

	tests := []struct {
		name    string
		rows    int64
		wantErr error
	}{
		{name: "current generation", rows: 1},
		{name: "stale generation", rows: 0, wantErr: domain.ErrNoRowsAffected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sqlxDB, mock := newMockDB(t)
			r := newDeviceSessionRepository(sqlxDB)

			mock.ExpectExec(regexp.QuoteMeta("UPDATE device_session SET issued_at = ?, expires_at = ?, ip = ?")).
				WithArgs(next, expiresAt, "10.0.0.2", deviceID, prev).
				WillReturnResult(sqlmock.NewResult(0, tt.rows))

			err := r.Rotate(ctx, deviceID, prev, next, expiresAt, "10.0.0.2")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestDeviceSessionRepository_Exists(t *testing.T) {
	ctx := context.Background()
	sqlxDB, mock := newMockDB(t)
	r := newDeviceSessionRepository(sqlxDB)

	deviceID := uuid.New()
	issuedAt := time.Now().Truncate(time.Millisecond)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS")).
		WithArgs(deviceID, issuedAt).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS")).
		WithArgs(deviceID, issuedAt.Add(-time.Second)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	ok, err := r.Exists(ctx, deviceID, issuedAt)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = r.Exists(ctx, deviceID, issuedAt.Add(-time.Second))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDeviceSessionRepository_GetByDeviceID(t *testing.T) {
	ctx := context.Background()
	deviceID := uuid.New()
	now := time.Now()

	t.Run("found", func(t *testing.T) {
		sqlxDB, mock := newMockDB(t)
		r := newDeviceSessionRepository(sqlxDB)

		id, userID := uuid.New(), uuid.New()
		mock.ExpectQuery(regexp.QuoteMeta("FROM device_session WHERE device_id = uuid_to_bin(?)")).
			WithArgs(deviceID).
			WillReturnRows(sqlmock.NewRows(deviceSessionRowColumns).
				AddRow(id[:], userID[:], deviceID[:], now, now.Add(time.Hour), "curl", "1.1.1.1", now, now))

		session, err := r.GetByDeviceID(ctx, deviceID)
		require.NoError(t, err)
		assert.Equal(t, userID, session.UserID)
		assert.Equal(t, deviceID, session.DeviceID)
		assert.Equal(t, "curl", session.DeviceName)
	})

	t.Run("not found", func(t *testing.T) {
		sqlxDB, mock := newMockDB(t)
		r := newDeviceSessionRepository(sqlxDB)

		mock.ExpectQuery(regexp.QuoteMeta("FROM device_session WHERE device_id = uuid_to_bin(?)")).
			WithArgs(deviceID).
			WillReturnRows(sqlmock.NewRows(deviceSessionRowColumns))

		_, err := r.GetByDeviceID(ctx, deviceID)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestDeviceSessionRepository_Deletes(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	deviceID := uuid.New()
	issuedAt := time.Now().Truncate(time.Millisecond)

	t.Run("logout match and delete", func(t *testing.T) {
		sqlxDB, mock := newMockDB(t)
		r := newDeviceSessionRepository(sqlxDB)

		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM device_session WHERE device_id = uuid_to_bin(?) AND issued_at = ?")).
			WithArgs(deviceID, issuedAt).
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, r.DeleteByDeviceIDAndIssuedAt(ctx, deviceID, issuedAt), domain.ErrNoRowsAffected)
	})

	t.Run("terminate by owner", func(t *testing.T) {
		sqlxDB, mock := newMockDB(t)
		r := newDeviceSessionRepository(sqlxDB)

		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM device_session WHERE device_id = uuid_to_bin(?) AND user_id = uuid_to_bin(?)")).
			WithArgs(deviceID, userID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, r.DeleteByDeviceIDAndUserID(ctx, deviceID, userID))
	})

	t.Run("terminate others", func(t *testing.T) {
		sqlxDB, mock := newMockDB(t)
		r := newDeviceSessionRepository(sqlxDB)

		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM device_session WHERE user_id = uuid_to_bin(?) AND device_id <> uuid_to_bin(?)")).
			WithArgs(userID, deviceID).
			WillReturnResult(sqlmock.NewResult(0, 3))

		n, err := r.DeleteAllByUserIDExcept(ctx, userID, deviceID)
		require.NoError(t, err)
		assert.Equal(t, int64(3), n)
	})

	t.Run("cascade", func(t *testing.T) {
		sqlxDB, mock := newMockDB(t)
		r := newDeviceSessionRepository(sqlxDB)

		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM device_session WHERE user_id = uuid_to_bin(?)")).
			WithArgs(userID).
			WillReturnResult(sqlmock.NewResult(0, 2))

		n, err := r.DeleteAllByUserID(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)
	})
}
