package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/vibe-gaming/publisher/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var userRowColumns = []string{
	"id", "login", "email", "password_hash", "is_deleted",
	"confirmation_code", "confirmation_expires_at", "is_confirmed",
	"recovery_code_hash", "recovery_expires_at",
	"created_at", "updated_at", "deleted_at",
}

func TestUserRepository_Create(t *testing.T) {
	ctx := context.Background()
	user := &domain.User{
		ID:           uuid.New(),
		Login:        "alice",
		Email:        "alice@example.com",
		PasswordHash: "hash",
		ConfirmationInfo: domain.ConfirmationInfo{
			ConfirmationCode:      "CODE",
			ConfirmationExpiresAt: time.Now().Add(time.Hour),
		},
	}

	t.Run("success", func(t *testing.T) {
		sqlxDB, mock := newMockDB(t)
		r := newUserRepository(sqlxDB)

		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO user")).
			WithArgs(user.ID, user.Login, user.Email, user.PasswordHash, user.ConfirmationCode, sqlmock.AnyArg(), false).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, r.Create(ctx, user))
	})

	t.Run("duplicate login", func(t *testing.T) {
		sqlxDB, mock := newMockDB(t)
		r := newUserRepository(sqlxDB)

		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO user")).
			WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'alice' for key 'user.user_login_uindex'"})

		err := r.Create(ctx, user)
		require.ErrorIs(t, err, domain.ErrDuplicateEntry)

		var dup *domain.DuplicateEntryError
		require.True(t, errors.As(err, &dup))
		assert.Equal(t, "user_login_uindex", dup.Key)
	})

	t.Run("database error", func(t *testing.T) {
		sqlxDB, mock := newMockDB(t)
		r := newUserRepository(sqlxDB)

		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO user")).
			WillReturnError(errors.New("connection reset"))

		err := r.Create(ctx, user)
		require.Error(t, err)
		assert.NotErrorIs(t, err, domain.ErrDuplicateEntry)
	})
}

func TestUserRepository_GetByLoginOrEmail(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()
	now := time.Now()

	t.Run("found", func(t *testing.T) {
		sqlxDB, mock := newMockDB(t)
		r := newUserRepository(sqlxDB)

		mock.ExpectQuery(regexp.QuoteMeta("WHERE (login = ? OR email = ?) AND is_deleted = 0")).
			WithArgs("alice", "alice").
			WillReturnRows(sqlmock.NewRows(userRowColumns).
				AddRow(id[:], "alice", "alice@example.com", "hash", false, "CODE", now, true, "", nil, now, now, nil))

		user, err := r.GetByLoginOrEmail(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, id, user.ID)
		assert.Equal(t, "alice", user.Login)
		assert.True(t, user.IsConfirmed)
		assert.Nil(t, user.RecoveryExpiresAt)
	})

	t.Run("not found", func(t *testing.T) {
		sqlxDB, mock := newMockDB(t)
		r := newUserRepository(sqlxDB)

		mock.ExpectQuery(regexp.QuoteMeta("WHERE (login = ? OR email = ?)")).
			WithArgs("ghost", "ghost").
			WillReturnRows(sqlmock.NewRows(userRowColumns))

		_, err := r.GetByLoginOrEmail(ctx, "ghost")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestUserRepository_Confirm(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()
	now := time.Now()

	tests := []struct {
		name    string
		rows    int64
		wantErr error
	}{
		{name: "confirmed", rows: 1},
		{name: "precondition failed", rows: 0, wantErr: domain.ErrNoRowsAffected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sqlxDB, mock := newMockDB(t)
			r := newUserRepository(sqlxDB)

			mock.ExpectExec(regexp.QuoteMeta("UPDATE user SET is_confirmed = 1")).
				WithArgs(id, now).
				WillReturnResult(sqlmock.NewResult(0, tt.rows))

			err := r.Confirm(ctx, id, now)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestUserRepository_ResetPassword(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()
	now := time.Now()

	t.Run("digest matches", func(t *testing.T) {
		sqlxDB, mock := newMockDB(t)
		r := newUserRepository(sqlxDB)

		mock.ExpectExec(regexp.QuoteMeta("UPDATE user SET password_hash = ?, recovery_code_hash = ''")).
			WithArgs("new-hash", id, "digest", now).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, r.ResetPassword(ctx, id, "digest", "new-hash", now))
	})

	t.Run("digest already cleared", func(t *testing.T) {
		sqlxDB, mock := newMockDB(t)
		r := newUserRepository(sqlxDB)

		mock.ExpectExec(regexp.QuoteMeta("UPDATE user SET password_hash = ?, recovery_code_hash = ''")).
			WithArgs("new-hash", id, "digest", now).
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, r.ResetPassword(ctx, id, "digest", "new-hash", now), domain.ErrNoRowsAffected)
	})
}

func TestUserRepository_SoftDelete(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()
	now := time.Now()

	sqlxDB, mock := newMockDB(t)
	r := newUserRepository(sqlxDB)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE user SET is_deleted = 1, deleted_at = ?")).
		WithArgs(now, id).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE user SET is_deleted = 1, deleted_at = ?")).
		WithArgs(now, id).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, r.SoftDelete(ctx, id, now))
	assert.ErrorIs(t, r.SoftDelete(ctx, id, now), domain.ErrNoRowsAffected)
}
