package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/vibe-gaming/publisher/internal/db"
	"github.com/vibe-gaming/publisher/internal/domain"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const userColumns = `id, login, email, password_hash, is_deleted,
	confirmation_code, confirmation_expires_at, is_confirmed,
	recovery_code_hash, recovery_expires_at,
	created_at, updated_at, deleted_at`

type userRepository struct {
	db *sqlx.DB
}

func newUserRepository(db *sqlx.DB) *userRepository {
	return &userRepository{
		db: db,
	}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	const op = "repository.user.Create"

	const query = `
	INSERT INTO user
	(id, login, email, password_hash, confirmation_code, confirmation_expires_at, is_confirmed)
	VALUES(uuid_to_bin(?), ?, ?, ?, ?, ?, ?);
	`

	result, err := r.db.ExecContext(ctx, query,
		user.ID,
		user.Login,
		user.Email,
		user.PasswordHash,
		user.ConfirmationCode,
		user.ConfirmationExpiresAt,
		user.IsConfirmed,
	)
	if err != nil {
		if key, ok := db.DuplicateKey(err); ok {
			return &domain.DuplicateEntryError{Key: key}
		}
		return fmt.Errorf("%s: insert user failed: %w", op, err)
	}

	return expectOneRow(op, result)
}

func (r *userRepository) GetOneByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM user WHERE id = uuid_to_bin(?) AND is_deleted = 0`

	return r.getOne(ctx, "repository.user.GetOneByID", query, id)
}

func (r *userRepository) GetByLoginOrEmail(ctx context.Context, loginOrEmail string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM user WHERE (login = ? OR email = ?) AND is_deleted = 0 LIMIT 1`

	return r.getOne(ctx, "repository.user.GetByLoginOrEmail", query, loginOrEmail, loginOrEmail)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM user WHERE email = ? AND is_deleted = 0`

	return r.getOne(ctx, "repository.user.GetByEmail", query, email)
}

func (r *userRepository) GetByConfirmationCode(ctx context.Context, code string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM user WHERE confirmation_code = ? AND is_deleted = 0`

	return r.getOne(ctx, "repository.user.GetByConfirmationCode", query, code)
}

// Confirm flips is_confirmed only for an unconfirmed user whose code is still valid at now.
func (r *userRepository) Confirm(ctx context.Context, id uuid.UUID, now time.Time) error {
	const op = "repository.user.Confirm"

	const query = `
	UPDATE user SET is_confirmed = 1
	WHERE id = uuid_to_bin(?) AND is_confirmed = 0 AND is_deleted = 0 AND confirmation_expires_at > ?
	`

	result, err := r.db.ExecContext(ctx, query, id, now)
	if err != nil {
		return fmt.Errorf("%s: update user failed: %w", op, err)
	}

	return expectOneRow(op, result)
}

func (r *userRepository) UpdateConfirmationCode(ctx context.Context, id uuid.UUID, code string, expiresAt time.Time) error {
	const op = "repository.user.UpdateConfirmationCode"

	const query = `
	UPDATE user SET confirmation_code = ?, confirmation_expires_at = ?
	WHERE id = uuid_to_bin(?) AND is_confirmed = 0 AND is_deleted = 0
	`

	result, err := r.db.ExecContext(ctx, query, code, expiresAt, id)
	if err != nil {
		if key, ok := db.DuplicateKey(err); ok {
			return &domain.DuplicateEntryError{Key: key}
		}
		return fmt.Errorf("%s: update user failed: %w", op, err)
	}

	return expectOneRow(op, result)
}

func (r *userRepository) UpdateRecoveryCode(ctx context.Context, id uuid.UUID, codeHash string, expiresAt time.Time) error {
	const op = "repository.user.UpdateRecoveryCode"

	const query = `
	UPDATE user SET recovery_code_hash = ?, recovery_expires_at = ?
	WHERE id = uuid_to_bin(?) AND is_deleted = 0
	`

	result, err := r.db.ExecContext(ctx, query, codeHash, expiresAt, id)
	if err != nil {
		return fmt.Errorf("%s: update user failed: %w", op, err)
	}

	return expectOneRow(op, result)
}

// ResetPassword replaces the password hash and clears the recovery digest in
// one statement, provided codeHash is still the stored, unexpired digest.
func (r *userRepository) ResetPassword(ctx context.Context, id uuid.UUID, codeHash string, passwordHash string, now time.Time) error {
	const op = "repository.user.ResetPassword"

	const query = `
	UPDATE user SET password_hash = ?, recovery_code_hash = ''
	WHERE id = uuid_to_bin(?) AND is_deleted = 0
	  AND recovery_code_hash <> '' AND recovery_code_hash = ?
	  AND recovery_expires_at > ?
	`

	result, err := r.db.ExecContext(ctx, query, passwordHash, id, codeHash, now)
	if err != nil {
		return fmt.Errorf("%s: update user failed: %w", op, err)
	}

	return expectOneRow(op, result)
}

func (r *userRepository) SoftDelete(ctx context.Context, id uuid.UUID, now time.Time) error {
	const op = "repository.user.SoftDelete"

	const query = `
	UPDATE user SET is_deleted = 1, deleted_at = ?
	WHERE id = uuid_to_bin(?) AND is_deleted = 0
	`

	result, err := r.db.ExecContext(ctx, query, now, id)
	if err != nil {
		return fmt.Errorf("%s: update user failed: %w", op, err)
	}

	return expectOneRow(op, result)
}

func (r *userRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM user`); err != nil {
		return fmt.Errorf("repository.user.DeleteAll: %w", err)
	}
	return nil
}

func (r *userRepository) getOne(ctx context.Context, op string, query string, args ...interface{}) (*domain.User, error) {
	var user domain.User
	if err := r.db.GetContext(ctx, &user, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("%s: select user failed: %w", op, err)
	}

	return &user, nil
}

func expectOneRow(op string, result sql.Result) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: get rows affected failed: %w", op, err)
	}

	if rows == 0 {
		return domain.ErrNoRowsAffected
	}

	if rows != 1 {
		return fmt.Errorf("%s: expected 1 row affected, got %d", op, rows)
	}

	return nil
}
