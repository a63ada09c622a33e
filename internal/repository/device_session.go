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

const deviceSessionColumns = `id, user_id, device_id, issued_at, expires_at, device_name, ip, created_at, updated_at`

type deviceSessionRepository struct {
	db *sqlx.DB
}

func newDeviceSessionRepository(db *sqlx.DB) *deviceSessionRepository {
	return &deviceSessionRepository{
		db: db,
	}
}

func (r *deviceSessionRepository) Create(ctx context.Context, session *domain.DeviceSession) error {
	const op = "repository.deviceSession.Create"

	const query = `
	INSERT INTO device_session (id, user_id, device_id, issued_at, expires_at, device_name, ip)
	VALUES (uuid_to_bin(?), uuid_to_bin(?), uuid_to_bin(?), ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		session.ID,
		session.UserID,
		session.DeviceID,
		session.IssuedAt,
		session.ExpiresAt,
		session.DeviceName,
		session.IP,
	)
	if err != nil {
		if key, ok := db.DuplicateKey(err); ok {
			return &domain.DuplicateEntryError{Key: key}
		}
		return fmt.Errorf("%s: insert device session failed: %w", op, err)
	}

	return expectOneRow(op, result)
}

// Rotate moves the device to a new generation if prevIssuedAt is still current.
// It returns domain.ErrNoRowsAffected when the row is gone or already rotated.
func (r *deviceSessionRepository) Rotate(ctx context.Context, deviceID uuid.UUID, prevIssuedAt, issuedAt, expiresAt time.Time, ip string) error {
	const op = "repository.deviceSession.Rotate"

	const query = `
	UPDATE device_session SET issued_at = ?, expires_at = ?, ip = ?
	WHERE device_id = uuid_to_bin(?) AND issued_at = ?
	`

	result, err := r.db.ExecContext(ctx, query, issuedAt, expiresAt, ip, deviceID, prevIssuedAt)
	if err != nil {
		return fmt.Errorf("%s: update device session failed: %w", op, err)
	}

	return expectOneRow(op, result)
}

func (r *deviceSessionRepository) Exists(ctx context.Context, deviceID uuid.UUID, issuedAt time.Time) (bool, error) {
	const query = `
	SELECT EXISTS(SELECT 1 FROM device_session WHERE device_id = uuid_to_bin(?) AND issued_at = ?)
	`

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, deviceID, issuedAt); err != nil {
		return false, fmt.Errorf("repository.deviceSession.Exists: select failed: %w", err)
	}

	return exists, nil
}

func (r *deviceSessionRepository) GetByDeviceID(ctx context.Context, deviceID uuid.UUID) (*domain.DeviceSession, error) {
	query := `SELECT ` + deviceSessionColumns + ` FROM device_session WHERE device_id = uuid_to_bin(?)`

	var session domain.DeviceSession
	if err := r.db.GetContext(ctx, &session, query, deviceID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("repository.deviceSession.GetByDeviceID: select failed: %w", err)
	}

	return &session, nil
}

func (r *deviceSessionRepository) GetAllByUserID(ctx context.Context, userID uuid.UUID) ([]domain.DeviceSession, error) {
	query := `SELECT ` + deviceSessionColumns + ` FROM device_session WHERE user_id = uuid_to_bin(?) ORDER BY issued_at DESC`

	sessions := make([]domain.DeviceSession, 0)
	if err := r.db.SelectContext(ctx, &sessions, query, userID); err != nil {
		return nil, fmt.Errorf("repository.deviceSession.GetAllByUserID: select failed: %w", err)
	}

	return sessions, nil
}

func (r *deviceSessionRepository) DeleteByDeviceIDAndIssuedAt(ctx context.Context, deviceID uuid.UUID, issuedAt time.Time) error {
	const op = "repository.deviceSession.DeleteByDeviceIDAndIssuedAt"

	const query = `DELETE FROM device_session WHERE device_id = uuid_to_bin(?) AND issued_at = ?`

	result, err := r.db.ExecContext(ctx, query, deviceID, issuedAt)
	if err != nil {
		return fmt.Errorf("%s: delete failed: %w", op, err)
	}

	return expectOneRow(op, result)
}

func (r *deviceSessionRepository) DeleteByDeviceIDAndUserID(ctx context.Context, deviceID uuid.UUID, userID uuid.UUID) error {
	const op = "repository.deviceSession.DeleteByDeviceIDAndUserID"

	const query = `DELETE FROM device_session WHERE device_id = uuid_to_bin(?) AND user_id = uuid_to_bin(?)`

	result, err := r.db.ExecContext(ctx, query, deviceID, userID)
	if err != nil {
		return fmt.Errorf("%s: delete failed: %w", op, err)
	}

	return expectOneRow(op, result)
}

func (r *deviceSessionRepository) DeleteAllByUserIDExcept(ctx context.Context, userID uuid.UUID, keepDeviceID uuid.UUID) (int64, error) {
	const query = `DELETE FROM device_session WHERE user_id = uuid_to_bin(?) AND device_id <> uuid_to_bin(?)`

	result, err := r.db.ExecContext(ctx, query, userID, keepDeviceID)
	if err != nil {
		return 0, fmt.Errorf("repository.deviceSession.DeleteAllByUserIDExcept: delete failed: %w", err)
	}

	return result.RowsAffected()
}

func (r *deviceSessionRepository) DeleteAllByUserID(ctx context.Context, userID uuid.UUID) (int64, error) {
	const query = `DELETE FROM device_session WHERE user_id = uuid_to_bin(?)`

	result, err := r.db.ExecContext(ctx, query, userID)
	if err != nil {
		return 0, fmt.Errorf("repository.deviceSession.DeleteAllByUserID: delete failed: %w", err)
	}

	return result.RowsAffected()
}

func (r *deviceSessionRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM device_session`); err != nil {
		return fmt.Errorf("repository.deviceSession.DeleteAll: %w", err)
	}
	return nil
}
