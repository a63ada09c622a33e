package repository

import (
	"context"
	"time"

	"github.com/vibe-gaming/publisher/internal/domain"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
)

type Repositories struct {
	Users          Users
	DeviceSessions DeviceSessions
	Attempts       Attempts
}

func NewRepositories(db *sqlx.DB, rdb redis.UniversalClient) *Repositories {
	return &Repositories{
		Users:          newUserRepository(db),
		DeviceSessions: newDeviceSessionRepository(db),
		Attempts:       newAttemptRepository(rdb),
	}
}

// Users reads and writes the auth relevant part of user rows. Every lookup
// skips soft-deleted users.
type Users interface {
	Create(ctx context.Context, user *domain.User) error
	GetOneByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByLoginOrEmail(ctx context.Context, loginOrEmail string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByConfirmationCode(ctx context.Context, code string) (*domain.User, error)
	Confirm(ctx context.Context, id uuid.UUID, now time.Time) error
	UpdateConfirmationCode(ctx context.Context, id uuid.UUID, code string, expiresAt time.Time) error
	UpdateRecoveryCode(ctx context.Context, id uuid.UUID, codeHash string, expiresAt time.Time) error
	ResetPassword(ctx context.Context, id uuid.UUID, codeHash string, passwordHash string, now time.Time) error
	SoftDelete(ctx context.Context, id uuid.UUID, now time.Time) error
	DeleteAll(ctx context.Context) error
}

// DeviceSessions holds at most one row per device. Rotate and the Delete* by
// device methods are single conditional statements.
type DeviceSessions interface {
	Create(ctx context.Context, session *domain.DeviceSession) error
	Rotate(ctx context.Context, deviceID uuid.UUID, prevIssuedAt, issuedAt, expiresAt time.Time, ip string) error
	Exists(ctx context.Context, deviceID uuid.UUID, issuedAt time.Time) (bool, error)
	GetByDeviceID(ctx context.Context, deviceID uuid.UUID) (*domain.DeviceSession, error)
	GetAllByUserID(ctx context.Context, userID uuid.UUID) ([]domain.DeviceSession, error)
	DeleteByDeviceIDAndIssuedAt(ctx context.Context, deviceID uuid.UUID, issuedAt time.Time) error
	DeleteByDeviceIDAndUserID(ctx context.Context, deviceID uuid.UUID, userID uuid.UUID) error
	DeleteAllByUserIDExcept(ctx context.Context, userID uuid.UUID, keepDeviceID uuid.UUID) (int64, error)
	DeleteAllByUserID(ctx context.Context, userID uuid.UUID) (int64, error)
	DeleteAll(ctx context.Context) error
}

type Attempts interface {
	Create(ctx context.Context, attempt domain.Attempt, retention time.Duration) error
	CountSince(ctx context.Context, ip string, url string, since time.Time) (int64, error)
	DeleteAll(ctx context.Context) error
}
