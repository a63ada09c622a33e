package domain

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Login        string    `db:"login" json:"login"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	IsDeleted    bool      `db:"is_deleted" json:"-"`
	ConfirmationInfo
	PasswordRecoveryInfo

	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
	DeletedAt *time.Time `db:"deleted_at" json:"deleted_at,omitempty"`
}

type ConfirmationInfo struct {
	ConfirmationCode      string    `db:"confirmation_code" json:"-"`
	ConfirmationExpiresAt time.Time `db:"confirmation_expires_at" json:"-"`
	IsConfirmed           bool      `db:"is_confirmed" json:"is_confirmed"`
}

// PasswordRecoveryInfo keeps only a digest of the last issued recovery code.
// An empty RecoveryCodeHash means no code is redeemable.
type PasswordRecoveryInfo struct {
	RecoveryCodeHash  string     `db:"recovery_code_hash" json:"-"`
	RecoveryExpiresAt *time.Time `db:"recovery_expires_at" json:"-"`
}
