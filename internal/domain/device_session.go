package domain

import (
	"time"

	"github.com/google/uuid"
)

// MaxDeviceNameLength is the width of device_session.device_name in characters.
const MaxDeviceNameLength = 255

// DeviceSession is the current refresh token generation of one device.
// IssuedAt equals the issued-at claim of the only refresh token honored for DeviceID.
type DeviceSession struct {
	ID         uuid.UUID `json:"id" db:"id"`
	UserID     uuid.UUID `json:"user_id" db:"user_id"`
	DeviceID   uuid.UUID `json:"device_id" db:"device_id"`
	IssuedAt   time.Time `json:"issued_at" db:"issued_at"`
	ExpiresAt  time.Time `json:"expires_at" db:"expires_at"`
	DeviceName string    `json:"device_name" db:"device_name"`
	IP         string    `json:"ip" db:"ip"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}
