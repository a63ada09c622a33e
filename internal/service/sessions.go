package service

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/vibe-gaming/publisher/internal/domain"
	"github.com/vibe-gaming/publisher/internal/repository"

	"github.com/google/uuid"
)

type CreateSessionInput struct {
	UserID     uuid.UUID
	DeviceID   uuid.UUID
	IssuedAt   time.Time
	ExpiresAt  time.Time
	DeviceName string
	IP         string
}

type RotateSessionInput struct {
	DeviceID     uuid.UUID
	PrevIssuedAt time.Time
	IssuedAt     time.Time
	ExpiresAt    time.Time
	IP           string
}

// sessionRegistry is the device session registry. It holds no state of its
// own; every check-and-change is a single conditional statement in the store.
type sessionRegistry struct {
	deviceSessionRepository repository.DeviceSessions
}

func newSessionRegistry(deviceSessionRepository repository.DeviceSessions) *sessionRegistry {
	return &sessionRegistry{
		deviceSessionRepository: deviceSessionRepository,
	}
}

func (s *sessionRegistry) Create(ctx context.Context, input CreateSessionInput) (uuid.UUID, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.Nil, fmt.Errorf("generate device session id failed: %w", err)
	}

	session := &domain.DeviceSession{
		ID:         id,
		UserID:     input.UserID,
		DeviceID:   input.DeviceID,
		IssuedAt:   input.IssuedAt,
		ExpiresAt:  input.ExpiresAt,
		DeviceName: truncateRunes(input.DeviceName, domain.MaxDeviceNameLength),
		IP:         input.IP,
	}

	if err := s.deviceSessionRepository.Create(ctx, session); err != nil {
		return uuid.Nil, fmt.Errorf("create device session failed: %w", err)
	}

	return id, nil
}

// Rotate advances the device to a new generation. It fails with
// ErrSessionNotFound when PrevIssuedAt is no longer the current generation.
func (s *sessionRegistry) Rotate(ctx context.Context, input RotateSessionInput) error {
	err := s.deviceSessionRepository.Rotate(ctx,
		input.DeviceID,
		input.PrevIssuedAt,
		input.IssuedAt,
		input.ExpiresAt,
		input.IP,
	)
	if err != nil {
		if errors.Is(err, domain.ErrNoRowsAffected) {
			return ErrSessionNotFound
		}
		return fmt.Errorf("rotate device session failed: %w", err)
	}

	return nil
}

func (s *sessionRegistry) Matches(ctx context.Context, deviceID uuid.UUID, issuedAt time.Time) (bool, error) {
	ok, err := s.deviceSessionRepository.Exists(ctx, deviceID, issuedAt)
	if err != nil {
		return false, fmt.Errorf("check device session failed: %w", err)
	}

	return ok, nil
}

func (s *sessionRegistry) List(ctx context.Context, userID uuid.UUID) ([]domain.DeviceSession, error) {
	sessions, err := s.deviceSessionRepository.GetAllByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list device sessions failed: %w", err)
	}

	return sessions, nil
}

// Terminate deletes the device row only while issuedAt is its current generation.
func (s *sessionRegistry) Terminate(ctx context.Context, deviceID uuid.UUID, issuedAt time.Time) error {
	if err := s.deviceSessionRepository.DeleteByDeviceIDAndIssuedAt(ctx, deviceID, issuedAt); err != nil {
		if errors.Is(err, domain.ErrNoRowsAffected) {
			return ErrSessionNotFound
		}
		return fmt.Errorf("delete device session failed: %w", err)
	}

	return nil
}

// TerminateByID deletes a device of actingUserID. A device owned by someone
// else yields ErrForbidden, an unknown one ErrSessionNotFound.
func (s *sessionRegistry) TerminateByID(ctx context.Context, actingUserID uuid.UUID, deviceID uuid.UUID) error {
	session, err := s.deviceSessionRepository.GetByDeviceID(ctx, deviceID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return ErrSessionNotFound
		}
		return fmt.Errorf("get device session failed: %w", err)
	}

	if session.UserID != actingUserID {
		return ErrForbidden
	}

	if err := s.deviceSessionRepository.DeleteByDeviceIDAndUserID(ctx, deviceID, actingUserID); err != nil {
		if errors.Is(err, domain.ErrNoRowsAffected) {
			return ErrSessionNotFound
		}
		return fmt.Errorf("delete device session failed: %w", err)
	}

	return nil
}

func (s *sessionRegistry) TerminateOthers(ctx context.Context, userID uuid.UUID, keepDeviceID uuid.UUID) error {
	if _, err := s.deviceSessionRepository.DeleteAllByUserIDExcept(ctx, userID, keepDeviceID); err != nil {
		return fmt.Errorf("delete other device sessions failed: %w", err)
	}

	return nil
}

func (s *sessionRegistry) DeleteUserSessions(ctx context.Context, userID uuid.UUID) error {
	if _, err := s.deviceSessionRepository.DeleteAllByUserID(ctx, userID); err != nil {
		return fmt.Errorf("delete user device sessions failed: %w", err)
	}

	return nil
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}

	return string([]rune(s)[:n])
}
