package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vibe-gaming/publisher/internal/config"
	"github.com/vibe-gaming/publisher/internal/domain"
	"github.com/vibe-gaming/publisher/internal/repository"
	"github.com/vibe-gaming/publisher/pkg/auth"
	"github.com/vibe-gaming/publisher/pkg/hash"
	"github.com/vibe-gaming/publisher/pkg/logger"
	"github.com/vibe-gaming/publisher/pkg/otp"

	"go.uber.org/zap"
)

type codeManager struct {
	userRepository repository.Users
	hasher         hash.PasswordHasher
	tokenManager   auth.TokenManager
	otpGenerator   otp.Generator
	emails         Emails
	authConfig     config.AuthConfig
	now            func() time.Time
}

func newCodeManager(userRepository repository.Users,
	hasher hash.PasswordHasher,
	tokenManager auth.TokenManager,
	otpGenerator otp.Generator,
	emails Emails,
	authConfig config.AuthConfig,
	now func() time.Time,
) *codeManager {
	return &codeManager{
		userRepository: userRepository,
		hasher:         hasher,
		tokenManager:   tokenManager,
		otpGenerator:   otpGenerator,
		emails:         emails,
		authConfig:     authConfig,
		now:            now,
	}
}

// NewConfirmation returns a fresh opaque confirmation code and its deadline.
func (s *codeManager) NewConfirmation() (string, time.Time) {
	code := s.otpGenerator.RandomSecret(s.authConfig.ConfirmationCodeLength)
	expiresAt := s.now().Add(s.authConfig.ConfirmationCodeTTL).UTC().Truncate(time.Millisecond)

	return code, expiresAt
}

func (s *codeManager) Confirm(ctx context.Context, code string) error {
	user, err := s.userRepository.GetByConfirmationCode(ctx, code)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return ErrCodeNotFound
		}
		return fmt.Errorf("get user by confirmation code failed: %w", err)
	}

	now := s.now()
	if err := confirmationState(user, now); err != nil {
		return err
	}

	if err := s.userRepository.Confirm(ctx, user.ID, now); err != nil {
		if !errors.Is(err, domain.ErrNoRowsAffected) {
			return fmt.Errorf("confirm user failed: %w", err)
		}

		// The row changed between read and update; report what it is now.
		user, err = s.userRepository.GetByConfirmationCode(ctx, code)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return ErrCodeNotFound
			}
			return fmt.Errorf("get user by confirmation code failed: %w", err)
		}
		if err := confirmationState(user, now); err != nil {
			return err
		}
		return ErrCodeNotFound
	}

	return nil
}

func confirmationState(user *domain.User, now time.Time) error {
	if user.IsConfirmed {
		return ErrAlreadyConfirmed
	}
	if !user.ConfirmationExpiresAt.After(now) {
		return ErrCodeExpired
	}

	return nil
}

func (s *codeManager) Resend(ctx context.Context, email string) error {
	user, err := s.userRepository.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("get user by email failed: %w", err)
	}

	if user.IsConfirmed {
		return ErrAlreadyConfirmed
	}

	code, expiresAt := s.NewConfirmation()
	if err := s.userRepository.UpdateConfirmationCode(ctx, user.ID, code, expiresAt); err != nil {
		if errors.Is(err, domain.ErrNoRowsAffected) {
			return s.resendConflict(ctx, email)
		}
		return fmt.Errorf("update confirmation code failed: %w", err)
	}

	s.emails.SendConfirmation(ctx, user.Email, code)

	return nil
}

func (s *codeManager) resendConflict(ctx context.Context, email string) error {
	user, err := s.userRepository.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("get user by email failed: %w", err)
	}

	if user.IsConfirmed {
		return ErrAlreadyConfirmed
	}

	return ErrUserNotFound
}

// RequestRecovery reports success for unknown emails as well.
func (s *codeManager) RequestRecovery(ctx context.Context, email string) error {
	user, err := s.userRepository.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			logger.Debug("password recovery requested for unknown email")
			return nil
		}
		return fmt.Errorf("get user by email failed: %w", err)
	}

	code, expiresAt, err := s.tokenManager.NewRecoveryToken(user.ID)
	if err != nil {
		return fmt.Errorf("generate recovery code failed: %w", err)
	}

	if err := s.userRepository.UpdateRecoveryCode(ctx, user.ID, hash.CodeHash(code), expiresAt.UTC()); err != nil {
		if errors.Is(err, domain.ErrNoRowsAffected) {
			return nil
		}
		return fmt.Errorf("update recovery code failed: %w", err)
	}

	s.emails.SendRecovery(ctx, user.Email, code)

	return nil
}

// ConsumeRecovery sets newPassword if code is the user's current, unexpired
// recovery code and spends it. Every rejection is ErrInvalidRecoveryCode and
// leaves the user untouched.
func (s *codeManager) ConsumeRecovery(ctx context.Context, code string, newPassword string) error {
	userID, err := s.tokenManager.ParseRecoveryToken(code)
	if err != nil {
		return ErrInvalidRecoveryCode
	}

	user, err := s.userRepository.GetOneByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return ErrInvalidRecoveryCode
		}
		return fmt.Errorf("get user by id failed: %w", err)
	}

	now := s.now()
	codeHash := hash.CodeHash(code)

	if user.RecoveryCodeHash == "" || !hash.EqualCodeHash(user.RecoveryCodeHash, codeHash) {
		return ErrInvalidRecoveryCode
	}
	if user.RecoveryExpiresAt == nil || !user.RecoveryExpiresAt.After(now) {
		return ErrInvalidRecoveryCode
	}

	passwordHash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("hash password failed: %w", err)
	}

	if err := s.userRepository.ResetPassword(ctx, user.ID, codeHash, passwordHash, now); err != nil {
		if errors.Is(err, domain.ErrNoRowsAffected) {
			return ErrInvalidRecoveryCode
		}
		return fmt.Errorf("reset password failed: %w", err)
	}

	logger.Info("password recovered", zap.String("user_id", user.ID.String()))

	return nil
}
