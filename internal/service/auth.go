package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vibe-gaming/publisher/internal/domain"
	"github.com/vibe-gaming/publisher/internal/repository"
	"github.com/vibe-gaming/publisher/pkg/auth"
	"github.com/vibe-gaming/publisher/pkg/hash"
	"github.com/vibe-gaming/publisher/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	userLoginKey = "user_login_uindex"
	userEmailKey = "user_email_uindex"
)

type Tokens struct {
	AccessToken      string
	AccessTTL        time.Duration
	RefreshToken     string
	RefreshExpiresAt time.Time
}

type RegisterInput struct {
	Login    string
	Email    string
	Password string
}

type LoginInput struct {
	LoginOrEmail string
	Password     string
	UserAgent    string
	IP           string
}

type authService struct {
	userRepository repository.Users
	credentials    Credentials
	sessions       Sessions
	codes          Codes
	hasher         hash.PasswordHasher
	tokenManager   auth.TokenManager
	emails         Emails
	now            func() time.Time
}

func newAuthService(userRepository repository.Users,
	credentials Credentials,
	sessions Sessions,
	codes Codes,
	hasher hash.PasswordHasher,
	tokenManager auth.TokenManager,
	emails Emails,
	now func() time.Time,
) *authService {
	return &authService{
		userRepository: userRepository,
		credentials:    credentials,
		sessions:       sessions,
		codes:          codes,
		hasher:         hasher,
		tokenManager:   tokenManager,
		emails:         emails,
		now:            now,
	}
}

func (s *authService) Register(ctx context.Context, input RegisterInput) error {
	passwordHash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return fmt.Errorf("hash password failed: %w", err)
	}

	userID, err := uuid.NewV7()
	if err != nil {
		return fmt.Errorf("generate user id failed: %w", err)
	}

	code, expiresAt := s.codes.NewConfirmation()
	user := &domain.User{
		ID:           userID,
		Login:        input.Login,
		Email:        input.Email,
		PasswordHash: passwordHash,
		ConfirmationInfo: domain.ConfirmationInfo{
			ConfirmationCode:      code,
			ConfirmationExpiresAt: expiresAt,
			IsConfirmed:           false,
		},
	}

	if err := s.userRepository.Create(ctx, user); err != nil {
		var dupErr *domain.DuplicateEntryError
		if errors.As(err, &dupErr) {
			switch dupErr.Key {
			case userLoginKey:
				return ErrLoginTaken
			case userEmailKey:
				return ErrEmailTaken
			}
		}
		return fmt.Errorf("create user failed: %w", err)
	}

	s.emails.SendConfirmation(ctx, user.Email, code)

	return nil
}

func (s *authService) Login(ctx context.Context, input LoginInput) (*Tokens, error) {
	userID, err := s.credentials.Verify(ctx, input.LoginOrEmail, input.Password)
	if err != nil {
		return nil, err
	}

	deviceID := uuid.New()
	issuedAt := s.now().UTC().Truncate(time.Millisecond)

	tokens, session, err := s.issueTokens(userID, deviceID, issuedAt)
	if err != nil {
		return nil, err
	}

	_, err = s.sessions.Create(ctx, CreateSessionInput{
		UserID:     userID,
		DeviceID:   deviceID,
		IssuedAt:   session.IssuedAt,
		ExpiresAt:  session.ExpiresAt,
		DeviceName: input.UserAgent,
		IP:         input.IP,
	})
	if err != nil {
		return nil, fmt.Errorf("create session failed: %w", err)
	}

	logger.Info("user logged in", zap.String("user_id", userID.String()), zap.String("device_id", deviceID.String()))

	return tokens, nil
}

// Refresh exchanges the current refresh token of a device for a new pair.
// The presented token is stale as soon as the rotation is stored.
func (s *authService) Refresh(ctx context.Context, refreshToken string, ip string) (*Tokens, error) {
	current, err := s.CurrentSession(ctx, refreshToken)
	if err != nil {
		return nil, err
	}

	issuedAt := nextIssuedAt(s.now(), current.IssuedAt)

	tokens, session, err := s.issueTokens(current.UserID, current.DeviceID, issuedAt)
	if err != nil {
		return nil, err
	}

	err = s.sessions.Rotate(ctx, RotateSessionInput{
		DeviceID:     current.DeviceID,
		PrevIssuedAt: current.IssuedAt,
		IssuedAt:     session.IssuedAt,
		ExpiresAt:    session.ExpiresAt,
		IP:           ip,
	})
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("rotate session failed: %w", err)
	}

	return tokens, nil
}

func (s *authService) Logout(ctx context.Context, refreshToken string) error {
	current, err := s.verifyRefreshToken(ctx, refreshToken)
	if err != nil {
		return err
	}

	if err := s.sessions.Terminate(ctx, current.DeviceID, current.IssuedAt); err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return ErrUnauthorized
		}
		return fmt.Errorf("terminate session failed: %w", err)
	}

	return nil
}

// Authenticate resolves a bearer access token to a live user.
func (s *authService) Authenticate(ctx context.Context, accessToken string) (*domain.User, error) {
	userID, err := s.tokenManager.ParseAccessToken(accessToken)
	if err != nil {
		return nil, ErrUnauthorized
	}

	user, err := s.userRepository.GetOneByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("get user by id failed: %w", err)
	}

	return user, nil
}

// CurrentSession returns the claims of refreshToken if it is the current
// generation of its device and its user still exists.
func (s *authService) CurrentSession(ctx context.Context, refreshToken string) (*auth.RefreshSession, error) {
	current, err := s.verifyRefreshToken(ctx, refreshToken)
	if err != nil {
		return nil, err
	}

	if _, err := s.userRepository.GetOneByID(ctx, current.UserID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("get user by id failed: %w", err)
	}

	return current, nil
}

func (s *authService) verifyRefreshToken(ctx context.Context, refreshToken string) (*auth.RefreshSession, error) {
	if refreshToken == "" {
		return nil, ErrUnauthorized
	}

	current, err := s.tokenManager.ParseRefreshToken(refreshToken)
	if err != nil {
		return nil, ErrUnauthorized
	}

	ok, err := s.sessions.Matches(ctx, current.DeviceID, current.IssuedAt)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrUnauthorized
	}

	return current, nil
}

func (s *authService) issueTokens(userID, deviceID uuid.UUID, issuedAt time.Time) (*Tokens, *auth.RefreshSession, error) {
	var (
		res Tokens
		err error
	)

	res.AccessToken, res.AccessTTL, err = s.tokenManager.NewAccessToken(userID)
	if err != nil {
		return nil, nil, fmt.Errorf("generate access token failed: %w", err)
	}

	// exp is carried with second precision, the stored row must agree with it.
	session := auth.RefreshSession{
		UserID:    userID,
		DeviceID:  deviceID,
		IssuedAt:  issuedAt,
		ExpiresAt: issuedAt.Add(s.tokenManager.RefreshTokenTTL()).Truncate(time.Second),
	}

	res.RefreshToken, err = s.tokenManager.NewRefreshToken(session)
	if err != nil {
		return nil, nil, fmt.Errorf("generate refresh token failed: %w", err)
	}
	res.RefreshExpiresAt = session.ExpiresAt

	return &res, &session, nil
}

// nextIssuedAt is now at millisecond precision, moved past prev if the clock
// has not advanced.
func nextIssuedAt(now time.Time, prev time.Time) time.Time {
	next := now.UTC().Truncate(time.Millisecond)
	if !next.After(prev) {
		next = prev.Add(time.Millisecond).UTC()
	}

	return next
}
