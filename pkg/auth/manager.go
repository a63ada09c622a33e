package auth

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/vibe-gaming/publisher/internal/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken       = errors.New("invalid token")
	ErrAccessTokenExpired = errors.New("token has invalid claims: token is expired")
)

// RefreshSession is the claim set carried by a refresh token. IssuedAt has
// millisecond precision and identifies the token generation of a device.
type RefreshSession struct {
	UserID    uuid.UUID
	DeviceID  uuid.UUID
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenManager provides logic for access, refresh and recovery tokens generation and parsing.
type TokenManager interface {
	NewAccessToken(userID uuid.UUID) (string, time.Duration, error)
	ParseAccessToken(accessToken string) (uuid.UUID, error)
	NewRefreshToken(session RefreshSession) (string, error)
	ParseRefreshToken(refreshToken string) (*RefreshSession, error)
	DecodeRefreshToken(refreshToken string) (*RefreshSession, error)
	NewRecoveryToken(userID uuid.UUID) (string, time.Time, error)
	ParseRecoveryToken(recoveryToken string) (uuid.UUID, error)
	AccessTokenTTL() time.Duration
	RefreshTokenTTL() time.Duration
	SetTTL(accessTTL, refreshTTL time.Duration)
}

type refreshClaims struct {
	UserID        string `json:"user_id"`
	DeviceID      string `json:"device_id"`
	IssuedAtMilli int64  `json:"issued_at_ms"`
	jwt.RegisteredClaims
}

type Manager struct {
	accessSigningKey   []byte
	refreshSigningKey  []byte
	recoverySigningKey []byte
	accessTokenTTL     atomic.Int64
	refreshTokenTTL    atomic.Int64
	recoveryTokenTTL   time.Duration
	now                func() time.Time
}

func NewManager(cfg config.JWTConfig, recovery config.RecoveryConfig) (*Manager, error) {
	if cfg.AccessSigningKey == "" || cfg.RefreshSigningKey == "" {
		return nil, errors.New("empty signing key")
	}

	if recovery.SigningKey == "" {
		return nil, errors.New("empty recovery signing key")
	}

	if cfg.AccessTokenTTL == 0 {
		return nil, errors.New("empty access token ttl")
	}

	if cfg.RefreshTokenTTL == 0 {
		return nil, errors.New("empty refresh token ttl")
	}

	if recovery.CodeTTL == 0 {
		return nil, errors.New("empty recovery token ttl")
	}

	m := &Manager{
		accessSigningKey:   []byte(cfg.AccessSigningKey),
		refreshSigningKey:  []byte(cfg.RefreshSigningKey),
		recoverySigningKey: []byte(recovery.SigningKey),
		recoveryTokenTTL:   recovery.CodeTTL,
		now:                time.Now,
	}
	m.SetTTL(cfg.AccessTokenTTL, cfg.RefreshTokenTTL)

	return m, nil
}

func (m *Manager) AccessTokenTTL() time.Duration {
	return time.Duration(m.accessTokenTTL.Load())
}

func (m *Manager) RefreshTokenTTL() time.Duration {
	return time.Duration(m.refreshTokenTTL.Load())
}

// SetTTL replaces token lifetimes for tokens issued from now on. Zero values keep the current lifetime.
func (m *Manager) SetTTL(accessTTL, refreshTTL time.Duration) {
	if accessTTL > 0 {
		m.accessTokenTTL.Store(int64(accessTTL))
	}
	if refreshTTL > 0 {
		m.refreshTokenTTL.Store(int64(refreshTTL))
	}
}

func (m *Manager) NewAccessToken(userID uuid.UUID) (string, time.Duration, error) {
	ttl := m.AccessTokenTTL()
	now := m.now()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		IssuedAt:  jwt.NewNumericDate(now),
		Subject:   userID.String(),
	})

	accessToken, err := token.SignedString(m.accessSigningKey)
	if err != nil {
		return "", 0, fmt.Errorf("sign access token failed: %w", err)
	}

	return accessToken, ttl, nil
}

// ParseAccessToken checks signature and expiry only.
func (m *Manager) ParseAccessToken(accessToken string) (uuid.UUID, error) {
	var claims jwt.RegisteredClaims
	if _, err := m.parser().ParseWithClaims(accessToken, &claims, keyFunc(m.accessSigningKey)); err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return uuid.Nil, fmt.Errorf("%w: %w", ErrAccessTokenExpired, err)
		}
		return uuid.Nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: bad subject: %w", ErrInvalidToken, err)
	}

	return userID, nil
}

func (m *Manager) NewRefreshToken(session RefreshSession) (string, error) {
	claims := refreshClaims{
		UserID:        session.UserID.String(),
		DeviceID:      session.DeviceID.String(),
		IssuedAtMilli: session.IssuedAt.UnixMilli(),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   session.UserID.String(),
			IssuedAt:  jwt.NewNumericDate(session.IssuedAt),
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
		},
	}

	refreshToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.refreshSigningKey)
	if err != nil {
		return "", fmt.Errorf("sign refresh token failed: %w", err)
	}

	return refreshToken, nil
}

// ParseRefreshToken checks signature and expiry. It does not tell whether the
// token is still the current generation for its device.
func (m *Manager) ParseRefreshToken(refreshToken string) (*RefreshSession, error) {
	var claims refreshClaims
	if _, err := m.parser().ParseWithClaims(refreshToken, &claims, keyFunc(m.refreshSigningKey)); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	return claims.session()
}

// DecodeRefreshToken extracts claims without verifying signature or expiry.
func (m *Manager) DecodeRefreshToken(refreshToken string) (*RefreshSession, error) {
	var claims refreshClaims
	if _, _, err := jwt.NewParser().ParseUnverified(refreshToken, &claims); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	return claims.session()
}

func (m *Manager) NewRecoveryToken(userID uuid.UUID) (string, time.Time, error) {
	now := m.now()
	expiresAt := now.Add(m.recoveryTokenTTL)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   userID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	})

	recoveryToken, err := token.SignedString(m.recoverySigningKey)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign recovery token failed: %w", err)
	}

	return recoveryToken, expiresAt, nil
}

func (m *Manager) ParseRecoveryToken(recoveryToken string) (uuid.UUID, error) {
	var claims jwt.RegisteredClaims
	if _, err := m.parser().ParseWithClaims(recoveryToken, &claims, keyFunc(m.recoverySigningKey)); err != nil {
		return uuid.Nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: bad subject: %w", ErrInvalidToken, err)
	}

	return userID, nil
}

func (m *Manager) parser() *jwt.Parser {
	return jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
}

func keyFunc(key []byte) jwt.Keyfunc {
	return func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}

		return key, nil
	}
}

func (c *refreshClaims) session() (*RefreshSession, error) {
	userID, err := uuid.Parse(c.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: bad user_id: %w", ErrInvalidToken, err)
	}

	deviceID, err := uuid.Parse(c.DeviceID)
	if err != nil {
		return nil, fmt.Errorf("%w: bad device_id: %w", ErrInvalidToken, err)
	}

	if c.IssuedAtMilli == 0 || c.ExpiresAt == nil {
		return nil, fmt.Errorf("%w: missing issued_at_ms or exp", ErrInvalidToken)
	}

	return &RefreshSession{
		UserID:    userID,
		DeviceID:  deviceID,
		IssuedAt:  time.UnixMilli(c.IssuedAtMilli).UTC(),
		ExpiresAt: c.ExpiresAt.Time.UTC(),
	}, nil
}
