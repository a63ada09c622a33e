// Package repotest provides in-memory implementations of the repository
// interfaces with the same conditional-update semantics as the SQL and redis
// stores. It is meant for service and handler tests.
package repotest

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/vibe-gaming/publisher/internal/domain"
	"github.com/vibe-gaming/publisher/internal/repository"

	"github.com/google/uuid"
)

const (
	userLoginKey            = "user_login_uindex"
	userEmailKey            = "user_email_uindex"
	userConfirmationCodeKey = "user_confirmation_code_uindex"
	deviceSessionDeviceKey  = "device_session_device_id_uindex"
)

func NewRepositories() *repository.Repositories {
	return &repository.Repositories{
		Users:          NewUsers(),
		DeviceSessions: NewDeviceSessions(),
		Attempts:       NewAttempts(),
	}
}

type Users struct {
	mu    sync.Mutex
	users map[uuid.UUID]domain.User
}

func NewUsers() *Users {
	return &Users{users: make(map[uuid.UUID]domain.User)}
}

func (r *Users) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[user.ID]; ok {
		return &domain.DuplicateEntryError{Key: "PRIMARY"}
	}
	for _, u := range r.users {
		switch {
		case u.Login == user.Login:
			return &domain.DuplicateEntryError{Key: userLoginKey}
		case u.Email == user.Email:
			return &domain.DuplicateEntryError{Key: userEmailKey}
		case u.ConfirmationCode == user.ConfirmationCode:
			return &domain.DuplicateEntryError{Key: userConfirmationCodeKey}
		}
	}

	stored := *user
	stored.CreatedAt = time.Now()
	stored.UpdatedAt = stored.CreatedAt
	r.users[user.ID] = stored

	return nil
}

func (r *Users) GetOneByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	return r.find(func(u domain.User) bool { return u.ID == id })
}

func (r *Users) GetByLoginOrEmail(_ context.Context, loginOrEmail string) (*domain.User, error) {
	return r.find(func(u domain.User) bool { return u.Login == loginOrEmail || u.Email == loginOrEmail })
}

func (r *Users) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	return r.find(func(u domain.User) bool { return u.Email == email })
}

func (r *Users) GetByConfirmationCode(_ context.Context, code string) (*domain.User, error) {
	return r.find(func(u domain.User) bool { return u.ConfirmationCode == code })
}

func (r *Users) Confirm(_ context.Context, id uuid.UUID, now time.Time) error {
	return r.update(id, func(u *domain.User) bool {
		if u.IsConfirmed || !u.ConfirmationExpiresAt.After(now) {
			return false
		}
		u.IsConfirmed = true
		return true
	})
}

func (r *Users) UpdateConfirmationCode(_ context.Context, id uuid.UUID, code string, expiresAt time.Time) error {
	r.mu.Lock()
	for _, u := range r.users {
		if u.ID != id && u.ConfirmationCode == code {
			r.mu.Unlock()
			return &domain.DuplicateEntryError{Key: userConfirmationCodeKey}
		}
	}
	r.mu.Unlock()

	return r.update(id, func(u *domain.User) bool {
		if u.IsConfirmed {
			return false
		}
		u.ConfirmationCode = code
		u.ConfirmationExpiresAt = expiresAt
		return true
	})
}

func (r *Users) UpdateRecoveryCode(_ context.Context, id uuid.UUID, codeHash string, expiresAt time.Time) error {
	return r.update(id, func(u *domain.User) bool {
		u.RecoveryCodeHash = codeHash
		u.RecoveryExpiresAt = &expiresAt
		return true
	})
}

func (r *Users) ResetPassword(_ context.Context, id uuid.UUID, codeHash string, passwordHash string, now time.Time) error {
	return r.update(id, func(u *domain.User) bool {
		if u.RecoveryCodeHash == "" || u.RecoveryCodeHash != codeHash {
			return false
		}
		if u.RecoveryExpiresAt == nil || !u.RecoveryExpiresAt.After(now) {
			return false
		}
		u.PasswordHash = passwordHash
		u.RecoveryCodeHash = ""
		return true
	})
}

func (r *Users) SoftDelete(_ context.Context, id uuid.UUID, now time.Time) error {
	return r.update(id, func(u *domain.User) bool {
		u.IsDeleted = true
		u.DeletedAt = &now
		return true
	})
}

func (r *Users) DeleteAll(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.users = make(map[uuid.UUID]domain.User)
	return nil
}

// Raw returns the stored row, deleted or not.
func (r *Users) Raw(id uuid.UUID) (domain.User, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	return u, ok
}

func (r *Users) find(match func(domain.User) bool) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if !u.IsDeleted && match(u) {
			found := u
			return &found, nil
		}
	}

	return nil, domain.ErrNotFound
}

// update applies fn to a live user under the lock; fn reports whether the
// conditional update matched.
func (r *Users) update(id uuid.UUID, fn func(u *domain.User) bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok || u.IsDeleted {
		return domain.ErrNoRowsAffected
	}
	if !fn(&u) {
		return domain.ErrNoRowsAffected
	}

	u.UpdatedAt = time.Now()
	r.users[id] = u

	return nil
}

type DeviceSessions struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]domain.DeviceSession
}

func NewDeviceSessions() *DeviceSessions {
	return &DeviceSessions{sessions: make(map[uuid.UUID]domain.DeviceSession)}
}

func (r *DeviceSessions) Create(_ context.Context, session *domain.DeviceSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[session.DeviceID]; ok {
		return &domain.DuplicateEntryError{Key: deviceSessionDeviceKey}
	}

	if utf8.RuneCountInString(session.DeviceName) > domain.MaxDeviceNameLength {
		return errors.New("data too long for column 'device_name'")
	}

	stored := *session
	stored.CreatedAt = time.Now()
	stored.UpdatedAt = stored.CreatedAt
	r.sessions[session.DeviceID] = stored

	return nil
}

func (r *DeviceSessions) Rotate(_ context.Context, deviceID uuid.UUID, prevIssuedAt, issuedAt, expiresAt time.Time, ip string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[deviceID]
	if !ok || !s.IssuedAt.Equal(prevIssuedAt) {
		return domain.ErrNoRowsAffected
	}

	s.IssuedAt = issuedAt
	s.ExpiresAt = expiresAt
	s.IP = ip
	s.UpdatedAt = time.Now()
	r.sessions[deviceID] = s

	return nil
}

func (r *DeviceSessions) Exists(_ context.Context, deviceID uuid.UUID, issuedAt time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[deviceID]
	return ok && s.IssuedAt.Equal(issuedAt), nil
}

func (r *DeviceSessions) GetByDeviceID(_ context.Context, deviceID uuid.UUID) (*domain.DeviceSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[deviceID]
	if !ok {
		return nil, domain.ErrNotFound
	}

	return &s, nil
}

func (r *DeviceSessions) GetAllByUserID(_ context.Context, userID uuid.UUID) ([]domain.DeviceSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sessions := make([]domain.DeviceSession, 0)
	for _, s := range r.sessions {
		if s.UserID == userID {
			sessions = append(sessions, s)
		}
	}
	sort.Slice(sessions, func(i, j int) bool { return sessions[i].IssuedAt.After(sessions[j].IssuedAt) })

	return sessions, nil
}

func (r *DeviceSessions) DeleteByDeviceIDAndIssuedAt(_ context.Context, deviceID uuid.UUID, issuedAt time.Time) error {
	return r.deleteIf(deviceID, func(s domain.DeviceSession) bool { return s.IssuedAt.Equal(issuedAt) })
}

func (r *DeviceSessions) DeleteByDeviceIDAndUserID(_ context.Context, deviceID uuid.UUID, userID uuid.UUID) error {
	return r.deleteIf(deviceID, func(s domain.DeviceSession) bool { return s.UserID == userID })
}

func (r *DeviceSessions) DeleteAllByUserIDExcept(_ context.Context, userID uuid.UUID, keepDeviceID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for deviceID, s := range r.sessions {
		if s.UserID == userID && deviceID != keepDeviceID {
			delete(r.sessions, deviceID)
			n++
		}
	}

	return n, nil
}

func (r *DeviceSessions) DeleteAllByUserID(_ context.Context, userID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for deviceID, s := range r.sessions {
		if s.UserID == userID {
			delete(r.sessions, deviceID)
			n++
		}
	}

	return n, nil
}

func (r *DeviceSessions) DeleteAll(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sessions = make(map[uuid.UUID]domain.DeviceSession)
	return nil
}

// Len returns the number of stored sessions.
func (r *DeviceSessions) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.sessions)
}

func (r *DeviceSessions) deleteIf(deviceID uuid.UUID, match func(domain.DeviceSession) bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[deviceID]
	if !ok || !match(s) {
		return domain.ErrNoRowsAffected
	}
	delete(r.sessions, deviceID)

	return nil
}

type Attempts struct {
	mu       sync.Mutex
	attempts map[string][]time.Time
}

func NewAttempts() *Attempts {
	return &Attempts{attempts: make(map[string][]time.Time)}
}

func (r *Attempts) Create(_ context.Context, attempt domain.Attempt, retention time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := attempt.IP + " " + attempt.URL
	staleBefore := attempt.Timestamp.Add(-retention)

	kept := r.attempts[key][:0]
	for _, ts := range r.attempts[key] {
		if !ts.Before(staleBefore) {
			kept = append(kept, ts)
		}
	}
	r.attempts[key] = append(kept, attempt.Timestamp)

	return nil
}

func (r *Attempts) CountSince(_ context.Context, ip string, url string, since time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for _, ts := range r.attempts[ip+" "+url] {
		if !ts.Before(since) {
			n++
		}
	}

	return n, nil
}

func (r *Attempts) DeleteAll(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.attempts = make(map[string][]time.Time)
	return nil
}

var (
	_ repository.Users          = (*Users)(nil)
	_ repository.DeviceSessions = (*DeviceSessions)(nil)
	_ repository.Attempts       = (*Attempts)(nil)
)
