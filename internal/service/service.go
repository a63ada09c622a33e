package service

import (
	"context"
	"time"

	"github.com/vibe-gaming/publisher/internal/config"
	"github.com/vibe-gaming/publisher/internal/domain"
	"github.com/vibe-gaming/publisher/internal/repository"
	"github.com/vibe-gaming/publisher/pkg/auth"
	"github.com/vibe-gaming/publisher/pkg/hash"
	"github.com/vibe-gaming/publisher/pkg/otp"

	"github.com/google/uuid"
)

type Services struct {
	Credentials Credentials
	Sessions    Sessions
	Throttle    Throttle
	Codes       Codes
	Auth        Auth
	Users       Users
	Testing     Testing
	Emails      Emails
}

type Deps struct {
	Config       *config.Config
	Hasher       hash.PasswordHasher
	TokenManager auth.TokenManager
	OtpGenerator otp.Generator
	Repos        *repository.Repositories
	TaskEnqueuer TaskEnqueuer

	// Clock defaults to time.Now.
	Clock func() time.Time
}

// NewServices wires the components leaf first; every component gets its
// collaborators through its constructor.
func NewServices(deps Deps) *Services {
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}

	emails := newEmailService(deps.TaskEnqueuer, deps.Config.Email)
	credentials := newCredentialVerifier(deps.Repos.Users, deps.Hasher)
	sessions := newSessionRegistry(deps.Repos.DeviceSessions)
	throttle := newAttemptThrottle(deps.Repos.Attempts, ThrottlePolicy{
		Limit:  deps.Config.Throttle.Limit,
		Window: deps.Config.Throttle.Window,
	}, clock)
	codes := newCodeManager(deps.Repos.Users,
		deps.Hasher,
		deps.TokenManager,
		deps.OtpGenerator,
		emails,
		deps.Config.Auth,
		clock,
	)
	authService := newAuthService(deps.Repos.Users,
		credentials,
		sessions,
		codes,
		deps.Hasher,
		deps.TokenManager,
		emails,
		clock,
	)

	return &Services{
		Credentials: credentials,
		Sessions:    sessions,
		Throttle:    throttle,
		Codes:       codes,
		Auth:        authService,
		Users:       newUserService(deps.Repos.Users, sessions, clock),
		Testing:     newTestingService(deps.Repos, deps.TokenManager, throttle),
		Emails:      emails,
	}
}

type Credentials interface {
	Verify(ctx context.Context, loginOrEmail string, password string) (uuid.UUID, error)
}

type Sessions interface {
	Create(ctx context.Context, input CreateSessionInput) (uuid.UUID, error)
	Rotate(ctx context.Context, input RotateSessionInput) error
	Matches(ctx context.Context, deviceID uuid.UUID, issuedAt time.Time) (bool, error)
	List(ctx context.Context, userID uuid.UUID) ([]domain.DeviceSession, error)
	Terminate(ctx context.Context, deviceID uuid.UUID, issuedAt time.Time) error
	TerminateByID(ctx context.Context, actingUserID uuid.UUID, deviceID uuid.UUID) error
	TerminateOthers(ctx context.Context, userID uuid.UUID, keepDeviceID uuid.UUID) error
	DeleteUserSessions(ctx context.Context, userID uuid.UUID) error
}

type Throttle interface {
	RecordAttempt(ctx context.Context, ip string, url string) error
	CountRecent(ctx context.Context, ip string, url string, window time.Duration) (int64, error)
	Allow(ctx context.Context, ip string, url string) (bool, time.Duration, error)
	Policy() ThrottlePolicy
	SetPolicy(policy ThrottlePolicy)
	Reset(ctx context.Context) error
}

type Codes interface {
	NewConfirmation() (string, time.Time)
	Confirm(ctx context.Context, code string) error
	Resend(ctx context.Context, email string) error
	RequestRecovery(ctx context.Context, email string) error
	ConsumeRecovery(ctx context.Context, code string, newPassword string) error
}

type Auth interface {
	Register(ctx context.Context, input RegisterInput) error
	Login(ctx context.Context, input LoginInput) (*Tokens, error)
	Refresh(ctx context.Context, refreshToken string, ip string) (*Tokens, error)
	Logout(ctx context.Context, refreshToken string) error
	Authenticate(ctx context.Context, accessToken string) (*domain.User, error)
	CurrentSession(ctx context.Context, refreshToken string) (*auth.RefreshSession, error)
}

type Users interface {
	Delete(ctx context.Context, id uuid.UUID) error
}

type Testing interface {
	ClearAll(ctx context.Context) error
	ApplySettings(settings Settings)
}

type Emails interface {
	SendConfirmation(ctx context.Context, email string, code string)
	SendRecovery(ctx context.Context, email string, code string)
}
