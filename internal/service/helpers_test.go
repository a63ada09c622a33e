package service

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/vibe-gaming/publisher/internal/config"
	"github.com/vibe-gaming/publisher/internal/queue/task"
	"github.com/vibe-gaming/publisher/internal/repository"
	"github.com/vibe-gaming/publisher/internal/repository/repotest"
	"github.com/vibe-gaming/publisher/pkg/auth"
	"github.com/vibe-gaming/publisher/pkg/hash"
	"github.com/vibe-gaming/publisher/pkg/otp"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockEnqueuer struct {
	mock.Mock
}

func (m *mockEnqueuer) EnqueueContext(ctx context.Context, t *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	args := m.Called(ctx, t)

	info, _ := args.Get(0).(*asynq.TaskInfo)
	return info, args.Error(1)
}

// emails returns the payloads of all enqueued email tasks of the given kind.
func (m *mockEnqueuer) emails(t *testing.T, kind task.EmailKind) []task.SendEmail {
	t.Helper()

	var out []task.SendEmail
	for _, call := range m.Calls {
		if call.Method != "EnqueueContext" {
			continue
		}
		var data task.SendEmail
		require.NoError(t, json.Unmarshal(call.Arguments.Get(1).(*asynq.Task).Payload(), &data))
		if data.Kind == kind {
			out = append(out, data)
		}
	}

	return out
}

func (m *mockEnqueuer) lastEmail(t *testing.T, kind task.EmailKind) task.SendEmail {
	t.Helper()

	emails := m.emails(t, kind)
	require.NotEmpty(t, emails, "no %s email enqueued", kind)

	return emails[len(emails)-1]
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now = c.now.Add(d)
}

type testEnv struct {
	services *Services
	repos    *repository.Repositories
	users    *repotest.Users
	sessions *repotest.DeviceSessions
	tokens   *auth.Manager
	enqueuer *mockEnqueuer
	clock    *testClock
}

func testConfig() *config.Config {
	return &config.Config{
		Throttle: config.Throttle{Limit: 5, Window: 10 * time.Second},
		Auth: config.AuthConfig{
			JWT: config.JWTConfig{
				AccessTokenTTL:    10 * time.Minute,
				RefreshTokenTTL:   time.Hour,
				AccessSigningKey:  "access-key",
				RefreshSigningKey: "refresh-key",
			},
			Recovery: config.RecoveryConfig{
				CodeTTL:    time.Hour,
				SigningKey: "recovery-key",
			},
			ConfirmationCodeTTL:    time.Hour,
			ConfirmationCodeLength: 32,
		},
		Email: config.EmailConfig{Enabled: true},
	}
}

func newTestEnv(t *testing.T) *testEnv {
	return newTestEnvWithConfig(t, testConfig())
}

func newTestEnvWithConfig(t *testing.T, cfg *config.Config) *testEnv {
	t.Helper()

	tokens, err := auth.NewManager(cfg.Auth.JWT, cfg.Auth.Recovery)
	require.NoError(t, err)

	enqueuer := &mockEnqueuer{}
	enqueuer.On("EnqueueContext", mock.Anything, mock.Anything).Return(&asynq.TaskInfo{ID: "task"}, nil).Maybe()

	users := repotest.NewUsers()
	sessions := repotest.NewDeviceSessions()
	repos := &repository.Repositories{
		Users:          users,
		DeviceSessions: sessions,
		Attempts:       repotest.NewAttempts(),
	}

	clock := &testClock{now: time.Now().UTC()}

	services := NewServices(Deps{
		Config:       cfg,
		Hasher:       hash.NewBcryptHasher(4),
		TokenManager: tokens,
		OtpGenerator: otp.NewGOTPGenerator(),
		Repos:        repos,
		TaskEnqueuer: enqueuer,
		Clock:        clock.Now,
	})

	return &testEnv{
		services: services,
		repos:    repos,
		users:    users,
		sessions: sessions,
		tokens:   tokens,
		enqueuer: enqueuer,
		clock:    clock,
	}
}

func (e *testEnv) register(t *testing.T, login, email, password string) {
	t.Helper()

	require.NoError(t, e.services.Auth.Register(context.Background(), RegisterInput{
		Login:    login,
		Email:    email,
		Password: password,
	}))
}

func (e *testEnv) login(t *testing.T, loginOrEmail, password string) *Tokens {
	t.Helper()

	tokens, err := e.services.Auth.Login(context.Background(), LoginInput{
		LoginOrEmail: loginOrEmail,
		Password:     password,
		UserAgent:    "test-agent",
		IP:           "127.0.0.1",
	})
	require.NoError(t, err)

	return tokens
}

func (e *testEnv) refreshClaims(t *testing.T, refreshToken string) *auth.RefreshSession {
	t.Helper()

	claims, err := e.tokens.DecodeRefreshToken(refreshToken)
	require.NoError(t, err)

	return claims
}
