package service

import (
	"context"
	"fmt"
	"time"

	"github.com/vibe-gaming/publisher/internal/repository"
	"github.com/vibe-gaming/publisher/pkg/auth"
)

// Settings overrides live token lifetimes and the throttle policy. Zero
// fields are left unchanged.
type Settings struct {
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	AttemptLimit    int
	AttemptWindow   time.Duration
}

type testingService struct {
	repos        *repository.Repositories
	tokenManager auth.TokenManager
	throttle     Throttle
}

func newTestingService(repos *repository.Repositories, tokenManager auth.TokenManager, throttle Throttle) *testingService {
	return &testingService{
		repos:        repos,
		tokenManager: tokenManager,
		throttle:     throttle,
	}
}

func (s *testingService) ClearAll(ctx context.Context) error {
	if err := s.repos.DeviceSessions.DeleteAll(ctx); err != nil {
		return fmt.Errorf("delete device sessions failed: %w", err)
	}

	if err := s.repos.Users.DeleteAll(ctx); err != nil {
		return fmt.Errorf("delete users failed: %w", err)
	}

	return s.throttle.Reset(ctx)
}

func (s *testingService) ApplySettings(settings Settings) {
	s.tokenManager.SetTTL(settings.AccessTokenTTL, settings.RefreshTokenTTL)
	s.throttle.SetPolicy(ThrottlePolicy{
		Limit:  settings.AttemptLimit,
		Window: settings.AttemptWindow,
	})
}
