package service

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/vibe-gaming/publisher/internal/domain"
	"github.com/vibe-gaming/publisher/internal/repository"
)

// ThrottlePolicy allows Limit attempts per (ip, url) in any trailing Window.
type ThrottlePolicy struct {
	Limit  int
	Window time.Duration
}

type attemptThrottle struct {
	attemptRepository repository.Attempts
	policy            atomic.Pointer[ThrottlePolicy]
	now               func() time.Time
}

func newAttemptThrottle(attemptRepository repository.Attempts, policy ThrottlePolicy, now func() time.Time) *attemptThrottle {
	t := &attemptThrottle{
		attemptRepository: attemptRepository,
		now:               now,
	}
	t.policy.Store(&policy)

	return t
}

func (t *attemptThrottle) RecordAttempt(ctx context.Context, ip string, url string) error {
	attempt := domain.Attempt{
		IP:        ip,
		URL:       url,
		Timestamp: t.now(),
	}

	if err := t.attemptRepository.Create(ctx, attempt, t.Policy().Window); err != nil {
		return fmt.Errorf("record attempt failed: %w", err)
	}

	return nil
}

func (t *attemptThrottle) CountRecent(ctx context.Context, ip string, url string, window time.Duration) (int64, error) {
	n, err := t.attemptRepository.CountSince(ctx, ip, url, t.now().Add(-window))
	if err != nil {
		return 0, fmt.Errorf("count attempts failed: %w", err)
	}

	return n, nil
}

// Allow records the attempt and then counts it, so the request crossing the
// limit is rejected itself. The returned duration is a retry hint.
func (t *attemptThrottle) Allow(ctx context.Context, ip string, url string) (bool, time.Duration, error) {
	policy := t.Policy()

	if err := t.RecordAttempt(ctx, ip, url); err != nil {
		return false, 0, err
	}

	n, err := t.CountRecent(ctx, ip, url, policy.Window)
	if err != nil {
		return false, 0, err
	}

	if n > int64(policy.Limit) {
		return false, policy.Window, nil
	}

	return true, 0, nil
}

func (t *attemptThrottle) Policy() ThrottlePolicy {
	return *t.policy.Load()
}

// SetPolicy replaces the policy. Zero fields keep the current value.
func (t *attemptThrottle) SetPolicy(policy ThrottlePolicy) {
	current := t.Policy()
	if policy.Limit > 0 {
		current.Limit = policy.Limit
	}
	if policy.Window > 0 {
		current.Window = policy.Window
	}

	t.policy.Store(&current)
}

func (t *attemptThrottle) Reset(ctx context.Context) error {
	if err := t.attemptRepository.DeleteAll(ctx); err != nil {
		return fmt.Errorf("reset attempts failed: %w", err)
	}

	return nil
}
