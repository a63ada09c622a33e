package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vibe-gaming/publisher/internal/domain"
	"github.com/vibe-gaming/publisher/internal/repository"
	"github.com/vibe-gaming/publisher/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type userService struct {
	userRepository repository.Users
	sessions       Sessions
	now            func() time.Time
}

func newUserService(userRepository repository.Users, sessions Sessions, now func() time.Time) *userService {
	return &userService{
		userRepository: userRepository,
		sessions:       sessions,
		now:            now,
	}
}

// Delete soft deletes the user and drops every device session it owns.
func (s *userService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.userRepository.SoftDelete(ctx, id, s.now().UTC()); err != nil {
		if errors.Is(err, domain.ErrNoRowsAffected) {
			return ErrUserNotFound
		}
		return fmt.Errorf("soft delete user failed: %w", err)
	}

	if err := s.sessions.DeleteUserSessions(ctx, id); err != nil {
		return fmt.Errorf("delete user sessions failed: %w", err)
	}

	logger.Info("user deleted", zap.String("user_id", id.String()))

	return nil
}
