package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/vibe-gaming/publisher/internal/domain"
	"github.com/vibe-gaming/publisher/internal/repository"
	"github.com/vibe-gaming/publisher/pkg/hash"

	"github.com/google/uuid"
)

type credentialVerifier struct {
	userRepository repository.Users
	hasher         hash.PasswordHasher
}

func newCredentialVerifier(userRepository repository.Users, hasher hash.PasswordHasher) *credentialVerifier {
	return &credentialVerifier{
		userRepository: userRepository,
		hasher:         hasher,
	}
}

// Verify matches loginOrEmail exactly against login or email of a live user.
func (s *credentialVerifier) Verify(ctx context.Context, loginOrEmail string, password string) (uuid.UUID, error) {
	user, err := s.userRepository.GetByLoginOrEmail(ctx, loginOrEmail)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return uuid.Nil, ErrInvalidCredentials
		}
		return uuid.Nil, fmt.Errorf("get user by login or email failed: %w", err)
	}

	if !s.hasher.Compare(password, user.PasswordHash) {
		return uuid.Nil, ErrInvalidCredentials
	}

	return user.ID, nil
}
