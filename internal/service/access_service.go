package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/prepstack/prepstack-backend/internal/repository"
)

// ErrUserNotFound is returned when a grant targets a missing user.
var ErrUserNotFound = errors.New("user not found")

// AccessService manages access grants on paid tests.
type AccessService struct {
	access *repository.AccessRepository
	tests  *repository.TestRepository
	users  *repository.UserRepository
}

// NewAccessService creates a new AccessService.
func NewAccessService(access *repository.AccessRepository, tests *repository.TestRepository, users *repository.UserRepository) *AccessService {
	return &AccessService{access: access, tests: tests, users: users}
}

// Grant gives a user access to a test. Both the test and the user
// must exist.
func (s *AccessService) Grant(ctx context.Context, testID uuid.UUID, userID int, source string) error {
	if _, err := s.tests.GetByID(ctx, testID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrTestNotFound
		}
		return fmt.Errorf("get test: %w", err)
	}
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrUserNotFound
		}
		return fmt.Errorf("get user: %w", err)
	}

	if source == "" {
		source = "admin"
	}
	return s.access.Grant(ctx, testID, userID, source)
}

// Revoke removes a user's grant on a test.
func (s *AccessService) Revoke(ctx context.Context, testID uuid.UUID, userID int) error {
	return s.access.Revoke(ctx, testID, userID)
}

// ListByTest returns all grants on a test.
func (s *AccessService) ListByTest(ctx context.Context, testID uuid.UUID) ([]repository.AccessGrant, error) {
	return s.access.ListByTest(ctx, testID)
}
