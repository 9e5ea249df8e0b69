package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/prepstack/prepstack-backend/internal/config"
	"github.com/prepstack/prepstack-backend/internal/engine"
	"github.com/prepstack/prepstack-backend/internal/model"
	"github.com/prepstack/prepstack-backend/internal/repository"
	"github.com/prepstack/prepstack-backend/internal/response"
)

// Domain errors surfaced by test operations.
var (
	ErrTestNotFound   = errors.New("test not found")
	ErrTestNotActive  = errors.New("test is not active")
	ErrAccessRequired = errors.New("access to this test has not been granted")
)

const testPayloadCacheTTL = 10 * time.Minute

// TestService manages test definitions and paper issuance.
type TestService struct {
	cfg    *config.Config
	tests  *repository.TestRepository
	access *repository.AccessRepository
	rdb    *redis.Client
}

// NewTestService creates a new TestService.
func NewTestService(cfg *config.Config, tests *repository.TestRepository, access *repository.AccessRepository, rdb *redis.Client) *TestService {
	return &TestService{cfg: cfg, tests: tests, access: access, rdb: rdb}
}

// Create validates and persists a new test definition.
func (s *TestService) Create(ctx context.Context, createdBy int, req *model.CreateTestRequest) (*model.Test, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	test := req.ToTest(createdBy)
	if err := s.tests.Create(ctx, test); err != nil {
		return nil, fmt.Errorf("create test: %w", err)
	}
	return test, nil
}

// Update applies partial changes to an existing test and invalidates
// its cached payload.
func (s *TestService) Update(ctx context.Context, id uuid.UUID, req *model.UpdateTestRequest) (*model.Test, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	test, err := s.tests.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTestNotFound
		}
		return nil, fmt.Errorf("get test: %w", err)
	}

	req.Apply(test)
	if err := s.tests.Update(ctx, test); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTestNotFound
		}
		return nil, fmt.Errorf("update test: %w", err)
	}

	s.invalidatePayloadCache(ctx, id)
	return test, nil
}

// Deactivate marks a test inactive. Tests are never hard-deleted so
// historical attempts keep a valid reference.
func (s *TestService) Deactivate(ctx context.Context, id uuid.UUID) error {
	if err := s.tests.Deactivate(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrTestNotFound
		}
		return fmt.Errorf("deactivate test: %w", err)
	}
	s.invalidatePayloadCache(ctx, id)
	return nil
}

// Get retrieves a test definition including correct answers. Admin use only.
func (s *TestService) Get(ctx context.Context, id uuid.UUID) (*model.Test, error) {
	test, err := s.getCached(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTestNotFound
		}
		return nil, err
	}
	return test, nil
}

// List retrieves tests with pagination. Students see active tests only.
func (s *TestService) List(ctx context.Context, activeOnly bool, page, perPage int) ([]model.Test, *response.Pagination, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 10
	}
	if perPage > 100 {
		perPage = 100
	}

	limit := perPage
	offset := (page - 1) * perPage

	tests, total, err := s.tests.List(ctx, activeOnly, limit, offset)
	if err != nil {
		return nil, nil, fmt.Errorf("list tests: %w", err)
	}

	totalPages := (total + perPage - 1) / perPage
	pagination := &response.Pagination{
		Page:       page,
		PerPage:    perPage,
		TotalItems: total,
		TotalPages: totalPages,
	}
	return tests, pagination, nil
}

// IssuePaper produces a freshly randomized, answer-stripped paper for
// the user. Each call re-shuffles; papers are never cached.
func (s *TestService) IssuePaper(ctx context.Context, testID uuid.UUID, userID int, role model.Role) (*model.IssuedTest, error) {
	test, err := s.getCached(ctx, testID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTestNotFound
		}
		return nil, err
	}

	if !test.IsActive {
		return nil, ErrTestNotActive
	}

	if err := s.CheckAccess(ctx, test, userID, role); err != nil {
		return nil, err
	}

	return engine.IssueTest(test), nil
}

// CheckAccess verifies the user may take the test. Free tests are open
// to everyone; paid tests require a grant. Admins always have access.
func (s *TestService) CheckAccess(ctx context.Context, test *model.Test, userID int, role model.Role) error {
	if test.Price <= 0 || role == model.RoleAdmin {
		return nil
	}

	has, err := s.access.Has(ctx, test.ID, userID)
	if err != nil {
		return fmt.Errorf("check access: %w", err)
	}
	if !has {
		return ErrAccessRequired
	}
	return nil
}

// getCached retrieves a test, preferring the Redis payload cache.
// Cache failures fall through to the database.
func (s *TestService) getCached(ctx context.Context, id uuid.UUID) (*model.Test, error) {
	key := config.CacheKey.TestPayloadKey(id.String())

	cached, err := s.rdb.Get(ctx, key).Result()
	if err == nil {
		var test model.Test
		if jsonErr := json.Unmarshal([]byte(cached), &test); jsonErr == nil {
			return &test, nil
		}
		// Corrupt entry: drop it and reload.
		s.rdb.Del(ctx, key)
	} else if !errors.Is(err, redis.Nil) {
		log.Warn().Err(err).Str("test_id", id.String()).Msg("test payload cache read failed")
	}

	test, err := s.tests.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if payload, jsonErr := json.Marshal(test); jsonErr == nil {
		if setErr := s.rdb.Set(ctx, key, payload, testPayloadCacheTTL).Err(); setErr != nil {
			log.Warn().Err(setErr).Str("test_id", id.String()).Msg("test payload cache write failed")
		}
	}
	return test, nil
}

func (s *TestService) invalidatePayloadCache(ctx context.Context, id uuid.UUID) {
	key := config.CacheKey.TestPayloadKey(id.String())
	if err := s.rdb.Del(ctx, key).Err(); err != nil {
		log.Warn().Err(err).Str("test_id", id.String()).Msg("test payload cache invalidation failed")
	}
}
