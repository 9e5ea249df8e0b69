package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AccessGrant records that a user may take a paid test.
type AccessGrant struct {
	TestID    uuid.UUID `json:"test_id"`
	UserID    int       `json:"user_id"`
	Source    string    `json:"source"`
	GrantedAt time.Time `json:"granted_at"`
}

// AccessRepository handles test access grant data access.
type AccessRepository struct {
	pool *pgxpool.Pool
}

// NewAccessRepository creates a new AccessRepository.
func NewAccessRepository(pool *pgxpool.Pool) *AccessRepository {
	return &AccessRepository{pool: pool}
}

// Grant records access for a user on a test. Re-granting refreshes
// the source and timestamp instead of failing.
func (r *AccessRepository) Grant(ctx context.Context, testID uuid.UUID, userID int, source string) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO test_access (test_id, user_id, source)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (test_id, user_id)
		 DO UPDATE SET source = EXCLUDED.source, granted_at = NOW()`,
		testID, userID, source)
	return err
}

// Revoke removes a user's access grant. Revoking a grant that does not
// exist is a no-op.
func (r *AccessRepository) Revoke(ctx context.Context, testID uuid.UUID, userID int) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM test_access WHERE test_id = $1 AND user_id = $2`,
		testID, userID)
	return err
}

// Has reports whether the user holds an access grant for the test.
func (r *AccessRepository) Has(ctx context.Context, testID uuid.UUID, userID int) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM test_access WHERE test_id = $1 AND user_id = $2)`,
		testID, userID,
	).Scan(&exists)
	return exists, err
}

// ListByTest retrieves all grants for a test for admin review.
func (r *AccessRepository) ListByTest(ctx context.Context, testID uuid.UUID) ([]AccessGrant, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT test_id, user_id, source, granted_at
		 FROM test_access WHERE test_id = $1 ORDER BY granted_at DESC`, testID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var grants []AccessGrant
	for rows.Next() {
		var g AccessGrant
		if err := rows.Scan(&g.TestID, &g.UserID, &g.Source, &g.GrantedAt); err != nil {
			return nil, err
		}
		grants = append(grants, g)
	}
	return grants, rows.Err()
}
