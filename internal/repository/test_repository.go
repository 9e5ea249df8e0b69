package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prepstack/prepstack-backend/internal/model"
)

// TestRepository handles test data access. Section/question structure is
// stored as a JSONB document so a test stays a single immutable unit the
// way attempts were scored against it.
type TestRepository struct {
	pool *pgxpool.Pool
}

// NewTestRepository creates a new TestRepository.
func NewTestRepository(pool *pgxpool.Pool) *TestRepository {
	return &TestRepository{pool: pool}
}

// Create inserts a new test.
func (r *TestRepository) Create(ctx context.Context, t *model.Test) error {
	sections, err := json.Marshal(t.Sections)
	if err != nil {
		return fmt.Errorf("marshal sections: %w", err)
	}

	return r.pool.QueryRow(ctx,
		`INSERT INTO tests (id, title, description, sections, duration_minutes, price, is_active, created_by)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING created_at, updated_at`,
		t.ID, t.Title, t.Description, sections, t.DurationMinutes, t.Price, t.IsActive, t.CreatedBy,
	).Scan(&t.CreatedAt, &t.UpdatedAt)
}

// GetByID retrieves a test including its full section structure.
func (r *TestRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Test, error) {
	t := &model.Test{}
	var sections []byte

	err := r.pool.QueryRow(ctx,
		`SELECT id, title, description, sections, duration_minutes, price, is_active, created_by, created_at, updated_at
		 FROM tests WHERE id = $1`, id,
	).Scan(&t.ID, &t.Title, &t.Description, &sections, &t.DurationMinutes, &t.Price,
		&t.IsActive, &t.CreatedBy, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(sections, &t.Sections); err != nil {
		return nil, fmt.Errorf("unmarshal sections: %w", err)
	}
	return t, nil
}

// Update replaces a test's mutable fields.
func (r *TestRepository) Update(ctx context.Context, t *model.Test) error {
	sections, err := json.Marshal(t.Sections)
	if err != nil {
		return fmt.Errorf("marshal sections: %w", err)
	}

	tag, err := r.pool.Exec(ctx,
		`UPDATE tests
		 SET title = $1, description = $2, sections = $3, duration_minutes = $4,
		     price = $5, is_active = $6, updated_at = NOW()
		 WHERE id = $7`,
		t.Title, t.Description, sections, t.DurationMinutes, t.Price, t.IsActive, t.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// Deactivate flips the active flag off. Tests are never hard-deleted:
// attempts may reference them.
func (r *TestRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE tests SET is_active = FALSE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// List retrieves tests with pagination. When activeOnly is set, inactive
// tests are excluded (the student catalog view).
func (r *TestRepository) List(ctx context.Context, activeOnly bool, limit, offset int) ([]model.Test, int, error) {
	where := ""
	if activeOnly {
		where = "WHERE is_active"
	}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM tests "+where).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, title, description, sections, duration_minutes, price, is_active, created_by, created_at, updated_at
		 FROM tests `+where+`
		 ORDER BY created_at DESC
		 LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var tests []model.Test
	for rows.Next() {
		var t model.Test
		var sections []byte
		if err := rows.Scan(&t.ID, &t.Title, &t.Description, &sections, &t.DurationMinutes,
			&t.Price, &t.IsActive, &t.CreatedBy, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, 0, err
		}
		if err := json.Unmarshal(sections, &t.Sections); err != nil {
			return nil, 0, fmt.Errorf("unmarshal sections: %w", err)
		}
		tests = append(tests, t)
	}
	return tests, total, rows.Err()
}
