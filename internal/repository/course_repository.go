package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/gyanveer/coaching-admin-api/internal/models"
)

// CourseRepository manages the canonical course-fee store.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository constructs a CourseRepository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

// List returns all configured courses.
func (r *CourseRepository) List(ctx context.Context) ([]models.Course, error) {
	var courses []models.Course
	if err := r.db.SelectContext(ctx, &courses, "SELECT name, fee, updated_at FROM courses ORDER BY name"); err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return courses, nil
}

// FindByName fetches one course by its name.
func (r *CourseRepository) FindByName(ctx context.Context, name string) (*models.Course, error) {
	var course models.Course
	if err := r.db.GetContext(ctx, &course, "SELECT name, fee, updated_at FROM courses WHERE name = $1", name); err != nil {
		return nil, err
	}
	return &course, nil
}

// Upsert creates or updates a course fee.
func (r *CourseRepository) Upsert(ctx context.Context, name string, fee int) error {
	const query = `INSERT INTO courses (name, fee, updated_at) VALUES ($1, $2, $3)
        ON CONFLICT (name) DO UPDATE SET fee = EXCLUDED.fee, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.ExecContext(ctx, query, name, fee, time.Now().UTC()); err != nil {
		return fmt.Errorf("upsert course %s: %w", name, err)
	}
	return nil
}

// UpsertBatch writes the whole canonical mapping in one transaction.
func (r *CourseRepository) UpsertBatch(ctx context.Context, fees map[string]int) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin course upsert: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const query = `INSERT INTO courses (name, fee, updated_at) VALUES ($1, $2, $3)
        ON CONFLICT (name) DO UPDATE SET fee = EXCLUDED.fee, updated_at = EXCLUDED.updated_at`
	now := time.Now().UTC()
	for name, fee := range fees {
		if _, err := tx.ExecContext(ctx, query, name, fee, now); err != nil {
			return fmt.Errorf("upsert course %s: %w", name, err)
		}
	}
	return tx.Commit()
}
