package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/gyanveer/coaching-admin-api/internal/models"
)

// StatsRepository persists the aggregate stats singleton. The row is always
// replaced wholesale; nothing maintains it incrementally.
type StatsRepository struct {
	db *sqlx.DB
}

// NewStatsRepository constructs a StatsRepository.
func NewStatsRepository(db *sqlx.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

// Get returns the last computed aggregate.
func (r *StatsRepository) Get(ctx context.Context) (*models.AggregateStats, error) {
	const query = `SELECT total_enrollments, thiriya_count, nariyawal_count, total_revenue, total_arrears, updated_at
        FROM aggregate_stats WHERE id = 1`
	var stats models.AggregateStats
	if err := r.db.GetContext(ctx, &stats, query); err != nil {
		return nil, err
	}
	return &stats, nil
}

// Replace overwrites the singleton with a freshly computed aggregate.
func (r *StatsRepository) Replace(ctx context.Context, stats *models.AggregateStats) error {
	const query = `INSERT INTO aggregate_stats (id, total_enrollments, thiriya_count, nariyawal_count, total_revenue, total_arrears, updated_at)
        VALUES (1, $1, $2, $3, $4, $5, $6)
        ON CONFLICT (id) DO UPDATE SET total_enrollments = EXCLUDED.total_enrollments,
            thiriya_count = EXCLUDED.thiriya_count, nariyawal_count = EXCLUDED.nariyawal_count,
            total_revenue = EXCLUDED.total_revenue, total_arrears = EXCLUDED.total_arrears,
            updated_at = EXCLUDED.updated_at`
	if _, err := r.db.ExecContext(ctx, query,
		stats.TotalEnrollments, stats.ThiriyaCount, stats.NariyawalCount,
		stats.TotalRevenue, stats.TotalArrears, stats.UpdatedAt); err != nil {
		return fmt.Errorf("replace aggregate stats: %w", err)
	}
	return nil
}
