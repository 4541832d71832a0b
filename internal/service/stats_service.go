package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/gyanveer/coaching-admin-api/internal/models"
	appErrors "github.com/gyanveer/coaching-admin-api/pkg/errors"
)

type statsRepository interface {
	Get(ctx context.Context) (*models.AggregateStats, error)
	Replace(ctx context.Context, stats *models.AggregateStats) error
}

type statsStudentStore interface {
	ListAll(ctx context.Context) ([]models.Student, error)
}

const statsCacheKey = "stats:aggregate"

// StatsService maintains the denormalized aggregate read-model. The aggregate
// is always recomputed from a full scan, never adjusted incrementally; the
// cost is acceptable at this scale and the recompute can never drift.
type StatsService struct {
	repo     statsRepository
	students statsStudentStore
	cache    *CacheService
	logger   *zap.Logger
}

// NewStatsService constructs the stats service.
func NewStatsService(repo statsRepository, students statsStudentStore, cache *CacheService, logger *zap.Logger) *StatsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatsService{repo: repo, students: students, cache: cache, logger: logger}
}

// Sync recomputes the aggregate by scanning every student record, overwrites
// the stored singleton and refreshes the cache. Center partitioning is
// binary: Thiriya on one side, every other center tag on the other.
func (s *StatsService) Sync(ctx context.Context) (*models.AggregateStats, error) {
	students, err := s.students.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to scan students")
	}

	stats := &models.AggregateStats{UpdatedAt: time.Now().UTC()}
	for _, student := range students {
		stats.TotalEnrollments++
		if student.Center == models.CenterThiriya {
			stats.ThiriyaCount++
		} else {
			stats.NariyawalCount++
		}
		stats.TotalRevenue += student.Paid()
		stats.TotalArrears += student.Arrears()
	}

	if err := s.repo.Replace(ctx, stats); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store aggregate stats")
	}
	if err := s.cache.Set(ctx, statsCacheKey, stats, 0); err != nil {
		s.logger.Warn("failed to cache aggregate stats", zap.Error(err))
	}

	s.logger.Sugar().Infow("aggregate stats synced",
		"enrollments", stats.TotalEnrollments,
		"revenue", stats.TotalRevenue,
		"arrears", stats.TotalArrears)
	return stats, nil
}

// Get serves the aggregate from cache when possible, falling back to the
// stored singleton.
func (s *StatsService) Get(ctx context.Context) (*models.AggregateStats, error) {
	var cached models.AggregateStats
	if hit, err := s.cache.Get(ctx, statsCacheKey, &cached); err == nil && hit {
		return &cached, nil
	}

	stats, err := s.repo.Get(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "stats have not been computed yet")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load aggregate stats")
	}
	return stats, nil
}
