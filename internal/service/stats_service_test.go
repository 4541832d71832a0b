package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gyanveer/coaching-admin-api/internal/models"
)

type mockStatsRepo struct {
	stored *models.AggregateStats
}

func (m *mockStatsRepo) Get(ctx context.Context) (*models.AggregateStats, error) {
	if m.stored == nil {
		return nil, sql.ErrNoRows
	}
	return m.stored, nil
}

func (m *mockStatsRepo) Replace(ctx context.Context, stats *models.AggregateStats) error {
	m.stored = stats
	return nil
}

type mockStatsStudents struct {
	students []models.Student
}

func (m *mockStatsStudents) ListAll(ctx context.Context) ([]models.Student, error) {
	return m.students, nil
}

func disabledCache() *CacheService {
	return NewCacheService(nil, nil, 0, zap.NewNop(), false)
}

func TestSyncRecomputesAggregate(t *testing.T) {
	students := &mockStatsStudents{students: []models.Student{
		{Registration: "101", Center: models.CenterThiriya, TotalFees: 6000, PaidFees: 2000, OldPaidFees: 1000},
		{Registration: "102", Center: models.CenterNariyawal, TotalFees: 9600, PaidFees: 9600},
		{Registration: "103", Center: "Bilari", TotalFees: 3600, PaidFees: 4000},
	}}
	repo := &mockStatsRepo{}
	svc := NewStatsService(repo, students, disabledCache(), zap.NewNop())

	stats, err := svc.Sync(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, stats.TotalEnrollments)
	assert.Equal(t, 1, stats.ThiriyaCount)
	assert.Equal(t, 2, stats.NariyawalCount, "non-Thiriya centers all land on the other side")
	assert.Equal(t, 3000+9600+4000, stats.TotalRevenue)
	assert.Equal(t, 3000, stats.TotalArrears, "overpayment never contributes negative arrears")
	require.NotNil(t, repo.stored)
}

func TestSyncOverwritesPreviousAggregate(t *testing.T) {
	repo := &mockStatsRepo{stored: &models.AggregateStats{TotalEnrollments: 99, TotalRevenue: 12345}}
	students := &mockStatsStudents{students: []models.Student{
		{Registration: "101", Center: models.CenterThiriya, TotalFees: 2100, PaidFees: 2100},
	}}
	svc := NewStatsService(repo, students, disabledCache(), zap.NewNop())

	stats, err := svc.Sync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalEnrollments)
	assert.Equal(t, 2100, repo.stored.TotalRevenue)
}

func TestGetFallsBackToStore(t *testing.T) {
	repo := &mockStatsRepo{stored: &models.AggregateStats{TotalEnrollments: 7}}
	svc := NewStatsService(repo, &mockStatsStudents{}, disabledCache(), zap.NewNop())

	stats, err := svc.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, stats.TotalEnrollments)
}

func TestGetBeforeFirstSync(t *testing.T) {
	svc := NewStatsService(&mockStatsRepo{}, &mockStatsStudents{}, disabledCache(), zap.NewNop())
	_, err := svc.Get(context.Background())
	assert.Error(t, err)
}
