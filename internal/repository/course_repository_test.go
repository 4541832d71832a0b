package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gyanveer/coaching-admin-api/internal/models"
)

func TestCourseRepositoryList(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectQuery("SELECT name, fee, updated_at FROM courses").
		WillReturnRows(sqlmock.NewRows([]string{"name", "fee", "updated_at"}).
			AddRow("DCA", 3600, time.Now()).
			AddRow("MDCA", 9600, time.Now()))

	courses, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, courses, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryUpsertBatch(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectBegin()
	for range models.CanonicalCourseFees {
		mock.ExpectExec("INSERT INTO courses").WillReturnResult(sqlmock.NewResult(0, 1))
	}
	mock.ExpectCommit()

	require.NoError(t, repo.UpsertBatch(context.Background(), models.CanonicalCourseFees))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStatsRepositoryReplace(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStatsRepository(db)

	mock.ExpectExec("INSERT INTO aggregate_stats").
		WithArgs(2, 1, 1, 1700, 8500, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	stats := &models.AggregateStats{TotalEnrollments: 2, ThiriyaCount: 1, NariyawalCount: 1, TotalRevenue: 1700, TotalArrears: 8500, UpdatedAt: time.Now().UTC()}
	require.NoError(t, repo.Replace(context.Background(), stats))
	assert.NoError(t, mock.ExpectationsWereMet())
}
