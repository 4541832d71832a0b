package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gyanveer/coaching-admin-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func studentRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"registration", "full_name", "father_name", "mobile", "address", "admission_date",
		"course", "total_fees", "old_paid_fees", "paid_fees", "status", "center", "photo_url", "created_at", "updated_at"}).
		AddRow("1001", "John Doe", "Ram Singh", "9999999999", "Some Address", "01-01-2023",
			"DCA", 3600, 500, 700, "active", "Nariyawal", "", time.Now(), time.Now())
}

func TestStudentRepositoryList(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery("SELECT s.registration, s.full_name").WillReturnRows(studentRows())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM students s WHERE 1=1")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	students, total, err := repo.List(context.Background(), models.StudentFilter{})
	require.NoError(t, err)
	assert.Len(t, students, 1)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryListSearchMatchesMixedCaseRegistration(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	// Registrations are free text and may carry letters. Both branches of the
	// search compare lowered values against the lowered pattern.
	searchClause := regexp.QuoteMeta("(LOWER(s.full_name) LIKE $1 OR LOWER(s.registration) LIKE $1)")
	mock.ExpectQuery("(?s)SELECT s.registration, s.full_name.*" + searchClause).
		WithArgs("%reg-7a%").
		WillReturnRows(studentRows())
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM students s WHERE 1=1 AND " + searchClause).
		WithArgs("%reg-7a%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	students, total, err := repo.List(context.Background(), models.StudentFilter{Search: "REG-7A"})
	require.NoError(t, err)
	assert.Len(t, students, 1)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryFindByRegistration(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery("SELECT registration, full_name").WithArgs("1001").WillReturnRows(studentRows())
	mock.ExpectQuery("SELECT id, registration, amount, paid_on, installment_no").WithArgs("1001").
		WillReturnRows(sqlmock.NewRows([]string{"id", "registration", "amount", "paid_on", "installment_no", "note", "created_at"}).
			AddRow("i1", "1001", 700, "05-02", 1, "", time.Now()))

	detail, err := repo.FindByRegistration(context.Background(), "1001")
	require.NoError(t, err)
	assert.Equal(t, "John Doe", detail.FullName)
	require.Len(t, detail.Installments, 1)
	assert.Equal(t, 2400, detail.Arrears, "arrears = total - (paid + legacy)")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectExec("INSERT INTO students").WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.Create(context.Background(), &models.Student{Registration: "1001", FullName: "John Doe", Course: "DCA", TotalFees: 3600})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryDeleteRemovesLedger(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM installments WHERE registration").WithArgs("1001").WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("DELETE FROM students WHERE registration").WithArgs("1001").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Delete(context.Background(), "1001"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryRekey(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO students").WithArgs("1001", "2001", sqlmock.AnyArg()).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE installments SET registration").WithArgs("1001", "2001").WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec("DELETE FROM students WHERE registration").WithArgs("1001").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Rekey(context.Background(), "1001", "2001"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryReplaceWithInstallments(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE students SET full_name").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM installments WHERE registration").WithArgs("1001").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO installments").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO installments").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	student := &models.Student{Registration: "1001", FullName: "John Doe", PaidFees: 800}
	installments := []models.Installment{
		{Amount: 500, PaidOn: "01-01", InstallmentNo: 1},
		{Amount: 300, PaidOn: "02-01", InstallmentNo: 2},
	}
	require.NoError(t, repo.ReplaceWithInstallments(context.Background(), student, installments))
	assert.NotEmpty(t, installments[0].ID, "fresh installments receive generated ids")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryUpdateTotalFeesBatch(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE students SET total_fees").WithArgs("1001", 3600, sqlmock.AnyArg()).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.UpdateTotalFeesBatch(context.Background(), map[string]int{"1001": 3600}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryUpdateTotalFeesBatchEmpty(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	require.NoError(t, repo.UpdateTotalFeesBatch(context.Background(), nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}
