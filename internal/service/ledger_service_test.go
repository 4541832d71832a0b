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

type mockLedgerRepo struct {
	appended       []models.Installment
	removedID      string
	removedNo      int
	removeAmount   int
	missingStudent bool
	missingEntry   bool
}

func (m *mockLedgerRepo) AppendInstallment(ctx context.Context, inst *models.Installment) error {
	if m.missingStudent {
		return sql.ErrNoRows
	}
	m.appended = append(m.appended, *inst)
	return nil
}

func (m *mockLedgerRepo) RemoveInstallmentByID(ctx context.Context, registration, installmentID string) (int, error) {
	if m.missingEntry {
		return 0, sql.ErrNoRows
	}
	m.removedID = installmentID
	return m.removeAmount, nil
}

func (m *mockLedgerRepo) RemoveInstallmentByNo(ctx context.Context, registration string, installmentNo int) (int, error) {
	if m.missingEntry {
		return 0, sql.ErrNoRows
	}
	m.removedNo = installmentNo
	return m.removeAmount, nil
}

type mockLedgerStudents struct {
	students map[string]*models.StudentDetail
	rekeyed  [2]string
}

func (m *mockLedgerStudents) FindByRegistration(ctx context.Context, registration string) (*models.StudentDetail, error) {
	if detail, ok := m.students[registration]; ok {
		return detail, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockLedgerStudents) ExistsByRegistration(ctx context.Context, registration string) (bool, error) {
	_, ok := m.students[registration]
	return ok, nil
}

func (m *mockLedgerStudents) Delete(ctx context.Context, registration string) error {
	delete(m.students, registration)
	return nil
}

func (m *mockLedgerStudents) Rekey(ctx context.Context, oldRegistration, newRegistration string) error {
	if _, ok := m.students[oldRegistration]; !ok {
		return sql.ErrNoRows
	}
	m.rekeyed = [2]string{oldRegistration, newRegistration}
	return nil
}

func newLedgerService(repo *mockLedgerRepo, students *mockLedgerStudents) *LedgerService {
	return NewLedgerService(repo, students, nil, zap.NewNop())
}

func TestCollectFeeNormalizesDate(t *testing.T) {
	repo := &mockLedgerRepo{}
	svc := newLedgerService(repo, &mockLedgerStudents{})

	inst, err := svc.CollectFee(context.Background(), "101", CollectFeeRequest{
		Amount: 1000, Date: "2024-03-05", InstallmentNo: 3,
	})
	require.NoError(t, err)
	assert.Equal(t, "05/03/2024", inst.PaidOn)
	assert.Equal(t, 1000, inst.Amount)
	assert.NotEmpty(t, inst.ID)
	require.Len(t, repo.appended, 1)
}

func TestCollectFeeKeepsUnparsableDateVerbatim(t *testing.T) {
	repo := &mockLedgerRepo{}
	svc := newLedgerService(repo, &mockLedgerStudents{})

	inst, err := svc.CollectFee(context.Background(), "101", CollectFeeRequest{
		Amount: 500, Date: "diwali week", InstallmentNo: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, "diwali week", inst.PaidOn)
}

func TestCollectFeeRejectsInvalidPayload(t *testing.T) {
	svc := newLedgerService(&mockLedgerRepo{}, &mockLedgerStudents{})

	_, err := svc.CollectFee(context.Background(), "101", CollectFeeRequest{Amount: 0, Date: "2024-03-05", InstallmentNo: 1})
	assert.Error(t, err)
}

func TestCollectFeeUnknownStudent(t *testing.T) {
	repo := &mockLedgerRepo{missingStudent: true}
	svc := newLedgerService(repo, &mockLedgerStudents{})

	_, err := svc.CollectFee(context.Background(), "nope", CollectFeeRequest{Amount: 100, Date: "2024-01-01", InstallmentNo: 1})
	assert.Error(t, err)
}

func TestDeleteInstallmentPrefersID(t *testing.T) {
	repo := &mockLedgerRepo{removeAmount: 700}
	svc := newLedgerService(repo, &mockLedgerStudents{})

	err := svc.DeleteInstallment(context.Background(), "101", DeleteInstallmentRequest{InstallmentID: "abc", InstallmentNo: 2})
	require.NoError(t, err)
	assert.Equal(t, "abc", repo.removedID)
	assert.Zero(t, repo.removedNo)
}

func TestDeleteInstallmentFallsBackToNumber(t *testing.T) {
	repo := &mockLedgerRepo{removeAmount: 700}
	svc := newLedgerService(repo, &mockLedgerStudents{})

	err := svc.DeleteInstallment(context.Background(), "101", DeleteInstallmentRequest{InstallmentNo: 2})
	require.NoError(t, err)
	assert.Equal(t, 2, repo.removedNo)
}

func TestDeleteInstallmentRequiresSelector(t *testing.T) {
	svc := newLedgerService(&mockLedgerRepo{}, &mockLedgerStudents{})
	err := svc.DeleteInstallment(context.Background(), "101", DeleteInstallmentRequest{})
	assert.Error(t, err)
}

func TestDeleteInstallmentMissingEntry(t *testing.T) {
	repo := &mockLedgerRepo{missingEntry: true}
	svc := newLedgerService(repo, &mockLedgerStudents{})
	err := svc.DeleteInstallment(context.Background(), "101", DeleteInstallmentRequest{InstallmentID: "ghost"})
	assert.Error(t, err)
}

func TestRekeyStudentRefusesTakenRegistration(t *testing.T) {
	students := &mockLedgerStudents{students: map[string]*models.StudentDetail{
		"101": {Student: models.Student{Registration: "101"}},
		"202": {Student: models.Student{Registration: "202"}},
	}}
	svc := newLedgerService(&mockLedgerRepo{}, students)

	err := svc.RekeyStudent(context.Background(), "101", RekeyRequest{NewRegistration: "202"})
	assert.Error(t, err)
	assert.Empty(t, students.rekeyed[0])
}

func TestRekeyStudentMovesRecord(t *testing.T) {
	students := &mockLedgerStudents{students: map[string]*models.StudentDetail{
		"101": {Student: models.Student{Registration: "101"}},
	}}
	svc := newLedgerService(&mockLedgerRepo{}, students)

	err := svc.RekeyStudent(context.Background(), "101", RekeyRequest{NewRegistration: "303"})
	require.NoError(t, err)
	assert.Equal(t, [2]string{"101", "303"}, students.rekeyed)
}

func TestDeleteStudentUnknown(t *testing.T) {
	svc := newLedgerService(&mockLedgerRepo{}, &mockLedgerStudents{students: map[string]*models.StudentDetail{}})
	err := svc.DeleteStudent(context.Background(), "nope")
	assert.Error(t, err)
}
