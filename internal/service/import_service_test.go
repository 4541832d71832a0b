package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gyanveer/coaching-admin-api/internal/importer"
	"github.com/gyanveer/coaching-admin-api/internal/models"
)

type mockImportStore struct {
	records  map[string]*models.StudentDetail
	failFor  map[string]bool
	created  int
	replaced int
}

func newMockImportStore() *mockImportStore {
	return &mockImportStore{records: make(map[string]*models.StudentDetail)}
}

func (m *mockImportStore) FindByRegistration(ctx context.Context, registration string) (*models.StudentDetail, error) {
	if detail, ok := m.records[registration]; ok {
		copied := *detail
		copied.Installments = append([]models.Installment(nil), detail.Installments...)
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockImportStore) CreateWithInstallments(ctx context.Context, student *models.Student, installments []models.Installment) error {
	if m.failFor[student.Registration] {
		return assert.AnError
	}
	m.records[student.Registration] = &models.StudentDetail{Student: *student, Installments: installments}
	m.created++
	return nil
}

func (m *mockImportStore) ReplaceWithInstallments(ctx context.Context, student *models.Student, installments []models.Installment) error {
	if m.failFor[student.Registration] {
		return assert.AnError
	}
	m.records[student.Registration] = &models.StudentDetail{Student: *student, Installments: installments}
	m.replaced++
	return nil
}

const nariyawalSample = "Sr,Reg,Name,Status,Course,Father,Mobile,x,Address,Admission,Old\n" +
	"1, 101, Ravi Kumar, active, MDCA, Shyam Lal, 9876543210, x, Bilari, 1-2-24, 500, 1000 5-3-24, 1500 9-4\n"

func TestImportRunCreatesNewStudents(t *testing.T) {
	store := newMockImportStore()
	svc := NewImportService(store, zap.NewNop(), nil)

	processed, err := svc.Run(context.Background(), importer.FormatNariyawal, nariyawalSample)
	require.NoError(t, err)
	assert.Equal(t, 1, processed)
	assert.Equal(t, 1, store.created)

	detail := store.records["101"]
	require.NotNil(t, detail)
	assert.Equal(t, "Ravi Kumar", detail.FullName)
	assert.Equal(t, 9600, detail.TotalFees)
	assert.Equal(t, 500, detail.OldPaidFees)
	assert.Equal(t, 2500, detail.PaidFees)
	require.Len(t, detail.Installments, 2)
	assert.Equal(t, 1, detail.Installments[0].InstallmentNo)
	assert.Equal(t, 2, detail.Installments[1].InstallmentNo)
}

func TestImportRunIsIdempotent(t *testing.T) {
	store := newMockImportStore()
	svc := NewImportService(store, zap.NewNop(), nil)

	_, err := svc.Run(context.Background(), importer.FormatNariyawal, nariyawalSample)
	require.NoError(t, err)
	first := store.records["101"]
	require.NotNil(t, first)

	_, err = svc.Run(context.Background(), importer.FormatNariyawal, nariyawalSample)
	require.NoError(t, err)
	second := store.records["101"]
	require.NotNil(t, second)

	assert.Equal(t, len(first.Installments), len(second.Installments))
	assert.Equal(t, first.PaidFees, second.PaidFees)
	assert.Equal(t, first.OldPaidFees, second.OldPaidFees)
}

func TestImportRunPreservesEnrichedFields(t *testing.T) {
	store := newMockImportStore()
	store.records["101"] = &models.StudentDetail{Student: models.Student{
		Registration: "101",
		FullName:     "Ravi Kumar",
		Mobile:       "9999999999",
		PhotoURL:     "photos/101.jpg",
		OldPaidFees:  700,
	}}

	row := "Sr,Reg,Name,Status,Course,Father,Mobile,x,Address,Admission,Old\n" +
		"1, 101, Ravi Kumar, active, MDCA, Shyam Lal, N/A, x, Bilari, 1-2-24, 500, 1000 5-3-24\n"
	svc := NewImportService(store, zap.NewNop(), nil)
	_, err := svc.Run(context.Background(), importer.FormatNariyawal, row)
	require.NoError(t, err)

	detail := store.records["101"]
	assert.Equal(t, "9999999999", detail.Mobile, "placeholder mobile must not overwrite a real number")
	assert.Equal(t, "photos/101.jpg", detail.PhotoURL)
	assert.Equal(t, 700, detail.OldPaidFees, "stored legacy amount stays authoritative")
}

func TestImportRunSkipsFailedStudents(t *testing.T) {
	store := newMockImportStore()
	store.failFor = map[string]bool{"101": true}

	raw := nariyawalSample +
		"2, 102, Meena Devi, active, DCA, Ram Singh, N/A, x, Thiriya, 2-3-24, 0, 600 4-4-24\n"
	svc := NewImportService(store, zap.NewNop(), nil)

	processed, err := svc.Run(context.Background(), importer.FormatNariyawal, raw)
	require.NoError(t, err)
	assert.Equal(t, 1, processed)
	assert.Nil(t, store.records["101"])
	assert.NotNil(t, store.records["102"])
}

func TestImportRunRejectsUnknownFormat(t *testing.T) {
	svc := NewImportService(newMockImportStore(), zap.NewNop(), nil)
	_, err := svc.Run(context.Background(), importer.Format("xlsx"), "whatever")
	assert.Error(t, err)
}

func TestImportRunTriggersStatsResync(t *testing.T) {
	store := newMockImportStore()
	synced := false
	svc := NewImportService(store, zap.NewNop(), func() { synced = true })

	_, err := svc.Run(context.Background(), importer.FormatNariyawal, nariyawalSample)
	require.NoError(t, err)
	assert.True(t, synced)
}
