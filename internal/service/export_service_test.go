package service

import (
	"context"
	"database/sql"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gyanveer/coaching-admin-api/internal/models"
	"github.com/gyanveer/coaching-admin-api/pkg/storage"
)

type mockExportStudents struct {
	students []models.Student
	details  map[string]*models.StudentDetail
}

func (m *mockExportStudents) ListAll(ctx context.Context) ([]models.Student, error) {
	return m.students, nil
}

func (m *mockExportStudents) FindByRegistration(ctx context.Context, registration string) (*models.StudentDetail, error) {
	if detail, ok := m.details[registration]; ok {
		return detail, nil
	}
	return nil, sql.ErrNoRows
}

func newTestExportService(t *testing.T, students *mockExportStudents) *ExportService {
	t.Helper()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	signer := storage.NewSignedURLSigner("test-secret", time.Hour)
	return NewExportService(students, store, signer, ExportConfig{APIPrefix: "/api/v1"}, zap.NewNop(), nil, nil)
}

func TestGenerateRosterCSV(t *testing.T) {
	students := &mockExportStudents{students: []models.Student{
		{Registration: "101", FullName: "Ravi Kumar", Course: "MDCA", Center: models.CenterNariyawal, TotalFees: 9600, PaidFees: 4000},
		{Registration: "201", FullName: "Meena Devi", Course: "DCA", Center: models.CenterThiriya, TotalFees: 3600, PaidFees: 3600},
	}}
	svc := newTestExportService(t, students)

	result, err := svc.Generate(context.Background(), ExportRequest{
		Kind: models.ReportKindRoster, Format: models.ReportFormatCSV,
	})
	require.NoError(t, err)
	assert.Contains(t, result.URL, "/api/v1/downloads/")

	file, _, err := svc.Open(result.Token)
	require.NoError(t, err)
	defer file.Close()
	content, err := io.ReadAll(file)
	require.NoError(t, err)
	assert.Contains(t, string(content), "Ravi Kumar")
	assert.Contains(t, string(content), "Meena Devi")
}

func TestGenerateArrearsSkipsSettledStudents(t *testing.T) {
	students := &mockExportStudents{students: []models.Student{
		{Registration: "101", FullName: "Ravi Kumar", TotalFees: 9600, PaidFees: 4000},
		{Registration: "201", FullName: "Meena Devi", TotalFees: 3600, PaidFees: 3600},
	}}
	svc := newTestExportService(t, students)

	result, err := svc.Generate(context.Background(), ExportRequest{
		Kind: models.ReportKindArrears, Format: models.ReportFormatCSV,
	})
	require.NoError(t, err)

	file, _, err := svc.Open(result.Token)
	require.NoError(t, err)
	defer file.Close()
	content, err := io.ReadAll(file)
	require.NoError(t, err)
	assert.Contains(t, string(content), "Ravi Kumar")
	assert.NotContains(t, string(content), "Meena Devi")
}

func TestGenerateCenterFilter(t *testing.T) {
	students := &mockExportStudents{students: []models.Student{
		{Registration: "101", FullName: "Ravi Kumar", Center: models.CenterNariyawal, TotalFees: 100},
		{Registration: "201", FullName: "Meena Devi", Center: models.CenterThiriya, TotalFees: 100},
	}}
	svc := newTestExportService(t, students)

	result, err := svc.Generate(context.Background(), ExportRequest{
		Kind: models.ReportKindRoster, Format: models.ReportFormatCSV, Center: models.CenterThiriya,
	})
	require.NoError(t, err)

	file, _, err := svc.Open(result.Token)
	require.NoError(t, err)
	defer file.Close()
	content, err := io.ReadAll(file)
	require.NoError(t, err)
	assert.NotContains(t, string(content), "Ravi Kumar")
	assert.Contains(t, string(content), "Meena Devi")
}

func TestGenerateLedgerExport(t *testing.T) {
	students := &mockExportStudents{details: map[string]*models.StudentDetail{
		"101": {
			Student: models.Student{Registration: "101", FullName: "Ravi Kumar"},
			Installments: []models.Installment{
				{InstallmentNo: 1, PaidOn: "5-3-24", Amount: 1000},
				{InstallmentNo: 2, PaidOn: "9-4-24", Amount: 1500},
			},
		},
	}}
	svc := newTestExportService(t, students)

	result, err := svc.Generate(context.Background(), ExportRequest{
		Kind: models.ReportKindLedger, Format: models.ReportFormatCSV, Registration: "101",
	})
	require.NoError(t, err)

	file, _, err := svc.Open(result.Token)
	require.NoError(t, err)
	defer file.Close()
	content, err := io.ReadAll(file)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	assert.Len(t, lines, 3)
	assert.Contains(t, lines[1], "1000")
}

func TestGenerateLedgerRequiresRegistration(t *testing.T) {
	svc := newTestExportService(t, &mockExportStudents{})
	_, err := svc.Generate(context.Background(), ExportRequest{
		Kind: models.ReportKindLedger, Format: models.ReportFormatCSV,
	})
	assert.Error(t, err)
}

func TestGenerateRejectsUnknownFormat(t *testing.T) {
	svc := newTestExportService(t, &mockExportStudents{})
	_, err := svc.Generate(context.Background(), ExportRequest{
		Kind: models.ReportKindRoster, Format: models.ReportFormat("xlsx"),
	})
	assert.Error(t, err)
}

func TestCertificateRefusedWithArrears(t *testing.T) {
	students := &mockExportStudents{details: map[string]*models.StudentDetail{
		"101": {Student: models.Student{Registration: "101", FullName: "Ravi Kumar", Course: "MDCA", TotalFees: 9600, PaidFees: 4000}},
	}}
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	signer := storage.NewSignedURLSigner("test-secret", time.Hour)
	svc := NewCertificateService(students, store, signer, CertificateConfig{}, zap.NewNop())

	_, err = svc.Issue(context.Background(), "101")
	assert.Error(t, err)
}

func TestCertificateIssuedWhenSettled(t *testing.T) {
	students := &mockExportStudents{details: map[string]*models.StudentDetail{
		"101": {Student: models.Student{Registration: "101", FullName: "Ravi Kumar", Course: "MDCA", TotalFees: 9600, PaidFees: 9600}},
	}}
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	signer := storage.NewSignedURLSigner("test-secret", time.Hour)
	svc := NewCertificateService(students, store, signer, CertificateConfig{InstituteName: "Test Institute"}, zap.NewNop())

	result, err := svc.Issue(context.Background(), "101")
	require.NoError(t, err)
	assert.Equal(t, models.ReportFormatPDF, result.Format)
	assert.NotEmpty(t, result.Token)

	file, err := store.Open(result.RelativePath)
	require.NoError(t, err)
	defer file.Close()
	head := make([]byte, 4)
	_, err = file.Read(head)
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(head))
}
