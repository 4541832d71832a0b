package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gyanveer/coaching-admin-api/internal/importer"
	"github.com/gyanveer/coaching-admin-api/internal/models"
	"github.com/gyanveer/coaching-admin-api/internal/service"
)

type ledgerRepoStub struct {
	appended []models.Installment
}

func (s *ledgerRepoStub) AppendInstallment(ctx context.Context, inst *models.Installment) error {
	s.appended = append(s.appended, *inst)
	return nil
}

func (s *ledgerRepoStub) RemoveInstallmentByID(ctx context.Context, registration, installmentID string) (int, error) {
	return 0, sql.ErrNoRows
}

func (s *ledgerRepoStub) RemoveInstallmentByNo(ctx context.Context, registration string, installmentNo int) (int, error) {
	return 0, sql.ErrNoRows
}

type studentStoreStub struct {
	records map[string]*models.StudentDetail
}

func (s *studentStoreStub) FindByRegistration(ctx context.Context, registration string) (*models.StudentDetail, error) {
	if detail, ok := s.records[registration]; ok {
		return detail, nil
	}
	return nil, sql.ErrNoRows
}

func (s *studentStoreStub) ExistsByRegistration(ctx context.Context, registration string) (bool, error) {
	_, ok := s.records[registration]
	return ok, nil
}

func (s *studentStoreStub) Delete(ctx context.Context, registration string) error {
	delete(s.records, registration)
	return nil
}

func (s *studentStoreStub) Rekey(ctx context.Context, oldRegistration, newRegistration string) error {
	return nil
}

func (s *studentStoreStub) CreateWithInstallments(ctx context.Context, student *models.Student, installments []models.Installment) error {
	if s.records == nil {
		s.records = make(map[string]*models.StudentDetail)
	}
	s.records[student.Registration] = &models.StudentDetail{Student: *student, Installments: installments}
	return nil
}

func (s *studentStoreStub) ReplaceWithInstallments(ctx context.Context, student *models.Student, installments []models.Installment) error {
	s.records[student.Registration] = &models.StudentDetail{Student: *student, Installments: installments}
	return nil
}

func TestCollectFeeEndpoint(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &ledgerRepoStub{}
	ledgerSvc := service.NewLedgerService(repo, &studentStoreStub{}, nil, zap.NewNop())
	h := NewLedgerHandler(ledgerSvc, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	body := bytes.NewBufferString(`{"amount":1000,"date":"2024-03-05","installment_no":3}`)
	req, _ := http.NewRequest(http.MethodPost, "/students/101/installments", body)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Params = gin.Params{{Key: "registration", Value: "101"}}

	h.CollectFee(c)

	require.Equal(t, http.StatusCreated, w.Code)
	require.Len(t, repo.appended, 1)
	assert.Equal(t, "101", repo.appended[0].Registration)
	assert.Equal(t, "05/03/2024", repo.appended[0].PaidOn)

	var envelope struct {
		Data models.Installment `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, 1000, envelope.Data.Amount)
}

func TestCollectFeeEndpointInvalidBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewLedgerHandler(service.NewLedgerService(&ledgerRepoStub{}, &studentStoreStub{}, nil, zap.NewNop()), nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/students/101/installments", bytes.NewBufferString(`{"amount":`))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Params = gin.Params{{Key: "registration", Value: "101"}}

	h.CollectFee(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteInstallmentEndpointMissing(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewLedgerHandler(service.NewLedgerService(&ledgerRepoStub{}, &studentStoreStub{}, nil, zap.NewNop()), nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodDelete, "/students/101/installments", bytes.NewBufferString(`{"installment_no":2}`))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Params = gin.Params{{Key: "registration", Value: "101"}}

	h.DeleteInstallment(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestImportEndpoint(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := &studentStoreStub{records: make(map[string]*models.StudentDetail)}
	importSvc := service.NewImportService(store, zap.NewNop(), nil)
	h := NewImportHandler(importSvc, nil)

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", "nariyawal.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte("Sr,Reg,Name,Status,Course,Father,Mobile,x,Address,Admission,Old\n" +
		"1, 101, Ravi Kumar, active, MDCA, Shyam Lal, 9876543210, x, Bilari, 1-2-24, 500, 1000 5-3-24\n"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/imports/nariyawal", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	c.Request = req
	c.Params = gin.Params{{Key: "format", Value: string(importer.FormatNariyawal)}}

	h.Run(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.NotNil(t, store.records["101"])
	assert.Contains(t, w.Body.String(), `"processed":1`)
}

func TestImportEndpointUnknownFormat(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewImportHandler(service.NewImportService(&studentStoreStub{}, zap.NewNop(), nil), nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/imports/xlsx", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "format", Value: "xlsx"}}

	h.Run(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
