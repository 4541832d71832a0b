package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gyanveer/coaching-admin-api/internal/models"
	appErrors "github.com/gyanveer/coaching-admin-api/pkg/errors"
	"github.com/gyanveer/coaching-admin-api/pkg/export"
	"github.com/gyanveer/coaching-admin-api/pkg/storage"
)

type exportStudentStore interface {
	ListAll(ctx context.Context) ([]models.Student, error)
	FindByRegistration(ctx context.Context, registration string) (*models.StudentDetail, error)
}

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix string
	ResultTTL time.Duration
}

// ExportRequest describes one export to generate.
type ExportRequest struct {
	Kind         models.ReportKind
	Format       models.ReportFormat
	Center       string
	Registration string
}

// ExportResult captures successful generation metadata.
type ExportResult struct {
	RelativePath string              `json:"relative_path"`
	Token        string              `json:"token"`
	URL          string              `json:"url"`
	Format       models.ReportFormat `json:"format"`
	ExpiresAt    time.Time           `json:"expires_at"`
}

// ExportService builds roster, arrears and ledger datasets and persists the
// rendered files behind signed download tokens.
type ExportService struct {
	students exportStudentStore
	storage  fileStorage
	csv      csvRenderer
	pdf      pdfRenderer
	signer   *storage.SignedURLSigner
	logger   *zap.Logger
	cfg      ExportConfig
}

// NewExportService constructs an ExportService.
func NewExportService(students exportStudentStore, store fileStorage, signer *storage.SignedURLSigner, cfg ExportConfig, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{students: students, storage: store, csv: csv, pdf: pdf, signer: signer, logger: logger, cfg: cfg}
}

// Generate builds the requested dataset and stores the rendered export.
func (s *ExportService) Generate(ctx context.Context, req ExportRequest) (*ExportResult, error) {
	dataset, title, err := s.buildDataset(ctx, req)
	if err != nil {
		return nil, err
	}

	var payload []byte
	switch req.Format {
	case models.ReportFormatCSV:
		payload, err = s.csv.Render(dataset)
	case models.ReportFormatPDF:
		payload, err = s.pdf.Render(dataset, title)
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported format %q", req.Format))
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}

	exportID := uuid.NewString()
	filename := fmt.Sprintf("%s/%s-%s.%s", req.Kind, req.Kind, time.Now().UTC().Format("20060102-150405"), req.Format)
	relPath, err := s.storage.Save(filename, payload)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store export")
	}

	token, expiresAt, err := s.signer.Generate(exportID, relPath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign download token")
	}
	prefix := strings.TrimRight(s.cfg.APIPrefix, "/")
	if prefix == "" {
		prefix = "/api/v1"
	}

	s.logger.Sugar().Infow("export generated", "kind", string(req.Kind), "format", string(req.Format), "path", relPath)
	return &ExportResult{
		RelativePath: relPath,
		Token:        token,
		URL:          fmt.Sprintf("%s/downloads/%s", prefix, token),
		Format:       req.Format,
		ExpiresAt:    expiresAt,
	}, nil
}

// Open resolves a download token to its stored file.
func (s *ExportService) Open(token string) (*os.File, string, error) {
	_, relPath, _, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid download token")
	}
	file, err := s.storage.Open(relPath)
	if err != nil {
		return nil, "", appErrors.Clone(appErrors.ErrNotFound, "export file no longer available")
	}
	return file, relPath, nil
}

// Cleanup removes rendered exports older than the result TTL.
func (s *ExportService) Cleanup() {
	deleted, err := s.storage.CleanupOlderThan(s.cfg.ResultTTL)
	if err != nil {
		s.logger.Warn("export cleanup failed", zap.Error(err))
		return
	}
	if len(deleted) > 0 {
		s.logger.Sugar().Infow("expired exports removed", "count", len(deleted))
	}
}

func (s *ExportService) buildDataset(ctx context.Context, req ExportRequest) (export.Dataset, string, error) {
	switch req.Kind {
	case models.ReportKindRoster, models.ReportKindArrears:
		return s.buildStudentDataset(ctx, req)
	case models.ReportKindLedger:
		return s.buildLedgerDataset(ctx, req.Registration)
	default:
		return export.Dataset{}, "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export kind %q", req.Kind))
	}
}

func (s *ExportService) buildStudentDataset(ctx context.Context, req ExportRequest) (export.Dataset, string, error) {
	students, err := s.students.ListAll(ctx)
	if err != nil {
		return export.Dataset{}, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to scan students")
	}

	headers := []string{"Registration", "Name", "Father", "Course", "Center", "Total Fees", "Paid", "Arrears", "Status"}
	rows := make([]map[string]string, 0, len(students))
	for _, student := range students {
		if req.Center != "" && student.Center != req.Center {
			continue
		}
		arrears := student.Arrears()
		if req.Kind == models.ReportKindArrears && arrears == 0 {
			continue
		}
		rows = append(rows, map[string]string{
			"Registration": student.Registration,
			"Name":         student.FullName,
			"Father":       student.FatherName,
			"Course":       student.Course,
			"Center":       student.Center,
			"Total Fees":   strconv.Itoa(student.TotalFees),
			"Paid":         strconv.Itoa(student.Paid()),
			"Arrears":      strconv.Itoa(arrears),
			"Status":       student.Status,
		})
	}

	title := "Student Roster"
	if req.Kind == models.ReportKindArrears {
		title = "Outstanding Arrears"
	}
	if req.Center != "" {
		title = title + " - " + req.Center
	}
	return export.Dataset{Headers: headers, Rows: rows}, title, nil
}

func (s *ExportService) buildLedgerDataset(ctx context.Context, registration string) (export.Dataset, string, error) {
	if registration == "" {
		return export.Dataset{}, "", appErrors.Clone(appErrors.ErrValidation, "registration required for ledger export")
	}
	detail, err := s.students.FindByRegistration(ctx, registration)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return export.Dataset{}, "", appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return export.Dataset{}, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	headers := []string{"No", "Date", "Amount", "Note"}
	rows := make([]map[string]string, 0, len(detail.Installments))
	for _, inst := range detail.Installments {
		rows = append(rows, map[string]string{
			"No":     strconv.Itoa(inst.InstallmentNo),
			"Date":   inst.PaidOn,
			"Amount": strconv.Itoa(inst.Amount),
			"Note":   inst.Note,
		})
	}
	title := fmt.Sprintf("Fee Ledger - %s (%s)", detail.FullName, detail.Registration)
	return export.Dataset{Headers: headers, Rows: rows}, title, nil
}
