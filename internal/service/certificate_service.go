package service

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
	"go.uber.org/zap"

	"github.com/gyanveer/coaching-admin-api/internal/models"
	appErrors "github.com/gyanveer/coaching-admin-api/pkg/errors"
	"github.com/gyanveer/coaching-admin-api/pkg/storage"
)

// CertificateConfig holds the strings printed on every certificate.
type CertificateConfig struct {
	InstituteName string
	TagLine       string
	SignatoryName string
}

// CertificateService renders course-completion certificates for students
// whose fees are fully settled.
type CertificateService struct {
	students exportStudentStore
	storage  fileStorage
	signer   *storage.SignedURLSigner
	logger   *zap.Logger
	cfg      CertificateConfig
}

// NewCertificateService constructs the certificate service.
func NewCertificateService(students exportStudentStore, store fileStorage, signer *storage.SignedURLSigner, cfg CertificateConfig, logger *zap.Logger) *CertificateService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.InstituteName == "" {
		cfg.InstituteName = "Gyanveer Computer Education"
	}
	return &CertificateService{students: students, storage: store, signer: signer, logger: logger, cfg: cfg}
}

// Issue renders a certificate PDF for the student and returns a signed
// download token. Students carrying arrears are refused.
func (s *CertificateService) Issue(ctx context.Context, registration string) (*ExportResult, error) {
	detail, err := s.students.FindByRegistration(ctx, registration)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	if detail.Student.Arrears() > 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "certificate refused: fees not fully paid")
	}

	payload, err := s.render(&detail.Student)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render certificate")
	}

	filename := fmt.Sprintf("certificates/%s.pdf", registration)
	relPath, err := s.storage.Save(filename, payload)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store certificate")
	}

	token, expiresAt, err := s.signer.Generate(registration, relPath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign download token")
	}

	s.logger.Sugar().Infow("certificate issued", "registration", registration, "course", detail.Course)
	return &ExportResult{
		RelativePath: relPath,
		Token:        token,
		URL:          fmt.Sprintf("/api/v1/downloads/%s", token),
		Format:       models.ReportFormatPDF,
		ExpiresAt:    expiresAt,
	}, nil
}

func (s *CertificateService) render(student *models.Student) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.AddPage()

	pdf.SetDrawColor(120, 90, 30)
	pdf.SetLineWidth(1.2)
	pdf.Rect(8, 8, 281, 194, "D")

	pdf.SetFont("Arial", "B", 26)
	pdf.CellFormat(0, 16, strings.ToUpper(s.cfg.InstituteName), "", 1, "C", false, 0, "")
	if s.cfg.TagLine != "" {
		pdf.SetFont("Arial", "I", 11)
		pdf.CellFormat(0, 8, s.cfg.TagLine, "", 1, "C", false, 0, "")
	}
	pdf.Ln(8)

	pdf.SetFont("Arial", "B", 18)
	pdf.CellFormat(0, 12, "CERTIFICATE OF COMPLETION", "", 1, "C", false, 0, "")
	pdf.Ln(6)

	pdf.SetFont("Arial", "", 13)
	pdf.CellFormat(0, 8, "This is to certify that", "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "B", 17)
	pdf.CellFormat(0, 11, student.FullName, "", 1, "C", false, 0, "")
	if student.FatherName != "" && student.FatherName != models.PlaceholderValue {
		pdf.SetFont("Arial", "", 12)
		pdf.CellFormat(0, 8, fmt.Sprintf("S/o %s", student.FatherName), "", 1, "C", false, 0, "")
	}
	pdf.SetFont("Arial", "", 13)
	pdf.CellFormat(0, 9, fmt.Sprintf("has successfully completed the %s course", student.Course), "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 8, fmt.Sprintf("Registration No. %s", student.Registration), "", 1, "C", false, 0, "")
	pdf.Ln(16)

	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(120, 8, "Date: "+time.Now().Format("02/01/2006"), "", 0, "L", false, 0, "")
	signatory := s.cfg.SignatoryName
	if signatory == "" {
		signatory = "Director"
	}
	pdf.CellFormat(0, 8, signatory, "", 1, "R", false, 0, "")

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render certificate pdf: %w", err)
	}
	return buf.Bytes(), nil
}
