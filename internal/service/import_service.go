package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/gyanveer/coaching-admin-api/internal/importer"
	"github.com/gyanveer/coaching-admin-api/internal/models"
	appErrors "github.com/gyanveer/coaching-admin-api/pkg/errors"
)

type importStudentStore interface {
	FindByRegistration(ctx context.Context, registration string) (*models.StudentDetail, error)
	CreateWithInstallments(ctx context.Context, student *models.Student, installments []models.Installment) error
	ReplaceWithInstallments(ctx context.Context, student *models.Student, installments []models.Installment) error
}

// ImportService runs bulk spreadsheet imports. Students are processed one at
// a time; a failed write is logged and skipped so the rest of the batch still
// lands.
type ImportService struct {
	store     importStudentStore
	logger    *zap.Logger
	afterSync func()
}

// NewImportService constructs the import service. afterSync, when non-nil, is
// invoked once after every run so the caller can schedule a stats recompute.
func NewImportService(store importStudentStore, logger *zap.Logger, afterSync func()) *ImportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ImportService{store: store, logger: logger, afterSync: afterSync}
}

// Run imports raw export text in the given format and returns the number of
// students successfully processed. Malformed rows are skipped silently; they
// are neither counted nor reported, matching the tolerance the legacy
// spreadsheets require.
func (s *ImportService) Run(ctx context.Context, format importer.Format, raw string) (int, error) {
	var rows []string
	switch format {
	case importer.FormatNariyawal:
		rows = importer.JoinLogicalRows(raw)
	case importer.FormatThiriya:
		rows = importer.SplitRows(raw)
	default:
		return 0, appErrors.Clone(appErrors.ErrValidation, "unknown import format")
	}

	sortByDate := format == importer.FormatThiriya
	processed := 0
	for _, row := range rows {
		var (
			cand *importer.Candidate
			ok   bool
		)
		if format == importer.FormatNariyawal {
			cand, ok = importer.ParseNariyawalRow(row)
		} else {
			cand, ok = importer.ParseThiriyaRow(row)
		}
		if !ok {
			continue
		}
		if err := s.apply(ctx, cand, sortByDate); err != nil {
			s.logger.Warn("import failed for student",
				zap.String("registration", cand.Student.Registration),
				zap.Error(err))
			continue
		}
		processed++
	}

	s.logger.Sugar().Infow("import finished", "format", string(format), "rows", len(rows), "processed", processed)
	if s.afterSync != nil {
		s.afterSync()
	}
	return processed, nil
}

// apply merges one parsed candidate into the store.
func (s *ImportService) apply(ctx context.Context, cand *importer.Candidate, sortByDate bool) error {
	existing, err := s.store.FindByRegistration(ctx, cand.Student.Registration)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return err
		}
		merged := importer.Merge(nil, cand.Installments, sortByDate)
		student := cand.Student
		student.PaidFees = importer.Sum(merged)
		return s.store.CreateWithInstallments(ctx, &student, merged)
	}

	merged := importer.Merge(existing.Installments, cand.Installments, sortByDate)
	student := cand.Student
	// The stored legacy amount is authoritative once a record exists.
	student.OldPaidFees = existing.OldPaidFees
	student.PaidFees = importer.Sum(merged)
	if isPlaceholder(student.Mobile) && !isPlaceholder(existing.Mobile) {
		student.Mobile = existing.Mobile
	}
	if student.PhotoURL == "" {
		student.PhotoURL = existing.PhotoURL
	}
	return s.store.ReplaceWithInstallments(ctx, &student, merged)
}

func isPlaceholder(v string) bool {
	return v == "" || v == "-" || v == models.PlaceholderValue
}
