package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gyanveer/coaching-admin-api/internal/models"
	appErrors "github.com/gyanveer/coaching-admin-api/pkg/errors"
)

type ledgerRepository interface {
	AppendInstallment(ctx context.Context, inst *models.Installment) error
	RemoveInstallmentByID(ctx context.Context, registration, installmentID string) (int, error)
	RemoveInstallmentByNo(ctx context.Context, registration string, installmentNo int) (int, error)
}

type ledgerStudentStore interface {
	FindByRegistration(ctx context.Context, registration string) (*models.StudentDetail, error)
	ExistsByRegistration(ctx context.Context, registration string) (bool, error)
	Delete(ctx context.Context, registration string) error
	Rekey(ctx context.Context, oldRegistration, newRegistration string) error
}

// CollectFeeRequest holds payload for recording one payment.
type CollectFeeRequest struct {
	Amount        int    `json:"amount" validate:"required,gt=0"`
	Date          string `json:"date" validate:"required"`
	InstallmentNo int    `json:"installment_no" validate:"required,gt=0"`
	Note          string `json:"note"`
}

// DeleteInstallmentRequest identifies the entry to retract. Legacy entries
// imported without an id are matched by their ledger position instead.
type DeleteInstallmentRequest struct {
	InstallmentID string `json:"installment_id"`
	InstallmentNo int    `json:"installment_no"`
}

// RekeyRequest moves a record to a new registration number.
type RekeyRequest struct {
	NewRegistration string `json:"new_registration" validate:"required"`
}

// LedgerService applies interactive fee mutations for a single student.
type LedgerService struct {
	repo      ledgerRepository
	students  ledgerStudentStore
	validator *validator.Validate
	logger    *zap.Logger
}

// NewLedgerService constructs the ledger service.
func NewLedgerService(repo ledgerRepository, students ledgerStudentStore, validate *validator.Validate, logger *zap.Logger) *LedgerService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LedgerService{repo: repo, students: students, validator: validate, logger: logger}
}

// CollectFee records a new payment against the student's ledger. The running
// paid total is moved by a storage-level increment so concurrent collections
// never lose updates.
func (s *LedgerService) CollectFee(ctx context.Context, registration string, req CollectFeeRequest) (*models.Installment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payment payload")
	}

	inst := &models.Installment{
		ID:            uuid.NewString(),
		Registration:  registration,
		Amount:        req.Amount,
		PaidOn:        formatCollectionDate(req.Date),
		InstallmentNo: req.InstallmentNo,
		Note:          req.Note,
	}
	if err := s.repo.AppendInstallment(ctx, inst); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record payment")
	}

	s.logger.Sugar().Infow("fee collected", "registration", registration, "amount", req.Amount, "installment_no", req.InstallmentNo)
	return inst, nil
}

// DeleteInstallment retracts one payment and decrements the running paid
// total by its amount. The total may go negative; no floor is applied here.
func (s *LedgerService) DeleteInstallment(ctx context.Context, registration string, req DeleteInstallmentRequest) error {
	var (
		amount int
		err    error
	)
	switch {
	case req.InstallmentID != "":
		amount, err = s.repo.RemoveInstallmentByID(ctx, registration, req.InstallmentID)
	case req.InstallmentNo > 0:
		amount, err = s.repo.RemoveInstallmentByNo(ctx, registration, req.InstallmentNo)
	default:
		return appErrors.Clone(appErrors.ErrValidation, "installment id or number required")
	}
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "installment not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete installment")
	}

	s.logger.Sugar().Infow("installment deleted", "registration", registration, "amount", amount)
	return nil
}

// DeleteStudent hard-deletes the record and its ledger. Irreversible.
func (s *LedgerService) DeleteStudent(ctx context.Context, registration string) error {
	if _, err := s.students.FindByRegistration(ctx, registration); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	if err := s.students.Delete(ctx, registration); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete student")
	}
	s.logger.Sugar().Infow("student deleted", "registration", registration)
	return nil
}

// RekeyStudent migrates the record to a new registration number, refusing
// when the target key is already taken.
func (s *LedgerService) RekeyStudent(ctx context.Context, registration string, req RekeyRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid rekey payload")
	}
	newRegistration := strings.TrimSpace(req.NewRegistration)
	if newRegistration == registration {
		return appErrors.Clone(appErrors.ErrValidation, "new registration equals the current one")
	}

	taken, err := s.students.ExistsByRegistration(ctx, newRegistration)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check registration")
	}
	if taken {
		return appErrors.Clone(appErrors.ErrDuplicateKey, "registration "+newRegistration+" already exists")
	}

	if err := s.students.Rekey(ctx, registration, newRegistration); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to rekey student")
	}

	s.logger.Sugar().Infow("student rekeyed", "from", registration, "to", newRegistration)
	return nil
}

var collectionDateLayouts = []string{"2006-01-02", "02/01/2006", "2-1-2006"}

// formatCollectionDate normalizes an operator-entered date to dd/mm/yyyy.
// Unrecognized input is stored verbatim rather than rejected, matching how
// the ledgers have always absorbed loose dates.
func formatCollectionDate(raw string) string {
	trimmed := strings.TrimSpace(raw)
	normalized := strings.ReplaceAll(trimmed, "/", "-")
	for _, layout := range collectionDateLayouts {
		layout = strings.ReplaceAll(layout, "/", "-")
		if t, err := time.Parse(layout, normalized); err == nil {
			return t.Format("02/01/2006")
		}
	}
	return trimmed
}
