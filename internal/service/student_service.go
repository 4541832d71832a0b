package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/gyanveer/coaching-admin-api/internal/models"
	appErrors "github.com/gyanveer/coaching-admin-api/pkg/errors"
)

type studentRepository interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error)
	FindByRegistration(ctx context.Context, registration string) (*models.StudentDetail, error)
	ExistsByRegistration(ctx context.Context, registration string) (bool, error)
	Create(ctx context.Context, student *models.Student) error
	Update(ctx context.Context, student *models.Student) error
	UpdatePhotoURL(ctx context.Context, registration, photoURL string) error
}

type courseFeeLookup interface {
	FindByName(ctx context.Context, name string) (*models.Course, error)
}

type photoStore interface {
	Save(filename string, data []byte) (string, error)
}

// CreateStudentRequest holds payload for registering a student.
type CreateStudentRequest struct {
	Registration  string `json:"registration" validate:"required"`
	FullName      string `json:"full_name" validate:"required"`
	FatherName    string `json:"father_name"`
	Mobile        string `json:"mobile"`
	Address       string `json:"address"`
	AdmissionDate string `json:"admission_date"`
	Course        string `json:"course" validate:"required"`
	TotalFees     int    `json:"total_fees"`
	Status        string `json:"status"`
	Center        string `json:"center" validate:"required"`
}

// UpdateStudentRequest holds payload for editing a student's profile.
type UpdateStudentRequest struct {
	FullName      string `json:"full_name" validate:"required"`
	FatherName    string `json:"father_name"`
	Mobile        string `json:"mobile"`
	Address       string `json:"address"`
	AdmissionDate string `json:"admission_date"`
	Course        string `json:"course" validate:"required"`
	TotalFees     int    `json:"total_fees" validate:"required,gt=0"`
	Status        string `json:"status"`
	Center        string `json:"center" validate:"required"`
}

// StudentService handles student profile use-cases. Ledger mutations live in
// LedgerService; this service never touches paid totals.
type StudentService struct {
	repo      studentRepository
	courses   courseFeeLookup
	photos    photoStore
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudentService constructs the student service.
func NewStudentService(repo studentRepository, courses courseFeeLookup, photos photoStore, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{repo: repo, courses: courses, photos: photos, validator: validate, logger: logger}
}

// List returns students and pagination metadata.
func (s *StudentService) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, *models.Pagination, error) {
	students, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	pagination := &models.Pagination{Page: page, PageSize: size, TotalCount: total}
	return students, pagination, nil
}

// Get returns a student with the full installment ledger and arrears.
func (s *StudentService) Get(ctx context.Context, registration string) (*models.StudentDetail, error) {
	detail, err := s.repo.FindByRegistration(ctx, registration)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	return detail, nil
}

// Create registers a new student. When the payload omits the total fee, the
// configured course fee fills it in.
func (s *StudentService) Create(ctx context.Context, req CreateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}

	registration := strings.TrimSpace(req.Registration)
	exists, err := s.repo.ExistsByRegistration(ctx, registration)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check registration")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrDuplicateKey, "registration "+registration+" already exists")
	}

	totalFees := req.TotalFees
	if totalFees <= 0 {
		totalFees, err = s.feeForCourse(ctx, req.Course)
		if err != nil {
			return nil, err
		}
	}

	status := req.Status
	if status == "" {
		status = models.StudentStatusActive
	}

	student := &models.Student{
		Registration:  registration,
		FullName:      req.FullName,
		FatherName:    orPlaceholder(req.FatherName),
		Mobile:        orPlaceholder(req.Mobile),
		Address:       orPlaceholder(req.Address),
		AdmissionDate: orPlaceholder(req.AdmissionDate),
		Course:        req.Course,
		TotalFees:     totalFees,
		Status:        status,
		Center:        req.Center,
	}
	if err := s.repo.Create(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create student")
	}

	s.logger.Sugar().Infow("student created", "registration", student.Registration, "course", student.Course)
	return student, nil
}

// Update edits the profile fields of an existing student. Paid totals and the
// ledger are untouched.
func (s *StudentService) Update(ctx context.Context, registration string, req UpdateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}

	detail, err := s.repo.FindByRegistration(ctx, registration)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	student := detail.Student
	student.FullName = req.FullName
	student.FatherName = orPlaceholder(req.FatherName)
	student.Mobile = orPlaceholder(req.Mobile)
	student.Address = orPlaceholder(req.Address)
	student.AdmissionDate = orPlaceholder(req.AdmissionDate)
	student.Course = req.Course
	student.TotalFees = req.TotalFees
	if req.Status != "" {
		student.Status = req.Status
	}
	student.Center = req.Center

	if err := s.repo.Update(ctx, &student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update student")
	}
	return &student, nil
}

// SavePhoto stores an uploaded portrait and records its URL on the student.
func (s *StudentService) SavePhoto(ctx context.Context, registration, filename string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", appErrors.Clone(appErrors.ErrValidation, "empty photo upload")
	}
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".jpg", ".jpeg", ".png":
	default:
		return "", appErrors.Clone(appErrors.ErrValidation, "photo must be jpg or png")
	}

	exists, err := s.repo.ExistsByRegistration(ctx, registration)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check registration")
	}
	if !exists {
		return "", appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}

	relPath := filepath.Join("photos", fmt.Sprintf("%s%s", registration, ext))
	stored, err := s.photos.Save(relPath, data)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store photo")
	}
	if err := s.repo.UpdatePhotoURL(ctx, registration, stored); err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record photo")
	}
	return stored, nil
}

func (s *StudentService) feeForCourse(ctx context.Context, name string) (int, error) {
	if s.courses != nil {
		course, err := s.courses.FindByName(ctx, name)
		if err == nil {
			return course.Fee, nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to look up course fee")
		}
	}
	if fee, ok := models.CanonicalCourseFees[name]; ok {
		return fee, nil
	}
	return 0, appErrors.Clone(appErrors.ErrValidation, "no fee configured for course "+name)
}

func orPlaceholder(v string) string {
	if strings.TrimSpace(v) == "" {
		return models.PlaceholderValue
	}
	return v
}
