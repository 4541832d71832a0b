package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/gyanveer/coaching-admin-api/internal/models"
	appErrors "github.com/gyanveer/coaching-admin-api/pkg/errors"
)

type courseRepository interface {
	List(ctx context.Context) ([]models.Course, error)
	Upsert(ctx context.Context, name string, fee int) error
	UpsertBatch(ctx context.Context, fees map[string]int) error
}

type courseStudentStore interface {
	ListAll(ctx context.Context) ([]models.Student, error)
	UpdateTotalFeesBatch(ctx context.Context, changes map[string]int) error
}

// UpsertCourseRequest holds payload for configuring a course fee.
type UpsertCourseRequest struct {
	Fee int `json:"fee" validate:"required,gt=0"`
}

// StandardizeResult reports the outcome of a fee-standardization run.
type StandardizeResult struct {
	CoursesSeeded   int `json:"courses_seeded"`
	StudentsUpdated int `json:"students_updated"`
}

// CourseService manages course fees and bulk standardization.
type CourseService struct {
	repo      courseRepository
	students  courseStudentStore
	validator *validator.Validate
	logger    *zap.Logger
	afterSync func()
}

// NewCourseService constructs the course service.
func NewCourseService(repo courseRepository, students courseStudentStore, validate *validator.Validate, logger *zap.Logger, afterSync func()) *CourseService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseService{repo: repo, students: students, validator: validate, logger: logger, afterSync: afterSync}
}

// List returns all configured courses.
func (s *CourseService) List(ctx context.Context) ([]models.Course, error) {
	courses, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list courses")
	}
	return courses, nil
}

// Upsert creates or updates one course fee.
func (s *CourseService) Upsert(ctx context.Context, name string, req UpsertCourseRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course payload")
	}
	if err := s.repo.Upsert(ctx, name, req.Fee); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save course")
	}
	return nil
}

// Standardize seeds the canonical course→fee table and corrects every student
// whose stored total disagrees with the canonical value for their course.
// Students on unknown courses are left untouched. All corrections commit in
// one batch; a failed batch changes nothing and reports no partial success.
// Running it twice in a row updates zero additional records.
func (s *CourseService) Standardize(ctx context.Context) (*StandardizeResult, error) {
	if err := s.repo.UpsertBatch(ctx, models.CanonicalCourseFees); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to seed course fees")
	}

	students, err := s.students.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to scan students")
	}

	changes := make(map[string]int)
	for _, student := range students {
		canonical, known := models.CanonicalCourseFees[student.Course]
		if !known || student.TotalFees == canonical {
			continue
		}
		changes[student.Registration] = canonical
	}

	if err := s.students.UpdateTotalFeesBatch(ctx, changes); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "fee standardization batch failed")
	}

	s.logger.Sugar().Infow("fee standardization finished", "students_updated", len(changes))
	if s.afterSync != nil && len(changes) > 0 {
		s.afterSync()
	}
	return &StandardizeResult{CoursesSeeded: len(models.CanonicalCourseFees), StudentsUpdated: len(changes)}, nil
}
