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

type mockStudentRepo struct {
	students map[string]*models.StudentDetail
	photoURL string
}

func (m *mockStudentRepo) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	out := make([]models.Student, 0, len(m.students))
	for _, detail := range m.students {
		out = append(out, detail.Student)
	}
	return out, len(out), nil
}

func (m *mockStudentRepo) FindByRegistration(ctx context.Context, registration string) (*models.StudentDetail, error) {
	if detail, ok := m.students[registration]; ok {
		return detail, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockStudentRepo) ExistsByRegistration(ctx context.Context, registration string) (bool, error) {
	_, ok := m.students[registration]
	return ok, nil
}

func (m *mockStudentRepo) Create(ctx context.Context, student *models.Student) error {
	if m.students == nil {
		m.students = make(map[string]*models.StudentDetail)
	}
	m.students[student.Registration] = &models.StudentDetail{Student: *student}
	return nil
}

func (m *mockStudentRepo) Update(ctx context.Context, student *models.Student) error {
	m.students[student.Registration] = &models.StudentDetail{Student: *student}
	return nil
}

func (m *mockStudentRepo) UpdatePhotoURL(ctx context.Context, registration, photoURL string) error {
	m.photoURL = photoURL
	return nil
}

type mockCourseLookup struct {
	fees map[string]int
}

func (m *mockCourseLookup) FindByName(ctx context.Context, name string) (*models.Course, error) {
	if fee, ok := m.fees[name]; ok {
		return &models.Course{Name: name, Fee: fee}, nil
	}
	return nil, sql.ErrNoRows
}

type mockPhotoStore struct {
	saved map[string][]byte
}

func (m *mockPhotoStore) Save(filename string, data []byte) (string, error) {
	if m.saved == nil {
		m.saved = make(map[string][]byte)
	}
	m.saved[filename] = data
	return filename, nil
}

func newTestStudentService(repo *mockStudentRepo, courses *mockCourseLookup) *StudentService {
	if courses == nil {
		courses = &mockCourseLookup{}
	}
	return NewStudentService(repo, courses, &mockPhotoStore{}, nil, zap.NewNop())
}

func TestCreateStudentDefaultsFeeFromCourseTable(t *testing.T) {
	repo := &mockStudentRepo{}
	courses := &mockCourseLookup{fees: map[string]int{"MDCA": 9600}}
	svc := newTestStudentService(repo, courses)

	student, err := svc.Create(context.Background(), CreateStudentRequest{
		Registration: "500",
		FullName:     "Asha Verma",
		Course:       "MDCA",
		Center:       models.CenterThiriya,
	})
	require.NoError(t, err)
	assert.Equal(t, 9600, student.TotalFees)
	assert.Equal(t, models.StudentStatusActive, student.Status)
	assert.Equal(t, models.PlaceholderValue, student.Mobile)
}

func TestCreateStudentFallsBackToCanonicalFees(t *testing.T) {
	svc := newTestStudentService(&mockStudentRepo{}, &mockCourseLookup{})

	student, err := svc.Create(context.Background(), CreateStudentRequest{
		Registration: "501",
		FullName:     "Rohit Saini",
		Course:       "DCA",
		Center:       models.CenterNariyawal,
	})
	require.NoError(t, err)
	assert.Equal(t, 3600, student.TotalFees)
}

func TestCreateStudentRejectsDuplicateRegistration(t *testing.T) {
	repo := &mockStudentRepo{students: map[string]*models.StudentDetail{
		"500": {Student: models.Student{Registration: "500"}},
	}}
	svc := newTestStudentService(repo, nil)

	_, err := svc.Create(context.Background(), CreateStudentRequest{
		Registration: "500", FullName: "Dup", Course: "DCA", Center: models.CenterThiriya,
	})
	assert.Error(t, err)
}

func TestCreateStudentUnknownCourseWithoutFee(t *testing.T) {
	svc := newTestStudentService(&mockStudentRepo{}, &mockCourseLookup{})
	_, err := svc.Create(context.Background(), CreateStudentRequest{
		Registration: "502", FullName: "Name", Course: "Spoken English", Center: models.CenterThiriya,
	})
	assert.Error(t, err)
}

func TestUpdateStudentKeepsLedgerFields(t *testing.T) {
	repo := &mockStudentRepo{students: map[string]*models.StudentDetail{
		"500": {Student: models.Student{Registration: "500", PaidFees: 2000, OldPaidFees: 300, TotalFees: 6000}},
	}}
	svc := newTestStudentService(repo, nil)

	updated, err := svc.Update(context.Background(), "500", UpdateStudentRequest{
		FullName: "Asha Verma", Course: "ADCA", TotalFees: 6000, Center: models.CenterThiriya,
	})
	require.NoError(t, err)
	assert.Equal(t, 2000, updated.PaidFees)
	assert.Equal(t, 300, updated.OldPaidFees)
}

func TestSavePhotoValidatesExtension(t *testing.T) {
	repo := &mockStudentRepo{students: map[string]*models.StudentDetail{
		"500": {Student: models.Student{Registration: "500"}},
	}}
	svc := newTestStudentService(repo, nil)

	_, err := svc.SavePhoto(context.Background(), "500", "virus.exe", []byte{1})
	assert.Error(t, err)

	url, err := svc.SavePhoto(context.Background(), "500", "face.jpg", []byte{1, 2, 3})
	require.NoError(t, err)
	assert.Contains(t, url, "500.jpg")
	assert.Equal(t, url, repo.photoURL)
}

func TestSavePhotoUnknownStudent(t *testing.T) {
	svc := newTestStudentService(&mockStudentRepo{}, nil)
	_, err := svc.SavePhoto(context.Background(), "ghost", "face.png", []byte{1})
	assert.Error(t, err)
}
