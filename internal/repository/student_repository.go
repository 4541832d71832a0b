package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/gyanveer/coaching-admin-api/internal/models"
)

// StudentRepository manages persistence for student records and their ledgers.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

const studentColumns = `registration, full_name, father_name, mobile, address, admission_date, course,
        total_fees, old_paid_fees, paid_fees, status, center, photo_url, created_at, updated_at`

// List returns students matching the provided filters.
func (r *StudentRepository) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	base := "FROM students s"
	args := []interface{}{}
	conditions := []string{"1=1"}

	if filter.Course != "" {
		conditions = append(conditions, fmt.Sprintf("s.course = $%d", len(args)+1))
		args = append(args, filter.Course)
	}
	if filter.Center != "" {
		conditions = append(conditions, fmt.Sprintf("s.center = $%d", len(args)+1))
		args = append(args, filter.Center)
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("s.status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(s.full_name) LIKE $%d OR LOWER(s.registration) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	base = fmt.Sprintf("%s WHERE %s", base, strings.Join(conditions, " AND "))

	allowedSorts := map[string]string{
		"full_name":      "s.full_name",
		"registration":   "s.registration",
		"admission_date": "s.admission_date",
		"created_at":     "s.created_at",
	}
	column, ok := allowedSorts[filter.SortBy]
	if !ok {
		column = "s.created_at"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT s.registration, s.full_name, s.father_name, s.mobile, s.address, s.admission_date,
        s.course, s.total_fees, s.old_paid_fees, s.paid_fees, s.status, s.center, s.photo_url, s.created_at, s.updated_at
        %s ORDER BY %s %s LIMIT %d OFFSET %d`, base, column, order, size, offset)

	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list students: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count students: %w", err)
	}
	return students, total, nil
}

// ListAll streams every student record, for full-table scans such as the
// stats recompute and fee standardization.
func (r *StudentRepository) ListAll(ctx context.Context) ([]models.Student, error) {
	query := fmt.Sprintf("SELECT %s FROM students ORDER BY registration", studentColumns)
	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query); err != nil {
		return nil, fmt.Errorf("scan students: %w", err)
	}
	return students, nil
}

// FindByRegistration fetches a student and their full ledger.
func (r *StudentRepository) FindByRegistration(ctx context.Context, registration string) (*models.StudentDetail, error) {
	query := fmt.Sprintf("SELECT %s FROM students WHERE registration = $1", studentColumns)
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, registration); err != nil {
		return nil, err
	}

	const ledgerQuery = `SELECT id, registration, amount, paid_on, installment_no, note, created_at
        FROM installments WHERE registration = $1 ORDER BY installment_no, created_at`
	installments := []models.Installment{}
	if err := r.db.SelectContext(ctx, &installments, ledgerQuery, registration); err != nil {
		return nil, fmt.Errorf("load installments: %w", err)
	}

	return &models.StudentDetail{Student: student, Installments: installments, Arrears: student.Arrears()}, nil
}

// ExistsByRegistration checks whether a registration number is already taken.
func (r *StudentRepository) ExistsByRegistration(ctx context.Context, registration string) (bool, error) {
	var exists int
	err := r.db.GetContext(ctx, &exists, "SELECT 1 FROM students WHERE registration = $1 LIMIT 1", registration)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check registration: %w", err)
	}
	return true, nil
}

// Create inserts a new student record without any installments.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	now := time.Now().UTC()
	if student.CreatedAt.IsZero() {
		student.CreatedAt = now
	}
	student.UpdatedAt = now
	const query = `INSERT INTO students (registration, full_name, father_name, mobile, address, admission_date, course,
        total_fees, old_paid_fees, paid_fees, status, center, photo_url, created_at, updated_at)
        VALUES (:registration, :full_name, :father_name, :mobile, :address, :admission_date, :course,
        :total_fees, :old_paid_fees, :paid_fees, :status, :center, :photo_url, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		return fmt.Errorf("create student: %w", err)
	}
	return nil
}

// Update modifies an existing student's biographical and fee fields. The
// running paid total is owned by the ledger operations and is not touched.
func (r *StudentRepository) Update(ctx context.Context, student *models.Student) error {
	student.UpdatedAt = time.Now().UTC()
	const query = `UPDATE students SET full_name = :full_name, father_name = :father_name, mobile = :mobile,
        address = :address, admission_date = :admission_date, course = :course, total_fees = :total_fees,
        old_paid_fees = :old_paid_fees, status = :status, center = :center, updated_at = :updated_at
        WHERE registration = :registration`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		return fmt.Errorf("update student: %w", err)
	}
	return nil
}

// UpdatePhotoURL stores the uploaded photo location on the record.
func (r *StudentRepository) UpdatePhotoURL(ctx context.Context, registration, photoURL string) error {
	const query = `UPDATE students SET photo_url = $2, updated_at = $3 WHERE registration = $1`
	if _, err := r.db.ExecContext(ctx, query, registration, photoURL, time.Now().UTC()); err != nil {
		return fmt.Errorf("update photo url: %w", err)
	}
	return nil
}

// Delete hard-deletes a student and their ledger. There is no soft delete.
func (r *StudentRepository) Delete(ctx context.Context, registration string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete student: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, "DELETE FROM installments WHERE registration = $1", registration); err != nil {
		return fmt.Errorf("delete installments: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM students WHERE registration = $1", registration); err != nil {
		return fmt.Errorf("delete student: %w", err)
	}
	return tx.Commit()
}

// Rekey migrates a record to a new registration number: copy under the new
// key, repoint the ledger, drop the old key. The three steps run in one
// transaction so a crash cannot leave both keys behind.
func (r *StudentRepository) Rekey(ctx context.Context, oldRegistration, newRegistration string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin rekey: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const copyQuery = `INSERT INTO students (registration, full_name, father_name, mobile, address, admission_date, course,
        total_fees, old_paid_fees, paid_fees, status, center, photo_url, created_at, updated_at)
        SELECT $2, full_name, father_name, mobile, address, admission_date, course,
        total_fees, old_paid_fees, paid_fees, status, center, photo_url, created_at, $3
        FROM students WHERE registration = $1`
	res, err := tx.ExecContext(ctx, copyQuery, oldRegistration, newRegistration, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("copy student under new key: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}

	if _, err := tx.ExecContext(ctx, "UPDATE installments SET registration = $2 WHERE registration = $1", oldRegistration, newRegistration); err != nil {
		return fmt.Errorf("repoint installments: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM students WHERE registration = $1", oldRegistration); err != nil {
		return fmt.Errorf("delete old key: %w", err)
	}
	return tx.Commit()
}

// CreateWithInstallments inserts a freshly imported student with their ledger.
func (r *StudentRepository) CreateWithInstallments(ctx context.Context, student *models.Student, installments []models.Installment) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin import create: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	now := time.Now().UTC()
	student.CreatedAt = now
	student.UpdatedAt = now
	const query = `INSERT INTO students (registration, full_name, father_name, mobile, address, admission_date, course,
        total_fees, old_paid_fees, paid_fees, status, center, photo_url, created_at, updated_at)
        VALUES (:registration, :full_name, :father_name, :mobile, :address, :admission_date, :course,
        :total_fees, :old_paid_fees, :paid_fees, :status, :center, :photo_url, :created_at, :updated_at)`
	if _, err := tx.NamedExecContext(ctx, query, student); err != nil {
		return fmt.Errorf("create imported student: %w", err)
	}
	if err := insertInstallments(ctx, tx, student.Registration, installments, now); err != nil {
		return err
	}
	return tx.Commit()
}

// ReplaceWithInstallments overwrites a student's fields and swaps the whole
// ledger for the merged list. Used by re-imports; interactive mutations go
// through the ledger repository's delta operations instead.
func (r *StudentRepository) ReplaceWithInstallments(ctx context.Context, student *models.Student, installments []models.Installment) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin import replace: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	now := time.Now().UTC()
	student.UpdatedAt = now
	const query = `UPDATE students SET full_name = :full_name, father_name = :father_name, mobile = :mobile,
        address = :address, admission_date = :admission_date, course = :course, total_fees = :total_fees,
        old_paid_fees = :old_paid_fees, paid_fees = :paid_fees, status = :status, center = :center,
        photo_url = :photo_url, updated_at = :updated_at
        WHERE registration = :registration`
	if _, err := tx.NamedExecContext(ctx, query, student); err != nil {
		return fmt.Errorf("update imported student: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM installments WHERE registration = $1", student.Registration); err != nil {
		return fmt.Errorf("clear ledger: %w", err)
	}
	if err := insertInstallments(ctx, tx, student.Registration, installments, now); err != nil {
		return err
	}
	return tx.Commit()
}

// UpdateTotalFeesBatch applies standardized fees in one transaction, chunked
// to stay under statement limits but committed all-or-nothing.
func (r *StudentRepository) UpdateTotalFeesBatch(ctx context.Context, changes map[string]int) error {
	if len(changes) == 0 {
		return nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin fee batch: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	now := time.Now().UTC()
	for registration, fee := range changes {
		if _, err := tx.ExecContext(ctx, "UPDATE students SET total_fees = $2, updated_at = $3 WHERE registration = $1", registration, fee, now); err != nil {
			return fmt.Errorf("standardize fee for %s: %w", registration, err)
		}
	}
	return tx.Commit()
}

func insertInstallments(ctx context.Context, tx *sqlx.Tx, registration string, installments []models.Installment, now time.Time) error {
	const query = `INSERT INTO installments (id, registration, amount, paid_on, installment_no, note, created_at)
        VALUES (:id, :registration, :amount, :paid_on, :installment_no, :note, :created_at)`
	for i := range installments {
		inst := &installments[i]
		if inst.ID == "" {
			inst.ID = uuid.NewString()
		}
		inst.Registration = registration
		if inst.CreatedAt.IsZero() {
			inst.CreatedAt = now
		}
		if _, err := tx.NamedExecContext(ctx, query, inst); err != nil {
			return fmt.Errorf("insert installment %d: %w", inst.InstallmentNo, err)
		}
	}
	return nil
}
