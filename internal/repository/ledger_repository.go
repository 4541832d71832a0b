package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/gyanveer/coaching-admin-api/internal/models"
)

// LedgerRepository applies interactive payment mutations. The running paid
// total is always moved with SQL delta updates, never read-modify-write in
// application code, so two operators recording payments concurrently cannot
// lose each other's increments.
type LedgerRepository struct {
	db *sqlx.DB
}

// NewLedgerRepository constructs a LedgerRepository.
func NewLedgerRepository(db *sqlx.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// AppendInstallment inserts one payment and increments the student's running
// paid total by its amount in the same transaction. The increment runs first:
// zero rows touched means the student does not exist, reported as
// sql.ErrNoRows before the insert can trip the registration FK.
func (r *LedgerRepository) AppendInstallment(ctx context.Context, inst *models.Installment) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin collect fee: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const incrementQuery = `UPDATE students SET paid_fees = paid_fees + $2, updated_at = $3 WHERE registration = $1`
	res, err := tx.ExecContext(ctx, incrementQuery, inst.Registration, inst.Amount, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("increment paid fees: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}

	if inst.CreatedAt.IsZero() {
		inst.CreatedAt = time.Now().UTC()
	}
	const insertQuery = `INSERT INTO installments (id, registration, amount, paid_on, installment_no, note, created_at)
        VALUES (:id, :registration, :amount, :paid_on, :installment_no, :note, :created_at)`
	if _, err := tx.NamedExecContext(ctx, insertQuery, inst); err != nil {
		return fmt.Errorf("insert installment: %w", err)
	}
	return tx.Commit()
}

// RemoveInstallmentByID deletes the payment with the given id and decrements
// the running paid total by its amount. The decrement may drive the total
// negative; no floor is applied at this layer.
func (r *LedgerRepository) RemoveInstallmentByID(ctx context.Context, registration, installmentID string) (int, error) {
	return r.removeInstallment(ctx, registration,
		"DELETE FROM installments WHERE registration = $1 AND id = $2 RETURNING amount", installmentID)
}

// RemoveInstallmentByNo deletes by ledger position, the fallback for legacy
// entries imported without a stable id. installment_no is not unique once
// interactive collection has appended entries, so the delete is pinned to a
// single row; removing more would desync paid_fees from the ledger sum.
func (r *LedgerRepository) RemoveInstallmentByNo(ctx context.Context, registration string, installmentNo int) (int, error) {
	const query = `DELETE FROM installments WHERE ctid = (
        SELECT ctid FROM installments WHERE registration = $1 AND installment_no = $2
        ORDER BY created_at LIMIT 1) RETURNING amount`
	return r.removeInstallment(ctx, registration, query, installmentNo)
}

func (r *LedgerRepository) removeInstallment(ctx context.Context, registration, deleteQuery string, arg interface{}) (int, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin delete installment: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var amount int
	if err := tx.GetContext(ctx, &amount, deleteQuery, registration, arg); err != nil {
		if err == sql.ErrNoRows {
			return 0, sql.ErrNoRows
		}
		return 0, fmt.Errorf("delete installment: %w", err)
	}

	const decrementQuery = `UPDATE students SET paid_fees = paid_fees - $2, updated_at = $3 WHERE registration = $1`
	if _, err := tx.ExecContext(ctx, decrementQuery, registration, amount, time.Now().UTC()); err != nil {
		return 0, fmt.Errorf("decrement paid fees: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return amount, nil
}
