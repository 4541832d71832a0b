package models

import "time"

// Student statuses as stored on the record. The column is free text in data
// migrated from spreadsheets, so consumers must tolerate values outside this set.
const (
	StudentStatusUnpaid = "unpaid"
	StudentStatusActive = "active"
	StudentStatusPass   = "pass"
)

// Known center tags. Aggregate partitioning is binary: Thiriya vs everything else.
const (
	CenterThiriya   = "Thiriya"
	CenterNariyawal = "Nariyawal"
)

// PlaceholderValue marks biographical fields absent from the source data.
const PlaceholderValue = "N/A"

// Student represents one enrolled student keyed by registration number.
type Student struct {
	Registration  string    `db:"registration" json:"registration"`
	FullName      string    `db:"full_name" json:"full_name"`
	FatherName    string    `db:"father_name" json:"father_name"`
	Mobile        string    `db:"mobile" json:"mobile"`
	Address       string    `db:"address" json:"address"`
	AdmissionDate string    `db:"admission_date" json:"admission_date"`
	Course        string    `db:"course" json:"course"`
	TotalFees     int       `db:"total_fees" json:"total_fees"`
	OldPaidFees   int       `db:"old_paid_fees" json:"old_paid_fees"`
	PaidFees      int       `db:"paid_fees" json:"paid_fees"`
	Status        string    `db:"status" json:"status"`
	Center        string    `db:"center" json:"center"`
	PhotoURL      string    `db:"photo_url" json:"photo_url,omitempty"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// Paid returns the combined legacy and running paid amount.
func (s Student) Paid() int {
	return s.PaidFees + s.OldPaidFees
}

// Arrears returns the unpaid remainder floored at zero. Overpayment is
// representable on the record and must never surface as negative arrears.
func (s Student) Arrears() int {
	due := s.TotalFees - s.Paid()
	if due < 0 {
		return 0
	}
	return due
}

// Installment is one recorded payment event against a student's total fee.
// PaidOn carries the date exactly as recorded (day-month text from imports,
// dd/mm/yyyy from interactive collection).
type Installment struct {
	ID            string    `db:"id" json:"id"`
	Registration  string    `db:"registration" json:"registration"`
	Amount        int       `db:"amount" json:"amount"`
	PaidOn        string    `db:"paid_on" json:"date"`
	InstallmentNo int       `db:"installment_no" json:"installment_no"`
	Note          string    `db:"note" json:"note"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// StudentDetail combines a student with their full installment ledger.
type StudentDetail struct {
	Student
	Installments []Installment `json:"installments"`
	Arrears      int           `json:"arrears"`
}

// StudentFilter captures filtering criteria for listing students.
type StudentFilter struct {
	Search    string
	Course    string
	Center    string
	Status    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
