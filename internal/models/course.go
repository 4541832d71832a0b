package models

import "time"

// Course maps a course name to its canonical fee.
type Course struct {
	Name      string    `db:"name" json:"name"`
	Fee       int       `db:"fee" json:"fee"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// CanonicalCourseFees is the authoritative course→fee table. It seeds the
// courses store, backs the import-time fee fallback and drives bulk fee
// standardization. Kept in exactly one place so the parser and the
// standardizer can never disagree.
var CanonicalCourseFees = map[string]int{
	"MDCA":       9600,
	"C":          6000,
	"ADCA":       6000,
	"ADCA+":      12000,
	"DCA":        3600,
	"Typing":     2100,
	"Accounting": 3600,
	"CSC":        3500,
}
