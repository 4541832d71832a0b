package models

import "time"

// AggregateStats is the global read-model recomputed wholesale by scanning
// every student record. It is never maintained incrementally.
type AggregateStats struct {
	TotalEnrollments int       `db:"total_enrollments" json:"total_enrollments"`
	ThiriyaCount     int       `db:"thiriya_count" json:"thiriya_count"`
	NariyawalCount   int       `db:"nariyawal_count" json:"nariyawal_count"`
	TotalRevenue     int       `db:"total_revenue" json:"total_revenue"`
	TotalArrears     int       `db:"total_arrears" json:"total_arrears"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}
