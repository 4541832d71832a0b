package importer

import (
	"strings"

	"github.com/gyanveer/coaching-admin-api/internal/models"
)

// Minimum column counts below which a row cannot hold a usable record.
const (
	minNariyawalColumns = 10
	minThiriyaColumns   = 8
)

// ParseNariyawalRow parses one logical row of the Nariyawal export.
//
// Column offsets: serial, registration, name, status, course, father, mobile,
// unused, address, admission date, legacy paid amount, then one free-form
// ledger cell per column. Returns false when the row is too short or lacks a
// registration or name; such rows are skipped without error.
func ParseNariyawalRow(row string) (*Candidate, bool) {
	cols := strings.Split(row, ",")
	if len(cols) < minNariyawalColumns {
		return nil, false
	}

	reg := cleanCell(cols[1])
	name := stripTrailingAnnotation(cleanCell(cols[2]))
	if reg == "" || reg == "-" || name == "" || name == "-" {
		return nil, false
	}

	course := beforeParen(cols[4])
	fee, known := models.CanonicalCourseFees[course]
	if !known {
		// Unrecognised course: trust whatever numeric value the sheet carries.
		fee, _ = parseIntCell(cols[5])
	}

	oldPaid := 0
	if len(cols) > 10 {
		oldPaid, _ = parseIntCell(cols[10])
	}

	candidate := &Candidate{
		Student: models.Student{
			Registration:  reg,
			FullName:      name,
			Status:        strings.ToLower(beforeParen(cols[3])),
			Course:        course,
			FatherName:    valueOrPlaceholder(cleanCell(cols[5])),
			Mobile:        valueOrPlaceholder(cleanCell(cols[6])),
			Address:       valueOrPlaceholder(cleanCell(cols[8])),
			AdmissionDate: valueOrPlaceholder(cleanCell(cols[9])),
			TotalFees:     fee,
			OldPaidFees:   oldPaid,
			Center:        models.CenterNariyawal,
		},
	}

	if len(cols) > 11 {
		for _, cell := range cols[11:] {
			if inst, ok := parseAmountCell(cell); ok {
				candidate.Installments = append(candidate.Installments, inst)
			}
		}
	}
	return candidate, true
}
