package importer

import (
	"strings"

	"github.com/gyanveer/coaching-admin-api/internal/models"
)

// ParseThiriyaRow parses one row of the Thiriya export.
//
// Column offsets: serial, name, father, registration, course, total fee,
// admission date, address, then the ledger in repeating groups of three
// columns (unused, date, amount). An amount cell may pack several +-joined
// payments whose dates live +-joined in the sibling date cell, paired
// positionally with the first date as fallback when the lists are uneven.
func ParseThiriyaRow(row string) (*Candidate, bool) {
	cols := strings.Split(row, ",")
	if len(cols) < minThiriyaColumns {
		return nil, false
	}

	reg := cleanCell(cols[3])
	name := cleanCell(cols[1])
	if reg == "" || reg == "-" || name == "" || name == "-" {
		return nil, false
	}

	course := beforeParen(cols[4])
	fee, ok := parseIntCell(cols[5])
	if !ok {
		fee = models.CanonicalCourseFees[course]
	}

	candidate := &Candidate{
		Student: models.Student{
			Registration:  reg,
			FullName:      name,
			FatherName:    valueOrPlaceholder(cleanCell(cols[2])),
			Mobile:        models.PlaceholderValue,
			Address:       valueOrPlaceholder(cleanCell(cols[7])),
			AdmissionDate: valueOrPlaceholder(cleanCell(cols[6])),
			Course:        course,
			TotalFees:     fee,
			Status:        models.StudentStatusActive,
			Center:        models.CenterThiriya,
		},
	}

	for i := minThiriyaColumns; i+2 < len(cols); i += 3 {
		candidate.Installments = append(candidate.Installments, parseInstallmentGroup(cols[i+1], cols[i+2])...)
	}
	return candidate, true
}

// parseInstallmentGroup expands one date/amount column pair into payments.
func parseInstallmentGroup(dateCell, amountCell string) []ParsedInstallment {
	trimmedAmount := strings.TrimSpace(amountCell)
	if skipLedgerCell(trimmedAmount) {
		return nil
	}

	amounts := strings.Split(trimmedAmount, "+")
	dates := strings.Split(strings.TrimSpace(dateCell), "+")

	out := make([]ParsedInstallment, 0, len(amounts))
	for i, rawAmount := range amounts {
		amount, ok := parseIntCell(rawAmount)
		if !ok {
			continue
		}
		date := ""
		switch {
		case i < len(dates):
			date = strings.TrimSpace(dates[i])
		case len(dates) > 0:
			date = strings.TrimSpace(dates[0])
		}
		out = append(out, ParsedInstallment{Amount: amount, Date: date})
	}
	return out
}
