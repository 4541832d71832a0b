package importer

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/gyanveer/coaching-admin-api/internal/models"
)

// ParsedInstallment is one raw payment extracted from a ledger cell, before
// reconciliation against the stored record.
type ParsedInstallment struct {
	Amount int
	Date   string
}

// Candidate is a student record parsed from one logical row together with the
// raw payments found on that row.
type Candidate struct {
	Student      models.Student
	Installments []ParsedInstallment
}

var (
	leadingAmountPattern = regexp.MustCompile(`^\s*(\d+)`)
	dateTokenPattern     = regexp.MustCompile(`\d{1,2}[-/]\d{1,2}(?:[-/]\d{2,4})?`)
)

func cleanCell(s string) string {
	return strings.TrimSpace(s)
}

// valueOrPlaceholder substitutes the N/A placeholder for blank or dash cells.
func valueOrPlaceholder(s string) string {
	if s == "" || s == "-" {
		return models.PlaceholderValue
	}
	return s
}

// beforeParen returns the cell text preceding the first parenthesis.
func beforeParen(s string) string {
	if i := strings.Index(s, "("); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

var trailingAnnotationPattern = regexp.MustCompile(`\s*\([^)]*\)\s*$`)

// stripTrailingAnnotation removes annotations such as "(Change)" appended to
// name cells by the spreadsheet maintainers.
func stripTrailingAnnotation(s string) string {
	return strings.TrimSpace(trailingAnnotationPattern.ReplaceAllString(s, ""))
}

// parseIntCell parses a base-10 integer cell. The bool result reports whether
// the cell held a usable number.
func parseIntCell(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, false
	}
	return n, true
}

// skipLedgerCell reports whether a ledger cell records no payment at all.
// Dates legitimately contain dashes, so only an exact dash cell is skipped.
func skipLedgerCell(s string) bool {
	if s == "" || s == "-" {
		return true
	}
	lower := strings.ToLower(s)
	return strings.Contains(lower, "unpaid") || strings.Contains(lower, "free")
}

// parseAmountCell extracts a payment from a free-form Nariyawal ledger cell:
// a leading integer amount with an optional date token embedded in the
// remaining text, e.g. "700 (05-02)" or "500 10-03-2023 cash". Cells without
// a parsable amount yield no installment; that silent drop is the defined
// behaviour for this data.
func parseAmountCell(cell string) (ParsedInstallment, bool) {
	trimmed := strings.TrimSpace(cell)
	if skipLedgerCell(trimmed) {
		return ParsedInstallment{}, false
	}
	m := leadingAmountPattern.FindStringSubmatch(trimmed)
	if m == nil {
		return ParsedInstallment{}, false
	}
	amount, err := strconv.Atoi(m[1])
	if err != nil {
		return ParsedInstallment{}, false
	}
	date := ""
	rest := trimmed[len(m[0]):]
	if tokens := dateTokenPattern.FindAllString(rest, -1); len(tokens) > 0 {
		date = tokens[len(tokens)-1]
	}
	return ParsedInstallment{Amount: amount, Date: date}, true
}
