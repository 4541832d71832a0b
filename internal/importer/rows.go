package importer

import (
	"regexp"
	"strings"
)

// Format selects one of the two spreadsheet export layouts. The operator picks
// the layout explicitly; it is never inferred from the content.
type Format string

const (
	// FormatNariyawal is the Nariyawal center export: wide comma rows that may
	// wrap across physical lines, legacy paid column, free-form ledger cells.
	FormatNariyawal Format = "nariyawal"
	// FormatThiriya is the Thiriya center export: one line per record with the
	// ledger laid out in repeating date/amount column groups.
	FormatThiriya Format = "thiriya"
)

// A Nariyawal record starts with two numeric columns (serial, registration).
var recordStartPattern = regexp.MustCompile(`^\s*\d+\s*,\s*\d+\s*,`)

// JoinLogicalRows reassembles logical records from raw Nariyawal export text.
// Lines that do not start a new record are continuations of the previous one
// and are concatenated with a separating space. Header and preamble lines
// before the first record are dropped.
func JoinLogicalRows(raw string) []string {
	lines := strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n")
	rows := make([]string, 0, len(lines))
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if recordStartPattern.MatchString(line) {
			rows = append(rows, line)
			continue
		}
		if len(rows) == 0 {
			continue
		}
		rows[len(rows)-1] += " " + trimmed
	}
	return rows
}

// SplitRows returns the physical lines of a Thiriya export, whose records
// never wrap. The first non-empty line is the column header and is skipped.
func SplitRows(raw string) []string {
	lines := strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n")
	rows := make([]string, 0, len(lines))
	headerSeen := false
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if !headerSeen {
			headerSeen = true
			continue
		}
		rows = append(rows, line)
	}
	return rows
}
