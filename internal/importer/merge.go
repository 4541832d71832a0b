package importer

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/gyanveer/coaching-admin-api/internal/models"
)

// Merge reconciles freshly parsed payments with a student's stored ledger.
//
// Two installments with the same (date, amount) pair collapse to one entry no
// matter which side contributed them. The key cannot tell apart two genuine
// payments of the same amount on the same day; that imprecision is carried
// over from the legacy ledgers on purpose and must not be "fixed" here.
//
// Order is preserved (stored entries first, then new ones), except that the
// Thiriya import path sorts by parsed date before numbering while the
// Nariyawal path trusts insertion order; sortByDate selects between the two.
// Installment numbers are reassigned densely 1..N on the merged list.
func Merge(existing []models.Installment, parsed []ParsedInstallment, sortByDate bool) []models.Installment {
	seen := make(map[string]struct{}, len(existing)+len(parsed))
	merged := make([]models.Installment, 0, len(existing)+len(parsed))

	add := func(inst models.Installment) {
		key := fmt.Sprintf("%s|%d", inst.PaidOn, inst.Amount)
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		merged = append(merged, inst)
	}

	for _, inst := range existing {
		add(inst)
	}
	for _, p := range parsed {
		add(models.Installment{Amount: p.Amount, PaidOn: p.Date})
	}

	if sortByDate {
		sort.SliceStable(merged, func(i, j int) bool {
			return parseLedgerDate(merged[i].PaidOn).Before(parseLedgerDate(merged[j].PaidOn))
		})
	}

	for i := range merged {
		merged[i].InstallmentNo = i + 1
	}
	return merged
}

// Sum totals the amounts across a ledger. After any merge the student's
// running paid amount must equal this sum.
func Sum(installments []models.Installment) int {
	total := 0
	for _, inst := range installments {
		total += inst.Amount
	}
	return total
}

var ledgerDateLayouts = []string{"2-1-2006", "2-1-06", "2-1"}

// parseLedgerDate interprets the loose day-month(-year) strings found in
// ledger cells. Unparsable values map to the zero time so they sort first
// while keeping their relative order.
func parseLedgerDate(raw string) time.Time {
	s := strings.ReplaceAll(strings.TrimSpace(raw), "/", "-")
	for _, layout := range ledgerDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
