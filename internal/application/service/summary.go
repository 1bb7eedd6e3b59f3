package service

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/eshaffer321/ledger-reconcile/internal/domain/reconciler"
)

// SideSummary holds the outcome totals for one ledger
type SideSummary struct {
	Total           int             `json:"total"`
	Found           int             `json:"found"`
	Missing         int             `json:"missing"`
	MissingAmount   decimal.Decimal `json:"missing_amount"`
	UnparsedAmounts int             `json:"unparsed_amounts"` // missing rows whose amount is not a number
}

// Summary describes a reconciliation at a glance
type Summary struct {
	A             SideSummary `json:"a"`
	B             SideSummary `json:"b"`
	Matched       int         `json:"matched"`
	DateTolerance int         `json:"date_tolerance_days"`
}

// Balanced reports whether every row of both ledgers found a partner
func (s Summary) Balanced() bool {
	return s.A.Missing == 0 && s.B.Missing == 0
}

// Summarize computes totals for an engine result. Amounts only feed the
// missing total; matching itself compares them as text.
func Summarize(result *reconciler.Result, tolerance int) Summary {
	return Summary{
		A:             summarizeSide(result.A),
		B:             summarizeSide(result.B),
		Matched:       len(result.Pairs),
		DateTolerance: tolerance,
	}
}

func summarizeSide(ledger reconciler.Ledger) SideSummary {
	s := SideSummary{Total: len(ledger), MissingAmount: decimal.Zero}
	for _, row := range ledger {
		if reconciler.StatusOf(row) == reconciler.StatusFound {
			s.Found++
			continue
		}
		s.Missing++

		amount, err := decimal.NewFromString(strings.TrimSpace(row[reconciler.ColAmount]))
		if err != nil {
			s.UnparsedAmounts++
			continue
		}
		s.MissingAmount = s.MissingAmount.Add(amount)
	}
	return s
}
