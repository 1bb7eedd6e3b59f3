// Package reconciler pairs the transactions of two independently recorded
// ledgers (for example an internal ledger and a bank statement).
//
// Two rows match when:
//   - department, amount and beneficiary are exactly equal (amount is
//     compared as text, "100" and "100.00" differ)
//   - their dates are at most DateTolerance days apart (default 1)
//   - the ledger B row has not already been matched
//
// Matching is greedy: each ledger A row, in order, takes the first
// available ledger B row that satisfies the predicate. It never looks for
// a closer date further down ledger B.
//
// Example usage:
//
//	outA, outB, err := reconciler.Reconcile(ledgerA, ledgerB)
//	if err != nil {
//		// malformed date or short row, nothing was reconciled
//	}
//	status := reconciler.StatusOf(outA[0]) // FOUND or MISSING
package reconciler

import (
	"fmt"
	"time"
)

const day = 24 * time.Hour

// Reconciler matches rows of two ledgers. It holds no state between calls
// and is safe for concurrent use.
type Reconciler struct {
	config Config
}

// New creates a reconciler with the given config
func New(config Config) (*Reconciler, error) {
	if config.DateLayout == "" {
		return nil, fmt.Errorf("%w: empty date layout", ErrInvalidConfig)
	}
	if config.DateTolerance < 0 {
		return nil, fmt.Errorf("%w: negative date tolerance %d", ErrInvalidConfig, config.DateTolerance)
	}
	return &Reconciler{config: config}, nil
}

// Config returns the reconciler configuration
func (r *Reconciler) Config() Config {
	return r.config
}

// Reconcile annotates copies of a and b with their match status using the
// default configuration. The inputs are never modified.
//
// Dates must be zero padded (2024-01-05). Unpadded forms such as 2024-1-5
// are rejected with a DateParseError.
func Reconcile(a, b Ledger) (Ledger, Ledger, error) {
	r := &Reconciler{config: DefaultConfig()}
	return r.Reconcile(a, b)
}

// Reconcile annotates copies of a and b with their match status.
func (r *Reconciler) Reconcile(a, b Ledger) (Ledger, Ledger, error) {
	result, err := r.Match(a, b)
	if err != nil {
		return nil, nil, err
	}
	return result.A, result.B, nil
}

// Match reconciles a against b and also reports which rows were paired.
// Every row of both ledgers is validated before matching starts, so a
// malformed row anywhere aborts the call without a partial result.
func (r *Reconciler) Match(a, b Ledger) (*Result, error) {
	datesA, err := r.parseDates(SideA, a)
	if err != nil {
		return nil, err
	}
	datesB, err := r.parseDates(SideB, b)
	if err != nil {
		return nil, err
	}

	outA := annotate(a)
	outB := annotate(b)
	matchedB := make([]bool, len(b))
	tolerance := time.Duration(r.config.DateTolerance) * day

	var pairs []Pair
	for i, rowA := range a {
		for j, rowB := range b {
			if matchedB[j] {
				continue
			}
			if !fieldsEqual(rowA, rowB) {
				continue
			}

			delta := datesB[j].Sub(datesA[i])
			if absDuration(delta) > tolerance {
				continue
			}

			matchedB[j] = true
			setStatus(outA[i], StatusFound)
			setStatus(outB[j], StatusFound)
			pairs = append(pairs, Pair{A: i, B: j, DayDelta: int(delta / day)})
			break
		}
	}

	return &Result{A: outA, B: outB, Pairs: pairs}, nil
}

// parseDates validates the shape of every row and parses its date column.
func (r *Reconciler) parseDates(side Side, ledger Ledger) ([]time.Time, error) {
	dates := make([]time.Time, len(ledger))
	for i, row := range ledger {
		if len(row) < RequiredFields {
			return nil, &RowShapeError{Side: side, Row: i, Fields: len(row)}
		}

		date, err := time.Parse(r.config.DateLayout, row[ColDate])
		if err != nil {
			return nil, &DateParseError{
				Side:   side,
				Row:    i,
				Value:  row[ColDate],
				Layout: r.config.DateLayout,
				Err:    err,
			}
		}
		dates[i] = date
	}
	return dates, nil
}

// fieldsEqual compares department, amount and beneficiary byte for byte.
func fieldsEqual(a, b Row) bool {
	return a[ColDepartment] == b[ColDepartment] &&
		a[ColAmount] == b[ColAmount] &&
		a[ColBeneficiary] == b[ColBeneficiary]
}

// annotate deep-copies a ledger and appends a MISSING status to every row.
func annotate(ledger Ledger) Ledger {
	out := make(Ledger, len(ledger))
	for i, row := range ledger {
		copied := make(Row, len(row), len(row)+1)
		copy(copied, row)
		out[i] = append(copied, string(StatusMissing))
	}
	return out
}

func setStatus(row Row, status Status) {
	row[len(row)-1] = string(status)
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
