package reconciler

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Helper to create a test row
func row(date, department, amount, beneficiary string) Row {
	return Row{date, department, amount, beneficiary}
}

func statuses(ledger Ledger) []Status {
	out := make([]Status, len(ledger))
	for i, r := range ledger {
		out[i] = StatusOf(r)
	}
	return out
}

func TestReconcile_OneDayApart_Found(t *testing.T) {
	// Arrange
	a := Ledger{row("2024-01-05", "Sales", "100", "Acme")}
	b := Ledger{row("2024-01-06", "Sales", "100", "Acme")}

	// Act
	outA, outB, err := Reconcile(a, b)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, Ledger{{"2024-01-05", "Sales", "100", "Acme", "FOUND"}}, outA)
	assert.Equal(t, Ledger{{"2024-01-06", "Sales", "100", "Acme", "FOUND"}}, outB)
}

func TestReconcile_TwoDaysApart_Missing(t *testing.T) {
	// Arrange
	a := Ledger{row("2024-01-05", "Sales", "100", "Acme")}
	b := Ledger{row("2024-01-07", "Sales", "100", "Acme")}

	// Act
	outA, outB, err := Reconcile(a, b)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, []Status{StatusMissing}, statuses(outA))
	assert.Equal(t, []Status{StatusMissing}, statuses(outB))
}

func TestReconcile_DateWindowIsSymmetric(t *testing.T) {
	a := Ledger{row("2024-03-01", "Ops", "10", "Bob")}
	b := Ledger{row("2024-02-29", "Ops", "10", "Bob")} // leap day, one day earlier

	outA, outB, err := Reconcile(a, b)

	require.NoError(t, err)
	assert.Equal(t, StatusFound, StatusOf(outA[0]))
	assert.Equal(t, StatusFound, StatusOf(outB[0]))
}

func TestReconcile_FieldExactness(t *testing.T) {
	tests := []struct {
		name string
		b    Row
	}{
		{name: "amount text differs", b: row("2024-01-05", "Sales", "100.0", "Acme")},
		{name: "department case differs", b: row("2024-01-05", "sales", "100", "Acme")},
		{name: "beneficiary differs", b: row("2024-01-05", "Sales", "100", "Acme Inc")},
		{name: "trailing space", b: row("2024-01-05", "Sales", "100 ", "Acme")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := Ledger{row("2024-01-05", "Sales", "100", "Acme")}

			outA, outB, err := Reconcile(a, Ledger{tt.b})

			require.NoError(t, err)
			assert.Equal(t, StatusMissing, StatusOf(outA[0]))
			assert.Equal(t, StatusMissing, StatusOf(outB[0]))
		})
	}
}

func TestReconcile_FirstMatchWins(t *testing.T) {
	// Arrange - B2 is a closer date but B1 comes first
	a := Ledger{
		row("2024-01-05", "Sales", "100", "Acme"),
		row("2024-01-05", "Sales", "100", "Acme"),
	}
	b := Ledger{
		row("2024-01-04", "Sales", "100", "Acme"),
		row("2024-01-05", "Sales", "100", "Acme"),
	}

	r, err := New(DefaultConfig())
	require.NoError(t, err)

	// Act
	result, err := r.Match(a, b)

	// Assert
	require.NoError(t, err)
	require.Len(t, result.Pairs, 2)
	assert.Equal(t, Pair{A: 0, B: 0, DayDelta: -1}, result.Pairs[0])
	assert.Equal(t, Pair{A: 1, B: 1, DayDelta: 0}, result.Pairs[1])
}

func TestReconcile_NoDoubleMatching(t *testing.T) {
	// Arrange - two A rows compete for a single B row
	a := Ledger{
		row("2024-01-05", "Sales", "100", "Acme"),
		row("2024-01-05", "Sales", "100", "Acme"),
	}
	b := Ledger{row("2024-01-05", "Sales", "100", "Acme")}

	// Act
	outA, outB, err := Reconcile(a, b)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, []Status{StatusFound, StatusMissing}, statuses(outA))
	assert.Equal(t, []Status{StatusFound}, statuses(outB))
}

func TestReconcile_GreedyIsNotOptimal(t *testing.T) {
	// A1 could use B1 or B2, A2 only B1. Greedy gives B1 to A1 and strands A2
	// even though A1-B2 / A2-B1 would pair everything.
	a := Ledger{
		row("2024-01-05", "Sales", "100", "Acme"),
		row("2024-01-04", "Sales", "100", "Acme"),
	}
	b := Ledger{
		row("2024-01-04", "Sales", "100", "Acme"),
		row("2024-01-06", "Sales", "100", "Acme"),
	}

	outA, outB, err := Reconcile(a, b)

	require.NoError(t, err)
	assert.Equal(t, []Status{StatusFound, StatusMissing}, statuses(outA))
	assert.Equal(t, []Status{StatusFound, StatusMissing}, statuses(outB))
}

func TestReconcile_DoesNotMutateInputs(t *testing.T) {
	// Arrange
	a := Ledger{
		row("2024-01-05", "Sales", "100", "Acme"),
		{"2024-01-09", "Ops", "7", "Bob", "memo"},
	}
	b := Ledger{row("2024-01-06", "Sales", "100", "Acme")}
	snapshotA := Ledger{
		row("2024-01-05", "Sales", "100", "Acme"),
		{"2024-01-09", "Ops", "7", "Bob", "memo"},
	}
	snapshotB := Ledger{row("2024-01-06", "Sales", "100", "Acme")}

	// Act
	outA, outB, err := Reconcile(a, b)
	require.NoError(t, err)
	outA[0][ColAmount] = "changed"
	outB[0][ColDate] = "changed"

	// Assert
	assert.Equal(t, snapshotA, a)
	assert.Equal(t, snapshotB, b)
	assert.Len(t, a[0], 4)
}

func TestReconcile_PreservesOrderLengthAndExtraFields(t *testing.T) {
	a := Ledger{
		{"2024-01-09", "Ops", "7", "Bob", "memo"},
		row("2024-01-05", "Sales", "100", "Acme"),
	}
	b := Ledger{
		row("2024-02-01", "HR", "1", "Eve"),
		row("2024-01-05", "Sales", "100", "Acme"),
		row("2024-01-10", "Ops", "7", "Bob"),
	}

	outA, outB, err := Reconcile(a, b)

	require.NoError(t, err)
	assert.Equal(t, Ledger{
		{"2024-01-09", "Ops", "7", "Bob", "memo", "FOUND"},
		{"2024-01-05", "Sales", "100", "Acme", "FOUND"},
	}, outA)
	assert.Equal(t, Ledger{
		{"2024-02-01", "HR", "1", "Eve", "MISSING"},
		{"2024-01-05", "Sales", "100", "Acme", "FOUND"},
		{"2024-01-10", "Ops", "7", "Bob", "FOUND"},
	}, outB)
}

func TestReconcile_FoundCountsAreEqual(t *testing.T) {
	a := Ledger{
		row("2024-01-01", "A", "1", "x"),
		row("2024-01-02", "A", "1", "x"),
		row("2024-01-03", "B", "2", "y"),
		row("2024-01-10", "C", "3", "z"),
	}
	b := Ledger{
		row("2024-01-02", "A", "1", "x"),
		row("2024-01-04", "B", "2", "y"),
		row("2024-01-03", "A", "1", "x"),
		row("2024-01-03", "A", "1", "x"),
	}

	outA, outB, err := Reconcile(a, b)

	require.NoError(t, err)
	foundA, missingA := Counts(outA)
	foundB, missingB := Counts(outB)
	assert.Equal(t, foundA, foundB)
	assert.Equal(t, len(a), foundA+missingA)
	assert.Equal(t, len(b), foundB+missingB)
	for _, r := range append(outA, outB...) {
		assert.Contains(t, []Status{StatusFound, StatusMissing}, StatusOf(r))
	}
}

func TestReconcile_EmptyLedgers(t *testing.T) {
	outA, outB, err := Reconcile(nil, Ledger{row("2024-01-01", "A", "1", "x")})

	require.NoError(t, err)
	assert.Empty(t, outA)
	assert.Equal(t, []Status{StatusMissing}, statuses(outB))
}

func TestReconcile_MalformedDate(t *testing.T) {
	tests := []struct {
		name string
		a    Ledger
		b    Ledger
		side Side
		idx  int
	}{
		{
			name: "ledger A",
			a:    Ledger{row("05/01/2024", "Sales", "100", "Acme")},
			b:    Ledger{row("2024-01-05", "Sales", "100", "Acme")},
			side: SideA,
			idx:  0,
		},
		{
			name: "ledger B never reached by a scan",
			a:    Ledger{},
			b:    Ledger{row("2024-01-05", "Sales", "100", "Acme"), row("2024-13-01", "Sales", "100", "Acme")},
			side: SideB,
			idx:  1,
		},
		{
			name: "month and day must be zero padded",
			a:    Ledger{row("2024-01-05", "Sales", "100", "Acme"), row("2024-1-5", "Sales", "100", "Acme")},
			b:    Ledger{},
			side: SideA,
			idx:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outA, outB, err := Reconcile(tt.a, tt.b)

			require.Error(t, err)
			assert.Nil(t, outA)
			assert.Nil(t, outB)
			assert.ErrorIs(t, err, ErrMalformedDate)
			assert.True(t, IsInputError(err))

			var dateErr *DateParseError
			require.True(t, errors.As(err, &dateErr))
			assert.Equal(t, tt.side, dateErr.Side)
			assert.Equal(t, tt.idx, dateErr.Row)

			var parseErr *time.ParseError
			assert.True(t, errors.As(err, &parseErr))
		})
	}
}

func TestReconcile_ShortRow(t *testing.T) {
	a := Ledger{row("2024-01-05", "Sales", "100", "Acme")}
	b := Ledger{{"2024-01-05", "Sales", "100"}}

	_, _, err := Reconcile(a, b)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedRow)

	var shapeErr *RowShapeError
	require.True(t, errors.As(err, &shapeErr))
	assert.Equal(t, SideB, shapeErr.Side)
	assert.Equal(t, 0, shapeErr.Row)
	assert.Equal(t, 3, shapeErr.Fields)
	assert.Contains(t, err.Error(), "need at least 4")
}

func TestNew_CustomTolerance(t *testing.T) {
	r, err := New(Config{DateLayout: DefaultDateLayout, DateTolerance: 3})
	require.NoError(t, err)

	outA, _, err := r.Reconcile(
		Ledger{row("2024-01-01", "A", "1", "x")},
		Ledger{row("2024-01-04", "A", "1", "x")},
	)

	require.NoError(t, err)
	assert.Equal(t, StatusFound, StatusOf(outA[0]))
}

func TestNew_ZeroToleranceRequiresSameDay(t *testing.T) {
	r, err := New(Config{DateLayout: DefaultDateLayout, DateTolerance: 0})
	require.NoError(t, err)

	outA, _, err := r.Reconcile(
		Ledger{row("2024-01-01", "A", "1", "x")},
		Ledger{row("2024-01-02", "A", "1", "x")},
	)

	require.NoError(t, err)
	assert.Equal(t, StatusMissing, StatusOf(outA[0]))
}

func TestNew_InvalidConfig(t *testing.T) {
	_, err := New(Config{DateLayout: DefaultDateLayout, DateTolerance: -1})
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = New(Config{DateTolerance: 1})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestFieldsAndStatusOf(t *testing.T) {
	annotated := Row{"2024-01-01", "A", "1", "x", "FOUND"}

	assert.Equal(t, StatusFound, StatusOf(annotated))
	assert.Equal(t, Row{"2024-01-01", "A", "1", "x"}, Fields(annotated))
	assert.Equal(t, Status(""), StatusOf(nil))
}
