package reconciler

// Status is the match outcome appended to every reconciled row.
type Status string

const (
	StatusMissing Status = "MISSING"
	StatusFound   Status = "FOUND"
)

// Column positions within a ledger row.
const (
	ColDate        = 0
	ColDepartment  = 1
	ColAmount      = 2
	ColBeneficiary = 3

	// RequiredFields is the minimum number of fields a row must carry.
	RequiredFields = 4
)

// DefaultDateLayout is the calendar date format of the date column (YYYY-MM-DD).
// Month and day must be two digits.
const DefaultDateLayout = "2006-01-02"

// Row is a single transaction record as positional string fields:
// date, department, amount, beneficiary. Extra trailing fields are kept as-is.
type Row []string

// Ledger is an ordered collection of rows from one source.
type Ledger []Row

// Side identifies which of the two ledgers a row belongs to.
type Side string

const (
	SideA Side = "a"
	SideB Side = "b"
)

// Config holds reconciler configuration
type Config struct {
	DateLayout    string // Default: "2006-01-02"
	DateTolerance int    // Days tolerance, inclusive (default: 1)
}

// DefaultConfig returns the settings the matching rules are defined against
func DefaultConfig() Config {
	return Config{
		DateLayout:    DefaultDateLayout,
		DateTolerance: 1,
	}
}

// Pair links a row of ledger A to the row of ledger B it was matched with.
type Pair struct {
	A        int `json:"a"`         // Index in ledger A
	B        int `json:"b"`         // Index in ledger B
	DayDelta int `json:"day_delta"` // dateB - dateA in days
}

// Result contains the annotated copies of both ledgers plus the pairing.
type Result struct {
	A     Ledger
	B     Ledger
	Pairs []Pair // In ledger A order
}

// StatusOf returns the status appended to an annotated row.
func StatusOf(row Row) Status {
	if len(row) == 0 {
		return ""
	}
	return Status(row[len(row)-1])
}

// Fields returns an annotated row without its trailing status.
func Fields(row Row) Row {
	if len(row) == 0 {
		return row
	}
	return row[:len(row)-1]
}

// Counts returns the number of found and missing rows of an annotated ledger.
func Counts(ledger Ledger) (found, missing int) {
	for _, row := range ledger {
		if StatusOf(row) == StatusFound {
			found++
		} else {
			missing++
		}
	}
	return found, missing
}
