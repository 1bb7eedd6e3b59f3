package reconciler

import (
	"errors"
	"fmt"
)

var (
	ErrMalformedDate = errors.New("reconciler: malformed date")
	ErrMalformedRow  = errors.New("reconciler: malformed row")
	ErrInvalidConfig = errors.New("reconciler: invalid config")
)

// DateParseError reports a date field that does not follow the configured layout.
type DateParseError struct {
	Side   Side
	Row    int
	Value  string
	Layout string
	Err    error
}

// Error implements the error interface
func (e *DateParseError) Error() string {
	return fmt.Sprintf("reconciler: ledger %s row %d: date %q does not match layout %s", e.Side, e.Row, e.Value, e.Layout)
}

// Unwrap returns the underlying time parse error
func (e *DateParseError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *DateParseError) Is(target error) bool {
	return target == ErrMalformedDate
}

// RowShapeError reports a row with fewer than RequiredFields fields.
type RowShapeError struct {
	Side   Side
	Row    int
	Fields int
}

// Error implements the error interface
func (e *RowShapeError) Error() string {
	return fmt.Sprintf("reconciler: ledger %s row %d: has %d fields, need at least %d", e.Side, e.Row, e.Fields, RequiredFields)
}

// Is implements errors.Is support
func (e *RowShapeError) Is(target error) bool {
	return target == ErrMalformedRow
}

// IsInputError reports whether err was caused by malformed ledger input.
func IsInputError(err error) bool {
	return errors.Is(err, ErrMalformedDate) || errors.Is(err, ErrMalformedRow)
}
