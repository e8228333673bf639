package main

import "fmt"

// Sentinel errors. Every structural/semantic failure the engine can produce
// wraps one of these three categories so a caller can classify with
// errors.Is(err, FormatError) (etc.) regardless of which specific sentinel or
// operation produced it. Each specific sentinel below wraps its category
// sentinel directly (via %w), so errors.Is walks through to the category even
// when a call site passes the specific sentinel straight to NewDatabaseError
// instead of going through one of the *Errorf helpers.
var (
	// FormatError: corrupt or unsupported on-disk structure.
	FormatError           = fmt.Errorf("format error")
	ErrInvalidDatabase    = fmt.Errorf("%w: invalid database file", FormatError)
	ErrInvalidPageType    = fmt.Errorf("%w: invalid page type", FormatError)
	ErrInsufficientData   = fmt.Errorf("%w: insufficient data", FormatError)
	ErrInvalidCellPointer = fmt.Errorf("%w: invalid cell pointer", FormatError)
	ErrInvalidVarint      = fmt.Errorf("%w: invalid varint", FormatError)
	ErrInvalidSerialType  = fmt.Errorf("%w: invalid serial type", FormatError)
	ErrMultiPageSchema    = fmt.Errorf("%w: schema table spans multiple pages", FormatError)

	// QueryError: unsupported or malformed SQL.
	QueryError             = fmt.Errorf("query error")
	ErrTableNotFound       = fmt.Errorf("%w: table not found", QueryError)
	ErrColumnNotFound      = fmt.Errorf("%w: column not found", QueryError)
	ErrUnsupportedQuery    = fmt.Errorf("%w: unsupported query", QueryError)
	ErrUnsupportedOperator = fmt.Errorf("%w: operator not yet supported", QueryError)

	// TypeError: value/threshold type mismatch while filtering.
	TypeError = fmt.Errorf("type error")
)

// DatabaseError wraps a sentinel error with the operation that raised it and
// free-form diagnostic context. errors.Is(err, FormatError) (etc.) still
// works because Unwrap exposes the wrapped sentinel.
type DatabaseError struct {
	Operation string
	Err       error
	Context   map[string]interface{}
}

func (e *DatabaseError) Error() string {
	if len(e.Context) == 0 {
		return fmt.Sprintf("%s: %v", e.Operation, e.Err)
	}
	return fmt.Sprintf("%s: %v (context: %+v)", e.Operation, e.Err, e.Context)
}

func (e *DatabaseError) Unwrap() error {
	return e.Err
}

// NewDatabaseError wraps err (normally one of the sentinels above) with the
// operation name and optional diagnostic context.
func NewDatabaseError(operation string, err error, context map[string]interface{}) *DatabaseError {
	return &DatabaseError{
		Operation: operation,
		Err:       err,
		Context:   context,
	}
}

func formatErrorf(operation string, context map[string]interface{}, format string, args ...interface{}) *DatabaseError {
	return NewDatabaseError(operation, fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), FormatError), context)
}

func queryErrorf(operation string, context map[string]interface{}, format string, args ...interface{}) *DatabaseError {
	return NewDatabaseError(operation, fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), QueryError), context)
}

func typeErrorf(operation string, context map[string]interface{}, format string, args ...interface{}) *DatabaseError {
	return NewDatabaseError(operation, fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), TypeError), context)
}
