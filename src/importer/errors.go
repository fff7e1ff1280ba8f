// backend/src/importer/errors.go
package importer

import (
	"errors"
	"fmt"

	"github.com/username/expensetracker/backend/src/security/validation"
)

// ErrContainer marks a file whose top-level structure cannot be imported at all.
var ErrContainer = errors.New("invalid import file")

// ErrorKind tells a rejected row apart from a row that failed to save.
type ErrorKind string

const (
	KindValidation ErrorKind = "validation"
	KindStorage    ErrorKind = "storage"
)

// RowError describes why a single row was not imported.
type RowError struct {
	Row     int
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *RowError) Error() string {
	if e.Kind == KindStorage {
		return fmt.Sprintf("row %d: storage error: %s", e.Row, e.Message)
	}
	return fmt.Sprintf("row %d: %s", e.Row, e.Message)
}

func (e *RowError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	if e.Kind == KindValidation {
		return validation.ErrValidationFailed
	}
	return nil
}

func invalidRow(row int, format string, args ...any) *RowError {
	return &RowError{Row: row, Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}
