// Package pos implements the order lifecycle: submission with
// composition validation, payment confirmation with atomic stock
// deduction, rejection, completion, service orders, and per-line
// cook/deliver progress tracking. All multi-entity mutations run inside
// a single db.WithTx transaction.
package pos

import (
	"errors"
	"fmt"

	"github.com/hyunwoo/tably/internal/model"
)

// ErrNotFound marks a reference to an entity that does not exist.
var ErrNotFound = errors.New("not found")

// ValidationError is a business-rule violation in the input: the caller
// can show Error() to the user verbatim. No state was changed.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

func validationf(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// PreconditionError is an attempted transition from a status that does
// not permit it. No state was changed.
type PreconditionError struct {
	OrderID  int64
	Current  string
	Required string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("order %d is %s, not %s", e.OrderID, e.Current, e.Required)
}

// preconditionErr inspects the order's actual state after a guarded
// transition found nothing to update and produces the right error.
func preconditionErr(orderID int64, current *model.Order, required string) error {
	if current == nil {
		return fmt.Errorf("order %d: %w", orderID, ErrNotFound)
	}
	return &PreconditionError{OrderID: orderID, Current: current.Status, Required: required}
}
