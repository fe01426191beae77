package errs

import (
	"errors"
	"fmt"
)

var (
	ErrGeocode    = errors.New("geocode failed")
	ErrSequencing = errors.New("tour sequencing failed")
	ErrRouting    = errors.New("routing failed")
	ErrStore      = errors.New("store operation failed")
	ErrExtraction = errors.New("letter extraction failed")
	ErrValidation = errors.New("validation failed")
	ErrFetch      = errors.New("letter fetch failed")
)

// Error is a classified failure. Kind is one of the sentinel errors of this package.
type Error struct {
	Kind  error
	Op    string
	Cause error
}

func newError(kind error, op string, cause error) *Error {
	return &Error{Kind: kind, Op: op, Cause: cause}
}

func (e *Error) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Cause)
}

// Unwrap exposes both the kind and the cause to errors.Is / errors.As.
func (e *Error) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Cause}
}

func GeocodeError(op string, cause error) *Error    { return newError(ErrGeocode, op, cause) }
func SequencingError(op string, cause error) *Error { return newError(ErrSequencing, op, cause) }
func RoutingError(op string, cause error) *Error    { return newError(ErrRouting, op, cause) }
func StoreError(op string, cause error) *Error      { return newError(ErrStore, op, cause) }
func ExtractionError(op string, cause error) *Error { return newError(ErrExtraction, op, cause) }
func ValidationError(op string, cause error) *Error { return newError(ErrValidation, op, cause) }
func FetchError(op string, cause error) *Error      { return newError(ErrFetch, op, cause) }

// KindOf returns the sentinel kind of err, or nil when err is not classified.
func KindOf(err error) error {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return nil
}
