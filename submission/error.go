package submission

import (
	"errors"
	"fmt"

	"github.com/autograde/go-grader/language"
)

// Kind categorizes fatal submission errors
type Kind int

// Fatal error kinds
const (
	KindArchive Kind = iota + 1
	KindHandlerContract
	KindValidation
	KindCompilation
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindArchive:
		return "archive"
	case KindHandlerContract:
		return "handler contract"
	case KindValidation:
		return "validation"
	case KindCompilation:
		return "compilation"
	case KindInternal:
		return "internal"
	default:
		return "unknown"
	}
}

// Error is the fatal error that stops a submission from being graded
type Error struct {
	Kind       Kind
	ExitStatus int // compiler exit status, KindCompilation only
	Err        error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindCompilation:
		return fmt.Sprintf("Compilation failed [exit status %d]", e.ExitStatus)
	case KindArchive:
		return fmt.Sprintf("failed to open archive: %v", e.Err)
	case KindHandlerContract:
		return fmt.Sprintf("broken submission handler: %v", e.Err)
	case KindValidation:
		return e.Err.Error()
	default:
		return fmt.Sprintf("internal error: %v", e.Err)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of a submission error, KindInternal for other errors
// and 0 for nil
func KindOf(err error) Kind {
	if err == nil {
		return 0
	}
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindInternal
}

func newError(kind Kind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

// handlerError maps the error of a handler operation to its kind
func handlerError(kind Kind, err error) *Error {
	if errors.Is(err, language.ErrContractViolation) {
		kind = KindHandlerContract
	}
	return newError(kind, err)
}
