package language

import (
	"context"
	"errors"
	"fmt"
)

// Handler defines the way to validate, compile and run a submission for one
// toolchain. The operations must be called in order: Compile after a
// successful Validate and Evaluate after a successful Compile.
type Handler interface {
	// Validate locates the unique entry point in the work dir and returns its path
	Validate() (string, error)

	// Compile compiles the entry point and returns the compiler exit status
	Compile(context.Context) (int, error)

	// Evaluate runs the compiled program with the input file as stdin and
	// returns its combined stdout / stderr
	Evaluate(ctx context.Context, inputPath string) (string, error)
}

// Factory creates a Handler bound to the extracted submission work dir
type Factory func(workDir string) Handler

// Side files written next to the entry point
const (
	CompileLogName = "outCompilation"
	EvalLogName    = "outEval"
)

var (
	// ErrNoEntryPoint is returned by Validate when no entry file exists
	ErrNoEntryPoint = errors.New("no entry point found")

	// ErrMultipleEntryPoints is returned by Validate when the entry file is ambiguous
	ErrMultipleEntryPoints = errors.New("multiple entry points found")

	// ErrContractViolation is returned when operations are called out of order
	ErrContractViolation = errors.New("handler contract violation")

	// ErrUnknownLanguage is returned when no handler is registered for a language
	ErrUnknownLanguage = errors.New("unknown language")
)

// ContractError reports an operation called before its precondition succeeded
type ContractError struct {
	Op       string
	Requires string
}

func (e *ContractError) Error() string {
	return fmt.Sprintf("%s called without a successful %s", e.Op, e.Requires)
}

func (e *ContractError) Unwrap() error {
	return ErrContractViolation
}
