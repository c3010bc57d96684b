package submission

import (
	"context"
	"errors"
	"fmt"

	"github.com/autograde/go-grader/language"
)

// calls into the handler turn panics into contract violations

func newHandler(factory language.Factory, workDir string) (h language.Handler, err error) {
	defer recoverHandler("create handler", &err)
	h = factory(workDir)
	if h == nil {
		return nil, errors.New("handler factory returned nil")
	}
	return h, nil
}

func callValidate(h language.Handler) (entry string, err error) {
	defer recoverHandler("validate", &err)
	return h.Validate()
}

func callCompile(ctx context.Context, h language.Handler) (status int, err error) {
	defer recoverHandler("compile", &err)
	return h.Compile(ctx)
}

func callEvaluate(ctx context.Context, h language.Handler, input string) (out string, err error) {
	defer recoverHandler("evaluate", &err)
	return h.Evaluate(ctx, input)
}

func recoverHandler(op string, err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("%s panicked: %v: %w", op, r, language.ErrContractViolation)
	}
}
