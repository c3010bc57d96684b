package judger

import (
	"context"
	"fmt"
	"time"

	"github.com/autograde/go-grader/pkg/diff"
	"github.com/autograde/go-grader/submission"
	"go.uber.org/zap"
)

// Evaluator runs the graded program against a case
type Evaluator interface {
	EvaluateAndCompare(ctx context.Context, inputPath, expectedPath string, cmp diff.Comparator) (submission.Verdict, error)
}

// CaseResult reports a finished case to the observer
type CaseResult struct {
	Case    Case
	Verdict submission.Verdict
	Time    time.Duration
}

// Judger runs the cases of a submission and builds the report
type Judger struct {
	// Comparator decides pass / fail of a case, nil for diff.Alpha
	Comparator diff.Comparator
	Logger     *zap.Logger

	// CaseObserver is called after each case is evaluated
	CaseObserver func(CaseResult)
}

// Run evaluates every case in order. A mismatch fails the case only, any
// error aborts the run.
func (j *Judger) Run(ctx context.Context, e Evaluator, cases []Case) (*Report, error) {
	logger := j.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	cmp := j.Comparator
	if cmp == nil {
		cmp = diff.Alpha
	}

	rt := &Report{
		TotalTests: len(cases),
		Results:    make([]Result, 0, len(cases)),
	}
	for _, c := range cases {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		start := time.Now()
		v, err := e.EvaluateAndCompare(ctx, c.Input, c.Expected, cmp)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", c.Name(), err)
		}
		d := time.Since(start)
		if j.CaseObserver != nil {
			j.CaseObserver(CaseResult{Case: c, Verdict: v, Time: d})
		}

		rt.Results = append(rt.Results, Result{Name: c.Name(), Passed: v.Passed})
		if v.Passed {
			rt.Marks++
			logger.Info("Case passed", zap.String("case", c.Name()), zap.Duration("time", d))
			continue
		}
		logger.Info("Case failed", zap.String("case", c.Name()), zap.Duration("time", d))
		if ce := logger.Check(zap.DebugLevel, "Output mismatch"); ce != nil {
			ce.Write(zap.String("case", c.Name()), zap.String("obtained", v.Obtained), zap.String("expected", v.Expected))
		}
	}
	logger.Info("Grading finished", zap.Int("totalTests", rt.TotalTests), zap.Int("marks", rt.Marks))
	return rt, nil
}
