package submission

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/autograde/go-grader/archive"
	"github.com/autograde/go-grader/language"
	"github.com/autograde/go-grader/pkg/diff"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Stage names reported to the ExecObserver
const (
	StageValidate = "validate"
	StageCompile  = "compile"
	StageEvaluate = "evaluate"
)

// StageResult reports a finished lifecycle stage
type StageResult struct {
	Stage      string
	Duration   time.Duration
	ExitStatus int // compile only
	Err        error
}

// Config defines submission configuration
type Config struct {
	// ArchivePath is the path to the submitted archive
	ArchivePath string
	// Factory creates the language handler bound to the extracted directory
	Factory language.Factory

	// TempDir is the root of the working directory, empty for os.TempDir
	TempDir string
	// KeepWorkDir keeps the working directory after Close
	KeepWorkDir bool

	Logger       *zap.Logger
	ExecObserver func(StageResult)
}

// Verdict is the result of a single evaluation against expected output
type Verdict struct {
	Passed   bool
	Obtained string
	Expected string
}

// Submission owns the extracted submission and its language handler
type Submission struct {
	id       string
	archive  string
	workDir  string
	keep     bool
	logger   *zap.Logger
	observer func(StageResult)

	handler language.Handler
	entry   string
	state   State

	closeOnce sync.Once
}

// New extracts the archive to a new working directory, validates and compiles
// the submission. On failure the working directory is removed and a *Error is
// returned.
func New(ctx context.Context, conf Config) (*Submission, error) {
	logger := conf.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Submission{
		id:       uuid.NewString(),
		archive:  conf.ArchivePath,
		keep:     conf.KeepWorkDir,
		observer: conf.ExecObserver,
		state:    StateCreated,
	}
	s.logger = logger.With(zap.String("session", s.id))

	if conf.Factory == nil {
		return nil, newError(KindHandlerContract, errors.New("no handler factory provided"))
	}

	workDir, err := os.MkdirTemp(conf.TempDir, "grader-")
	if err != nil {
		return nil, newError(KindInternal, fmt.Errorf("create work dir: %w", err))
	}
	s.workDir = workDir
	s.logger.Debug("Work dir created", zap.String("dir", workDir))

	if err := s.init(ctx, conf.Factory); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

func (s *Submission) init(ctx context.Context, factory language.Factory) error {
	if err := archive.Extract(s.archive, s.workDir); err != nil {
		s.logger.Info("Extract archive failed", zap.String("archive", s.archive), zap.Error(err))
		return newError(KindArchive, err)
	}
	s.logger.Info("Archive extracted", zap.String("archive", s.archive))

	h, err := newHandler(factory, s.workDir)
	if err != nil {
		return newError(KindHandlerContract, err)
	}
	s.handler = h

	if err := s.validate(); err != nil {
		return err
	}
	return s.compile(ctx)
}

func (s *Submission) validate() error {
	s.state = StateValidating
	start := time.Now()
	entry, err := callValidate(s.handler)
	s.observe(StageResult{Stage: StageValidate, Duration: time.Since(start), Err: err})
	if err != nil {
		s.state = StateRejected
		s.logger.Info("Submission rejected", zap.Error(err))
		return handlerError(KindValidation, err)
	}
	s.entry = entry
	s.state = StateValidated
	s.logger.Info("Submission validated", zap.String("entry", entry))
	return nil
}

func (s *Submission) compile(ctx context.Context) error {
	s.state = StateCompiling
	start := time.Now()
	status, err := callCompile(ctx, s.handler)
	s.observe(StageResult{Stage: StageCompile, Duration: time.Since(start), ExitStatus: status, Err: err})
	if err != nil {
		s.state = StateCompileFailed
		s.logger.Error("Compile failed", zap.Error(err))
		return handlerError(KindInternal, err)
	}
	if status != 0 {
		s.state = StateCompileFailed
		s.logger.Info("Compilation failed", zap.Int("exitStatus", status))
		return &Error{Kind: KindCompilation, ExitStatus: status}
	}
	s.state = StateCompiled
	s.logger.Info("Submission compiled", zap.Duration("time", time.Since(start)))
	return nil
}

// Evaluate runs the compiled program with input as stdin and returns its output
func (s *Submission) Evaluate(ctx context.Context, inputPath string) (string, error) {
	if !s.state.canEvaluate() {
		return "", fmt.Errorf("submission %s: %w", s.state,
			&language.ContractError{Op: "evaluate", Requires: "compile"})
	}
	s.state = StateEvaluating
	start := time.Now()
	out, err := callEvaluate(ctx, s.handler, inputPath)
	s.observe(StageResult{Stage: StageEvaluate, Duration: time.Since(start), Err: err})
	if err != nil {
		return "", err
	}
	if ce := s.logger.Check(zap.DebugLevel, "Evaluated"); ce != nil {
		ce.Write(zap.String("input", inputPath), zap.Int("outputSize", len(out)), zap.Duration("time", time.Since(start)))
	}
	return out, nil
}

// EvaluateAndCompare evaluates input and compares the output with the content
// of the expected file by cmp, diff.Alpha is used when cmp is nil
func (s *Submission) EvaluateAndCompare(ctx context.Context, inputPath, expectedPath string, cmp diff.Comparator) (Verdict, error) {
	if cmp == nil {
		cmp = diff.Alpha
	}
	expected, err := os.ReadFile(expectedPath)
	if err != nil {
		return Verdict{}, fmt.Errorf("read expected output: %w", err)
	}
	out, err := s.Evaluate(ctx, inputPath)
	if err != nil {
		return Verdict{}, err
	}
	return Verdict{
		Passed:   cmp(out, string(expected)),
		Obtained: out,
		Expected: string(expected),
	}, nil
}

// Finish marks grading as done, no further evaluation is accepted
func (s *Submission) Finish() {
	s.state = StateTerminal
}

// Close removes the working directory unless it is kept. Removal errors are
// logged only.
func (s *Submission) Close() {
	s.closeOnce.Do(func() {
		if s.state != StateRejected && s.state != StateCompileFailed {
			s.state = StateTerminal
		}
		if s.workDir == "" {
			return
		}
		if s.keep {
			s.logger.Info("Work dir kept", zap.String("dir", s.workDir))
			return
		}
		if err := os.RemoveAll(s.workDir); err != nil {
			s.logger.Warn("Remove work dir failed", zap.String("dir", s.workDir), zap.Error(err))
			return
		}
		s.logger.Debug("Work dir removed", zap.String("dir", s.workDir))
	})
}

// ID returns the session id
func (s *Submission) ID() string {
	return s.id
}

// WorkDir returns the working directory holding the extracted archive
func (s *Submission) WorkDir() string {
	return s.workDir
}

// Entry returns the resolved entry point
func (s *Submission) Entry() string {
	return s.entry
}

// State returns the current lifecycle state
func (s *Submission) State() State {
	return s.state
}

func (s *Submission) observe(r StageResult) {
	if s.observer != nil {
		s.observer(r)
	}
}
