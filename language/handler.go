package language

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/autograde/go-grader/envexec"
)

var _ Handler = &CommandHandler{}

// CommandHandler implements Handler by running the command templates of a
// Profile on the host
type CommandHandler struct {
	workDir string
	profile Profile
	limits  Limits

	validated bool
	compiled  bool
	entry     string
}

// NewCommandHandler creates handler for the work dir
func NewCommandHandler(workDir string, p Profile, limits Limits) *CommandHandler {
	if abs, err := filepath.Abs(workDir); err == nil {
		workDir = abs
	}
	return &CommandHandler{
		workDir: workDir,
		profile: p,
		limits:  limits,
	}
}

// Profile returns the profile of the handler
func (h *CommandHandler) Profile() Profile {
	return h.profile
}

// Entry returns the resolved entry point, empty before validated
func (h *CommandHandler) Entry() string {
	return h.entry
}

// CompileLogPath returns the path of the compile log next to the entry point
func (h *CommandHandler) CompileLogPath() string {
	return filepath.Join(filepath.Dir(h.entry), CompileLogName)
}

// EvalLogPath returns the path of the evaluate log next to the entry point
func (h *CommandHandler) EvalLogPath() string {
	return filepath.Join(filepath.Dir(h.entry), EvalLogName)
}

// Validate searches the work dir recursively for the entry file. Exactly one
// entry file must exist.
func (h *CommandHandler) Validate() (string, error) {
	h.validated, h.compiled, h.entry = false, false, ""

	var sources, entries []string
	err := filepath.WalkDir(h.workDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if ok, _ := filepath.Match(h.profile.SourcePattern, d.Name()); !ok {
			return nil
		}
		sources = append(sources, path)
		if d.Name() == h.profile.EntryFile {
			entries = append(entries, path)
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("validate: walk %s: %w", h.workDir, err)
	}

	switch {
	case len(sources) == 0:
		return "", fmt.Errorf("%w: no %s files found", ErrNoEntryPoint, h.profile.SourcePattern)
	case len(entries) == 0:
		return "", fmt.Errorf("%w: expected file %s was not found", ErrNoEntryPoint, h.profile.EntryFile)
	case len(entries) > 1:
		return "", fmt.Errorf("%w: expected one %s file, found %s", ErrMultipleEntryPoints,
			h.profile.EntryFile, strings.Join(h.relative(entries), ", "))
	}
	h.entry = entries[0]
	h.validated = true
	return h.entry, nil
}

// Compile runs the compile command inside the entry directory and returns its
// exit status. Profiles without compile command always succeed.
func (h *CommandHandler) Compile(ctx context.Context) (int, error) {
	if !h.validated {
		return 0, &ContractError{Op: "compile", Requires: "validate"}
	}
	h.compiled = false

	logFile, err := os.Create(h.CompileLogPath())
	if err != nil {
		return 0, fmt.Errorf("compile: create log: %w", err)
	}
	defer logFile.Close()

	if strings.TrimSpace(h.profile.Compile) == "" {
		h.compiled = true
		return 0, nil
	}
	args, err := expandCommand(h.profile.Compile, h.entry)
	if err != nil {
		return 0, fmt.Errorf("compile: %w", err)
	}
	rt, err := h.run(ctx, args, nil, logFile, h.limits.CompileTimeLimit)
	if err != nil {
		return 0, fmt.Errorf("compile: %w", err)
	}
	h.compiled = rt.ExitStatus == 0
	return rt.ExitStatus, nil
}

// Evaluate runs the compiled program inside the entry directory with input
// as stdin and returns everything it writes to stdout and stderr
func (h *CommandHandler) Evaluate(ctx context.Context, inputPath string) (string, error) {
	if !h.compiled {
		return "", &ContractError{Op: "evaluate", Requires: "compile"}
	}

	// relative to the caller's working directory, not the entry directory
	inputPath, err := filepath.Abs(inputPath)
	if err != nil {
		return "", fmt.Errorf("evaluate: %w", err)
	}
	input, err := os.Open(inputPath)
	if err != nil {
		return "", fmt.Errorf("evaluate: open input: %w", err)
	}
	defer input.Close()

	args, err := expandCommand(h.profile.Run, h.entry)
	if err != nil {
		return "", fmt.Errorf("evaluate: %w", err)
	}

	logFile, err := os.Create(h.EvalLogPath())
	if err != nil {
		return "", fmt.Errorf("evaluate: create log: %w", err)
	}
	_, err = h.run(ctx, args, input, logFile, h.limits.RunTimeLimit)
	if cerr := logFile.Close(); err == nil && cerr != nil {
		err = cerr
	}
	if err != nil {
		return "", fmt.Errorf("evaluate: %w", err)
	}

	output, err := os.ReadFile(h.EvalLogPath())
	if err != nil {
		return "", fmt.Errorf("evaluate: read log: %w", err)
	}
	return string(output), nil
}

// run executes args with the working directory changed to the entry
// directory, the previous directory is restored on every return path
func (h *CommandHandler) run(ctx context.Context, args []string, stdin io.Reader, out io.Writer, limit time.Duration) (rt envexec.Result, err error) {
	dir := filepath.Dir(h.entry)
	scope, err := envexec.EnterDir(dir)
	if err != nil {
		return rt, err
	}
	defer func() {
		if cerr := scope.Close(); err == nil {
			err = cerr
		}
	}()

	c := envexec.Cmd{
		Args:      args,
		Env:       h.profile.Env,
		Dir:       dir,
		Stdin:     stdin,
		Output:    out,
		TimeLimit: limit,
	}
	rt, err = c.Run(ctx)
	if err != nil {
		return rt, err
	}
	switch rt.Status {
	case envexec.StatusInternalError:
		fmt.Fprintf(out, "%s: %s\n", args[0], rt.Error)
	case envexec.StatusTimeLimitExceeded:
		fmt.Fprintf(out, "\n%s: killed after %v\n", args[0], limit)
	}
	return rt, nil
}

func (h *CommandHandler) relative(paths []string) []string {
	rt := make([]string, 0, len(paths))
	for _, p := range paths {
		if r, err := filepath.Rel(h.workDir, p); err == nil {
			p = r
		}
		rt = append(rt, filepath.ToSlash(p))
	}
	return rt
}
