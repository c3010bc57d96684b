package envexec

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"time"
)

// exit status reported when the command could not be started, same as shell
const exitStatusNotStarted = 127

// waitDelay bounds the wait for output copying after the process exits
// (e.g. a background child still holds the output)
const waitDelay = time.Second

// Cmd defines instruction to run a program on the host
type Cmd struct {
	// exec argument, environment (appended to the current environment)
	Args []string
	Env  []string

	// Dir is the working directory of the process
	Dir string

	// Stdin is fed to the process, nil reads from null device
	Stdin io.Reader
	// Output receives both stdout and stderr, nil discards them
	Output io.Writer

	// TimeLimit is the clock time limit, zero means unbounded
	TimeLimit time.Duration
}

// Result defines the running result for single Cmd
type Result struct {
	Status     Status
	ExitStatus int
	Error      string // error

	RunTime time.Duration
}

// Run starts the command and waits for it to exit. Failure to start the
// command is reported as StatusInternalError instead of error. Error is
// returned if the command is invalid or ctx is canceled.
func (c *Cmd) Run(ctx context.Context) (Result, error) {
	if len(c.Args) == 0 {
		return Result{}, errors.New("run: no command provided")
	}

	runCtx := ctx
	if c.TimeLimit > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, c.TimeLimit)
		defer cancel()
	}

	cmd := exec.CommandContext(runCtx, c.Args[0], c.Args[1:]...)
	cmd.Dir = c.Dir
	if len(c.Env) > 0 {
		cmd.Env = append(os.Environ(), c.Env...)
	}
	cmd.Stdin = c.Stdin
	cmd.Stdout = c.Output
	cmd.Stderr = c.Output
	cmd.WaitDelay = waitDelay
	setProcessGroup(cmd)

	start := time.Now()
	err := cmd.Run()
	rt := Result{RunTime: time.Since(start)}

	if cmd.ProcessState == nil {
		rt.Status = StatusInternalError
		rt.ExitStatus = exitStatusNotStarted
		rt.Error = err.Error()
		return rt, ctx.Err()
	}

	rt.ExitStatus = cmd.ProcessState.ExitCode()
	switch {
	case ctx.Err() != nil:
		rt.Status = StatusSignalled
		rt.Error = ctx.Err().Error()
		return rt, ctx.Err()

	case errors.Is(runCtx.Err(), context.DeadlineExceeded):
		rt.Status = StatusTimeLimitExceeded
		rt.Error = "time limit exceeded"

	case rt.ExitStatus == 0:
		rt.Status = StatusAccepted

	case rt.ExitStatus < 0:
		rt.Status = StatusSignalled
		rt.Error = cmd.ProcessState.String()

	default:
		rt.Status = StatusNonzeroExitStatus
	}
	return rt, nil
}
