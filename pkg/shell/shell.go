// Package shell runs external commands with normalized exit codes.
package shell

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"time"
)

type Result struct {
	Stdout []byte
	Stderr []byte
	Code   int
}

var ErrTimeout = errors.New("command timed out")

// Runner is the exec seam the cleanup components depend on. Tests swap
// it for a fake; production code uses Command or Sudo.
type Runner func(ctx context.Context, name string, args ...string) (Result, error)

// Run executes name with args. A timeout of zero means no deadline
// beyond ctx; external cluster tools can legitimately take a while when
// daemons are half dead.
func Run(ctx context.Context, timeout time.Duration, name string, args ...string) (Result, error) {
	cctx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		cctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(cctx, name, args...)
	var outBuf, errBuf bytes.Buffer
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf

	err := cmd.Run()
	res := Result{Stdout: outBuf.Bytes(), Stderr: errBuf.Bytes(), Code: exitCode(err)}
	if cctx.Err() == context.DeadlineExceeded {
		return res, ErrTimeout
	}
	return res, err
}

// Command returns a Runner with a fixed per-command timeout.
func Command(timeout time.Duration) Runner {
	return func(ctx context.Context, name string, args ...string) (Result, error) {
		return Run(ctx, timeout, name, args...)
	}
}

// Sudo wraps a Runner so every command is executed under sudo.
func Sudo(next Runner) Runner {
	return func(ctx context.Context, name string, args ...string) (Result, error) {
		return next(ctx, "sudo", append([]string{name}, args...)...)
	}
}

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var ee *exec.ExitError
	if errors.As(err, &ee) {
		return ee.ExitCode()
	}
	return -1
}
