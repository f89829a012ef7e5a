package printer

import (
	"bytes"
	"context"
	"errors"
	"os/exec"

	"printbridge/internal/constants"
	"printbridge/internal/types"
)

// Runner abstracts external process invocation so pipelines and the printer
// directory can be exercised in tests with captured CLI output instead of a
// live spooler.
type Runner interface {
	// Run executes the command and waits for it, returning captured stdout
	// and stderr. A process still running when the deadline hits is killed
	// and the error is a TimedOut bridge error.
	Run(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)
	// Spawn starts the command without waiting. Best-effort paths (browser
	// fallback) use it; there is no success signal beyond the spawn itself.
	Spawn(name string, args ...string) error
}

type execRunner struct{}

// NewRunner returns the production Runner backed by os/exec.
func NewRunner() Runner {
	return execRunner{}
}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, constants.ProcessTimeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return stdout.Bytes(), stderr.Bytes(),
				types.TimedOut(name+" did not finish in time", err)
		}
	}
	return stdout.Bytes(), stderr.Bytes(), err
}

func (execRunner) Spawn(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return err
	}
	// Reap the child so it does not linger as a zombie.
	go func() { _ = cmd.Wait() }()
	return nil
}
