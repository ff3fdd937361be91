package toolchain

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sync"
	"time"
)

// waitDelay bounds how long Wait blocks on pipes held open by orphaned children
// after the process itself has been killed.
const waitDelay = 500 * time.Millisecond

type processSpec struct {
	name        string
	args        []string
	stdinPath   string
	timeout     time.Duration
	outputLimit int
}

type processOutcome struct {
	stdout   string
	stderr   string
	exitCode int
	timedOut bool
	// overflowed is set when stdout exceeded the output limit and the process was killed.
	overflowed bool
	duration   time.Duration
}

// runProcess executes spec to completion. The returned error is reserved for
// infrastructure problems such as a missing binary; everything the candidate's
// program did is reported in the outcome.
func runProcess(ctx context.Context, spec processSpec) (*processOutcome, error) {
	runCtx, cancel := context.WithTimeout(ctx, spec.timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, spec.name, spec.args...)
	configureProcessGroup(cmd)
	cmd.WaitDelay = waitDelay

	if spec.stdinPath != "" {
		stdin, err := os.Open(spec.stdinPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open input: %w", err)
		}
		defer stdin.Close()
		cmd.Stdin = stdin
	}

	stdout := newLimitedBuffer(spec.outputLimit, cancel)
	stderr := newLimitedBuffer(spec.outputLimit, nil)
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	start := time.Now()
	err := cmd.Run()
	// Descendants that outlived the program are killed with it.
	killProcessGroup(cmd)
	outcome := &processOutcome{
		stdout:     stdout.String(),
		stderr:     stderr.String(),
		duration:   time.Since(start),
		overflowed: stdout.Overflowed(),
	}

	if err != nil && ctx.Err() != nil {
		return nil, fmt.Errorf("execution cancelled: %w", ctx.Err())
	}
	if outcome.overflowed {
		return outcome, nil
	}

	// A background child still holding stdout or stderr makes Wait give up on the
	// pipes after the program itself has already exited.
	if errors.Is(err, exec.ErrWaitDelay) && cmd.ProcessState != nil {
		outcome.exitCode = cmd.ProcessState.ExitCode()
		return outcome, nil
	}

	deadlineHit := errors.Is(runCtx.Err(), context.DeadlineExceeded)

	var exitErr *exec.ExitError
	switch {
	case err == nil:
	case errors.As(err, &exitErr):
		// Only a process that was killed, not one that exited on its own just before
		// the deadline, counts as timed out.
		if deadlineHit && !exitErr.Exited() {
			outcome.timedOut = true
			break
		}
		outcome.exitCode = exitErr.ExitCode()
	case deadlineHit:
		if cmd.ProcessState != nil && cmd.ProcessState.Exited() {
			outcome.exitCode = cmd.ProcessState.ExitCode()
			break
		}
		outcome.timedOut = true
	default:
		return nil, fmt.Errorf("failed to run %s: %w", spec.name, err)
	}
	return outcome, nil
}

// limitedBuffer keeps at most limit bytes. Once exceeded it calls onOverflow and
// silently drops the rest so the writer never blocks.
type limitedBuffer struct {
	mu         sync.Mutex
	buf        bytes.Buffer
	limit      int
	overflowed bool
	onOverflow func()
}

func newLimitedBuffer(limit int, onOverflow func()) *limitedBuffer {
	return &limitedBuffer{limit: limit, onOverflow: onOverflow}
}

func (b *limitedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.limit <= 0 {
		return b.buf.Write(p)
	}
	if b.overflowed {
		return len(p), nil
	}
	room := b.limit - b.buf.Len()
	if len(p) <= room {
		return b.buf.Write(p)
	}
	b.buf.Write(p[:room])
	b.overflowed = true
	if b.onOverflow != nil {
		b.onOverflow()
	}
	return len(p), nil
}

func (b *limitedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func (b *limitedBuffer) Overflowed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.overflowed
}
