package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sys/unix"
	"k8s.io/apimachinery/pkg/util/wait"

	"github.com/phip1611/unix-exec-piper/internal/sentinel"
)

// Sentinel errors returned by the wait/poll engine.
const (
	// ErrWaitFailed is returned when the OS status query itself fails,
	// which is distinct from "no status yet" in non-blocking mode.
	ErrWaitFailed = sentinel.Error("process status query failed")

	// ErrIntervalNotPositive indicates a non-positive poll interval.
	ErrIntervalNotPositive = sentinel.Error("interval must be positive")

	// ErrTimeoutNotPositive indicates a non-positive timeout.
	ErrTimeoutNotPositive = sentinel.Error("timeout must be positive")
)

// Poll queries the OS once for each not-yet-finished state and finalizes
// those that have terminated. It returns true iff every state is finished
// after the pass.
//
// With blocking=true the call waits for each remaining process to
// terminate; with blocking=false each process gets exactly one WNOHANG
// status attempt, and "no status yet" simply leaves the entry unfinished.
// Finished entries are never re-queried: their pids may already have been
// reused by the OS for unrelated processes.
//
// A process that was terminated by a signal is logged as a diagnostic and
// finalized with the conventional 128+signal code; there is no separate
// killed-by-signal classification in the result.
func Poll(states []*ProcessState, blocking bool) (bool, error) {
	flags := unix.WNOHANG
	if blocking {
		flags = 0
	}

	allFinished := true
	for _, st := range states {
		if st.Finished() {
			continue
		}

		var ws unix.WaitStatus
		wpid, err := unix.Wait4(st.Pid(), &ws, flags, nil)
		for errors.Is(err, unix.EINTR) {
			wpid, err = unix.Wait4(st.Pid(), &ws, flags, nil)
		}
		if err != nil {
			return false, fmt.Errorf("%w: pid %d (%s): %w", ErrWaitFailed, st.Pid(), st.Executable(), err)
		}
		if wpid == 0 {
			// Non-blocking query, no status change yet.
			allFinished = false
			continue
		}

		code := ws.ExitStatus()
		if !ws.Exited() {
			Logger().Warn("process did not exit normally",
				"pid", st.Pid(), "executable", st.Executable(), "status", uint32(ws))
			if ws.Signaled() {
				code = 128 + int(ws.Signal())
			}
		}
		st.finish(code)
		Logger().Debug("process finished",
			"pid", st.Pid(), "executable", st.Executable(), "exit_code", code)
	}
	return allFinished, nil
}

// WaitFinished polls the states non-blocking at the given interval until
// every one is finished, the context is canceled, or the timeout elapses.
// It is the cooperative completion path for background chains; the children
// themselves are unaffected by cancellation, only the observation stops.
func WaitFinished(ctx context.Context, states []*ProcessState, interval, timeout time.Duration) error {
	if interval <= 0 {
		return ErrIntervalNotPositive
	}
	if timeout <= 0 {
		return ErrTimeoutNotPositive
	}

	if err := wait.PollUntilContextTimeout(ctx, interval, timeout, true,
		func(context.Context) (bool, error) {
			return Poll(states, false)
		}); err != nil {
		return fmt.Errorf("wait for chain completion: %w", err)
	}
	return nil
}
