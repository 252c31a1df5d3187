package execpiper

import (
	"github.com/phip1611/unix-exec-piper/internal/core"
	"github.com/phip1611/unix-exec-piper/internal/pipe"
	"github.com/phip1611/unix-exec-piper/internal/sentinel"
)

// Sentinel errors for error inspection with errors.Is.
// These are immutable constants safe for use in wrapped error chain comparison.
const (
	// ErrPipeCreate is returned when the kernel cannot allocate a pipe,
	// typically due to file descriptor exhaustion.
	ErrPipeCreate = pipe.ErrCreate

	// ErrPipeClaimed is returned when a pipe end is claimed a second time.
	ErrPipeClaimed = pipe.ErrClaimed

	// ErrExecFailed is returned when a stage's executable cannot be
	// resolved (not found in PATH, not executable).
	ErrExecFailed = core.ErrExecFailed

	// ErrSpawnFailed is returned when the OS cannot create a stage's
	// process.
	ErrSpawnFailed = core.ErrSpawnFailed

	// ErrRedirectOpen is returned when a redirect path cannot be opened.
	ErrRedirectOpen = core.ErrRedirectOpen

	// ErrWaitFailed is returned when an OS status query fails, which is
	// distinct from a non-blocking query reporting "no status yet".
	ErrWaitFailed = core.ErrWaitFailed

	// ErrEmptyChain is returned when a chain contains no commands.
	ErrEmptyChain = core.ErrEmptyChain

	// ErrNoExecutable is returned when a command has an empty executable.
	ErrNoExecutable = core.ErrNoExecutable

	// ErrNoArgs is returned when a command's argument vector is empty;
	// args[0] must carry the executable name.
	ErrNoArgs = core.ErrNoArgs

	// ErrRedirectPlacement is returned when an input redirect is set
	// anywhere but the first command, or an output redirect anywhere but
	// the last.
	ErrRedirectPlacement = core.ErrRedirectPlacement

	// ErrIntervalNotPositive indicates a non-positive poll interval.
	ErrIntervalNotPositive = core.ErrIntervalNotPositive

	// ErrTimeoutNotPositive indicates a non-positive timeout.
	ErrTimeoutNotPositive = core.ErrTimeoutNotPositive
)

// Executor lifecycle sentinel errors.
const (
	// ErrNotInitialized is returned by Executor.Execute when Initialize has
	// not been called.
	ErrNotInitialized = sentinel.Error("executor not initialized")

	// ErrClosed is returned by Executor.Execute after Close.
	ErrClosed = sentinel.Error("executor closed")
)
