package core

import (
	"fmt"
	"os"
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"

	"github.com/phip1611/unix-exec-piper/internal/pipe"
	"github.com/phip1611/unix-exec-piper/internal/sentinel"
)

// Sentinel errors returned by Execute. Callers can match these with
// errors.Is through wrapped error chains.
const (
	// ErrExecFailed is returned when a stage's executable cannot be
	// resolved to something runnable (not found in PATH, not executable).
	ErrExecFailed = sentinel.Error("executable resolution failed")

	// ErrSpawnFailed is returned when the OS cannot create the stage's
	// process (fork/exec failure, e.g. process-table exhaustion).
	ErrSpawnFailed = sentinel.Error("process creation failed")

	// ErrRedirectOpen is returned when a redirect path cannot be opened.
	ErrRedirectOpen = sentinel.Error("redirect path cannot be opened")
)

// Execute spawns one child process per command in the chain, with adjacent
// stages connected stdout-to-stdin through kernel pipes: N stages, N-1
// pipes, zero for a single-stage chain. An input redirect on the first stage
// and an output redirect on the last stage replace the corresponding pipe or
// inherited stream. Stages are spawned in chain order; the OS schedules them
// concurrently, so downstream stages consume while upstream stages are still
// producing.
//
// Before returning, Execute performs one wait pass over the new states:
// blocking for foreground chains (all states return finished), a single
// non-blocking sweep for background chains (states typically return
// unfinished; the caller polls them to completion).
//
// If a stage fails to spawn, Execute returns the error immediately.
// Already-started stages of the same chain are not terminated; they keep
// running and exit on their own once their pipes drain. There is no
// mechanism here to kill a launched stage.
func Execute(chain *Chain) ([]*ProcessState, error) {
	if chain == nil || chain.Len() == 0 {
		return nil, ErrEmptyChain
	}
	log := Logger()

	pids := make([]int, 0, chain.Len())

	// Two pipe slots travel across the loop: the pipe feeding the current
	// stage (created in the previous iteration) and the pipe the current
	// stage feeds (created now unless the stage is last).
	var toCurrent, toNext *pipe.Pipe
	defer func() {
		// Error path: release whatever is still open. Both slots are nil
		// after a fully successful loop.
		if toCurrent != nil {
			_ = toCurrent.Close()
		}
		if toNext != nil {
			_ = toNext.Close()
		}
	}()

	for i := range chain.cmds {
		cmd := &chain.cmds[i]

		if toNext != nil {
			toCurrent = toNext
			toNext = nil
		}
		if !cmd.IsLast() {
			p, err := pipe.New()
			if err != nil {
				return nil, fmt.Errorf("stage %d (%s): %w", i, cmd.Executable(), err)
			}
			toNext = p
		}

		pid, err := startStage(cmd, toCurrent, toNext)
		if err != nil {
			return nil, fmt.Errorf("stage %d (%s): %w", i, cmd.Executable(), err)
		}
		pids = append(pids, pid)
		log.Debug("stage started", "stage", i, "executable", cmd.Executable(), "pid", pid)

		// The child holds its own duplicates of the upstream pipe's ends;
		// the copies here would only keep the pipe open artificially. An
		// unreleased write-end copy would make the consumer wait for an
		// end-of-stream that never comes.
		if toCurrent != nil {
			if err := toCurrent.Close(); err != nil {
				log.Warn("release upstream pipe", "stage", i, "error", err)
			}
			toCurrent = nil
		}
	}

	states := make([]*ProcessState, 0, len(pids))
	for i, pid := range pids {
		states = append(states, NewProcessState(chain.cmds[i].Executable(), pid))
	}
	log.Debug("chain launched", "command", chain.String(), "stages", len(states))

	// Foreground chains block here until every stage has terminated;
	// background chains get a single non-blocking sweep and the caller
	// polls from then on.
	if _, err := Poll(states, !chain.Background()); err != nil {
		return states, err
	}
	return states, nil
}

// startStage resolves the executable, stages the three standard descriptors
// for the child, and spawns it. The returned pid belongs to the caller;
// descriptors opened here for redirects are closed before returning (the
// child received duplicates at spawn time).
func startStage(cmd *Cmd, toCurrent, toNext *pipe.Pipe) (int, error) {
	// Inherited by default. A pipe end or redirect below takes the slot
	// over; stderr is always inherited.
	stdin := int(os.Stdin.Fd())
	stdout := int(os.Stdout.Fd())
	stderr := int(os.Stderr.Fd())

	// Parent copies of redirect descriptors, closed on every exit path.
	var opened []int
	defer func() {
		for _, fd := range opened {
			_ = unix.Close(fd)
		}
	}()

	stdinTaken := false
	if path, ok := cmd.InputRedirect(); ok && cmd.IsFirst() {
		fd, err := unix.Open(path, unix.O_RDONLY|unix.O_CLOEXEC, 0)
		if err != nil {
			return 0, fmt.Errorf("%w: %s: %w", ErrRedirectOpen, path, err)
		}
		opened = append(opened, fd)
		stdin = fd
		stdinTaken = true
	}
	if path, ok := cmd.OutputRedirect(); ok && cmd.IsLast() {
		// Truncating write, matching `>`; `>>` append is not supported.
		fd, err := unix.Open(path, unix.O_WRONLY|unix.O_CREAT|unix.O_TRUNC|unix.O_CLOEXEC, 0o644)
		if err != nil {
			return 0, fmt.Errorf("%w: %s: %w", ErrRedirectOpen, path, err)
		}
		opened = append(opened, fd)
		stdout = fd
	}

	// The pipe wins the slot only if no redirect claimed it. A validated
	// chain never has both (redirects exist only at the chain's ends, the
	// upstream pipe only away from the first stage), but the most specific
	// source must win if an inconsistent description slips through.
	if toCurrent != nil && !stdinTaken {
		fd, err := toCurrent.ClaimRead()
		if err != nil {
			return 0, fmt.Errorf("claim upstream read end: %w", err)
		}
		stdin = fd
	}
	if toNext != nil {
		fd, err := toNext.ClaimWrite()
		if err != nil {
			return 0, fmt.Errorf("claim downstream write end: %w", err)
		}
		stdout = fd
	}

	argv0, err := exec.LookPath(cmd.Executable())
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %w", ErrExecFailed, cmd.Executable(), err)
	}

	// StartProcess forks, duplicates each staged descriptor onto the
	// child's standard slot with the close-on-exec flag cleared, and
	// replaces the child image. This is where the per-child redirect and
	// pipe wiring actually takes effect.
	pid, _, err := syscall.StartProcess(argv0, cmd.Args(), &syscall.ProcAttr{
		Env:   os.Environ(),
		Files: []uintptr{uintptr(stdin), uintptr(stdout), uintptr(stderr)},
	})
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %w", ErrSpawnFailed, argv0, err)
	}
	return pid, nil
}
