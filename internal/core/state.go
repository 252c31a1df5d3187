package core

// ProcessState is the launching process's record of one spawned stage: the
// OS-assigned pid, the executable name for diagnostics, and the termination
// status. It is created unfinished right after a successful spawn and
// transitions to finished exactly once, by the wait/poll engine.
//
// ProcessState is not safe for concurrent use; a chain's states must only be
// polled from one goroutine at a time.
type ProcessState struct {
	executable string
	pid        int
	finished   bool
	exitCode   int
}

// NewProcessState creates an unfinished record for a freshly spawned stage.
func NewProcessState(executable string, pid int) *ProcessState {
	return &ProcessState{executable: executable, pid: pid, exitCode: -1}
}

// Pid returns the OS process identifier, assigned at spawn time.
func (s *ProcessState) Pid() int {
	return s.pid
}

// Executable returns the stage's executable name, for diagnostics.
func (s *ProcessState) Executable() string {
	return s.executable
}

// Finished reports whether the process has terminated and its exit code has
// been collected.
func (s *ProcessState) Finished() bool {
	return s.finished
}

// ExitCode returns the process's exit code. It must only be called once
// Finished reports true; calling it earlier is a programming error and
// panics, since the value is meaningless before termination.
func (s *ProcessState) ExitCode() int {
	if !s.finished {
		panic("execpiper: exit code read before process finished")
	}
	return s.exitCode
}

// finish records the terminal exit code. Finalizing twice is a programming
// error and panics: the pid may already have been reused by the OS, so a
// second status for it cannot belong to this stage.
func (s *ProcessState) finish(exitCode int) {
	if s.finished {
		panic("execpiper: process state already finished")
	}
	s.finished = true
	s.exitCode = exitCode
}
