package pipe

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"

	"github.com/phip1611/unix-exec-piper/internal/sentinel"
)

// ErrCreate is returned by New when the kernel cannot allocate a pipe,
// typically due to file descriptor exhaustion.
const ErrCreate = sentinel.Error("pipe creation failed")

// ErrClaimed is returned when a pipe end is claimed a second time. Each end
// feeds exactly one child process; claiming it twice would hand two processes
// the same descriptor and break end-of-stream detection.
const ErrClaimed = sentinel.Error("pipe end already claimed")

// Pipe is an anonymous unidirectional kernel pipe. The read and write ends
// are claimed at most once each; Close releases whatever is still open.
//
// The zero value is not usable; construct with New. Pipe is not safe for
// concurrent use, which is fine: claims and release happen on the single
// goroutine driving a chain launch.
type Pipe struct {
	readFD  int
	writeFD int

	readClaimed  bool
	writeClaimed bool
	readClosed   bool
	writeClosed  bool
}

// New allocates a kernel pipe with both ends open and unclaimed.
// The descriptors are opened close-on-exec so they never leak into children
// other than the ones they are explicitly staged into (the stage-time dup
// onto a standard slot clears the flag on the child's copy).
func New() (*Pipe, error) {
	var fds [2]int
	if err := unix.Pipe2(fds[:], unix.O_CLOEXEC); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCreate, err)
	}
	return &Pipe{readFD: fds[0], writeFD: fds[1]}, nil
}

// ClaimRead consumes the read end and returns its descriptor, destined for a
// child's standard-input slot. Returns ErrClaimed if the read end was already
// claimed. The descriptor stays open in this process until Close; the child
// receives its own duplicate at spawn time.
func (p *Pipe) ClaimRead() (int, error) {
	if p.readClaimed {
		return -1, fmt.Errorf("%w: read end", ErrClaimed)
	}
	p.readClaimed = true
	return p.readFD, nil
}

// ClaimWrite consumes the write end and returns its descriptor, destined for
// a child's standard-output slot. Returns ErrClaimed if the write end was
// already claimed.
func (p *Pipe) ClaimWrite() (int, error) {
	if p.writeClaimed {
		return -1, fmt.Errorf("%w: write end", ErrClaimed)
	}
	p.writeClaimed = true
	return p.writeFD, nil
}

// Close closes whichever ends this process still holds open. It is
// idempotent and must be called on every exit path: children own duplicates
// of the ends staged into them, so the copies here only keep the pipe
// artificially alive. An unreleased write-end copy is the classic cause of a
// downstream reader blocking forever.
func (p *Pipe) Close() error {
	var errs []error
	if !p.readClosed {
		p.readClosed = true
		if err := unix.Close(p.readFD); err != nil {
			errs = append(errs, fmt.Errorf("close read end: %w", err))
		}
	}
	if !p.writeClosed {
		p.writeClosed = true
		if err := unix.Close(p.writeFD); err != nil {
			errs = append(errs, fmt.Errorf("close write end: %w", err))
		}
	}
	return errors.Join(errs...)
}
