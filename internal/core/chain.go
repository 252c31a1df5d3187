package core

import (
	"fmt"
	"slices"
	"strings"

	"github.com/phip1611/unix-exec-piper/internal/sentinel"
)

// Sentinel errors returned by NewChain for invalid chain descriptions.
// Callers can match these with errors.Is through wrapped error chains.
const (
	// ErrEmptyChain is returned when a chain contains no commands.
	ErrEmptyChain = sentinel.Error("chain must contain at least one command")

	// ErrNoExecutable is returned when a command has an empty executable.
	ErrNoExecutable = sentinel.Error("command executable must not be empty")

	// ErrNoArgs is returned when a command's argument vector is empty. By
	// POSIX convention args[0] carries the executable name, so a valid
	// command always has at least one argument.
	ErrNoArgs = sentinel.Error("command args must at least contain the executable name")

	// ErrRedirectPlacement is returned when an input redirect is set on a
	// command that is not first in the chain, or an output redirect on a
	// command that is not last.
	ErrRedirectPlacement = sentinel.Error("redirect not valid at this chain position")
)

// CmdSpec describes one pipeline stage before validation: the executable
// (bare name or path), the argument vector including args[0], and optional
// redirect paths. Position-derived state (first/last) is assigned by
// NewChain, not by the caller.
type CmdSpec struct {
	Executable     string
	Args           []string
	InputRedirect  string
	OutputRedirect string
}

// Cmd is one validated, immutable pipeline stage. It is the parsed form of
// e.g. `cat < in.txt`, `tee file.txt`, or `wc -l > out.txt` inside
// `cat < in.txt | tee file.txt | wc -l > out.txt &`.
type Cmd struct {
	executable  string
	args        []string
	inRedirect  string
	outRedirect string
	first       bool
	last        bool
}

// Executable returns the executable name or path.
func (c *Cmd) Executable() string {
	return c.executable
}

// Args returns a copy of the argument vector, including args[0].
func (c *Cmd) Args() []string {
	return slices.Clone(c.args)
}

// InputRedirect returns the input-redirect path and whether one is set.
// Only ever set on the first command of a chain.
func (c *Cmd) InputRedirect() (string, bool) {
	return c.inRedirect, c.inRedirect != ""
}

// OutputRedirect returns the output-redirect path and whether one is set.
// Only ever set on the last command of a chain.
func (c *Cmd) OutputRedirect() (string, bool) {
	return c.outRedirect, c.outRedirect != ""
}

// IsFirst reports whether this is the first command in its chain.
func (c *Cmd) IsFirst() bool {
	return c.first
}

// IsLast reports whether this is the last command in its chain.
func (c *Cmd) IsLast() bool {
	return c.last
}

// IsInterior reports whether the command is neither first nor last.
func (c *Cmd) IsInterior() bool {
	return !c.first && !c.last
}

// Chain is an ordered, non-empty sequence of commands plus a background
// flag. It is the unit that gets executed: the parsed form of `ps`,
// `ls -l`, or `cat < in.txt | tee file.txt | wc -l > out.txt &`.
// A Chain is built once by NewChain and immutable thereafter.
type Chain struct {
	cmds       []Cmd
	background bool
}

// NewChain validates the given specs, assigns first/last flags by position,
// and returns an immutable chain. For a single-command chain the one command
// is both first and last.
func NewChain(specs []CmdSpec, background bool) (*Chain, error) {
	if len(specs) == 0 {
		return nil, ErrEmptyChain
	}

	cmds := make([]Cmd, 0, len(specs))
	for i, spec := range specs {
		if spec.Executable == "" {
			return nil, fmt.Errorf("command %d: %w", i, ErrNoExecutable)
		}
		if len(spec.Args) == 0 {
			return nil, fmt.Errorf("command %d (%s): %w", i, spec.Executable, ErrNoArgs)
		}
		first := i == 0
		last := i == len(specs)-1
		if spec.InputRedirect != "" && !first {
			return nil, fmt.Errorf("command %d (%s): input redirect: %w", i, spec.Executable, ErrRedirectPlacement)
		}
		if spec.OutputRedirect != "" && !last {
			return nil, fmt.Errorf("command %d (%s): output redirect: %w", i, spec.Executable, ErrRedirectPlacement)
		}
		cmds = append(cmds, Cmd{
			executable:  spec.Executable,
			args:        slices.Clone(spec.Args),
			inRedirect:  spec.InputRedirect,
			outRedirect: spec.OutputRedirect,
			first:       first,
			last:        last,
		})
	}

	return &Chain{cmds: cmds, background: background}, nil
}

// Cmds returns a copy of the command sequence in chain order.
func (c *Chain) Cmds() []Cmd {
	return slices.Clone(c.cmds)
}

// Len returns the number of commands in the chain.
func (c *Chain) Len() int {
	return len(c.cmds)
}

// Background reports whether the chain runs in the background: Execute then
// performs a single non-blocking status sweep and returns immediately,
// leaving further polling to the caller.
func (c *Chain) Background() bool {
	return c.background
}

// String renders the chain in shell notation, e.g.
// `cat < in.txt | grep -i abc | wc -l > out.txt &`.
func (c *Chain) String() string {
	var b strings.Builder
	for i := range c.cmds {
		cmd := &c.cmds[i]
		if i > 0 {
			b.WriteString(" | ")
		}
		b.WriteString(strings.Join(cmd.args, " "))
		if path, ok := cmd.InputRedirect(); ok {
			b.WriteString(" < ")
			b.WriteString(path)
		}
		if path, ok := cmd.OutputRedirect(); ok {
			b.WriteString(" > ")
			b.WriteString(path)
		}
	}
	if c.background {
		b.WriteString(" &")
	}
	return b.String()
}
