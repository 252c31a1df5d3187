package execpiper

import "github.com/phip1611/unix-exec-piper/internal/core"

// Chain is an ordered, non-empty sequence of commands plus a background
// flag: the parsed, validated form of e.g.
// `cat < in.txt | tee file.txt | wc -l > out.txt &`. A Chain is built once
// (via ChainBuilder or NewChain) and immutable thereafter.
//
// Chain is a type alias (not a named type) so the underlying [core.Chain]
// methods — Cmds, Len, Background, String — are part of the public API
// without this package redeclaring them. New methods added to core.Chain
// automatically become public through this alias.
type Chain = core.Chain

// Cmd is one validated, immutable pipeline stage. Alias for the same reason
// as [Chain].
type Cmd = core.Cmd

// CmdSpec describes one pipeline stage before validation, for callers that
// prefer struct literals over the fluent builder. Position-derived state
// (first/last flags) is assigned by NewChain.
type CmdSpec = core.CmdSpec

// ProcessState is the launching process's record of one spawned stage: pid,
// executable name, finished flag, and — once finished — the exit code.
// Reading the exit code of an unfinished state panics; it has no meaning
// before termination.
type ProcessState = core.ProcessState

// NewChain validates the given specs, assigns first/last flags by position,
// and returns an immutable chain. For a single-command chain the one
// command is both first and last.
func NewChain(specs []CmdSpec, background bool) (*Chain, error) {
	return core.NewChain(specs, background)
}
