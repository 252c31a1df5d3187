package execpiper

import "slices"

// CmdBuilder assembles one pipeline stage: executable, argument vector and
// optional redirects. A zero builder is not usable; create one with
// NewCmdBuilder. All setters return the builder for chaining:
//
//	cmd := NewCmdBuilder().
//		Command("wc", "-l").
//		SetOutputRedirect("out.txt").
//		Spec()
//
// Validation (non-empty executable, redirect placement) happens when the
// spec is handed to [ChainBuilder.Build] or [NewChain], not here.
type CmdBuilder struct {
	spec CmdSpec
}

// NewCmdBuilder returns an empty command builder.
func NewCmdBuilder() *CmdBuilder {
	return &CmdBuilder{}
}

// Command sets the executable and the full argument vector in one call.
// args are the arguments after the executable name; args[0] of the final
// vector is set to the executable itself, following POSIX convention.
func (b *CmdBuilder) Command(executable string, args ...string) *CmdBuilder {
	b.spec.Executable = executable
	b.spec.Args = append([]string{executable}, args...)
	return b
}

// SetExecutable sets the executable name or path without touching the
// argument vector. Callers using this must add args[0] themselves via
// AddArg or AddArgs.
func (b *CmdBuilder) SetExecutable(executable string) *CmdBuilder {
	b.spec.Executable = executable
	return b
}

// AddArg appends one argument to the argument vector.
func (b *CmdBuilder) AddArg(arg string) *CmdBuilder {
	b.spec.Args = append(b.spec.Args, arg)
	return b
}

// AddArgs appends several arguments to the argument vector.
func (b *CmdBuilder) AddArgs(args ...string) *CmdBuilder {
	b.spec.Args = append(b.spec.Args, args...)
	return b
}

// SetInputRedirect reads the stage's stdin from the given file. Only valid
// on the first command of a chain; Build rejects other placements.
func (b *CmdBuilder) SetInputRedirect(path string) *CmdBuilder {
	b.spec.InputRedirect = path
	return b
}

// SetOutputRedirect writes the stage's stdout to the given file, created or
// truncated on start. Only valid on the last command of a chain; Build
// rejects other placements.
func (b *CmdBuilder) SetOutputRedirect(path string) *CmdBuilder {
	b.spec.OutputRedirect = path
	return b
}

// Spec returns the accumulated spec with a cloned argument vector, so later
// builder mutations do not alias the returned value.
func (b *CmdBuilder) Spec() CmdSpec {
	spec := b.spec
	spec.Args = slices.Clone(b.spec.Args)
	return spec
}

// ChainBuilder assembles a command chain stage by stage:
//
//	chain, err := NewChainBuilder().
//		Append(NewCmdBuilder().Command("cat").SetInputRedirect("in.txt").Spec()).
//		Append(NewCmdBuilder().Command("wc", "-l").SetOutputRedirect("out.txt").Spec()).
//		Build()
type ChainBuilder struct {
	specs      []CmdSpec
	background bool
}

// NewChainBuilder returns an empty chain builder.
func NewChainBuilder() *ChainBuilder {
	return &ChainBuilder{}
}

// Append adds a stage to the end of the chain. The spec's argument vector
// is cloned, so the caller may reuse or mutate the passed value afterwards.
func (b *ChainBuilder) Append(spec CmdSpec) *ChainBuilder {
	spec.Args = slices.Clone(spec.Args)
	b.specs = append(b.specs, spec)
	return b
}

// SetBackground marks the chain for background execution: Execute starts
// all stages and returns immediately without collecting their status.
func (b *ChainBuilder) SetBackground(background bool) *ChainBuilder {
	b.background = background
	return b
}

// Build validates the accumulated stages and returns the immutable chain.
func (b *ChainBuilder) Build() (*Chain, error) {
	return NewChain(b.specs, b.background)
}
