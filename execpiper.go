package execpiper

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/phip1611/unix-exec-piper/internal/core"
	"github.com/phip1611/unix-exec-piper/internal/history"
)

// Execute spawns one child process per command in the chain, with adjacent
// stages connected stdout-to-stdin through kernel pipes. An input redirect
// on the first stage and an output redirect on the last replace the
// corresponding inherited stream. For a foreground chain, Execute blocks
// until every stage has terminated and the returned states carry exit
// codes; for a background chain it returns right after spawning and the
// caller polls the states to completion.
//
// If a stage fails to spawn, already-started stages of the same chain are
// not terminated; they keep running and exit on their own once their pipes
// drain.
//
// Execute is the one-shot entry point. Callers that want configured wait
// behavior or launch history use an [Executor] instead.
func Execute(chain *Chain) ([]*ProcessState, error) {
	return core.Execute(chain)
}

// Poll queries the OS once for each not-yet-finished state and finalizes
// those that have terminated. It returns true iff every state is finished
// after the pass. With blocking=true the call waits for each remaining
// process; with blocking=false each gets a single non-blocking status
// attempt.
func Poll(states []*ProcessState, blocking bool) (bool, error) {
	return core.Poll(states, blocking)
}

// WaitFinished polls the states non-blocking at the given interval until
// every one is finished, the context is canceled, or the timeout elapses.
// The children themselves are unaffected by cancellation, only the
// observation stops.
func WaitFinished(ctx context.Context, states []*ProcessState, interval, timeout time.Duration) error {
	return core.WaitFinished(ctx, states, interval, timeout)
}

// HistoryEntry is one recorded chain launch: the rendered command line, the
// pids it spawned, and — once observed — the per-stage exit codes.
type HistoryEntry = history.Entry

// Executor launches command chains with configured wait behavior and an
// optional persistent launch history. The zero value is not usable; create
// one with NewExecutor and call Initialize before Execute.
//
// An Executor is safe for use from a single goroutine. The launching loop
// of a shell is inherently sequential; callers that need concurrent
// launches use separate Executors.
type Executor struct {
	cfg executorConfig

	mu          sync.Mutex
	initialized bool
	closed      bool
	hist        *history.Store
}

// NewExecutor creates an Executor from the given options. No I/O happens
// here; the history database (if configured) is opened by Initialize.
func NewExecutor(opts ...Option) *Executor {
	cfg := defaultExecutorConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Executor{cfg: cfg}
}

// Initialize prepares the Executor for use: it opens the history database
// when one is configured, creating the file and its parent directory if
// needed. Calling Initialize again after a successful call is a no-op;
// after a failed call it retries.
func (e *Executor) Initialize(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return ErrClosed
	}
	if e.initialized {
		return nil
	}

	if e.cfg.HistoryPath != "" {
		st, err := history.Open(ctx, e.cfg.HistoryPath, core.Logger())
		if err != nil {
			return fmt.Errorf("open history store: %w", err)
		}
		e.hist = st
	}
	e.initialized = true
	return nil
}

// Close releases the Executor's resources. Runs returned by Execute remain
// usable for polling, but no longer record history. Close is idempotent.
func (e *Executor) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil
	}
	e.closed = true

	if e.hist != nil {
		st := e.hist
		e.hist = nil
		if err := st.Close(); err != nil {
			return fmt.Errorf("close history store: %w", err)
		}
	}
	return nil
}

// Execute launches the chain and returns a Run tracking its stages. For a
// foreground chain the call blocks until every stage has terminated; the
// returned Run is already finished. For a background chain it returns right
// after spawning and the caller drives the Run via Poll or Wait.
//
// When history is configured, the launch is recorded before returning, and
// completion is recorded as soon as all stages are observed finished (here
// for foreground chains, in Run.Poll/Run.Wait for background ones).
//
// Returns ErrNotInitialized before Initialize, ErrClosed after Close.
func (e *Executor) Execute(ctx context.Context, chain *Chain) (*Run, error) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil, ErrClosed
	}
	if !e.initialized {
		e.mu.Unlock()
		return nil, ErrNotInitialized
	}
	e.mu.Unlock()

	states, err := core.Execute(chain)
	if len(states) == 0 {
		// Nothing was spawned; there is no run to track.
		return nil, err
	}

	run := &Run{exec: e, chain: chain, states: states, histID: -1}

	if hist := e.historyStore(); hist != nil {
		pids := make([]int, 0, len(states))
		for _, st := range states {
			pids = append(pids, st.Pid())
		}
		id, histErr := hist.RecordLaunch(ctx, chain.String(), chain.Background(), pids)
		if histErr != nil {
			core.Logger().Warn("record chain launch", "command", chain.String(), "error", histErr)
		} else {
			run.histID = id
		}
	}
	run.recordIfFinished(ctx)

	// err is non-nil here only when the post-spawn wait pass failed; the
	// stages were launched and the caller gets the run alongside the error.
	return run, err
}

// History returns the most recent recorded launches, newest first.
// Returns ErrNotInitialized if history is not configured or the Executor
// is not initialized.
func (e *Executor) History(ctx context.Context, limit int) ([]HistoryEntry, error) {
	hist := e.historyStore()
	if hist == nil {
		return nil, ErrNotInitialized
	}
	return hist.Recent(ctx, limit)
}

// historyStore returns the store if the Executor is initialized, history is
// configured, and Close has not been called.
func (e *Executor) historyStore() *history.Store {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed || !e.initialized {
		return nil
	}
	return e.hist
}

// Run tracks the stages of one executed chain. It is created by
// [Executor.Execute] and drives status collection for background chains.
//
// A Run is not safe for concurrent use.
type Run struct {
	exec   *Executor
	chain  *Chain
	states []*core.ProcessState

	// histID is the history row for this launch, -1 when history is
	// disabled or the launch record failed. recorded flips once the
	// completion has been written so it is never written twice.
	histID   int64
	recorded bool
}

// Chain returns the chain this run was launched from.
func (r *Run) Chain() *Chain {
	return r.chain
}

// States returns the per-stage process states in chain order. The slice is
// a copy; the states themselves are shared and reflect later polls.
func (r *Run) States() []*ProcessState {
	out := make([]*ProcessState, len(r.states))
	copy(out, r.states)
	return out
}

// Finished reports whether every stage has been observed terminated. It
// does not query the OS; use Poll or Wait for that.
func (r *Run) Finished() bool {
	for _, st := range r.states {
		if !st.Finished() {
			return false
		}
	}
	return true
}

// Poll performs one status pass over the run's stages, blocking per stage
// when blocking is true. It returns true iff every stage is finished after
// the pass. Once all stages are finished, the completion is recorded in
// history (if configured).
func (r *Run) Poll(ctx context.Context, blocking bool) (bool, error) {
	finished, err := core.Poll(r.states, blocking)
	if err != nil {
		return finished, err
	}
	if finished {
		r.recordIfFinished(ctx)
	}
	return finished, nil
}

// Wait polls the run's stages at the Executor's poll interval until all are
// finished, the context is canceled, or the Executor's wait timeout
// elapses. The children are unaffected by cancellation; only the
// observation stops.
func (r *Run) Wait(ctx context.Context) error {
	if err := core.WaitFinished(ctx, r.states, r.exec.cfg.PollInterval, r.exec.cfg.WaitTimeout); err != nil {
		return err
	}
	r.recordIfFinished(ctx)
	return nil
}

// recordIfFinished writes the completion record exactly once, as soon as
// every stage has a final exit code.
func (r *Run) recordIfFinished(ctx context.Context) {
	if r.recorded || r.histID < 0 || !r.Finished() {
		return
	}
	hist := r.exec.historyStore()
	if hist == nil {
		return
	}
	codes := make([]int, 0, len(r.states))
	for _, st := range r.states {
		codes = append(codes, st.ExitCode())
	}
	if err := hist.RecordCompletion(ctx, r.histID, codes); err != nil {
		core.Logger().Warn("record chain completion", "command", r.chain.String(), "error", err)
		return
	}
	r.recorded = true
}
