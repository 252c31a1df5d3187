package execpiper

import "time"

// Default configuration values for NewExecutor.
// These constants are exported so callers can reference the defaults
// when building custom configurations relative to them (e.g.,
// 2 * DefaultWaitTimeout).
const (
	// DefaultPollInterval is how often Run.Wait and WaitFinished re-check
	// child status between non-blocking polls. Children are reaped via
	// wait with WNOHANG, so a short interval keeps latency low without
	// blocking the calling goroutine on any single child.
	DefaultPollInterval = 50 * time.Millisecond

	// DefaultWaitTimeout is the total time Run.Wait allows for all stages
	// of a chain to terminate. Chains running interactive or long-lived
	// commands should raise this via WithWaitTimeout.
	DefaultWaitTimeout = 5 * time.Minute
)
