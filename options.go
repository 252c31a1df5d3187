package execpiper

import (
	"fmt"
	"time"
)

// requirePositive panics if v <= 0 with a descriptive message.
func requirePositive[T int | time.Duration](name string, v T) {
	if v <= 0 {
		panic(fmt.Sprintf("execpiper: %s must be greater than 0, got %v", name, v))
	}
}

// requireNonEmpty panics if s is empty with a descriptive message.
func requireNonEmpty(name, s string) {
	if s == "" {
		panic(fmt.Sprintf("execpiper: %s must not be empty", name))
	}
}

// executorConfig holds the resolved configuration of an Executor.
type executorConfig struct {
	// HistoryPath is the SQLite database file used to record launched
	// chains and their outcomes. Empty disables history.
	HistoryPath string

	// PollInterval is the delay between status polls in Run.Wait.
	PollInterval time.Duration

	// WaitTimeout bounds how long Run.Wait waits for a chain to finish.
	WaitTimeout time.Duration
}

func defaultExecutorConfig() executorConfig {
	return executorConfig{
		PollInterval: DefaultPollInterval,
		WaitTimeout:  DefaultWaitTimeout,
	}
}

// Option configures an Executor during construction via NewExecutor.
// Each With* function returns an Option that sets a specific field.
//
// Several With* functions panic on invalid input (empty paths, non-positive
// durations). These panics are intentional: option values are typically
// compile-time constants or package-level variables, so an invalid value
// indicates a programmer error rather than a runtime condition. The pattern
// mirrors [regexp.MustCompile] — fail fast during initialization instead of
// returning errors that would be universally fatal anyway.
type Option func(*executorConfig)

// WithHistory enables persistent launch history, stored in a SQLite
// database at dbPath. The parent directory is created on Initialize if it
// does not exist.
//
// Panics if dbPath is empty.
func WithHistory(dbPath string) Option {
	requireNonEmpty("history database path", dbPath)
	return func(c *executorConfig) {
		c.HistoryPath = dbPath
	}
}

// WithPollInterval sets how often Run.Wait re-checks child status.
//
// Default: 50 milliseconds.
//
// Panics if d <= 0.
func WithPollInterval(d time.Duration) Option {
	requirePositive("poll interval", d)
	return func(c *executorConfig) {
		c.PollInterval = d
	}
}

// WithWaitTimeout sets the total time Run.Wait allows for all stages of a
// chain to terminate before giving up with a timeout error. The children
// keep running; the caller can poll again or kill them.
//
// Default: 5 minutes.
//
// Panics if d <= 0.
func WithWaitTimeout(d time.Duration) Option {
	requirePositive("wait timeout", d)
	return func(c *executorConfig) {
		c.WaitTimeout = d
	}
}
