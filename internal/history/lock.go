package history

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gofrs/flock"
)

// lockRetryInterval is the interval between consecutive attempts to acquire
// the history file lock. 50ms keeps the wait after the holder releases short
// without busy-polling the filesystem.
const lockRetryInterval = 50 * time.Millisecond

// acquireFileLock acquires an exclusive lock on the given path, retrying at
// lockRetryInterval until it succeeds or the context is done.
func acquireFileLock(ctx context.Context, lockPath string) (*flock.Flock, error) {
	fl := flock.New(lockPath)

	locked, err := fl.TryLockContext(ctx, lockRetryInterval)
	if err != nil {
		return nil, fmt.Errorf("acquiring file lock %s: %w", lockPath, err)
	}
	if !locked {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("acquiring file lock %s: %w", lockPath, ctx.Err())
		}
		return nil, fmt.Errorf("acquiring file lock %s: lock not acquired", lockPath)
	}

	return fl, nil
}

// releaseFileLock releases the lock and closes its descriptor. The lock file
// stays on disk: removing it could invalidate a lock another process
// acquired concurrently. Errors are logged at debug level; this is
// best-effort cleanup.
func releaseFileLock(logger *slog.Logger, fl *flock.Flock) {
	if fl != nil {
		if err := fl.Close(); err != nil {
			logger.Debug("failed to release file lock", "path", fl.Path(), "err", err)
		}
	}
}
