package execpiper

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"
)

// Job is one background run under the supervision of a [Jobs] tracker,
// numbered in launch order like a shell's job table.
type Job struct {
	// ID is the tracker-local job number, starting at 1.
	ID  int
	Run *Run
}

// Jobs tracks background runs the way a shell tracks jobs: runs are added
// after launch, swept with PollAll between prompts, announced and removed
// with Reap once finished, and drained on shutdown.
//
// A Jobs tracker is not safe for concurrent use. It is owned by the
// sequential launching loop; Drain is the only method that spawns
// goroutines, and it joins them all before returning.
type Jobs struct {
	jobs   []*Job
	nextID int
}

// NewJobs returns an empty job tracker.
func NewJobs() *Jobs {
	return &Jobs{nextID: 1}
}

// Add registers a run with the tracker and returns its job entry.
func (j *Jobs) Add(run *Run) *Job {
	job := &Job{ID: j.nextID, Run: run}
	j.nextID++
	j.jobs = append(j.jobs, job)
	return job
}

// Len returns the number of tracked jobs, finished or not.
func (j *Jobs) Len() int {
	return len(j.jobs)
}

// PollAll performs one non-blocking status sweep over every tracked job.
// It returns true iff all tracked jobs are finished after the sweep.
// Errors from individual jobs are joined; the sweep still visits every job.
func (j *Jobs) PollAll(ctx context.Context) (bool, error) {
	allFinished := true
	var errs []error
	for _, job := range j.jobs {
		finished, err := job.Run.Poll(ctx, false)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if !finished {
			allFinished = false
		}
	}
	return allFinished, errors.Join(errs...)
}

// Reap removes every finished job from the tracker and returns them in
// launch order, mirroring a shell reporting "[1] Done ..." before the next
// prompt. Unfinished jobs stay tracked. Reap does not query the OS; call
// PollAll first.
func (j *Jobs) Reap() []*Job {
	var done, live []*Job
	for _, job := range j.jobs {
		if job.Run.Finished() {
			done = append(done, job)
		} else {
			live = append(live, job)
		}
	}
	j.jobs = live
	return done
}

// Drain waits for every tracked job to finish, polling them concurrently.
// The first error (or context cancellation) is returned after all waiters
// have stopped. Finished jobs remain tracked; call Reap to collect them.
func (j *Jobs) Drain(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, job := range j.jobs {
		g.Go(func() error {
			return job.Run.Wait(ctx)
		})
	}
	return g.Wait()
}
