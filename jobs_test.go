package execpiper_test

import (
	"context"
	"testing"
	"time"

	execpiper "github.com/phip1611/unix-exec-piper"
)

// startBackgroundSleep launches `sleep <seconds> &` through exec and
// returns the run.
func startBackgroundSleep(tb testing.TB, exec *execpiper.Executor, seconds string) *execpiper.Run {
	tb.Helper()
	chain := mustBuild(tb, true, execpiper.CmdSpec{
		Executable: "sleep",
		Args:       []string{"sleep", seconds},
	})
	run, err := exec.Execute(context.Background(), chain)
	if err != nil {
		tb.Fatalf("Execute: %v", err)
	}
	return run
}

func TestJobsAddAssignsSequentialIDs(t *testing.T) {
	t.Parallel()

	exec := newInitializedExecutor(t,
		execpiper.WithPollInterval(10*time.Millisecond))
	jobs := execpiper.NewJobs()

	first := jobs.Add(startBackgroundSleep(t, exec, "0.1"))
	second := jobs.Add(startBackgroundSleep(t, exec, "0.1"))

	if first.ID != 1 || second.ID != 2 {
		t.Errorf("expected job IDs 1 and 2, got %d and %d", first.ID, second.ID)
	}
	if jobs.Len() != 2 {
		t.Errorf("expected 2 tracked jobs, got %d", jobs.Len())
	}

	if err := jobs.Drain(context.Background()); err != nil {
		t.Fatalf("Drain: %v", err)
	}
}

func TestJobsPollAndReap(t *testing.T) {
	t.Parallel()

	exec := newInitializedExecutor(t,
		execpiper.WithPollInterval(10*time.Millisecond))
	jobs := execpiper.NewJobs()

	quick := jobs.Add(startBackgroundSleep(t, exec, "0.1"))
	slow := jobs.Add(startBackgroundSleep(t, exec, "2"))

	// Nothing is reaped before a poll observes the quick job's exit.
	if done := jobs.Reap(); len(done) != 0 {
		t.Fatalf("expected no finished jobs yet, got %d", len(done))
	}

	deadline := time.Now().Add(10 * time.Second)
	for !quick.Run.Finished() {
		if time.Now().After(deadline) {
			t.Fatal("quick job did not finish in time")
		}
		if _, err := jobs.PollAll(context.Background()); err != nil {
			t.Fatalf("PollAll: %v", err)
		}
		time.Sleep(10 * time.Millisecond)
	}

	done := jobs.Reap()
	if len(done) != 1 || done[0] != quick {
		t.Fatalf("expected to reap exactly the quick job, got %v", done)
	}
	if jobs.Len() != 1 {
		t.Errorf("expected 1 job still tracked, got %d", jobs.Len())
	}

	// Don't leave the slow sleep as a zombie for the rest of the run.
	if _, err := slow.Run.Poll(context.Background(), true); err != nil {
		t.Fatalf("Poll: %v", err)
	}
	if reaped := jobs.Reap(); len(reaped) != 1 {
		t.Errorf("expected to reap the slow job, got %d", len(reaped))
	}
}

func TestJobsDrainWaitsForAll(t *testing.T) {
	t.Parallel()

	exec := newInitializedExecutor(t,
		execpiper.WithPollInterval(10*time.Millisecond),
		execpiper.WithWaitTimeout(10*time.Second),
	)
	jobs := execpiper.NewJobs()
	for range 3 {
		jobs.Add(startBackgroundSleep(t, exec, "0.2"))
	}

	if err := jobs.Drain(context.Background()); err != nil {
		t.Fatalf("Drain: %v", err)
	}

	done := jobs.Reap()
	if len(done) != 3 {
		t.Fatalf("expected all 3 jobs finished, got %d", len(done))
	}
	for _, job := range done {
		for _, st := range job.Run.States() {
			if code := st.ExitCode(); code != 0 {
				t.Errorf("job %d: expected exit code 0, got %d", job.ID, code)
			}
		}
	}
}

func TestJobsDrainEmpty(t *testing.T) {
	t.Parallel()

	if err := execpiper.NewJobs().Drain(context.Background()); err != nil {
		t.Fatalf("Drain on empty tracker: %v", err)
	}
}
