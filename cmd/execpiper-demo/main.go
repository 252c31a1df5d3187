// Command execpiper-demo exercises the library end to end: a foreground
// three-stage pipeline moving a generated file through cat processes with
// redirects on both ends, then a background chain that is polled to
// completion like a shell polling its job table.
package main

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	execpiper "github.com/phip1611/unix-exec-piper"
)

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})))

	if err := run(context.Background()); err != nil {
		slog.Error("demo failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	workDir, err := os.MkdirTemp("", "execpiper-demo-")
	if err != nil {
		return fmt.Errorf("create work dir: %w", err)
	}
	defer os.RemoveAll(workDir)

	exec := execpiper.NewExecutor(
		execpiper.WithHistory(filepath.Join(workDir, "history.db")),
		execpiper.WithPollInterval(25*time.Millisecond),
	)
	if err := exec.Initialize(ctx); err != nil {
		return err
	}
	defer exec.Close()

	if err := foregroundDemo(ctx, exec, workDir); err != nil {
		return err
	}
	if err := backgroundDemo(ctx, exec); err != nil {
		return err
	}

	entries, err := exec.History(ctx, 10)
	if err != nil {
		return err
	}
	for _, e := range entries {
		fmt.Printf("history: %q pids=%v exit_codes=%v\n", e.Command, e.Pids, e.ExitCodes)
	}
	return nil
}

// foregroundDemo pushes a generated payload through
// `cat < in.txt | cat | cat > out.txt` and verifies the bytes survived.
// The payload is larger than a pipe buffer, so the stages must run
// concurrently for the chain to finish at all.
func foregroundDemo(ctx context.Context, exec *execpiper.Executor, workDir string) error {
	inPath := filepath.Join(workDir, "in.txt")
	outPath := filepath.Join(workDir, "out.txt")

	payload := []byte(strings.Repeat("all work and no play makes jack a dull boy\n", 1500))
	if err := os.WriteFile(inPath, payload, 0o644); err != nil {
		return fmt.Errorf("write payload: %w", err)
	}

	chain, err := execpiper.NewChainBuilder().
		Append(execpiper.NewCmdBuilder().Command("cat").SetInputRedirect(inPath).Spec()).
		Append(execpiper.NewCmdBuilder().Command("cat").Spec()).
		Append(execpiper.NewCmdBuilder().Command("cat").SetOutputRedirect(outPath).Spec()).
		Build()
	if err != nil {
		return err
	}

	fmt.Printf("running foreground: %s\n", chain)
	run, err := exec.Execute(ctx, chain)
	if err != nil {
		return err
	}
	for i, st := range run.States() {
		fmt.Printf("  stage %d (%s) pid=%d exit_code=%d\n", i, st.Executable(), st.Pid(), st.ExitCode())
	}

	out, err := os.ReadFile(outPath)
	if err != nil {
		return fmt.Errorf("read result: %w", err)
	}
	if !bytes.Equal(out, payload) {
		return fmt.Errorf("payload corrupted: %d bytes in, %d bytes out", len(payload), len(out))
	}
	fmt.Printf("  %d bytes moved through the pipeline intact\n", len(out))
	return nil
}

// backgroundDemo launches `ls -l | grep -i a &` and polls it the way a
// shell polls background jobs between prompts.
func backgroundDemo(ctx context.Context, exec *execpiper.Executor) error {
	chain, err := execpiper.NewChainBuilder().
		Append(execpiper.NewCmdBuilder().Command("ls", "-l").Spec()).
		Append(execpiper.NewCmdBuilder().Command("grep", "-i", "a").Spec()).
		SetBackground(true).
		Build()
	if err != nil {
		return err
	}

	fmt.Printf("running background: %s\n", chain)
	run, err := exec.Execute(ctx, chain)
	if err != nil {
		return err
	}

	jobs := execpiper.NewJobs()
	job := jobs.Add(run)
	for {
		finished, err := jobs.PollAll(ctx)
		if err != nil {
			return err
		}
		if finished {
			break
		}
		fmt.Printf("  [%d] still running\n", job.ID)
		time.Sleep(25 * time.Millisecond)
	}
	for _, done := range jobs.Reap() {
		for _, st := range done.Run.States() {
			fmt.Printf("  [%d] done: %s pid=%d exit_code=%d\n",
				done.ID, st.Executable(), st.Pid(), st.ExitCode())
		}
	}
	return nil
}
