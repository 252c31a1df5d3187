// Package execpiper builds and executes chains of operating-system processes
// whose standard streams are connected like a shell pipeline
// (`cmd1 | cmd2 | ... | cmdN`), with optional input redirection on the first
// command, output redirection on the last, and optional background execution.
// It is the engine a shell's pipeline executor uses internally; it consumes
// an already-validated chain description and does not parse shell syntax.
//
// The package is Unix-only: it is built on kernel pipes, fork/exec process
// creation, and wait4 status collection.
//
// # Basic Usage
//
//	chain, err := execpiper.NewChainBuilder().
//	    Append(execpiper.NewCmdBuilder().Command("cat").SetInputRedirect("in.txt").Spec()).
//	    Append(execpiper.NewCmdBuilder().Command("grep", "-i", "abc").Spec()).
//	    Append(execpiper.NewCmdBuilder().Command("wc", "-l").SetOutputRedirect("out.txt").Spec()).
//	    Build()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	states, err := execpiper.Execute(chain)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, st := range states {
//	    fmt.Printf("pid %d (%s) exited with %d\n", st.Pid(), st.Executable(), st.ExitCode())
//	}
//
// # Background Chains
//
// A chain built with SetBackground(true) returns immediately after spawning;
// its states are typically still unfinished. The caller polls them to
// completion, cooperatively and without blocking:
//
//	states, _ := execpiper.Execute(chain)
//	for {
//	    done, err := execpiper.Poll(states, false)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    if done {
//	        break
//	    }
//	    // e.g. once per prompt redraw in a shell
//	}
//
// or, bounded by a context, via WaitFinished. Launched stages cannot be
// killed through this package; cancellation stops the observation only.
//
// # Executor
//
// Executor layers optional ambient features over the package-level
// functions, currently a persistent execution history:
//
//	exe := execpiper.NewExecutor(execpiper.WithHistory("/tmp/piper-history.db"))
//	if err := exe.Initialize(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer exe.Close()
//
//	run, err := exe.Execute(ctx, chain)
package execpiper
