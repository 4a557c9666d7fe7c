package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/peterh/liner"
)

// Color helpers, following the teacher's cmd/ailang convention of
// package-level SprintFuncs rather than calling color.New at each site.
var (
	green  = color.New(color.FgGreen).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
)

// tracer prints a line per compilation phase and, when interactive verbose
// mode is on, blocks on a liner prompt so a user can step through the
// pipeline one phase at a time -- the same interactive-stepping idea the
// teacher's internal/repl built for single-expression evaluation, adapted
// here to step across phases instead of REPL statements.
type tracer struct {
	verbose     bool
	quiet       bool
	interactive bool
	line        *liner.State
}

func newTracer(verbose, quiet bool) *tracer {
	t := &tracer{verbose: verbose, quiet: quiet}
	if verbose && isTerminal() {
		t.interactive = true
		t.line = liner.NewLiner()
	}
	return t
}

func isTerminal() bool {
	fi, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}

func (t *tracer) close() {
	if t.line != nil {
		t.line.Close()
	}
}

// phase announces that a pipeline phase is about to run and, in
// interactive verbose mode, waits for the user to press enter before
// continuing.
func (t *tracer) phase(name string, detail string) {
	if t.quiet {
		return
	}
	if !t.verbose {
		return
	}
	if detail != "" {
		fmt.Fprintf(os.Stderr, "%s %s %s\n", cyan("phase"), bold(name), detail)
	} else {
		fmt.Fprintf(os.Stderr, "%s %s\n", cyan("phase"), bold(name))
	}
	if t.interactive {
		if _, err := t.line.Prompt("  -- press enter to continue --"); err != nil {
			// EOF/interrupt: fall back to non-interactive for the rest of
			// the run rather than blocking forever.
			t.interactive = false
		}
	}
}

// ok prints a phase-complete confirmation.
func (t *tracer) ok(name string) {
	if t.quiet {
		return
	}
	fmt.Fprintf(os.Stderr, "%s %s\n", green("done"), name)
}

// warn prints a non-fatal warning (e.g. an unsupported -t dialect).
func (t *tracer) warn(msg string) {
	if t.quiet {
		return
	}
	fmt.Fprintf(os.Stderr, "%s %s\n", yellow("warn"), msg)
}
