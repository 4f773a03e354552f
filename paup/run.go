// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package paup

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"
)

// Default timeouts per invocation type.
const (
	// A full heuristic tree search.
	SearchTimeout = time.Hour

	// A single constrained search.
	ConstraintTimeout = 10 * time.Minute

	// A per-site likelihood extraction.
	SiteTimeout = 10 * time.Minute
)

// AUTimeout returns the timeout for a joint significance test
// over the given number of trees.
func AUTimeout(trees int) time.Duration {
	d := time.Duration(trees) * time.Minute
	if d < 30*time.Minute {
		return 30 * time.Minute
	}
	return d
}

// BootstrapTimeout returns the timeout for a bootstrap search
// with the given number of replicates.
func BootstrapTimeout(replicates int) time.Duration {
	d := time.Duration(replicates) * time.Minute
	if d < time.Hour {
		return time.Hour
	}
	return d
}

// An Error is a failed program invocation.
// The captured output is preserved
// so callers can attempt fallback parsing.
type Error struct {
	Script  string // the command script of the invocation
	Timeout bool   // true if the process was killed on timeout
	Output  []byte // combined captured output
	Err     error
}

func (e *Error) Error() string {
	if e.Timeout {
		return fmt.Sprintf("paup: script %q: timed out", e.Script)
	}
	return fmt.Sprintf("paup: script %q: %v", e.Script, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// A Runner invokes the PAUP* program
// inside a working directory.
type Runner struct {
	// Path of the program executable.
	// If empty, "paup" is searched on the system path.
	Path string

	// Dir is the working directory of the run.
	// Scripts, logs and result files
	// are all relative to it.
	Dir string
}

// Run executes a command script
// and returns the combined standard output
// and standard error of the program.
//
// The script must be a file inside the working directory;
// the program is invoked with the script name
// as its only argument.
// The captured output is always written
// to the indicated log file,
// whatever the outcome,
// and is also attached to any returned error.
// The invocation never blocks beyond the given timeout:
// on expiration the process is killed
// and the invocation reported as failed,
// even if some output was produced.
func (r *Runner) Run(scriptFile, logFile string, timeout time.Duration) ([]byte, error) {
	if _, err := os.Stat(filepath.Join(r.Dir, scriptFile)); err != nil {
		return nil, &Error{Script: scriptFile, Err: err}
	}

	path := r.Path
	if path == "" {
		path = "paup"
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var buf bytes.Buffer
	cmd := exec.CommandContext(ctx, path, scriptFile)
	cmd.Dir = r.Dir
	cmd.Stdout = &buf
	cmd.Stderr = &buf
	cmd.WaitDelay = 10 * time.Second

	runErr := cmd.Run()
	out := buf.Bytes()

	log := out
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		log = append([]byte(fmt.Sprintf("--- execution timed out (%v) ---\n", timeout)), out...)
	}
	if err := os.WriteFile(filepath.Join(r.Dir, logFile), log, 0644); err != nil {
		return out, &Error{Script: scriptFile, Output: out, Err: err}
	}

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return out, &Error{Script: scriptFile, Timeout: true, Output: out, Err: context.DeadlineExceeded}
	}
	if runErr != nil {
		return out, &Error{Script: scriptFile, Output: out, Err: runErr}
	}
	return out, nil
}
