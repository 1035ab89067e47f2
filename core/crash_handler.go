// Package core holds process-level plumbing shared by the drivers
package core

import (
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"sync"
)

var (
	cleanupMu sync.Mutex
	cleanups  []func()

	// crashOutput and exit are replaced in tests
	crashOutput io.Writer = os.Stderr
	exit                  = os.Exit
)

// RegisterCleanup adds fn to the functions run before a crash report, newest first
// The terminal screen registers its Fini here so the stack trace lands on a sane tty
func RegisterCleanup(fn func()) {
	if fn == nil {
		return
	}
	cleanupMu.Lock()
	cleanups = append(cleanups, fn)
	cleanupMu.Unlock()
}

func runCleanups() {
	cleanupMu.Lock()
	fns := cleanups
	cleanups = nil
	cleanupMu.Unlock()

	for i := len(fns) - 1; i >= 0; i-- {
		func() {
			// A failing cleanup must not hide the original panic
			defer func() { _ = recover() }()
			fns[i]()
		}()
	}
}

// HandleCrash is the unified panic handler that restores the terminal and prints the stack trace
func HandleCrash(r any) {
	if r == nil {
		return
	}

	runCleanups()

	// \r\n keeps the trace readable if the tty is still raw
	fmt.Fprintf(crashOutput, "\r\n\x1b[31mCRASH DETECTED: %v\x1b[0m\r\n", r)
	fmt.Fprintf(crashOutput, "Stack Trace:\r\n%s\r\n", debug.Stack())
	if f, ok := crashOutput.(*os.File); ok {
		_ = f.Sync()
	}

	exit(1)
}

// Go runs a function in a new goroutine with panic recovery.
// Use this instead of the 'go' keyword to ensure terminal cleanup on crash.
func Go(fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				HandleCrash(r)
			}
		}()
		fn()
	}()
}

// Guard wraps fn for errgroup.Go and similar runners so a panic reaches HandleCrash
// instead of killing the process with the terminal still raw
func Guard(fn func() error) func() error {
	return func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				HandleCrash(r)
				err = fmt.Errorf("recovered panic: %v", r)
			}
		}()
		return fn()
	}
}
