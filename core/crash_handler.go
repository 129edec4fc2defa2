package core

import (
	"errors"
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"sync"

	"github.com/lixenwraith/vterm/terminal"
)

var (
	cleanupMu sync.Mutex
	cleanup   func() error

	// Replaced in tests
	exit               = os.Exit
	stderr   io.Writer = os.Stderr
	resetOut io.Writer = os.Stdout
)

// SetCleanup registers the terminal restore to run on abnormal termination
// Passing nil clears it. The registered function runs at most once
func SetCleanup(fn func() error) {
	cleanupMu.Lock()
	defer cleanupMu.Unlock()
	cleanup = fn
}

// runCleanup runs and clears the registered cleanup, falling back to an emergency reset
func runCleanup() {
	cleanupMu.Lock()
	fn := cleanup
	cleanup = nil
	cleanupMu.Unlock()

	if fn != nil {
		err := safeCall(fn)
		if err == nil {
			return
		}
		fmt.Fprintf(stderr, "\r\ncleanup failed: %v\r\n", err)
	}
	terminal.EmergencyReset(resetOut)
}

// safeCall runs fn, turning a panic into an error
func safeCall(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Join(err, fmt.Errorf("cleanup panic: %v", r))
		}
	}()
	return fn()
}

// HandleCrash is the unified panic handler that restores the terminal and prints the stack trace
func HandleCrash(r any) {
	if r == nil {
		return
	}

	runCleanup()

	if f, ok := resetOut.(*os.File); ok {
		f.Sync()
	}

	fmt.Fprintf(stderr, "\r\n\x1b[31mCRASH DETECTED: %v\x1b[0m\r\n", r)
	fmt.Fprintf(stderr, "Stack Trace:\r\n%s\r\n", debug.Stack())
	if f, ok := stderr.(*os.File); ok {
		f.Sync()
	}

	exit(1)
}

// Recover is deferred at the top of main
func Recover() {
	if r := recover(); r != nil {
		HandleCrash(r)
	}
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
