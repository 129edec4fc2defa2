package core

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

// TrapSignals restores the terminal and exits on SIGTERM, SIGHUP or SIGQUIT until ctx is done
// Exit status is 128 plus the signal number
func TrapSignals(ctx context.Context) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGTERM, syscall.SIGHUP, syscall.SIGQUIT)

	go func() {
		defer signal.Stop(ch)
		select {
		case <-ctx.Done():
		case sig := <-ch:
			handleSignal(sig)
		}
	}()
}

func handleSignal(sig os.Signal) {
	runCleanup()
	fmt.Fprintf(stderr, "\r\nterminated by %v\r\n", sig)

	code := 1
	if s, ok := sig.(syscall.Signal); ok {
		code = 128 + int(s)
	}
	exit(code)
}
