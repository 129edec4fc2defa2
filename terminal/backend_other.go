//go:build !unix

package terminal

import (
	"errors"
	"time"
)

// ErrUnsupported is returned by the stdio backend on platforms without a raw tty driver
var ErrUnsupported = errors.New("raw terminal backend not supported on this platform")

type unsupportedBackend struct{}

// NewStdBackend returns a backend whose Init always fails; use the tcell backend instead
func NewStdBackend() Backend {
	return unsupportedBackend{}
}

func (unsupportedBackend) Init() error                      { return ErrUnsupported }
func (unsupportedBackend) Fini()                            {}
func (unsupportedBackend) Size() (int, int)                 { return 80, 24 }
func (unsupportedBackend) Write(p []byte) error             { return ErrUnsupported }
func (unsupportedBackend) Poll(time.Duration) (bool, error) { return false, ErrUnsupported }
func (unsupportedBackend) Read() ([]byte, error)            { return nil, ErrUnsupported }
func (unsupportedBackend) SetResizeHandler(func(int, int))  {}

func resetTerminalMode() {}
