package terminal

import "time"

// Backend abstracts platform-specific terminal operations.
// It is the lowest layer of the raw device: raw mode, byte I/O and size.
type Backend interface {
	// Lifecycle
	// Init enters raw mode. Fini restores the saved mode and is safe to call repeatedly.
	Init() error
	Fini()

	// Capabilities
	Size() (width, height int)

	// I/O
	// Write writes raw bytes to the terminal output.
	Write(p []byte) error

	// Poll reports whether input is readable within timeout; zero timeout never blocks.
	// An error means the input source is gone.
	Poll(timeout time.Duration) (bool, error)

	// Read returns the bytes currently available. Only called after Poll reported readiness.
	Read() ([]byte, error)

	// Callbacks
	// SetResizeHandler registers a callback for terminal resize events.
	SetResizeHandler(handler func(width, height int))
}
