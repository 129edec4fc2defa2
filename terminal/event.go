package terminal

import "fmt"

// EventType distinguishes input event categories
type EventType uint8

const (
	EventKey EventType = iota
	EventResize
	EventError  // Read error
	EventClosed // Input closed
	EventOther  // Device event with no session meaning (mouse, paste, focus), ignored
)

// String returns a lowercase name for logs
func (t EventType) String() string {
	switch t {
	case EventKey:
		return "key"
	case EventResize:
		return "resize"
	case EventError:
		return "error"
	case EventClosed:
		return "closed"
	case EventOther:
		return "other"
	}
	return fmt.Sprintf("event(%d)", uint8(t))
}

// Event represents a terminal input event
type Event struct {
	Type      EventType
	Key       Key
	Rune      rune
	Modifiers Modifier
	Width     int   // For EventResize
	Height    int   // For EventResize
	Err       error // For EventError
}

// String describes the event for logs
func (e Event) String() string {
	switch e.Type {
	case EventKey:
		if e.Key == KeyRune {
			return fmt.Sprintf("key %q mod=%d", e.Rune, e.Modifiers)
		}
		return fmt.Sprintf("key %s mod=%d", e.Key, e.Modifiers)
	case EventResize:
		return fmt.Sprintf("resize %dx%d", e.Width, e.Height)
	case EventError:
		return fmt.Sprintf("error %v", e.Err)
	}
	return e.Type.String()
}

// ResizeEvent represents a terminal resize
type ResizeEvent struct {
	Width  int
	Height int
}
