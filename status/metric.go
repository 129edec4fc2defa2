package status

import "sync/atomic"

// Counter is an int64 that can be updated without the registry lock
type Counter struct {
	v atomic.Int64
}

// Add increments by n and returns the new value
func (c *Counter) Add(n int64) int64 {
	return c.v.Add(n)
}

// Set overwrites the value
func (c *Counter) Set(n int64) {
	c.v.Store(n)
}

// Value returns the current value
func (c *Counter) Value() int64 {
	return c.v.Load()
}

// MaxLabelLen caps label values so a log line stays bounded
const MaxLabelLen = 40

// Label is a short string, empty until first Set
type Label struct {
	p atomic.Pointer[string]
}

// Set stores s, truncated to MaxLabelLen bytes
func (l *Label) Set(s string) {
	if len(s) > MaxLabelLen {
		s = s[:MaxLabelLen]
	}
	l.p.Store(&s)
}

// Value returns the stored string
func (l *Label) Value() string {
	if p := l.p.Load(); p != nil {
		return *p
	}
	return ""
}
