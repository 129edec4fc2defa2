package terminal

import "io"

// Beeper is implemented by devices that can ring the terminal bell
type Beeper interface {
	Beep() error
}

func (d *ansiDevice) Beep() error {
	d.wmu.Lock()
	defer d.wmu.Unlock()

	if _, err := d.out.Write(Bell); err != nil {
		return err
	}
	return d.out.Flush()
}

func (d *tcellDevice) Beep() error {
	if !d.active() {
		return ErrDeviceClosed
	}
	return d.screen.Beep()
}

// BellWriter returns a writer that rings the bell of d once per Write regardless of content
// Devices without a bell swallow the write
func BellWriter(d Device) io.Writer {
	return bellWriter{d}
}

type bellWriter struct {
	d Device
}

func (w bellWriter) Write(p []byte) (int, error) {
	if b, ok := w.d.(Beeper); ok {
		if err := b.Beep(); err != nil {
			return 0, err
		}
	}
	return len(p), nil
}
