package lifecycle

import (
	"bytes"
	"sync"
)

// Capture collects output produced while a case runs.
type Capture interface {
	Start()
	Stop() string
}

// BufferCapture is a Capture fed through its io.Writer side. Writes outside
// a Start/Stop window are discarded.
type BufferCapture struct {
	mu     sync.Mutex
	buf    bytes.Buffer
	active bool
}

func NewBufferCapture() *BufferCapture {
	return &BufferCapture{}
}

func (b *BufferCapture) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.active {
		return len(p), nil
	}
	return b.buf.Write(p)
}

func (b *BufferCapture) Start() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf.Reset()
	b.active = true
}

func (b *BufferCapture) Stop() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := b.buf.String()
	b.buf.Reset()
	b.active = false
	return out
}
