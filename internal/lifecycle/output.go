package lifecycle

import (
	"sync"
)

// DefaultOutputLimit bounds the stdout kept per run.
const DefaultOutputLimit = 64 * 1024

// OutputBuffer keeps the most recent bytes a process wrote to stdout.
type OutputBuffer struct {
	mu         sync.RWMutex
	data       []byte
	maxSize    int
	totalBytes int64
}

// NewOutputBuffer creates a buffer that retains at most maxSize bytes.
func NewOutputBuffer(maxSize int) *OutputBuffer {
	if maxSize <= 0 {
		maxSize = DefaultOutputLimit
	}
	return &OutputBuffer{maxSize: maxSize}
}

// Write appends p, trimming from the front once the limit is exceeded.
func (b *OutputBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.data = append(b.data, p...)
	b.totalBytes += int64(len(p))

	if len(b.data) > b.maxSize {
		excess := len(b.data) - b.maxSize
		b.data = append(b.data[:0:0], b.data[excess:]...)
	}
	return len(p), nil
}

func (b *OutputBuffer) String() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return string(b.data)
}

// TotalBytes is the number of bytes ever written, including trimmed ones.
func (b *OutputBuffer) TotalBytes() int64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.totalBytes
}
