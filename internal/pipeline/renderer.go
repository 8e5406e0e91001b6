package pipeline

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"sync"
)

// Renderer writes one JSON object per line
type Renderer struct {
	mu  sync.Mutex
	buf *bufio.Writer
	enc *json.Encoder
}

// NewRenderer creates a renderer writing to w
func NewRenderer(w io.Writer) *Renderer {
	buf := bufio.NewWriter(w)
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	return &Renderer{buf: buf, enc: enc}
}

// Write encodes v as a single line
func (r *Renderer) Write(v any) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.enc.Encode(v); err != nil {
		return fmt.Errorf("write JSON line: %w", err)
	}
	return nil
}

// Flush writes any buffered lines
func (r *Renderer) Flush() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.buf.Flush()
}
