package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/jonathan/resume-site/internal/events"
)

// SSEWriter streams bus notifications as Server-Sent Events.
type SSEWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

// NewSSEWriter creates a new SSE writer
func NewSSEWriter(w http.ResponseWriter) (*SSEWriter, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("streaming not supported")
	}

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-store")
	h.Set("X-Accel-Buffering", "no")

	return &SSEWriter{w: w, flusher: flusher}, nil
}

// Frame is one encoded event, ready to be written.
type Frame struct {
	Event string
	Data  []byte
}

// EncodeFrame encodes payload as an event named after topic, so stream
// clients see the same names bus subscribers use.
func EncodeFrame[T any](topic events.Topic[T], payload T) (Frame, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Frame{}, fmt.Errorf("failed to encode %s: %w", topic.Name(), err)
	}
	return Frame{Event: topic.Name(), Data: data}, nil
}

// WriteFrame sends an encoded event.
func (s *SSEWriter) WriteFrame(f Frame) error {
	if _, err := fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", f.Event, f.Data); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}

// WriteComment sends a comment line; clients ignore it, proxies keep the
// connection open.
func (s *SSEWriter) WriteComment(text string) error {
	if _, err := fmt.Fprintf(s.w, ": %s\n\n", text); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}
