package notify

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// Outbox appends every received event as one JSON line to a file.
// It is the outbound side of the workspace: other tools tail the file
// to pick up saved source.
type Outbox struct {
	path   string
	logger *slog.Logger

	mu   sync.Mutex
	file *os.File
}

// NewOutbox opens (or creates) the outbox file for appending.
func NewOutbox(path string, logger *slog.Logger) (*Outbox, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating outbox directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("opening outbox %s: %w", path, err)
	}
	return &Outbox{path: path, logger: logger, file: f}, nil
}

// Write appends one event.
func (o *Outbox) Write(event Event) error {
	data, err := MarshalEvent(event)
	if err != nil {
		return fmt.Errorf("encoding event: %w", err)
	}
	data = append(data, '\n')

	o.mu.Lock()
	defer o.mu.Unlock()
	if _, err := o.file.Write(data); err != nil {
		return fmt.Errorf("writing outbox %s: %w", o.path, err)
	}
	return nil
}

// Drain writes events from ch until it is closed.
func (o *Outbox) Drain(ch <-chan Event) {
	for event := range ch {
		if err := o.Write(event); err != nil {
			o.logger.Warn("outbox write failed", "type", event.Type, "error", err)
			continue
		}
		o.logger.Debug("outbox event written", "type", event.Type, "path", event.Path)
	}
}

// Attach subscribes the outbox to b. The returned detach function
// unsubscribes, waits until every buffered event is written and closes
// the file.
func (o *Outbox) Attach(b *Broadcaster) (detach func() error) {
	events := b.Subscribe()
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		o.Drain(events)
	}()
	return func() error {
		b.Unsubscribe(events)
		<-drained
		return o.Close()
	}
}

// Close closes the outbox file.
func (o *Outbox) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.file.Close()
}
