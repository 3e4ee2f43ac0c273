// Package notify carries workspace notifications between components:
// inbound code updates, outbound saves and dev-server announcements.
package notify

import (
	"encoding/json"
	"sync"
	"time"
)

const (
	// EventPreviewUpdate carries source text after a save.
	EventPreviewUpdate = "app-preview-update"
	// EventDevServerStarted carries the URL of a started dev server.
	EventDevServerStarted = "dev-server-started"
	// EventWorkspaceLoaded is published after inbound code replaced the workspace.
	EventWorkspaceLoaded = "workspace-loaded"
)

// Event is one notification.
type Event struct {
	Type      string `json:"type"`
	Code      string `json:"code,omitempty"`
	Path      string `json:"path,omitempty"`
	URL       string `json:"url,omitempty"`
	Project   string `json:"project,omitempty"`
	Session   string `json:"session,omitempty"`
	Files     int    `json:"files,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

// Broadcaster fans events out to subscribers.
type Broadcaster struct {
	mu          sync.RWMutex
	subscribers map[chan Event]struct{}
}

// NewBroadcaster creates a new event broadcaster.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		subscribers: make(map[chan Event]struct{}),
	}
}

// Subscribe adds a new subscriber and returns its event channel.
// The caller must call Unsubscribe when done.
func (b *Broadcaster) Subscribe() chan Event {
	ch := make(chan Event, 64)
	b.mu.Lock()
	b.subscribers[ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (b *Broadcaster) Unsubscribe(ch chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subscribers[ch]; !ok {
		return
	}
	delete(b.subscribers, ch)
	close(ch)
}

// Publish sends an event to all subscribers. Non-blocking: drops events
// for slow consumers.
func (b *Broadcaster) Publish(event Event) {
	if event.Timestamp == 0 {
		event.Timestamp = time.Now().Unix()
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch := range b.subscribers {
		select {
		case ch <- event:
		default:
		}
	}
}

// Count returns the current number of subscribers.
func (b *Broadcaster) Count() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}

// MarshalEvent serializes an event to JSON.
func MarshalEvent(e Event) ([]byte, error) {
	return json.Marshal(e)
}
