package notify

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func receive(t *testing.T, ch <-chan Event) Event {
	t.Helper()
	select {
	case e := <-ch:
		return e
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func Test_Broadcaster_PublishToAllSubscribers(t *testing.T) {
	b := NewBroadcaster()
	first := b.Subscribe()
	second := b.Subscribe()
	defer b.Unsubscribe(first)
	defer b.Unsubscribe(second)

	b.Publish(Event{Type: EventPreviewUpdate, Code: "// a.js\nx"})

	for _, ch := range []chan Event{first, second} {
		e := receive(t, ch)
		if e.Type != EventPreviewUpdate {
			t.Errorf("expected %s, got %s", EventPreviewUpdate, e.Type)
		}
		if e.Timestamp == 0 {
			t.Error("expected timestamp to be filled in")
		}
	}
}

func Test_Broadcaster_DropsForSlowConsumer(t *testing.T) {
	b := NewBroadcaster()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	for i := 0; i < 100; i++ {
		b.Publish(Event{Type: EventWorkspaceLoaded})
	}
	if len(ch) != cap(ch) {
		t.Errorf("expected buffer to be full (%d), got %d", cap(ch), len(ch))
	}
}

func Test_Broadcaster_UnsubscribeTwice(t *testing.T) {
	b := NewBroadcaster()
	ch := b.Subscribe()
	b.Unsubscribe(ch)
	b.Unsubscribe(ch)

	if b.Count() != 0 {
		t.Errorf("expected 0 subscribers, got %d", b.Count())
	}
	if _, open := <-ch; open {
		t.Error("expected channel to be closed")
	}
}

func Test_Outbox_WritesJSONLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "events.jsonl")
	outbox, err := NewOutbox(path, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("NewOutbox failed: %v", err)
	}

	ch := make(chan Event, 2)
	ch <- Event{Type: EventPreviewUpdate, Path: "src/App.tsx", Code: "code"}
	ch <- Event{Type: EventDevServerStarted, URL: "http://localhost:5173"}
	close(ch)
	outbox.Drain(ch)
	outbox.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading outbox: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d:\n%s", len(lines), data)
	}

	var first Event
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatalf("invalid JSON line: %v", err)
	}
	if first.Path != "src/App.tsx" || first.Code != "code" {
		t.Errorf("unexpected first event: %+v", first)
	}
}

func Test_Outbox_DetachWritesBufferedEvents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	outbox, err := NewOutbox(path, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("NewOutbox failed: %v", err)
	}
	b := NewBroadcaster()
	detach := outbox.Attach(b)

	for i := 0; i < 20; i++ {
		b.Publish(Event{Type: EventPreviewUpdate, Code: "v"})
	}
	if err := detach(); err != nil {
		t.Fatalf("detach failed: %v", err)
	}
	if b.Count() != 0 {
		t.Errorf("expected outbox unsubscribed, %d subscribers left", b.Count())
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading outbox: %v", err)
	}
	if lines := strings.Count(string(data), "\n"); lines != 20 {
		t.Errorf("expected 20 events written before close, got %d", lines)
	}
}
