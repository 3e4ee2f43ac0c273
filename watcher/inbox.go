package watcher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/lexandro/workspace-mcp/language"
	"github.com/lexandro/workspace-mcp/workspace"
)

var (
	ErrEmptyPayload = errors.New("payload has no code")
	ErrTooLarge     = errors.New("payload too large")
	ErrBinary       = errors.New("payload looks binary")
)

// Loader receives inbound updates; the workspace implements it.
type Loader interface {
	Load(u workspace.Update) (workspace.Snapshot, error)
}

// payload is the JSON form of an inbound notification.
type payload struct {
	Code    string `json:"code"`
	Session string `json:"session,omitempty"`
	Server  *struct {
		URL string `json:"url"`
	} `json:"server,omitempty"`
}

// ReadUpdate turns an inbox file into an Update. A .json file is decoded as
// {"code", "session", "server": {"url"}}; any other file is raw code. The
// session defaults to the file name without its extension.
func ReadUpdate(path string, maxBytes int64) (workspace.Update, error) {
	info, err := os.Stat(path)
	if err != nil {
		return workspace.Update{}, err
	}
	if maxBytes > 0 && info.Size() > maxBytes {
		return workspace.Update{}, fmt.Errorf("%w: %s is %d bytes", ErrTooLarge, path, info.Size())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return workspace.Update{}, err
	}
	if language.IsBinaryContent(data) {
		return workspace.Update{}, fmt.Errorf("%w: %s", ErrBinary, path)
	}

	base := filepath.Base(path)
	session := strings.TrimSuffix(base, filepath.Ext(base))

	if !strings.EqualFold(filepath.Ext(path), ".json") {
		if strings.TrimSpace(string(data)) == "" {
			return workspace.Update{}, fmt.Errorf("%w: %s", ErrEmptyPayload, path)
		}
		return workspace.Update{Code: string(data), Session: session}, nil
	}

	var p payload
	if err := json.Unmarshal(data, &p); err != nil {
		return workspace.Update{}, fmt.Errorf("decoding %s: %w", path, err)
	}
	if p.Code == "" {
		return workspace.Update{}, fmt.Errorf("%w: %s", ErrEmptyPayload, path)
	}
	u := workspace.Update{Code: p.Code, Session: p.Session}
	if u.Session == "" {
		u.Session = session
	}
	if p.Server != nil {
		u.ServerURL = p.Server.URL
	}
	return u, nil
}

// Inbox delivers files dropped into a watched directory to a Loader.
type Inbox struct {
	watcher  *Watcher
	loader   Loader
	maxBytes int64
	logger   *slog.Logger
}

// NewInbox wires w to loader. Files above maxBytes are skipped.
func NewInbox(w *Watcher, loader Loader, maxBytes int64, logger *slog.Logger) *Inbox {
	return &Inbox{watcher: w, loader: loader, maxBytes: maxBytes, logger: logger}
}

// Run consumes debounced batches until ctx is done or the watcher closes.
func (in *Inbox) Run(ctx context.Context) {
	go in.watcher.Start()

	for {
		select {
		case <-ctx.Done():
			return
		case batch, ok := <-in.watcher.Events():
			if !ok {
				return
			}
			in.handle(batch)
		}
	}
}

func (in *Inbox) handle(batch []DebouncedEvent) {
	for _, event := range batch {
		if !event.Op.Delivers() {
			continue
		}
		update, err := ReadUpdate(event.Path, in.maxBytes)
		if err != nil {
			in.logger.Warn("inbox file skipped", "path", event.Path, "error", err)
			continue
		}
		if _, err := in.loader.Load(update); err != nil {
			in.logger.Warn("inbox update loaded with fallback", "path", event.Path, "session", update.Session, "error", err)
			continue
		}
		in.logger.Info("inbox update loaded", "path", event.Path, "session", update.Session, "bytes", len(update.Code))
	}
}
