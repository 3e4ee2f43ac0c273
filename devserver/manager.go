package devserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/lexandro/workspace-mcp/notify"
	"github.com/lexandro/workspace-mcp/vfs"
)

// Target receives the dev-server URL; the workspace implements it.
type Target interface {
	SetDevServer(url string)
}

// Publisher receives dev-server-started events.
type Publisher interface {
	Publish(event notify.Event)
}

// Server describes the running dev server.
type Server struct {
	Project string
	URL     string
	Started time.Time
}

// Manager runs at most one dev server at a time and keeps the workspace
// preview pointed at it. The lock is never held while a server launches,
// so Active and Stop answer immediately during a start.
type Manager struct {
	launcher  Launcher
	target    Target
	publisher Publisher
	logger    *slog.Logger

	mu      sync.Mutex
	active  *Server
	pending *launch
}

// launch is a start in progress.
type launch struct {
	project string
	cancel  context.CancelFunc
}

// NewManager creates a manager. publisher may be nil.
func NewManager(launcher Launcher, target Target, publisher Publisher, logger *slog.Logger) *Manager {
	return &Manager{
		launcher:  launcher,
		target:    target,
		publisher: publisher,
		logger:    logger,
	}
}

// Start writes fm as project, starts its dev server and switches the
// preview to the returned URL. A previously running server is stopped.
// Only one start may be in progress; Stop cancels it.
// On failure the preview keeps showing static content.
func (m *Manager) Start(ctx context.Context, project string, fm *vfs.FileMap) (Server, error) {
	if err := ValidateProject(project); err != nil {
		return Server{}, err
	}

	m.mu.Lock()
	if m.pending != nil {
		busy := m.pending.project
		m.mu.Unlock()
		return Server{}, fmt.Errorf("%w: %s", ErrStarting, busy)
	}
	previous := m.detachLocked()
	launchCtx, cancel := context.WithCancel(ctx)
	current := &launch{project: project, cancel: cancel}
	m.pending = current
	m.mu.Unlock()
	defer cancel()

	if previous != nil {
		m.stopProcess(previous.Project)
	}

	url, err := m.run(launchCtx, project, fm)

	m.mu.Lock()
	if m.pending != current {
		m.mu.Unlock()
		if err == nil {
			m.stopProcess(project)
		}
		return Server{}, fmt.Errorf("%w: %s", ErrCanceled, project)
	}
	m.pending = nil
	if err != nil {
		m.mu.Unlock()
		m.logger.Warn("dev server failed to start", "project", project, "error", err)
		return Server{}, err
	}
	server := Server{Project: project, URL: url, Started: time.Now()}
	m.active = &server
	m.target.SetDevServer(url)
	m.mu.Unlock()

	if m.publisher != nil {
		m.publisher.Publish(notify.Event{
			Type:      notify.EventDevServerStarted,
			URL:       url,
			Project:   project,
			Timestamp: server.Started.Unix(),
		})
	}
	return server, nil
}

func (m *Manager) run(ctx context.Context, project string, fm *vfs.FileMap) (string, error) {
	if err := m.launcher.CreateFiles(ctx, project, fm); err != nil {
		return "", err
	}
	return m.launcher.Start(ctx, project)
}

// Stop ends the active dev server, or cancels a start in progress, and
// returns the preview to static content.
func (m *Manager) Stop() (Server, error) {
	m.mu.Lock()
	if m.pending != nil {
		canceled := m.pending
		m.pending = nil
		m.mu.Unlock()
		canceled.cancel()
		m.logger.Info("dev server start canceled", "project", canceled.project)
		return Server{Project: canceled.project}, nil
	}
	stopped := m.detachLocked()
	m.mu.Unlock()

	if stopped == nil {
		return Server{}, ErrNotRunning
	}
	return *stopped, m.stopProcess(stopped.Project)
}

// Active returns the running server, if any.
func (m *Manager) Active() (Server, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active == nil {
		return Server{}, false
	}
	return *m.active, true
}

// detachLocked clears the active server and the preview URL. Caller holds mu.
func (m *Manager) detachLocked() *Server {
	server := m.active
	if server != nil {
		m.active = nil
		m.target.SetDevServer("")
	}
	return server
}

func (m *Manager) stopProcess(project string) error {
	err := m.launcher.Stop(project)
	if err != nil && !errors.Is(err, ErrNotRunning) {
		m.logger.Warn("dev server stop failed", "project", project, "error", err)
		return err
	}
	return nil
}
