// Package devserver hands a project to an external development server and
// reports the URL it serves on.
package devserver

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/lexandro/workspace-mcp/export"
	"github.com/lexandro/workspace-mcp/vfs"
)

// Launcher creates project files and runs a development server for them.
type Launcher interface {
	CreateFiles(ctx context.Context, project string, fm *vfs.FileMap) error
	Start(ctx context.Context, project string) (string, error)
	Stop(project string) error
}

var (
	ErrInvalidProject = errors.New("invalid project name")
	ErrNoURL          = errors.New("dev server exited without reporting a URL")
	ErrTimeout        = errors.New("timed out waiting for dev server URL")
	ErrNotRunning     = errors.New("dev server not running")
	ErrStarting       = errors.New("dev server start already in progress")
	ErrCanceled       = errors.New("dev server start canceled")
)

// DefaultCommand runs the project's own dev script.
var DefaultCommand = []string{"npm", "run", "dev"}

const DefaultTimeout = 60 * time.Second

var (
	projectPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)
	urlPattern     = regexp.MustCompile(`https?://[A-Za-z0-9.\-]+:\d+/?`)
	ansiPattern    = regexp.MustCompile(`\x1b\[[0-9;]*[A-Za-z]`)
)

// ValidateProject rejects names that are not a single safe path segment.
func ValidateProject(project string) error {
	if !projectPattern.MatchString(project) || project == "." || project == ".." {
		return fmt.Errorf("%w: %q", ErrInvalidProject, project)
	}
	return nil
}

// ExtractURL returns the first http(s)://host:port URL in line.
func ExtractURL(line string) (string, bool) {
	match := urlPattern.FindString(ansiPattern.ReplaceAllString(line, ""))
	if match == "" {
		return "", false
	}
	return strings.TrimSuffix(match, "/"), true
}

// ProcessOptions configures a ProcessLauncher.
type ProcessOptions struct {
	WorkDir string        // parent directory of project directories
	Command []string      // defaults to DefaultCommand
	Timeout time.Duration // defaults to DefaultTimeout
}

// ProcessLauncher writes projects under WorkDir and runs Command inside
// the project directory, watching its output for a URL.
type ProcessLauncher struct {
	workDir string
	command []string
	timeout time.Duration
	logger  *slog.Logger

	mu        sync.Mutex
	processes map[string]*exec.Cmd
}

// NewProcessLauncher creates a launcher. WorkDir is created on demand.
func NewProcessLauncher(options ProcessOptions, logger *slog.Logger) *ProcessLauncher {
	l := &ProcessLauncher{
		workDir:   options.WorkDir,
		command:   options.Command,
		timeout:   options.Timeout,
		logger:    logger,
		processes: make(map[string]*exec.Cmd),
	}
	if len(l.command) == 0 {
		l.command = DefaultCommand
	}
	if l.timeout <= 0 {
		l.timeout = DefaultTimeout
	}
	return l
}

// ProjectDir returns the directory holding project's files.
func (l *ProcessLauncher) ProjectDir(project string) string {
	return filepath.Join(l.workDir, project)
}

// CreateFiles replaces the project directory with the files of fm.
func (l *ProcessLauncher) CreateFiles(ctx context.Context, project string, fm *vfs.FileMap) error {
	if err := ValidateProject(project); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	dir := l.ProjectDir(project)
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("clearing %s: %w", dir, err)
	}
	if err := export.Materialize(fm, dir); err != nil {
		return fmt.Errorf("creating project files: %w", err)
	}
	l.logger.Info("project files created", "project", project, "dir", dir, "files", fm.Len())
	return nil
}

// Start runs the dev command and returns the first URL it prints.
// The process keeps running after Start returns; Stop ends it.
func (l *ProcessLauncher) Start(ctx context.Context, project string) (string, error) {
	if err := ValidateProject(project); err != nil {
		return "", err
	}
	l.Stop(project)

	cmd := exec.Command(l.command[0], l.command[1:]...)
	cmd.Dir = l.ProjectDir(project)
	cmd.WaitDelay = time.Second
	setProcessGroup(cmd)

	reader, writer := io.Pipe()
	cmd.Stdout = writer
	cmd.Stderr = writer
	if err := cmd.Start(); err != nil {
		writer.Close()
		return "", fmt.Errorf("starting %q: %w", strings.Join(l.command, " "), err)
	}

	l.mu.Lock()
	l.processes[project] = cmd
	l.mu.Unlock()

	urls := make(chan string, 1)
	go l.scanOutput(project, reader, urls)

	exited := make(chan error, 1)
	go func() {
		err := cmd.Wait()
		writer.Close()
		exited <- err
		l.forget(project, cmd)
	}()

	timer := time.NewTimer(l.timeout)
	defer timer.Stop()

	select {
	case url := <-urls:
		l.logger.Info("dev server started", "project", project, "url", url, "pid", cmd.Process.Pid)
		return url, nil
	case err := <-exited:
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrNoURL, err)
		}
		return "", ErrNoURL
	case <-timer.C:
		l.Stop(project)
		return "", fmt.Errorf("%w after %s", ErrTimeout, l.timeout)
	case <-ctx.Done():
		l.Stop(project)
		return "", ctx.Err()
	}
}

// Stop kills the dev server of project together with the processes it
// spawned.
func (l *ProcessLauncher) Stop(project string) error {
	l.mu.Lock()
	cmd, ok := l.processes[project]
	delete(l.processes, project)
	l.mu.Unlock()

	if !ok || cmd.Process == nil {
		return ErrNotRunning
	}
	if err := killProcessGroup(cmd.Process); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return fmt.Errorf("stopping %s: %w", project, err)
	}
	l.logger.Info("dev server stopped", "project", project)
	return nil
}

// Running reports whether a process is tracked for project.
func (l *ProcessLauncher) Running(project string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.processes[project]
	return ok
}

func (l *ProcessLauncher) forget(project string, cmd *exec.Cmd) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.processes[project] == cmd {
		delete(l.processes, project)
	}
}

// scanOutput logs process output and sends the first URL found. It keeps
// draining after that so the process never blocks on a full pipe.
func (l *ProcessLauncher) scanOutput(project string, r io.Reader, urls chan<- string) {
	scanner := bufio.NewScanner(r)
	found := false
	for scanner.Scan() {
		line := scanner.Text()
		l.logger.Debug("dev server output", "project", project, "line", line)
		if found {
			continue
		}
		if url, ok := ExtractURL(line); ok {
			found = true
			urls <- url
		}
	}
}
