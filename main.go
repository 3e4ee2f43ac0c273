package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/lexandro/workspace-mcp/config"
	"github.com/lexandro/workspace-mcp/devserver"
	"github.com/lexandro/workspace-mcp/ignore"
	"github.com/lexandro/workspace-mcp/index"
	"github.com/lexandro/workspace-mcp/notify"
	"github.com/lexandro/workspace-mcp/register"
	"github.com/lexandro/workspace-mcp/server"
	"github.com/lexandro/workspace-mcp/tools"
	"github.com/lexandro/workspace-mcp/watcher"
	"github.com/lexandro/workspace-mcp/workspace"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// excludePatterns is a repeatable CLI flag for custom ignore patterns.
type excludePatterns []string

func (e *excludePatterns) String() string { return strings.Join(*e, ", ") }
func (e *excludePatterns) Set(value string) error {
	*e = append(*e, value)
	return nil
}

// cliFlags holds the command line. Only flags given explicitly override
// the config file.
type cliFlags struct {
	configPath       string
	dataDir          string
	logLevel         string
	logFile          string
	excludes         excludePatterns
	maxFileSizeBytes int64
	maxResults       int
	syncInterval     time.Duration
	inboxDir         string
	noInbox          bool
	outbox           string
	exportDir        string
	devServerCmd     string
	devServerTimeout time.Duration
}

func (f *cliFlags) register(fs *flag.FlagSet) {
	defaults := config.Default()
	fs.StringVar(&f.configPath, "config", "", "Config file (default: <data-dir>/"+config.FileName+")")
	fs.StringVar(&f.dataDir, "data-dir", defaults.DataDir, "Base directory for relative paths")
	fs.StringVar(&f.logLevel, "log-level", defaults.Log.Level, "Log level: debug|info|warn|error")
	fs.StringVar(&f.logFile, "log-file", "", "Log file path (default: <data-dir>/workspace-mcp.log)")
	fs.Var(&f.excludes, "exclude", "Extra ignore pattern (repeatable)")
	fs.Int64Var(&f.maxFileSizeBytes, "max-file-size", defaults.Ignore.MaxFileSize, "Maximum file size in bytes")
	fs.IntVar(&f.maxResults, "max-results", defaults.Search.MaxResults, "Default max search results")
	fs.DurationVar(&f.syncInterval, "sync-interval", defaults.Search.SyncInterval, "Index verification interval (0 disables)")
	fs.StringVar(&f.inboxDir, "inbox", defaults.Inbox.Dir, "Directory watched for generated code")
	fs.BoolVar(&f.noInbox, "no-inbox", false, "Disable the inbox watcher")
	fs.StringVar(&f.outbox, "outbox", defaults.Outbox, "JSON-lines file receiving outbound notifications")
	fs.StringVar(&f.exportDir, "export-dir", defaults.Export.Dir, "Directory for exported files and archives")
	fs.StringVar(&f.devServerCmd, "devserver-cmd", strings.Join(defaults.DevServer.Command, " "), "Dev server command run inside the project directory")
	fs.DurationVar(&f.devServerTimeout, "devserver-timeout", defaults.DevServer.Timeout, "Time to wait for the dev server URL")
}

// apply copies explicitly set flags onto cfg.
func (f *cliFlags) apply(cfg *config.Config, fs *flag.FlagSet) {
	fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "data-dir":
			cfg.DataDir = f.dataDir
		case "log-level":
			cfg.Log.Level = f.logLevel
		case "log-file":
			cfg.Log.File = f.logFile
		case "exclude":
			cfg.Ignore.Exclude = append(cfg.Ignore.Exclude, f.excludes...)
		case "max-file-size":
			cfg.Ignore.MaxFileSize = f.maxFileSizeBytes
		case "max-results":
			cfg.Search.MaxResults = f.maxResults
		case "sync-interval":
			cfg.Search.SyncInterval = f.syncInterval
		case "inbox":
			cfg.Inbox.Dir = f.inboxDir
			cfg.Inbox.Enabled = true
		case "no-inbox":
			cfg.Inbox.Enabled = !f.noInbox
		case "outbox":
			cfg.Outbox = f.outbox
		case "export-dir":
			cfg.Export.Dir = f.exportDir
		case "devserver-cmd":
			cfg.DevServer.Command = strings.Fields(f.devServerCmd)
		case "devserver-timeout":
			cfg.DevServer.Timeout = f.devServerTimeout
		}
	})
}

// loadConfig layers defaults, the config file and explicit flags.
func loadConfig(fs *flag.FlagSet, args []string) (*config.Config, error) {
	var flags cliFlags
	flags.register(fs)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	configPath := flags.configPath
	if configPath == "" {
		configPath = filepath.Join(flags.dataDir, config.FileName)
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	flags.apply(cfg, fs)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if err := cfg.Resolve(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "register":
			if err := register.Run(register.DeriveServerName(os.Args[0]), os.Args[2:], os.Stdout); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				if errors.Is(err, register.ErrUsage) {
					register.PrintUsage(os.Stderr)
				}
				os.Exit(1)
			}
			return
		case "config":
			path := config.FileName
			if len(os.Args) > 2 {
				path = os.Args[2]
			}
			if err := config.Save(config.Default(), path); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			fmt.Printf("Wrote default configuration to %s\n", path)
			return
		}
	}

	cfg, err := loadConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating data directory: %v\n", err)
		os.Exit(1)
	}

	// Setup logger (always to file or stderr, never to stdout - stdout is for MCP stdio)
	logger := setupLogger(cfg.Log.Level, cfg.Log.File)

	logger.Info("starting workspace-mcp",
		"dataDir", cfg.DataDir,
		"inbox", cfg.Inbox.Dir,
		"inboxEnabled", cfg.Inbox.Enabled,
		"maxFileSize", cfg.Ignore.MaxFileSize,
		"maxResults", cfg.Search.MaxResults,
	)

	startTime := time.Now()
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	ignoreMatcher := ignore.NewMatcher(ignore.MatcherOptions{
		CustomPatterns:   cfg.Ignore.Exclude,
		MaxFileSizeBytes: cfg.Ignore.MaxFileSize,
	})

	// Outbound notifications
	broadcaster := notify.NewBroadcaster()
	if cfg.Outbox != "" {
		outbox, err := notify.NewOutbox(cfg.Outbox, logger)
		if err != nil {
			logger.Warn("outbox disabled", "error", err)
		} else {
			defer outbox.Attach(broadcaster)()
		}
	}

	ws := workspace.New(broadcaster, logger)

	// Create indexes
	fileIndex := index.NewFileIndex()
	contentIndex, err := index.NewContentIndex()
	if err != nil {
		logger.Error("failed to create content index", "error", err)
		os.Exit(1)
	}
	defer contentIndex.Close()

	ix := newIndexer(fileIndex, contentIndex, ignoreMatcher, logger)
	ws.OnChange(ix.apply)
	ix.apply(ws.Snapshot())

	stopSync := make(chan struct{})
	go runPeriodicSync(cfg.Search.SyncInterval, ws, ix, logger, stopSync)
	defer close(stopSync)

	// Start inbox watcher
	if cfg.Inbox.Enabled {
		inboxWatcher, err := watcher.NewWatcher(cfg.Inbox.Dir, ignoreMatcher.Under(cfg.Inbox.Dir), cfg.Inbox.Debounce, logger)
		if err != nil {
			logger.Warn("failed to start inbox watcher, continuing without inbound updates", "error", err)
		} else {
			go watcher.NewInbox(inboxWatcher, ws, cfg.Ignore.MaxFileSize, logger).Run(ctx)
			defer inboxWatcher.Close()
		}
	}

	launcher := devserver.NewProcessLauncher(devserver.ProcessOptions{
		WorkDir: cfg.DevServer.WorkDir,
		Command: cfg.DevServer.Command,
		Timeout: cfg.DevServer.Timeout,
	}, logger)
	devServers := devserver.NewManager(launcher, ws, broadcaster, logger)
	defer func() {
		if stopped, err := devServers.Stop(); err == nil {
			logger.Info("stopped dev server", "project", stopped.Project)
		}
	}()

	// Create tool handlers
	handlers := server.Handlers{
		Load:      &tools.LoadHandler{Workspace: ws, Logger: logger},
		Tree:      &tools.TreeHandler{Workspace: ws, Logger: logger},
		Read:      &tools.ReadHandler{Workspace: ws, Logger: logger},
		Editor:    &tools.EditorHandler{Workspace: ws, Logger: logger},
		ToggleDir: &tools.ToggleDirHandler{Workspace: ws, Logger: logger},
		Files:     &tools.FilesHandler{FileIndex: fileIndex, Workspace: ws, MaxResults: cfg.Search.MaxResults, Logger: logger},
		Search:    &tools.SearchHandler{ContentIndex: contentIndex, Workspace: ws, MaxResults: cfg.Search.MaxResults, Logger: logger},
		Status: &tools.StatusHandler{
			Workspace:    ws,
			FileIndex:    fileIndex,
			ContentIndex: contentIndex,
			DevServers:   devServers,
			StartTime:    startTime,
			DataDir:      cfg.DataDir,
			Logger:       logger,
		},
		Reindex: &tools.ReindexHandler{
			Logger: logger,
			DoReindex: func() (index.SyncResult, error) {
				return ix.reindex(ws)
			},
		},
		Export: &tools.ExportHandler{
			Workspace:     ws,
			Matcher:       ignoreMatcher,
			Dir:           cfg.Export.Dir,
			RespectIgnore: cfg.Export.RespectIgnore,
			Logger:        logger,
		},
		Preview:   &tools.PreviewHandler{Workspace: ws, ExportDir: cfg.Export.Dir, Logger: logger},
		DevServer: &tools.DevServerHandler{Manager: devServers, Workspace: ws, Logger: logger},
	}

	// Setup and run MCP server on stdio
	mcpServer := server.Setup(handlers)

	logger.Info("MCP server starting on stdio")
	if err := mcpServer.Run(ctx, &mcp.StdioTransport{}); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("MCP server error", "error", err)
		os.Exit(1)
	}
	logger.Info("MCP server stopped", "uptime", time.Since(startTime))
}

// setupLogger creates an slog.Logger writing to stderr or a file.
func setupLogger(level string, logFile string) *slog.Logger {
	var logLevel slog.Level
	switch strings.ToLower(level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	var writer *os.File
	if logFile != "" {
		if err := os.MkdirAll(filepath.Dir(logFile), 0755); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: cannot create log directory for %s: %v\n", logFile, err)
		}
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: cannot open log file %s: %v, falling back to stderr\n", logFile, err)
			writer = os.Stderr
		} else {
			writer = f
		}
	} else {
		writer = os.Stderr
	}

	handler := slog.NewTextHandler(writer, &slog.HandlerOptions{Level: logLevel})
	return slog.New(handler)
}
