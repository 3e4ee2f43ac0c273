// Package register writes the server entry into an MCP client configuration.
package register

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// Scope selects which client configuration file is written.
type Scope string

const (
	ScopeProject Scope = "project"
	ScopeUser    Scope = "user"
)

var ErrUsage = errors.New("usage error")

type mcpServerEntry struct {
	Command string   `json:"command"`
	Args    []string `json:"args,omitempty"`
}

// Options is the parsed form of the register arguments.
type Options struct {
	Scope      Scope
	Directory  string   // project scope only
	ServerArgs []string // forwarded after "--"
}

// ParseArgs parses os.Args[2:] (everything after "register").
func ParseArgs(args []string) (Options, error) {
	if len(args) == 0 {
		return Options{}, fmt.Errorf("%w: missing scope", ErrUsage)
	}

	opts := Options{Scope: Scope(args[0])}
	switch opts.Scope {
	case ScopeProject:
		opts.Directory, opts.ServerArgs = parseProjectArgs(args[1:])
	case ScopeUser:
		opts.ServerArgs = parseUserArgs(args[1:])
	default:
		return Options{}, fmt.Errorf("%w: unknown scope %q (must be \"project\" or \"user\")", ErrUsage, args[0])
	}
	return opts, nil
}

// Run executes the register subcommand.
// serverName is the MCP server name (e.g. "workspace").
func Run(serverName string, args []string, stdout io.Writer) error {
	opts, err := ParseArgs(args)
	if err != nil {
		return err
	}

	binaryPath, err := detectBinaryPath()
	if err != nil {
		return err
	}

	configPath, err := resolveConfigPath(opts.Scope, opts.Directory)
	if err != nil {
		return err
	}

	if err := writeConfig(configPath, serverName, buildEntry(binaryPath, opts.ServerArgs)); err != nil {
		return err
	}

	fmt.Fprintf(stdout, "Registered %q in %s\n", serverName, configPath)
	return nil
}

// PrintUsage writes the register usage text.
func PrintUsage(w io.Writer) {
	binaryName := filepath.Base(os.Args[0])
	fmt.Fprintf(w, "Usage:\n")
	fmt.Fprintf(w, "  %s register project [directory]  # → <directory>/.mcp.json (default: .)\n", binaryName)
	fmt.Fprintf(w, "  %s register user                 # → ~/.claude.json\n", binaryName)
	fmt.Fprintf(w, "  %s register project . -- --inbox ./inbox  # forward args to server\n", binaryName)
	fmt.Fprintf(w, "  %s register user -- --config ~/workspace-mcp.yaml\n", binaryName)
}

// DeriveServerName extracts a server name from a binary path by stripping .exe and -mcp suffixes.
func DeriveServerName(binaryPath string) string {
	name := filepath.Base(binaryPath)
	name = strings.TrimSuffix(name, ".exe")
	name = strings.TrimSuffix(name, "-mcp")
	return name
}

func parseProjectArgs(args []string) (directory string, serverArgs []string) {
	directory = "."
	for i, arg := range args {
		if arg == "--" {
			return directory, args[i+1:]
		}
		if i == 0 {
			directory = arg
		}
	}
	return directory, nil
}

func parseUserArgs(args []string) (serverArgs []string) {
	for i, arg := range args {
		if arg == "--" {
			return args[i+1:]
		}
	}
	return nil
}

func detectBinaryPath() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("getting executable path: %w", err)
	}
	resolved, err := filepath.EvalSymlinks(exe)
	if err != nil {
		return "", fmt.Errorf("resolving symlinks for %s: %w", exe, err)
	}
	return resolved, nil
}

func resolveConfigPath(scope Scope, directory string) (string, error) {
	if scope == ScopeProject {
		absDir, err := filepath.Abs(directory)
		if err != nil {
			return "", fmt.Errorf("resolving directory %s: %w", directory, err)
		}
		return filepath.Join(absDir, ".mcp.json"), nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(homeDir, ".claude.json"), nil
}

func buildEntry(binaryPath string, serverArgs []string) mcpServerEntry {
	if runtime.GOOS == "windows" {
		args := append([]string{"/C", binaryPath}, serverArgs...)
		return mcpServerEntry{Command: "cmd", Args: args}
	}
	return mcpServerEntry{Command: binaryPath, Args: serverArgs}
}

// writeConfig sets mcpServers[serverName] and keeps every other key.
func writeConfig(configPath string, serverName string, entry mcpServerEntry) error {
	config := map[string]any{}

	data, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, &config); err != nil {
			return fmt.Errorf("parsing existing config %s: %w", configPath, err)
		}
	case !errors.Is(err, os.ErrNotExist):
		return fmt.Errorf("reading config %s: %w", configPath, err)
	}

	servers, ok := config["mcpServers"]
	if !ok || servers == nil {
		servers = map[string]any{}
		config["mcpServers"] = servers
	}
	serversMap, ok := servers.(map[string]any)
	if !ok {
		return fmt.Errorf("mcpServers in %s is not an object", configPath)
	}
	serversMap[serverName] = entry

	output, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	output = append(output, '\n')

	configDir := filepath.Dir(configPath)
	tmpFile, err := os.CreateTemp(configDir, ".mcp-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file in %s: %w", configDir, err)
	}
	tmpPath := tmpFile.Name()

	if _, err := tmpFile.Write(output); err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("writing temp file %s: %w", tmpPath, err)
	}
	if err := tmpFile.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file %s: %w", tmpPath, err)
	}
	if err := os.Rename(tmpPath, configPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming %s to %s: %w", tmpPath, configPath, err)
	}
	return nil
}
