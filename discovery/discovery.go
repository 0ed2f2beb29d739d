// Package discovery implements spec §4.11's tool discovery subsystem,
// redesigned per spec §9 Design Notes: rather than dynamically loading
// arbitrary source files (unsafe in a systems language), it discovers
// declarative *.tool.toml descriptor files under the well-known
// directories, each naming an out-of-process tool-server command, and
// registers a process-invocation shim for each into an
// agentloop.ToolRegistry. Grounded on the directory-scan/load-errors
// shape of jholhewres-goclaw's plugins.Loader, adapted from Go native
// plugins (.so) to descriptor files since this package must not attempt
// dynamic code loading.
package discovery

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"

	"github.com/forgecode/agentkit/agentloop"
)

// ErrorCategory classifies a discovery failure, per spec §4.11.
type ErrorCategory string

const (
	CategoryLoad        ErrorCategory = "load"
	CategoryParse       ErrorCategory = "parse"
	CategoryInstantiate ErrorCategory = "instantiate"
)

// DiscoveryError records one failure encountered while scanning a
// directory for tool descriptors.
type DiscoveryError struct {
	File     string
	Category ErrorCategory
	Err      error
}

func (e DiscoveryError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Category, e.File, e.Err)
}

// ToolDescriptorFile is the shape of one *.tool.toml descriptor: a
// declarative pointer at an out-of-process tool-server command, not
// inline source to compile or interpret.
type ToolDescriptorFile struct {
	Name        string            `toml:"name"`
	Description string            `toml:"description"`
	Kind        string            `toml:"kind"`
	Command     string            `toml:"command"`
	Args        []string          `toml:"args"`
	Env         map[string]string `toml:"env"`
	Schema      map[string]interface{} `toml:"schema"`
	Mutating    bool              `toml:"mutating"`
	TimeoutSec  int               `toml:"timeout_sec"`
}

// Loader scans the configured directories for *.tool.toml files and
// registers each into registry as a RegisterDiscovered tool, so
// Reload can unregister exactly what a previous DiscoverAll added.
type Loader struct {
	mu        sync.Mutex
	Dirs      []string
	registry  *agentloop.ToolRegistry
	lastError []DiscoveryError
}

// NewLoader constructs a Loader over the two well-known directories
// (cwd/.ai-agent/tools and <config-dir>/.ai-agent/tools per spec §6).
func NewLoader(registry *agentloop.ToolRegistry, dirs ...string) *Loader {
	return &Loader{registry: registry, Dirs: dirs}
}

// Errors returns the discovery errors accumulated by the most recent
// DiscoverAll/Reload call.
func (l *Loader) Errors() []DiscoveryError {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]DiscoveryError(nil), l.lastError...)
}

// DiscoverAll clears prior errors, then for each configured directory
// enumerates *.tool.toml files, parses and instantiates each into a
// discovered tool. A per-file failure is recorded under the
// appropriate category and does not stop the rest of the scan.
func (l *Loader) DiscoverAll() {
	l.mu.Lock()
	l.lastError = nil
	l.mu.Unlock()

	for _, dir := range l.Dirs {
		l.discoverDir(dir)
	}
}

func (l *Loader) discoverDir(dir string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return
		}
		l.recordError(dir, CategoryLoad, err)
		return
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)

	for _, name := range names {
		if strings.HasPrefix(name, "__") || !strings.HasSuffix(name, ".tool.toml") {
			continue
		}
		path := filepath.Join(dir, name)
		l.loadFile(path)
	}
}

func (l *Loader) loadFile(path string) {
	raw, err := os.ReadFile(path)
	if err != nil {
		l.recordError(path, CategoryLoad, err)
		return
	}

	var desc ToolDescriptorFile
	if _, err := toml.Decode(string(raw), &desc); err != nil {
		l.recordError(path, CategoryParse, err)
		return
	}

	tool, err := instantiate(desc)
	if err != nil {
		l.recordError(path, CategoryInstantiate, err)
		return
	}

	l.registry.RegisterDiscovered(tool)
}

func instantiate(desc ToolDescriptorFile) (agentloop.Tool, error) {
	if desc.Name == "" {
		return nil, fmt.Errorf("missing name")
	}
	if desc.Command == "" {
		return nil, fmt.Errorf("missing command")
	}
	kind := agentloop.ToolKindShell
	switch desc.Kind {
	case "read":
		kind = agentloop.ToolKindRead
	case "write":
		kind = agentloop.ToolKindWrite
	case "network":
		kind = agentloop.ToolKindNetwork
	case "memory":
		kind = agentloop.ToolKindMemory
	case "shell", "":
		kind = agentloop.ToolKindShell
	default:
		return nil, fmt.Errorf("unknown kind %q", desc.Kind)
	}
	return newProcessTool(desc, kind), nil
}

func (l *Loader) recordError(file string, category ErrorCategory, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lastError = append(l.lastError, DiscoveryError{File: file, Category: category, Err: err})
}

// Reload unregisters every previously discovered tool and repeats
// discovery from scratch.
func (l *Loader) Reload() {
	l.registry.UnregisterDiscovered()
	l.DiscoverAll()
}
