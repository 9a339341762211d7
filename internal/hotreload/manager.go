// Package hotreload maintains the live plugin table: the set of tools the
// dispatch engine exposes to the model. The table is published as an
// immutable snapshot behind an atomic pointer; a single writer builds a new
// table and swaps it in, so in-flight runs keep the snapshot they started
// with and never observe a half-updated set.
package hotreload

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/skillweaver/skillweaver/internal/registry"
	"github.com/skillweaver/skillweaver/internal/schema"
	"github.com/skillweaver/skillweaver/internal/tools"
)

// SpliceStatus is the outcome of registering one capability's tool.
type SpliceStatus int

const (
	// Registered means the tool was added and the new table is live.
	Registered SpliceStatus = iota
	// Conflict means a tool with the same identifier already exists; the
	// table is unchanged.
	Conflict
)

func (s SpliceStatus) String() string {
	if s == Conflict {
		return "conflict"
	}
	return "registered"
}

// RegistrationError reports a capability whose tool stub cannot be turned
// into a live tool.
type RegistrationError struct {
	Capability string
	Err        error
}

func (e *RegistrationError) Error() string {
	return fmt.Sprintf("register %s: %v", e.Capability, e.Err)
}

func (e *RegistrationError) Unwrap() error { return e.Err }

// ErrReloadFailed wraps the cause of an aborted reload. The previous table
// stays live when this is returned.
var ErrReloadFailed = errors.New("hot reload failed")

// Manager owns the plugin table. All mutation goes through its mutex; reads
// take lock-free snapshots.
type Manager struct {
	registry *registry.Registry
	builtins *tools.ToolList

	mu      sync.Mutex
	current atomic.Pointer[tools.ToolList]
}

// NewManager creates a manager seeded with the built-in tools plus whatever
// capability tools the store currently provides. Capabilities with broken
// stubs are skipped at startup so one bad entry cannot block boot.
func NewManager(reg *registry.Registry, builtins *tools.ToolList) *Manager {
	m := &Manager{registry: reg, builtins: builtins}

	table := builtins.Clone()
	for _, desc := range reg.List() {
		tool, err := buildCapabilityTool(desc.Name, desc.Dir)
		if err != nil {
			slog.Warn("skipping capability tool at startup", "capability", desc.Name, "err", err)
			continue
		}
		if tool != nil {
			table.Add(tool)
		}
	}
	m.current.Store(table)
	return m
}

// Snapshot returns the current plugin table. The returned list must not be
// mutated; it stays valid for the lifetime of a run even across reloads.
func (m *Manager) Snapshot() *tools.ToolList {
	return m.current.Load()
}

// Splice registers the tool of a single capability directory into the live
// table. It returns Conflict without changing the table when a tool with the
// same identifier is already registered. A capability without a tool stub
// splices as a no-op Registered: it only contributes a descriptor.
func (m *Manager) Splice(capability, dir string) (SpliceStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	tool, err := buildCapabilityTool(capability, dir)
	if err != nil {
		return Conflict, &RegistrationError{Capability: capability, Err: err}
	}
	if tool == nil {
		return Registered, nil
	}

	old := m.current.Load()
	if old.Has(tool.Name()) {
		return Conflict, nil
	}

	next := old.Clone()
	next.Add(tool)
	m.current.Store(next)

	slog.Info("tool spliced into plugin table", "tool", tool.Name(), "capability", capability)
	return Registered, nil
}

// Reload rebuilds the whole plugin table from disk: built-in tools first,
// then one tool per capability stub. Any malformed or duplicate stub aborts
// the reload and the previous table stays live.
func (m *Manager) Reload() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	next := m.builtins.Clone()
	for _, desc := range m.registry.List() {
		tool, err := buildCapabilityTool(desc.Name, desc.Dir)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrReloadFailed,
				&RegistrationError{Capability: desc.Name, Err: err})
		}
		if tool == nil {
			continue
		}
		if next.Has(tool.Name()) {
			return fmt.Errorf("%w: %w", ErrReloadFailed,
				&RegistrationError{Capability: desc.Name, Err: fmt.Errorf("duplicate tool identifier %q", tool.Name())})
		}
		next.Add(tool)
	}

	m.current.Store(next)
	slog.Info("plugin table reloaded", "tools", next.Len())
	return nil
}

// buildCapabilityTool loads the tool stub in dir and materializes it.
// Returns (nil, nil) for capabilities without a stub.
func buildCapabilityTool(capability, dir string) (schema.Tool, error) {
	stub, err := tools.LoadStub(dir)
	if err != nil {
		return nil, err
	}
	if stub == nil {
		return nil, nil
	}
	return stub.Build(dir)
}
