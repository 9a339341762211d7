package hotreload

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/skillweaver/skillweaver/internal/registry"
	"github.com/skillweaver/skillweaver/internal/tools"
)

func writeCapability(t *testing.T, store, name string, withStub bool) string {
	t.Helper()
	dir := filepath.Join(store, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	doc := "---\nname: " + name + "\ndescription: test capability\n---\nInstructions.\n"
	if err := os.WriteFile(filepath.Join(dir, registry.DescriptorFilename), []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	if withStub {
		script := filepath.Join(dir, "run.sh")
		if err := os.WriteFile(script, []byte("#!/bin/sh\necho ok\n"), 0o755); err != nil {
			t.Fatal(err)
		}
		stub := &tools.ToolStub{
			Name:        tools.ToolIdentifier(name),
			Description: "test tool",
			Handler:     "run.sh",
		}
		if err := tools.SaveStub(dir, stub); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func newManager(t *testing.T, store string) *Manager {
	t.Helper()
	reg := registry.New(store, "")
	return NewManager(reg, tools.NewToolList(tools.NewListCapabilitiesTool(reg), tools.NewReadInstructionsTool(reg)))
}

func TestSpliceGrowsTableByOne(t *testing.T) {
	store := t.TempDir()
	m := newManager(t, store)
	before := m.Snapshot().Len()

	dir := writeCapability(t, store, "new-cap", true)
	status, err := m.Splice("new-cap", dir)
	if err != nil {
		t.Fatal(err)
	}
	if status != Registered {
		t.Fatalf("status = %s", status)
	}
	if got := m.Snapshot().Len(); got != before+1 {
		t.Errorf("table size = %d, want %d", got, before+1)
	}
	if !m.Snapshot().Has("new_cap_tool") {
		t.Error("new tool not in table")
	}
}

func TestSpliceConflictLeavesTableUntouched(t *testing.T) {
	store := t.TempDir()
	dir := writeCapability(t, store, "dup-cap", true)
	m := newManager(t, store)
	before := m.Snapshot()

	status, err := m.Splice("dup-cap", dir)
	if err != nil {
		t.Fatal(err)
	}
	if status != Conflict {
		t.Fatalf("status = %s, want conflict", status)
	}
	if m.Snapshot() != before {
		t.Error("conflict must not publish a new table")
	}
}

func TestSpliceWithoutStubIsNoOpRegistered(t *testing.T) {
	store := t.TempDir()
	m := newManager(t, store)
	before := m.Snapshot()

	dir := writeCapability(t, store, "desc-only", false)
	status, err := m.Splice("desc-only", dir)
	if err != nil {
		t.Fatal(err)
	}
	if status != Registered {
		t.Fatalf("status = %s", status)
	}
	if m.Snapshot() != before {
		t.Error("stub-less capability must not publish a new table")
	}
}

func TestReloadPicksUpNewCapabilities(t *testing.T) {
	store := t.TempDir()
	m := newManager(t, store)
	before := m.Snapshot().Len()

	writeCapability(t, store, "cap-a", true)
	writeCapability(t, store, "cap-b", true)

	if err := m.Reload(); err != nil {
		t.Fatal(err)
	}
	if got := m.Snapshot().Len(); got != before+2 {
		t.Errorf("table size = %d, want %d", got, before+2)
	}
}

func TestFailedReloadKeepsPreviousTable(t *testing.T) {
	store := t.TempDir()
	writeCapability(t, store, "good-cap", true)
	m := newManager(t, store)
	before := m.Snapshot()

	// A stub pointing at a missing handler makes the reload fail.
	dir := writeCapability(t, store, "broken-cap", false)
	stub := &tools.ToolStub{Name: "broken_cap_tool", Handler: "missing.sh"}
	if err := tools.SaveStub(dir, stub); err != nil {
		t.Fatal(err)
	}

	err := m.Reload()
	if !errors.Is(err, ErrReloadFailed) {
		t.Fatalf("err = %v, want ErrReloadFailed", err)
	}
	var regErr *RegistrationError
	if !errors.As(err, &regErr) || regErr.Capability != "broken-cap" {
		t.Errorf("cause = %v", err)
	}
	if m.Snapshot() != before {
		t.Error("failed reload must keep the previous table")
	}
}

func TestReloadRejectsDuplicateIdentifiers(t *testing.T) {
	store := t.TempDir()
	writeCapability(t, store, "first", true)
	dir := writeCapability(t, store, "second", true)
	// Point second's stub at first's identifier.
	stub, err := tools.LoadStub(dir)
	if err != nil {
		t.Fatal(err)
	}
	stub.Name = "first_tool"
	if err := tools.SaveStub(dir, stub); err != nil {
		t.Fatal(err)
	}

	m := newManager(t, store)
	if err := m.Reload(); !errors.Is(err, ErrReloadFailed) {
		t.Fatalf("err = %v, want ErrReloadFailed", err)
	}
}

func TestSnapshotSurvivesReload(t *testing.T) {
	store := t.TempDir()
	m := newManager(t, store)
	snap := m.Snapshot()

	writeCapability(t, store, "later-cap", true)
	if err := m.Reload(); err != nil {
		t.Fatal(err)
	}

	// The old snapshot is still usable and unchanged.
	if snap.Has("later_cap_tool") {
		t.Error("old snapshot mutated by reload")
	}
	if !m.Snapshot().Has("later_cap_tool") {
		t.Error("new snapshot missing reloaded tool")
	}
}
