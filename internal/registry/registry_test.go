package registry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeCapability(t *testing.T, root, name, doc string) {
	t.Helper()
	dir := filepath.Join(root, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, DescriptorFilename), []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestListSkipsMalformedDescriptors(t *testing.T) {
	store := t.TempDir()

	writeCapability(t, store, "good-one", "---\nname: good-one\ndescription: does a thing\n---\nUse the thing.\n")
	writeCapability(t, store, "no-close", "---\nname: no-close\ndescription: never closed\n")
	writeCapability(t, store, "missing-name", "---\ndescription: nameless\n---\nBody.\n")

	r := New(store, "")
	caps := r.List()

	if len(caps) != 1 {
		t.Fatalf("expected 1 capability, got %d", len(caps))
	}
	if caps[0].Name != "good-one" {
		t.Errorf("expected good-one, got %s", caps[0].Name)
	}
}

func TestListRejectsNameMismatch(t *testing.T) {
	store := t.TempDir()
	writeCapability(t, store, "dir-name", "---\nname: other-name\ndescription: mismatched\n---\nBody.\n")

	r := New(store, "")
	if caps := r.List(); len(caps) != 0 {
		t.Fatalf("expected mismatched descriptor to be dropped, got %d entries", len(caps))
	}
}

func TestBodyIsVerbatim(t *testing.T) {
	store := t.TempDir()
	body := "Step one.\n\n---\n\nA separator inside the body stays put.\n"
	writeCapability(t, store, "sep-body", "---\nname: sep-body\ndescription: keeps separators\n---\n"+body)

	r := New(store, "")
	caps := r.List()
	if len(caps) != 1 {
		t.Fatalf("expected 1 capability, got %d", len(caps))
	}
	if caps[0].Instructions != body {
		t.Errorf("body altered:\nwant %q\ngot  %q", body, caps[0].Instructions)
	}
}

func TestListAlwaysReflectsDisk(t *testing.T) {
	store := t.TempDir()
	r := New(store, "")

	if got := len(r.List()); got != 0 {
		t.Fatalf("expected empty store, got %d", got)
	}

	writeCapability(t, store, "late-arrival", "---\nname: late-arrival\ndescription: added after first scan\n---\nBody.\n")

	caps := r.List()
	if len(caps) != 1 || caps[0].Name != "late-arrival" {
		t.Fatalf("second scan did not pick up new capability: %+v", caps)
	}
}

func TestUserStoreShadowsBuiltin(t *testing.T) {
	builtin := t.TempDir()
	store := t.TempDir()
	writeCapability(t, builtin, "shared", "---\nname: shared\ndescription: builtin version\n---\nBuiltin body.\n")
	writeCapability(t, store, "shared", "---\nname: shared\ndescription: user version\n---\nUser body.\n")

	r := New(store, builtin)
	caps := r.List()
	if len(caps) != 1 {
		t.Fatalf("expected shadowing to leave 1 entry, got %d", len(caps))
	}
	if caps[0].Description != "user version" {
		t.Errorf("expected user store to win, got %q", caps[0].Description)
	}
}

func TestHandlerPathResolvesInsideDir(t *testing.T) {
	store := t.TempDir()
	writeCapability(t, store, "scripted",
		"---\nname: scripted\ndescription: runs a script\nhandler: scripts/run.py\n---\nBody.\n")

	r := New(store, "")
	desc, err := r.Get("scripted")
	if err != nil {
		t.Fatal(err)
	}
	want := filepath.Join(store, "scripted", "scripts", "run.py")
	if desc.HandlerPath != want {
		t.Errorf("handler path = %q, want %q", desc.HandlerPath, want)
	}
}

func TestFormatForPrompt(t *testing.T) {
	store := t.TempDir()
	writeCapability(t, store, "alpha", "---\nname: alpha\ndescription: first\n---\nA.\n")
	writeCapability(t, store, "beta", "---\nname: beta\ndescription: second\n---\nB.\n")

	r := New(store, "")
	got := FormatForPrompt(r.List())
	if !strings.Contains(got, "- alpha: first") || !strings.Contains(got, "- beta: second") {
		t.Errorf("catalog missing entries:\n%s", got)
	}
}

func TestInstructionsNotFound(t *testing.T) {
	if _, err := Instructions(nil, "ghost"); err == nil {
		t.Fatal("expected error for unknown capability")
	}
}
