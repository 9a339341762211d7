package factory

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// persistCapability writes a capability's files into the store. Files are
// staged in a sibling directory and moved into place with a single rename,
// so a reader never sees a half-written capability. An existing capability
// of the same name is kept as a timestamped backup, never overwritten in
// place.
func persistCapability(store, name string, files map[string][]byte) (string, error) {
	if err := os.MkdirAll(store, 0o755); err != nil {
		return "", fmt.Errorf("create store: %w", err)
	}

	staging, err := os.MkdirTemp(store, "."+name+"-staging-")
	if err != nil {
		return "", fmt.Errorf("create staging dir: %w", err)
	}
	defer os.RemoveAll(staging)

	for rel, content := range files {
		path := filepath.Join(staging, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return "", fmt.Errorf("stage %s: %w", rel, err)
		}
		mode := os.FileMode(0o644)
		if filepath.Ext(rel) == ".py" || filepath.Ext(rel) == ".sh" {
			mode = 0o755
		}
		if err := os.WriteFile(path, content, mode); err != nil {
			return "", fmt.Errorf("stage %s: %w", rel, err)
		}
	}

	final := filepath.Join(store, name)
	if _, err := os.Stat(final); err == nil {
		// The dot prefix keeps backups out of registry scans.
		backup := filepath.Join(store, fmt.Sprintf(".%s.bak-%s", name, time.Now().Format("20060102-150405")))
		if err := os.Rename(final, backup); err != nil {
			return "", fmt.Errorf("back up existing capability: %w", err)
		}
	}

	if err := os.Rename(staging, final); err != nil {
		return "", fmt.Errorf("install capability: %w", err)
	}
	return final, nil
}
