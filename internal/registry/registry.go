// Package registry discovers capabilities from on-disk descriptor documents.
//
// Each capability lives in its own directory under the store, named after the
// capability, containing a CAPABILITY.md descriptor. The descriptor carries a
// metadata block delimited by "---" lines followed by the instruction body.
// Discovery always re-reads the disk so edits take effect without a restart.
package registry

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/skillweaver/skillweaver/internal/schema"
)

// DescriptorFilename is the name of the descriptor document inside every
// capability directory.
const DescriptorFilename = "CAPABILITY.md"

// DescriptorError reports a single malformed descriptor. A bad descriptor
// never aborts discovery; the entry is dropped and the rest of the store
// remains usable.
type DescriptorError struct {
	Dir    string
	Reason string
}

func (e *DescriptorError) Error() string {
	return fmt.Sprintf("descriptor %s: %s", e.Dir, e.Reason)
}

// Registry scans capability stores. It holds no cached state; every List call
// reflects the disk at the moment of the call.
type Registry struct {
	storePath   string
	builtinPath string
}

// New creates a registry over a user store and an optional builtin store.
// builtinPath may be empty.
func New(storePath, builtinPath string) *Registry {
	return &Registry{storePath: storePath, builtinPath: builtinPath}
}

// StorePath returns the user store directory.
func (r *Registry) StorePath() string { return r.storePath }

// List scans both stores and returns every valid capability, builtin store
// first, each store in directory-name order. Malformed descriptors are logged
// and skipped. A missing store directory yields no entries and no error.
func (r *Registry) List() []schema.CapabilityDescriptor {
	var out []schema.CapabilityDescriptor
	seen := map[string]bool{}

	for _, root := range []string{r.builtinPath, r.storePath} {
		if root == "" {
			continue
		}
		for _, desc := range scanStore(root) {
			if seen[desc.Name] {
				// User store entries shadow builtins of the same name.
				for i := range out {
					if out[i].Name == desc.Name {
						out[i] = desc
					}
				}
				continue
			}
			seen[desc.Name] = true
			out = append(out, desc)
		}
	}
	return out
}

// Get scans the stores and returns the named capability, or an error when no
// directory provides it.
func (r *Registry) Get(name string) (schema.CapabilityDescriptor, error) {
	for _, desc := range r.List() {
		if desc.Name == name {
			return desc, nil
		}
	}
	return schema.CapabilityDescriptor{}, fmt.Errorf("capability %q not found", name)
}

func scanStore(root string) []schema.CapabilityDescriptor {
	entries, err := os.ReadDir(root)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("cannot read capability store", "path", root, "err", err)
		}
		return nil
	}

	var out []schema.CapabilityDescriptor
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		dir := filepath.Join(root, entry.Name())
		desc, err := LoadDescriptor(dir)
		if err != nil {
			slog.Warn("skipping capability", "dir", dir, "err", err)
			continue
		}
		out = append(out, desc)
	}
	return out
}

// LoadDescriptor reads and parses the descriptor document inside dir.
func LoadDescriptor(dir string) (schema.CapabilityDescriptor, error) {
	path := filepath.Join(dir, DescriptorFilename)
	raw, err := os.ReadFile(path)
	if err != nil {
		return schema.CapabilityDescriptor{}, &DescriptorError{Dir: dir, Reason: "missing " + DescriptorFilename}
	}

	meta, body, err := parseDescriptor(string(raw))
	if err != nil {
		return schema.CapabilityDescriptor{}, &DescriptorError{Dir: dir, Reason: err.Error()}
	}

	if meta.Name != filepath.Base(dir) {
		return schema.CapabilityDescriptor{}, &DescriptorError{
			Dir:    dir,
			Reason: fmt.Sprintf("metadata name %q does not match directory name %q", meta.Name, filepath.Base(dir)),
		}
	}

	desc := schema.CapabilityDescriptor{
		Name:         meta.Name,
		Description:  meta.Description,
		Instructions: body,
		Dir:          dir,
	}
	if meta.Handler != "" {
		desc.HandlerPath = filepath.Join(dir, meta.Handler)
	}
	return desc, nil
}

// descriptorMeta is the metadata block of a descriptor document.
type descriptorMeta struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Handler     string `yaml:"handler"`
}

// parseDescriptor splits a descriptor document into its metadata block and
// instruction body. The document must start with a "---" line, carry a second
// "---" line closing the block, and the metadata must define name and
// description. Everything after the second separator is the body, verbatim.
func parseDescriptor(doc string) (descriptorMeta, string, error) {
	var meta descriptorMeta

	trimmed := strings.TrimLeft(doc, "\n\r ")
	if !strings.HasPrefix(trimmed, "---") {
		return meta, "", fmt.Errorf("document does not start with a metadata block")
	}

	parts := strings.SplitN(trimmed, "---", 3)
	if len(parts) < 3 {
		return meta, "", fmt.Errorf("metadata block is not closed")
	}

	if err := yaml.Unmarshal([]byte(parts[1]), &meta); err != nil {
		return meta, "", fmt.Errorf("invalid metadata: %w", err)
	}
	if meta.Name == "" {
		return meta, "", fmt.Errorf("metadata is missing required key: name")
	}
	if meta.Description == "" {
		return meta, "", fmt.Errorf("metadata is missing required key: description")
	}

	body := strings.TrimPrefix(parts[2], "\n")
	return meta, body, nil
}
