package tools

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/skillweaver/skillweaver/internal/schema"
)

// StubFilename is the tool stub sitting beside each capability descriptor.
// A capability without a stub exposes no tool of its own and relies on the
// built-in tools described by its instructions.
const StubFilename = "tool.yaml"

// ToolStub declares the tool a capability contributes to the plugin table.
type ToolStub struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Handler     string         `yaml:"handler"`
	Timeout     int            `yaml:"timeout,omitempty"`
	Parameters  map[string]any `yaml:"parameters,omitempty"`
}

// ToolIdentifier derives the plugin-table identifier for a capability name.
func ToolIdentifier(capability string) string {
	return strings.ReplaceAll(capability, "-", "_") + "_tool"
}

// LoadStub reads the tool stub from a capability directory. It returns
// (nil, nil) when the capability has no stub.
func LoadStub(dir string) (*ToolStub, error) {
	raw, err := os.ReadFile(filepath.Join(dir, StubFilename))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var stub ToolStub
	if err := yaml.Unmarshal(raw, &stub); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", StubFilename, err)
	}
	if stub.Name == "" {
		return nil, fmt.Errorf("%s is missing required key: name", StubFilename)
	}
	if stub.Handler == "" {
		return nil, fmt.Errorf("%s is missing required key: handler", StubFilename)
	}
	return &stub, nil
}

// MarshalStub renders the stub in its on-disk form.
func MarshalStub(stub *ToolStub) ([]byte, error) {
	return yaml.Marshal(stub)
}

// SaveStub writes the stub into a capability directory.
func SaveStub(dir string, stub *ToolStub) error {
	raw, err := MarshalStub(stub)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, StubFilename), raw, 0o644)
}

// Build materializes the stub into an executable tool rooted at dir.
func (s *ToolStub) Build(dir string) (schema.Tool, error) {
	handler := filepath.Join(dir, s.Handler)
	if _, err := os.Stat(handler); err != nil {
		return nil, fmt.Errorf("handler %s: %w", s.Handler, err)
	}

	params := json.RawMessage(`{"type": "object", "properties": {}}`)
	if len(s.Parameters) > 0 {
		raw, err := json.Marshal(s.Parameters)
		if err != nil {
			return nil, fmt.Errorf("invalid parameters schema: %w", err)
		}
		params = raw
	}

	return NewScriptTool(s.Name, s.Description, params, handler, s.Timeout), nil
}
