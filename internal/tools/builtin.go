package tools

import (
	"context"
	"encoding/json"

	"github.com/skillweaver/skillweaver/internal/registry"
	"github.com/skillweaver/skillweaver/internal/schema"
)

// Canonical names of the routing tools. The dispatch engine watches for these
// to track which capability a run selected.
const (
	ToolListCapabilities = "list_capabilities"
	ToolReadInstructions = "read_capability_instructions"
)

// ListCapabilitiesTool reports every installed capability with its one-line
// description. It scans the store on each call so the answer always reflects
// the current disk state.
type ListCapabilitiesTool struct {
	registry *registry.Registry
}

func NewListCapabilitiesTool(r *registry.Registry) *ListCapabilitiesTool {
	return &ListCapabilitiesTool{registry: r}
}

func (t *ListCapabilitiesTool) Name() string { return ToolListCapabilities }
func (t *ListCapabilitiesTool) Description() string {
	return "List every installed capability with its name and description. Call this when the user asks what you can do."
}
func (t *ListCapabilitiesTool) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {}
	}`)
}

func (t *ListCapabilitiesTool) Execute(ctx context.Context, params map[string]any) (string, error) {
	caps := t.registry.List()
	return schema.ToolResult{
		Success:  true,
		Result:   registry.FormatListing(caps),
		Metadata: map[string]any{"count": len(caps)},
	}.JSON(), nil
}

// ReadInstructionsTool loads the full instruction body of one capability.
// Calling it marks the capability as selected for the rest of the run.
type ReadInstructionsTool struct {
	registry *registry.Registry
}

func NewReadInstructionsTool(r *registry.Registry) *ReadInstructionsTool {
	return &ReadInstructionsTool{registry: r}
}

func (t *ReadInstructionsTool) Name() string { return ToolReadInstructions }
func (t *ReadInstructionsTool) Description() string {
	return "Load the full instructions of a capability by name. Call this exactly once, before using any capability-specific tool."
}
func (t *ReadInstructionsTool) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"name": {
				"type": "string",
				"description": "Name of the capability to load"
			}
		},
		"required": ["name"]
	}`)
}

func (t *ReadInstructionsTool) Execute(ctx context.Context, params map[string]any) (string, error) {
	name, _ := params["name"].(string)
	if name == "" {
		return schema.Failure("invalid_params", "name is required").JSON(), nil
	}

	desc, err := t.registry.Get(name)
	if err != nil {
		return schema.Failure("not_found", err.Error()).JSON(), nil
	}

	return schema.ToolResult{
		Success:  true,
		Result:   desc.Instructions,
		Metadata: map[string]any{"capability": desc.Name},
	}.JSON(), nil
}
