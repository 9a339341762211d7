// Package schema contains the core contracts shared across skillweaver packages.
// Concrete implementations live in their respective packages; this package is the
// single canonical source of truth for every interface definition.
package schema

import (
	"context"
	"encoding/json"
)

// Tool is the interface all LLM-callable tools must satisfy.
// Built-in tools and script-backed capability tools both implement it.
type Tool interface {
	Name() string
	Description() string
	// Parameters returns the JSON Schema (as raw JSON bytes) for this tool's parameters.
	Parameters() json.RawMessage
	Execute(ctx context.Context, params map[string]any) (string, error)
}

// ToolResult is the structured envelope every capability handler returns.
// Handlers signal failure through Success=false rather than process errors,
// so the dispatch loop can hand the failure back to the model as an
// observation instead of aborting the run.
type ToolResult struct {
	Success   bool           `json:"success"`
	Result    any            `json:"result,omitempty"`
	Error     string         `json:"error,omitempty"`
	ErrorKind string         `json:"errorKind,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// Failure builds a failed ToolResult with the given kind and message.
func Failure(kind, msg string) ToolResult {
	return ToolResult{Success: false, Error: msg, ErrorKind: kind}
}

// JSON serialises the result envelope for a tool-result turn.
func (r ToolResult) JSON() string {
	data, err := json.Marshal(r)
	if err != nil {
		return `{"success":false,"error":"unserialisable tool result","errorKind":"encoding"}`
	}
	return string(data)
}
