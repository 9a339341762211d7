// Package tools implements the built-in tools and the capability handler
// adapter, plus the tool list consumed by the dispatch engine.
package tools

import (
	"encoding/json"
	"sort"

	"github.com/skillweaver/skillweaver/internal/schema"
)

// ToolList holds a named set of tools. Published lists are treated as
// immutable snapshots; mutation happens on a private copy before publishing.
type ToolList struct {
	tools map[string]schema.Tool
}

func NewToolList(ts ...schema.Tool) *ToolList {
	list := ToolList{tools: make(map[string]schema.Tool, len(ts))}
	for _, t := range ts {
		list.tools[t.Name()] = t
	}

	return &list
}

// Get returns the tool with the given name, or nil if not found.
func (r *ToolList) Get(name string) schema.Tool {
	return r.tools[name]
}

// Has reports whether a tool with the given name is registered.
func (r *ToolList) Has(name string) bool {
	_, ok := r.tools[name]
	return ok
}

// Add registers a new tool, replacing any existing tool with the same name.
func (r *ToolList) Add(t schema.Tool) schema.Tool {
	r.tools[t.Name()] = t

	return t
}

// Len returns the number of registered tools.
func (r *ToolList) Len() int { return len(r.tools) }

// Names returns the registered tool names in sorted order.
func (r *ToolList) Names() []string {
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Clone returns a new ToolList holding the same tools. Callers mutate the
// clone, never a published list.
func (r *ToolList) Clone() *ToolList {
	list := ToolList{tools: make(map[string]schema.Tool, len(r.tools))}
	for k, t := range r.tools {
		list.tools[k] = t
	}
	return &list
}

// Definitions returns all tool definitions in OpenAI function-calling format,
// in sorted name order so prompts are stable across runs.
func (r *ToolList) Definitions() []map[string]any {
	list := make([]map[string]any, 0, len(r.tools))
	for _, name := range r.Names() {
		t := r.tools[name]
		var params any
		if err := json.Unmarshal(t.Parameters(), &params); err != nil {
			params = map[string]any{"type": "object", "properties": map[string]any{}}
		}
		list = append(list, map[string]any{
			"type": "function",
			"function": map[string]any{
				"name":        t.Name(),
				"description": t.Description(),
				"parameters":  params,
			},
		})
	}
	return list
}
