// Package dispatch runs the capability dispatch loop: the model reasons over
// the capability catalog, loads instructions for the capability it picks, and
// drives tools until it can answer.
package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/skillweaver/skillweaver/internal/hotreload"
	"github.com/skillweaver/skillweaver/internal/registry"
	"github.com/skillweaver/skillweaver/internal/schema"
	"github.com/skillweaver/skillweaver/internal/shared/llmutils"
	"github.com/skillweaver/skillweaver/internal/tools"
)

const tracePreviewLen = 200

// ErrTurnBudgetExceeded is returned when a run spends its model-call budget
// without producing a final answer.
var ErrTurnBudgetExceeded = errors.New("turn budget exceeded")

// DispatchError is a fatal run failure: the provider transport broke or the
// run was cancelled. Tool failures never produce one; they go back to the
// model as failed result envelopes.
type DispatchError struct {
	RunID string
	Err   error
}

func (e *DispatchError) Error() string {
	return fmt.Sprintf("dispatch run %s: %v", e.RunID, e.Err)
}

func (e *DispatchError) Unwrap() error { return e.Err }

// Engine executes dispatch runs. Engines are safe for concurrent use; all
// per-run state lives on the stack of Dispatch.
type Engine struct {
	provider schema.LLMProvider
	registry *registry.Registry
	manager  *hotreload.Manager
	settings schema.AgentSettings
}

func New(provider schema.LLMProvider, reg *registry.Registry, manager *hotreload.Manager, settings schema.AgentSettings) *Engine {
	if settings.MaxTurns <= 0 {
		settings.MaxTurns = 8
	}
	return &Engine{
		provider: provider,
		registry: reg,
		manager:  manager,
		settings: settings,
	}
}

// Dispatch runs one query to completion. onProgress, when non-nil, receives
// partial assistant text and tool hints as the run advances.
//
// The run pins a tool-table snapshot and a catalog scan at its start, so a
// concurrent reload never changes the tools mid-run.
func (e *Engine) Dispatch(ctx context.Context, query string, onProgress func(string)) (schema.DispatchResult, error) {
	runID := uuid.NewString()
	result := schema.DispatchResult{RunID: runID}

	if err := ctx.Err(); err != nil {
		return result, &DispatchError{RunID: runID, Err: err}
	}

	caps := e.registry.List()

	// Meta-queries about the catalog are answered from the registry alone.
	if isListQuery(query) {
		result.Response = registry.FormatListing(caps)
		slog.Info("dispatch answered on fast path", "run", runID)
		return result, nil
	}

	table := e.manager.Snapshot()
	state := newRunState()

	conversation := schema.NewMessages()
	conversation.AddSystem(systemPrompt(caps))
	conversation.AddUser(query)

	for turn := 0; turn < e.settings.MaxTurns; turn++ {
		if err := ctx.Err(); err != nil {
			return e.finish(result, state), &DispatchError{RunID: runID, Err: err}
		}

		resp, err := e.provider.Chat(ctx,
			conversation,
			table.Definitions(),
			schema.NewChatOptions(e.settings.Model, e.settings.MaxTokens, e.settings.Temperature),
		)
		if err != nil {
			slog.Error("LLM call failed", "run", runID, "turn", turn, "err", err)
			return e.finish(result, state), &DispatchError{RunID: runID, Err: err}
		}

		result.Turns++
		state.usage.Add(resp.Usage)

		if !resp.HasToolCalls() {
			content := ""
			if resp.Content != nil {
				content = *resp.Content
			}
			result.Response = llmutils.StripThink(content)
			return e.finish(result, state), nil
		}

		if onProgress != nil {
			if resp.Content != nil {
				if clean := llmutils.StripThink(*resp.Content); clean != "" {
					onProgress(clean)
				}
			}
			onProgress(llmutils.ToolHint(resp.ToolCalls))
		}

		var toolCalls []schema.ToolCall
		for _, tc := range resp.ToolCalls {
			toolCalls = append(toolCalls, schema.ToolCall{ID: tc.Id, Name: tc.Name, Arguments: tc.Arguments})
		}
		conversation.AddAssistant(resp.Content, toolCalls)

		// Tools run sequentially, in the order the model requested them.
		for _, tc := range resp.ToolCalls {
			if err := ctx.Err(); err != nil {
				return e.finish(result, state), &DispatchError{RunID: runID, Err: err}
			}
			out, err := e.executeTool(ctx, table, state, tc)
			if err != nil {
				return e.finish(result, state), &DispatchError{RunID: runID, Err: err}
			}
			conversation.AddToolResult(tc.Id, tc.Name, out)
		}
	}

	slog.Warn("dispatch exhausted turn budget", "run", runID, "maxTurns", e.settings.MaxTurns)
	return e.finish(result, state), fmt.Errorf("run %s: %w after %d turns", runID, ErrTurnBudgetExceeded, e.settings.MaxTurns)
}

// executeTool runs one tool call, applying the dedup cache and tracking
// capability selection. Tool failures come back as envelope strings; only a
// cancelled context returns an error.
func (e *Engine) executeTool(ctx context.Context, table *tools.ToolList, state *runState, tc schema.ToolCallRequest) (string, error) {
	if out, ok := state.cached(tc.Name, tc.Arguments); ok {
		slog.Debug("replaying cached tool result", "tool", tc.Name)
		state.record(tc.Name, tc.Arguments, out, tracePreviewLen)
		return out, nil
	}

	argsJSON, _ := json.Marshal(tc.Arguments)
	slog.Info("tool call", "name", tc.Name, "args", llmutils.Truncate(string(argsJSON), 200))

	var out string
	if t := table.Get(tc.Name); t != nil {
		var err error
		out, err = t.Execute(ctx, tc.Arguments)
		if err != nil {
			// Tools surface recoverable problems in the envelope; a Go
			// error here means the run itself is over.
			return "", err
		}
	} else {
		out = schema.Failure("unknown_tool", fmt.Sprintf("tool %q is not registered", tc.Name)).JSON()
	}

	if tc.Name == tools.ToolReadInstructions {
		if name := instructionsCapability(out, tc.Arguments); name != "" {
			state.noteSelection(name)
		}
	}

	state.remember(tc.Name, tc.Arguments, out)
	state.record(tc.Name, tc.Arguments, out, tracePreviewLen)
	return out, nil
}

// instructionsCapability extracts the capability name from a successful
// instructions load, or "" when the load failed.
func instructionsCapability(envelope string, args map[string]any) string {
	var env schema.ToolResult
	if err := json.Unmarshal([]byte(envelope), &env); err != nil || !env.Success {
		return ""
	}
	if name, ok := env.Metadata["capability"].(string); ok && name != "" {
		return name
	}
	name, _ := args["name"].(string)
	return name
}

func (e *Engine) finish(result schema.DispatchResult, state *runState) schema.DispatchResult {
	result.SelectedCapability = state.selectedCapability
	result.ToolsCalled = state.toolsCalled
	result.Trace = state.trace
	result.Usage = state.usage
	return result
}

// systemPrompt builds the routing prompt from the current catalog. The model
// sees descriptions only; instruction bodies arrive through the loading tool.
func systemPrompt(caps []schema.CapabilityDescriptor) string {
	var b strings.Builder
	b.WriteString("You are a capability dispatcher. You answer user requests by routing them to installed capabilities.\n\n")
	b.WriteString(registry.FormatForPrompt(caps))
	b.WriteString("\n\nRouting policy:\n")
	b.WriteString("- Pick the single capability whose description best matches the request.\n")
	b.WriteString("- Before using any capability-specific tool, call " + tools.ToolReadInstructions + " once to load that capability's instructions, then follow them.\n")
	b.WriteString("- Do not load instructions for more than one capability in a run.\n")
	b.WriteString("- If no capability fits, say so and answer directly as best you can.\n")
	b.WriteString("- Never repeat a tool call you already made with the same arguments.\n")
	return b.String()
}
