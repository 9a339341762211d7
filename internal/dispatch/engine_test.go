package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/skillweaver/skillweaver/internal/hotreload"
	"github.com/skillweaver/skillweaver/internal/registry"
	"github.com/skillweaver/skillweaver/internal/schema"
	"github.com/skillweaver/skillweaver/internal/tools"
)

// scriptedProvider replays a fixed sequence of responses.
type scriptedProvider struct {
	responses []schema.LLMResponse
	calls     int
	err       error
}

func (p *scriptedProvider) DefaultModel() string { return "test-model" }

func (p *scriptedProvider) Chat(ctx context.Context, _ schema.Messages, _ []map[string]any, _ schema.ChatOptions) (schema.LLMResponse, error) {
	if p.err != nil {
		return schema.LLMResponse{}, p.err
	}
	if p.calls >= len(p.responses) {
		return schema.LLMResponse{}, fmt.Errorf("provider script exhausted after %d calls", p.calls)
	}
	resp := p.responses[p.calls]
	p.calls++
	return resp, nil
}

func textResponse(text string) schema.LLMResponse {
	return schema.LLMResponse{
		Content:      &text,
		FinishReason: "stop",
		Usage:        schema.TokenUsage{Input: 10, Output: 5, Total: 15},
	}
}

func toolResponse(calls ...schema.ToolCallRequest) schema.LLMResponse {
	return schema.LLMResponse{
		ToolCalls:    calls,
		FinishReason: "tool_calls",
		Usage:        schema.TokenUsage{Input: 10, Output: 5, Total: 15},
	}
}

// countingTool counts executions so dedup behaviour is observable.
type countingTool struct {
	name  string
	count int
}

func (t *countingTool) Name() string                { return t.name }
func (t *countingTool) Description() string         { return "counts calls" }
func (t *countingTool) Parameters() json.RawMessage { return json.RawMessage(`{"type":"object"}`) }
func (t *countingTool) Execute(ctx context.Context, params map[string]any) (string, error) {
	t.count++
	return schema.ToolResult{Success: true, Result: fmt.Sprintf("call %d", t.count)}.JSON(), nil
}

func writeCapability(t *testing.T, store, name, description string) {
	t.Helper()
	dir := filepath.Join(store, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	doc := fmt.Sprintf("---\nname: %s\ndescription: %s\n---\nInstructions for %s.\n", name, description, name)
	if err := os.WriteFile(filepath.Join(dir, registry.DescriptorFilename), []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
}

func newEngine(t *testing.T, provider schema.LLMProvider, store string, extra ...schema.Tool) *Engine {
	t.Helper()
	reg := registry.New(store, "")
	builtins := tools.NewToolList(tools.NewListCapabilitiesTool(reg), tools.NewReadInstructionsTool(reg))
	for _, tool := range extra {
		builtins.Add(tool)
	}
	manager := hotreload.NewManager(reg, builtins)
	return New(provider, reg, manager, schema.NewAgentSettings("test-model", 4, 0, 1024))
}

func TestDispatchRoutesThroughCapability(t *testing.T) {
	store := t.TempDir()
	writeCapability(t, store, "word-count", "counts words in text")

	counter := &countingTool{name: "word_count_tool"}
	provider := &scriptedProvider{responses: []schema.LLMResponse{
		toolResponse(schema.ToolCallRequest{Id: "c1", Name: tools.ToolReadInstructions, Arguments: map[string]any{"name": "word-count"}}),
		toolResponse(schema.ToolCallRequest{Id: "c2", Name: "word_count_tool", Arguments: map[string]any{"text": "a b c"}}),
		textResponse("There are 3 words."),
	}}

	e := newEngine(t, provider, store, counter)
	result, err := e.Dispatch(context.Background(), "how many words in 'a b c'?", nil)
	if err != nil {
		t.Fatal(err)
	}

	if result.Response != "There are 3 words." {
		t.Errorf("response = %q", result.Response)
	}
	if result.SelectedCapability != "word-count" {
		t.Errorf("selected = %q, want word-count", result.SelectedCapability)
	}
	want := []string{tools.ToolReadInstructions, "word_count_tool"}
	if len(result.ToolsCalled) != 2 || result.ToolsCalled[0] != want[0] || result.ToolsCalled[1] != want[1] {
		t.Errorf("toolsCalled = %v, want %v", result.ToolsCalled, want)
	}
	if result.Turns != 3 {
		t.Errorf("turns = %d, want 3", result.Turns)
	}
	if result.Usage.Total != 45 {
		t.Errorf("usage total = %d, want 45", result.Usage.Total)
	}
}

func TestFastPathMatchesListingToolFormat(t *testing.T) {
	store := t.TempDir()
	writeCapability(t, store, "alpha", "first capability")
	writeCapability(t, store, "beta", "second capability")

	provider := &scriptedProvider{} // any model call would fail the test
	e := newEngine(t, provider, store)

	result, err := e.Dispatch(context.Background(), "What can you do?", nil)
	if err != nil {
		t.Fatal(err)
	}
	if provider.calls != 0 {
		t.Errorf("fast path made %d model calls", provider.calls)
	}
	if result.Turns != 0 {
		t.Errorf("turns = %d, want 0", result.Turns)
	}

	reg := registry.New(store, "")
	if want := registry.FormatListing(reg.List()); result.Response != want {
		t.Errorf("fast path response differs from listing tool:\nwant %q\ngot  %q", want, result.Response)
	}
}

func TestSelectedCapabilitySetOnlyOnce(t *testing.T) {
	store := t.TempDir()
	writeCapability(t, store, "first-cap", "first")
	writeCapability(t, store, "second-cap", "second")

	provider := &scriptedProvider{responses: []schema.LLMResponse{
		toolResponse(schema.ToolCallRequest{Id: "c1", Name: tools.ToolReadInstructions, Arguments: map[string]any{"name": "first-cap"}}),
		toolResponse(schema.ToolCallRequest{Id: "c2", Name: tools.ToolReadInstructions, Arguments: map[string]any{"name": "second-cap"}}),
		textResponse("done"),
	}}

	e := newEngine(t, provider, store)
	result, err := e.Dispatch(context.Background(), "do both things", nil)
	if err != nil {
		t.Fatal(err)
	}
	if result.SelectedCapability != "first-cap" {
		t.Errorf("selected = %q, want first-cap", result.SelectedCapability)
	}
}

func TestFailedInstructionsLoadDoesNotSelect(t *testing.T) {
	store := t.TempDir()

	provider := &scriptedProvider{responses: []schema.LLMResponse{
		toolResponse(schema.ToolCallRequest{Id: "c1", Name: tools.ToolReadInstructions, Arguments: map[string]any{"name": "ghost"}}),
		textResponse("no such capability"),
	}}

	e := newEngine(t, provider, store)
	result, err := e.Dispatch(context.Background(), "use the ghost", nil)
	if err != nil {
		t.Fatal(err)
	}
	if result.SelectedCapability != "" {
		t.Errorf("selected = %q, want empty", result.SelectedCapability)
	}
}

func TestDuplicateToolCallIsReplayedFromCache(t *testing.T) {
	store := t.TempDir()
	counter := &countingTool{name: "repeat_tool"}

	provider := &scriptedProvider{responses: []schema.LLMResponse{
		toolResponse(schema.ToolCallRequest{Id: "c1", Name: "repeat_tool", Arguments: map[string]any{"x": "same"}}),
		toolResponse(schema.ToolCallRequest{Id: "c2", Name: "repeat_tool", Arguments: map[string]any{"x": "same"}}),
		textResponse("done"),
	}}

	e := newEngine(t, provider, store, counter)
	result, err := e.Dispatch(context.Background(), "do it twice", nil)
	if err != nil {
		t.Fatal(err)
	}
	if counter.count != 1 {
		t.Errorf("tool executed %d times, want 1", counter.count)
	}
	// Both invocations still appear in the trace.
	if len(result.ToolsCalled) != 2 {
		t.Errorf("toolsCalled = %v", result.ToolsCalled)
	}
}

func TestUnknownToolIsRecoverable(t *testing.T) {
	store := t.TempDir()

	provider := &scriptedProvider{responses: []schema.LLMResponse{
		toolResponse(schema.ToolCallRequest{Id: "c1", Name: "no_such_tool", Arguments: map[string]any{}}),
		textResponse("recovered"),
	}}

	e := newEngine(t, provider, store)
	result, err := e.Dispatch(context.Background(), "try something odd", nil)
	if err != nil {
		t.Fatal(err)
	}
	if result.Response != "recovered" {
		t.Errorf("response = %q", result.Response)
	}
}

func TestTurnBudgetExceeded(t *testing.T) {
	store := t.TempDir()
	counter := &countingTool{name: "busy_tool"}

	var responses []schema.LLMResponse
	for i := 0; i < 10; i++ {
		responses = append(responses, toolResponse(
			schema.ToolCallRequest{Id: fmt.Sprintf("c%d", i), Name: "busy_tool", Arguments: map[string]any{"n": float64(i)}}))
	}
	provider := &scriptedProvider{responses: responses}

	e := newEngine(t, provider, store, counter)
	result, err := e.Dispatch(context.Background(), "never finish", nil)
	if !errors.Is(err, ErrTurnBudgetExceeded) {
		t.Fatalf("err = %v, want ErrTurnBudgetExceeded", err)
	}
	if result.Turns != 4 {
		t.Errorf("turns = %d, want 4", result.Turns)
	}
	if result.Usage.Total == 0 {
		t.Error("partial usage should be reported")
	}
}

func TestProviderFailureIsDispatchError(t *testing.T) {
	store := t.TempDir()
	provider := &scriptedProvider{err: fmt.Errorf("connection refused")}

	e := newEngine(t, provider, store)
	_, err := e.Dispatch(context.Background(), "anything", nil)

	var de *DispatchError
	if !errors.As(err, &de) {
		t.Fatalf("err = %v, want DispatchError", err)
	}
	if de.RunID == "" {
		t.Error("DispatchError missing run id")
	}
}

func TestCancelledContextStopsRun(t *testing.T) {
	store := t.TempDir()
	provider := &scriptedProvider{responses: []schema.LLMResponse{textResponse("unreachable")}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	e := newEngine(t, provider, store)
	_, err := e.Dispatch(ctx, "anything", nil)

	var de *DispatchError
	if !errors.As(err, &de) {
		t.Fatalf("err = %v, want DispatchError", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled cause", err)
	}
}

func TestIsListQuery(t *testing.T) {
	yes := []string{
		"what can you do?",
		"What can you do",
		"list skills",
		"list your capabilities",
		"show me your skills",
		"help",
	}
	no := []string{
		"what can you do about my broken build?",
		"count the words in this list",
		"help me write a poem",
	}
	for _, q := range yes {
		if !isListQuery(q) {
			t.Errorf("expected fast path for %q", q)
		}
	}
	for _, q := range no {
		if isListQuery(q) {
			t.Errorf("unexpected fast path for %q", q)
		}
	}
}
