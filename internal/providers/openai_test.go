package providers

import (
	"testing"

	"github.com/skillweaver/skillweaver/internal/schema"
)

func TestParseOpenAIResponseWithToolCalls(t *testing.T) {
	raw := []byte(`{
		"choices": [{
			"message": {
				"content": null,
				"tool_calls": [{
					"id": "call_1",
					"function": {"name": "web_fetch", "arguments": "{\"url\": \"https://example.com\"}"}
				}]
			},
			"finish_reason": "tool_calls"
		}],
		"usage": {"prompt_tokens": 120, "completion_tokens": 30, "total_tokens": 150}
	}`)

	resp, err := parseOpenAIResponse(raw)
	if err != nil {
		t.Fatal(err)
	}
	if !resp.HasToolCalls() {
		t.Fatal("expected tool calls")
	}
	tc := resp.ToolCalls[0]
	if tc.Name != "web_fetch" || tc.Arguments["url"] != "https://example.com" {
		t.Errorf("tool call = %+v", tc)
	}
	if resp.Usage.Total != 150 {
		t.Errorf("usage = %+v", resp.Usage)
	}
}

func TestParseAnthropicResponse(t *testing.T) {
	raw := []byte(`{
		"content": [
			{"type": "text", "text": "Let me check."},
			{"type": "tool_use", "id": "tu_1", "name": "word_count_tool", "input": {"input": "a b"}}
		],
		"stop_reason": "tool_use",
		"usage": {"input_tokens": 50, "output_tokens": 20}
	}`)

	resp, err := parseAnthropicResponse(raw)
	if err != nil {
		t.Fatal(err)
	}
	if resp.Content == nil || *resp.Content != "Let me check." {
		t.Errorf("content = %v", resp.Content)
	}
	if len(resp.ToolCalls) != 1 || resp.ToolCalls[0].Name != "word_count_tool" {
		t.Errorf("tool calls = %+v", resp.ToolCalls)
	}
	if resp.FinishReason != "tool_calls" {
		t.Errorf("finish = %q", resp.FinishReason)
	}
	if resp.Usage.Total != 70 {
		t.Errorf("usage = %+v", resp.Usage)
	}
}

func TestRepairJSON(t *testing.T) {
	good, err := repairJSON(`{"a": 1}`)
	if err != nil || good["a"] != float64(1) {
		t.Fatalf("valid JSON mishandled: %v %v", good, err)
	}

	empty, err := repairJSON("")
	if err != nil || len(empty) != 0 {
		t.Fatalf("empty input mishandled: %v %v", empty, err)
	}

	trailing, err := repairJSON(`{"url": "x"} extra garbage`)
	if err != nil || trailing["url"] != "x" {
		t.Fatalf("trailing garbage not repaired: %v %v", trailing, err)
	}

	if _, err := repairJSON("not json at all"); err == nil {
		t.Error("expected error for unrepairable input")
	}
}

func TestConvertMessagesToAnthropicMergesToolResults(t *testing.T) {
	msgs := schema.NewMessages()
	msgs.AddSystem("system prompt")
	msgs.AddUser("hello")
	content := "calling tools"
	msgs.AddAssistant(&content, []schema.ToolCall{
		{ID: "t1", Name: "a_tool", Arguments: map[string]any{}},
		{ID: "t2", Name: "b_tool", Arguments: map[string]any{}},
	})
	msgs.AddToolResult("t1", "a_tool", "result a")
	msgs.AddToolResult("t2", "b_tool", "result b")

	system, converted := convertMessagesToAnthropic(msgs)
	if system != "system prompt" {
		t.Errorf("system = %q", system)
	}
	// user, assistant, merged tool results = 3 messages.
	if len(converted) != 3 {
		t.Fatalf("converted = %d messages, want 3", len(converted))
	}
	last := converted[2]
	if last["role"] != "user" {
		t.Errorf("tool results role = %v", last["role"])
	}
	blocks, ok := last["content"].([]any)
	if !ok || len(blocks) != 2 {
		t.Errorf("expected 2 merged tool_result blocks, got %v", last["content"])
	}
}

func TestResolveModelStripsProviderPrefix(t *testing.T) {
	p := NewOpenAIProvider("key", "", "anthropic/claude-sonnet-4-5", "anthropic", nil)
	if got := p.resolveModel("anthropic/claude-sonnet-4-5"); got != "claude-sonnet-4-5" {
		t.Errorf("resolveModel = %q", got)
	}

	or := NewOpenAIProvider("key", "", "anthropic/claude-sonnet-4-5", "openrouter", nil)
	if got := or.resolveModel("anthropic/claude-sonnet-4-5"); got != "anthropic/claude-sonnet-4-5" {
		t.Errorf("openrouter must keep full model string, got %q", got)
	}
}
