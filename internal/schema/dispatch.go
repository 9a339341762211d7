package schema

// ToolTrace is one entry of a run's tool-invocation log. The log is written
// for observability and testing only; the model never reads it back.
type ToolTrace struct {
	Tool          string         `json:"tool"`
	Arguments     map[string]any `json:"arguments"`
	ResultPreview string         `json:"resultPreview"`
}

// DispatchResult is what a completed dispatch run hands back to the caller.
type DispatchResult struct {
	RunID string `json:"runId"`
	// Response is the final assistant text, always non-empty on success.
	Response string `json:"response"`
	// SelectedCapability is the capability chosen during the run, or ""
	// when the model answered without loading any instructions.
	SelectedCapability string `json:"selectedCapability,omitempty"`
	// ToolsCalled lists tool names in invocation order.
	ToolsCalled []string    `json:"toolsCalled"`
	Trace       []ToolTrace `json:"trace,omitempty"`
	Usage       TokenUsage  `json:"usage"`
	// Turns is the number of model calls the run consumed.
	Turns int `json:"turns"`
}

// AgentSettings carries the tunables of the dispatch loop.
type AgentSettings struct {
	Model       string
	MaxTurns    int
	Temperature float64
	MaxTokens   int
}

func NewAgentSettings(model string, maxTurns int, temperature float64, maxTokens int) AgentSettings {
	return AgentSettings{
		Model:       model,
		MaxTurns:    maxTurns,
		Temperature: temperature,
		MaxTokens:   maxTokens,
	}
}
