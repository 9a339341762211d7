package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/skillweaver/skillweaver/internal/schema"
)

// ScriptTool adapts a capability handler script into a tool. The handler runs
// as a subprocess: it receives the call arguments as a JSON object in argv[1]
// and writes a result envelope to stdout. Handler failures are recoverable;
// they come back as a failed envelope, never as a Go error.
type ScriptTool struct {
	name        string
	description string
	parameters  json.RawMessage
	handlerPath string
	timeout     time.Duration
}

// NewScriptTool creates a tool backed by the handler script at handlerPath.
// timeoutSeconds defaults to 60.
func NewScriptTool(name, description string, parameters json.RawMessage, handlerPath string, timeoutSeconds int) *ScriptTool {
	t := 60
	if timeoutSeconds > 0 {
		t = timeoutSeconds
	}
	if len(parameters) == 0 {
		parameters = json.RawMessage(`{"type": "object", "properties": {}}`)
	}
	return &ScriptTool{
		name:        name,
		description: description,
		parameters:  parameters,
		handlerPath: handlerPath,
		timeout:     time.Duration(t) * time.Second,
	}
}

func (s *ScriptTool) Name() string                { return s.name }
func (s *ScriptTool) Description() string         { return s.description }
func (s *ScriptTool) Parameters() json.RawMessage { return s.parameters }

// HandlerPath returns the path of the backing script.
func (s *ScriptTool) HandlerPath() string { return s.handlerPath }

func (s *ScriptTool) Execute(ctx context.Context, params map[string]any) (string, error) {
	input, err := json.Marshal(params)
	if err != nil {
		return schema.Failure("invalid_params", err.Error()).JSON(), nil
	}

	cmdCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	cmd := exec.CommandContext(cmdCtx, interpreterFor(s.handlerPath), argvFor(s.handlerPath, string(input))...)
	cmd.Dir = filepath.Dir(s.handlerPath)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()

	if cmdCtx.Err() == context.DeadlineExceeded {
		return schema.Failure("timeout",
			fmt.Sprintf("handler exceeded %s", s.timeout)).JSON(), nil
	}
	if ctx.Err() != nil {
		// Caller cancellation propagates; the run is over.
		return "", ctx.Err()
	}

	if runErr != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = runErr.Error()
		}
		return schema.Failure("handler_error", msg).JSON(), nil
	}

	out := strings.TrimSpace(stdout.String())
	if out == "" {
		return schema.Failure("handler_error", "handler produced no output").JSON(), nil
	}

	// Handlers that already speak the envelope pass through verbatim.
	var envelope schema.ToolResult
	if err := json.Unmarshal([]byte(out), &envelope); err == nil && (envelope.Success || envelope.Error != "") {
		return out, nil
	}

	// Plain-text handlers get wrapped.
	return schema.ToolResult{Success: true, Result: out}.JSON(), nil
}

// interpreterFor picks a runtime for the handler based on its extension.
// Scripts without a known extension are executed directly.
func interpreterFor(path string) string {
	switch filepath.Ext(path) {
	case ".py":
		return "python3"
	case ".sh":
		return "sh"
	default:
		return path
	}
}

func argvFor(path, input string) []string {
	switch filepath.Ext(path) {
	case ".py", ".sh":
		return []string{path, input}
	default:
		return []string{input}
	}
}
