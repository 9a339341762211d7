// Package factory builds new capabilities end to end: it turns a free-text
// description into a structured brief, generates the descriptor document and
// handler script, persists them atomically into the store, and splices the
// resulting tool into the live plugin table.
package factory

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/skillweaver/skillweaver/internal/hotreload"
	"github.com/skillweaver/skillweaver/internal/registry"
	"github.com/skillweaver/skillweaver/internal/schema"
	"github.com/skillweaver/skillweaver/internal/shared/llmutils"
	"github.com/skillweaver/skillweaver/internal/tools"
)

// Brief is the structured intent extracted from a free-text description.
type Brief struct {
	Name               string   `json:"name"`
	OneLiner           string   `json:"oneLiner"`
	WhatItDoes         string   `json:"whatItDoes"`
	TriggerPhrases     []string `json:"triggerPhrases"`
	InputType          string   `json:"inputType"`
	OutputType         string   `json:"outputType"`
	NeedsHandler       bool     `json:"needsHandler"`
	SuggestedTestQuery string   `json:"suggestedTestQuery"`
}

// BriefError reports a description the factory cannot turn into a usable
// brief.
type BriefError struct {
	Reason string
}

func (e *BriefError) Error() string { return "capability brief: " + e.Reason }

// GenerationError reports a pipeline stage whose model output is unusable.
type GenerationError struct {
	Stage string
	Err   error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generate %s: %v", e.Stage, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// SelfTest is the advisory routing check run after registration. A failed
// self-test never undoes the installation; it only tells the operator the
// new capability may need a sharper description.
type SelfTest struct {
	Passed bool   `json:"passed"`
	Detail string `json:"detail"`
}

// Result describes a completed creation run.
type Result struct {
	Name       string                 `json:"name"`
	Dir        string                 `json:"dir"`
	Descriptor string                 `json:"-"`
	Handler    string                 `json:"-"`
	Registered hotreload.SpliceStatus `json:"-"`
	SelfTest   SelfTest               `json:"selfTest"`
	Usage      schema.TokenUsage      `json:"usage"`
}

// Factory runs the creation pipeline.
type Factory struct {
	provider schema.LLMProvider
	registry *registry.Registry
	manager  *hotreload.Manager
	model    string
}

func New(provider schema.LLMProvider, reg *registry.Registry, manager *hotreload.Manager, model string) *Factory {
	return &Factory{provider: provider, registry: reg, manager: manager, model: model}
}

// Create runs the whole pipeline unattended. Each stage checks ctx before
// calling the model, so cancellation takes effect between stages.
func (f *Factory) Create(ctx context.Context, description string) (*Result, error) {
	if strings.TrimSpace(description) == "" {
		return nil, &BriefError{Reason: "description is empty"}
	}

	result := &Result{}

	brief, err := f.buildBrief(ctx, description, &result.Usage)
	if err != nil {
		return nil, err
	}
	result.Name = brief.Name
	slog.Info("capability brief ready", "name", brief.Name)

	descriptor, err := f.generateDescriptor(ctx, brief, &result.Usage)
	if err != nil {
		return nil, err
	}
	result.Descriptor = descriptor

	files := map[string][]byte{
		registry.DescriptorFilename: []byte(descriptor),
	}

	if brief.NeedsHandler {
		handler, err := f.generateHandler(ctx, brief, &result.Usage)
		if err != nil {
			return nil, err
		}
		result.Handler = handler

		stub := buildStub(brief)
		stubRaw, err := tools.MarshalStub(stub)
		if err != nil {
			return nil, &GenerationError{Stage: "tool stub", Err: err}
		}
		files["scripts/"+handlerBasename(brief.Name)+".py"] = []byte(handler)
		files[tools.StubFilename] = stubRaw
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dir, err := persistCapability(f.registry.StorePath(), brief.Name, files)
	if err != nil {
		return nil, fmt.Errorf("persist capability: %w", err)
	}
	result.Dir = dir

	// The persisted descriptor must round-trip through the registry before
	// the tool goes live.
	if _, err := registry.LoadDescriptor(dir); err != nil {
		return nil, &GenerationError{Stage: "descriptor", Err: err}
	}

	status, err := f.manager.Splice(brief.Name, dir)
	if err != nil {
		return nil, err
	}
	result.Registered = status
	slog.Info("capability installed", "name", brief.Name, "status", status.String())

	result.SelfTest = f.selfTest(ctx, brief, &result.Usage)
	return result, nil
}

// buildBrief extracts a structured brief, falling back to a minimal one
// derived from the description when the model output is unparseable.
func (f *Factory) buildBrief(ctx context.Context, description string, usage *schema.TokenUsage) (*Brief, error) {
	raw, err := f.call(ctx, briefSystem, briefUser(description), 0.1, usage)
	if err != nil {
		return nil, &GenerationError{Stage: "brief", Err: err}
	}

	var brief Brief
	if jsonErr := json.Unmarshal([]byte(llmutils.StripFences(raw)), &brief); jsonErr != nil {
		slog.Warn("brief JSON unparseable, deriving minimal brief", "err", jsonErr)
		brief = Brief{
			Name:               llmutils.Slugify(description),
			OneLiner:           description,
			WhatItDoes:         description,
			TriggerPhrases:     []string{description},
			InputType:          "text",
			OutputType:         "text",
			NeedsHandler:       true,
			SuggestedTestQuery: description,
		}
	}

	brief.Name = llmutils.Slugify(brief.Name)
	if brief.Name == "" {
		return nil, &BriefError{Reason: "could not derive a capability name"}
	}
	if brief.SuggestedTestQuery == "" {
		brief.SuggestedTestQuery = description
	}
	return &brief, nil
}

func (f *Factory) generateDescriptor(ctx context.Context, brief *Brief, usage *schema.TokenUsage) (string, error) {
	raw, err := f.call(ctx, descriptorSystem, descriptorUser(brief), 0.15, usage)
	if err != nil {
		return "", &GenerationError{Stage: "descriptor", Err: err}
	}
	doc := llmutils.StripFences(raw)
	if !strings.HasPrefix(strings.TrimSpace(doc), "---") {
		return "", &GenerationError{Stage: "descriptor", Err: fmt.Errorf("output has no metadata block")}
	}
	// The descriptor must carry the brief's name or the registry will reject
	// the directory.
	if !strings.Contains(doc, "name: "+brief.Name) {
		return "", &GenerationError{Stage: "descriptor", Err: fmt.Errorf("metadata name does not match %q", brief.Name)}
	}
	return doc, nil
}

func (f *Factory) generateHandler(ctx context.Context, brief *Brief, usage *schema.TokenUsage) (string, error) {
	raw, err := f.call(ctx, handlerSystem, handlerUser(brief), 0.1, usage)
	if err != nil {
		return "", &GenerationError{Stage: "handler", Err: err}
	}
	code := llmutils.StripFences(raw)
	if code == "" {
		return "", &GenerationError{Stage: "handler", Err: fmt.Errorf("empty script")}
	}
	return code, nil
}

// selfTest asks the model whether the suggested test query would route to
// the new capability. The result is advisory only.
func (f *Factory) selfTest(ctx context.Context, brief *Brief, usage *schema.TokenUsage) SelfTest {
	caps := f.registry.List()
	found := false
	for _, c := range caps {
		if c.Name == brief.Name {
			found = true
			break
		}
	}
	if !found {
		return SelfTest{Passed: false, Detail: "capability not visible in registry after install"}
	}

	system := fmt.Sprintf(selfTestSystem, registry.FormatForPrompt(caps))
	raw, err := f.call(ctx, system, selfTestUser(brief.SuggestedTestQuery), 0, usage)
	if err != nil {
		return SelfTest{Passed: false, Detail: "routing check failed: " + err.Error()}
	}

	var verdict struct {
		Selected   string `json:"selected"`
		Confidence string `json:"confidence"`
		Reason     string `json:"reason"`
	}
	if err := json.Unmarshal([]byte(llmutils.StripFences(raw)), &verdict); err != nil {
		return SelfTest{Passed: false, Detail: "unparseable routing response"}
	}
	return SelfTest{
		Passed: verdict.Selected == brief.Name,
		Detail: fmt.Sprintf("routed to %q (%s). %s", verdict.Selected, verdict.Confidence, verdict.Reason),
	}
}

// call runs one single-shot model exchange and accumulates token usage.
func (f *Factory) call(ctx context.Context, system, user string, temperature float64, usage *schema.TokenUsage) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	conversation := schema.NewMessages()
	conversation.AddSystem(system)
	conversation.AddUser(user)

	resp, err := f.provider.Chat(ctx, conversation, nil,
		schema.NewChatOptions(f.model, 8192, temperature))
	if err != nil {
		return "", err
	}
	usage.Add(resp.Usage)
	if resp.Content == nil {
		return "", fmt.Errorf("model returned no text")
	}
	return strings.TrimSpace(*resp.Content), nil
}

func handlerBasename(name string) string {
	return strings.ReplaceAll(name, "-", "_")
}

// buildStub composes the plugin-table stub for the generated handler. The
// stub is plain data; nothing gets spliced into source code.
func buildStub(brief *Brief) *tools.ToolStub {
	return &tools.ToolStub{
		Name:        tools.ToolIdentifier(brief.Name),
		Description: brief.OneLiner,
		Handler:     "scripts/" + handlerBasename(brief.Name) + ".py",
		Timeout:     60,
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"input": map[string]any{
					"type":        "string",
					"description": brief.InputType,
				},
			},
			"required": []any{"input"},
		},
	}
}

func joinPhrases(phrases []string) string {
	return strings.Join(phrases, ", ")
}
