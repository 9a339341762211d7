package factory

import "fmt"

// The generation prompts. Each stage gets a narrow system prompt and a user
// prompt carrying only the brief fields it needs.

const briefSystem = `You are a capability architect. Given a capability description, return ONLY valid JSON
(no markdown fences, no explanation) matching this schema exactly:
{
  "name":               "lowercase-hyphen-name",
  "oneLiner":           "one sentence summary",
  "whatItDoes":         "detailed description",
  "triggerPhrases":     ["phrase 1", "phrase 2"],
  "inputType":          "what the user provides",
  "outputType":         "what the capability produces",
  "needsHandler":       true,
  "suggestedTestQuery": "a realistic user query that should trigger this capability"
}`

const descriptorSystem = `You are an expert capability architect for an AI agent system.
Write a complete, production-quality CAPABILITY.md for a new capability.

FORMAT:
---
name: <capability-name>
description: <1-2 sentence description. State WHEN to trigger it and WHAT it does.
             Include specific keywords and contexts. Be slightly pushy — mention all
             scenarios where this capability should be used.>
---

# <Title>

## Overview
## Workflow  (Step 1, Step 2, ... — be very explicit, the model follows exactly)
## Usage Patterns
## Error Handling  (table: Error | Cause | User Message)
## Output Formatting
## Best Practices

RULES:
- Keep under 400 lines
- Workflow steps must be explicit, never vague
- The description field must be keyword-rich for routing
- Return ONLY the raw document, no fences, no explanation`

const handlerSystem = `You are an expert Python developer writing a handler script for an AI capability.
Requirements:
- Complete, working Python 3, no placeholders
- The script receives a JSON object as its first command-line argument
- It prints a single JSON object to stdout: {"success": bool, "result": ..., "error": "...", "errorKind": "..."}
- Proper try/except error handling throughout; failures still print the JSON envelope and exit 0
- Use only the Python standard library
Return ONLY raw Python code, no fences, no explanation.`

const selfTestSystem = `You are a routing system. Given a user query and available capabilities,
return ONLY JSON:
{"selected": "<capability-name or null>",
 "confidence": "<high/medium/low>",
 "reason": "<one sentence>"}
Available capabilities:
%s`

func briefUser(description string) string {
	return "Capability description: " + description
}

func descriptorUser(b *Brief) string {
	return fmt.Sprintf(`Create a complete CAPABILITY.md for:
Name:             %s
Summary:          %s
Full description: %s
Trigger phrases:  %s
Input:            %s
Output:           %s
Has handler:      %t
Test query:       %s`,
		b.Name, b.OneLiner, b.WhatItDoes, joinPhrases(b.TriggerPhrases),
		b.InputType, b.OutputType, b.NeedsHandler, b.SuggestedTestQuery)
}

func handlerUser(b *Brief) string {
	return fmt.Sprintf(`Write a complete Python handler for:
Capability:   %s
What it does: %s
Input:        %s
Output:       %s
Script file:  %s.py
The JSON argument has the shape {"input": "<%s>"}.`,
		b.Name, b.WhatItDoes, b.InputType, b.OutputType,
		handlerBasename(b.Name), b.InputType)
}

func selfTestUser(query string) string {
	return "User query: " + query
}
