// Package llmutils holds small helpers for working with LLM inputs and outputs.
package llmutils

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/skillweaver/skillweaver/internal/schema"
)

var (
	reThink     = regexp.MustCompile(`(?s)<think>.*?</think>`)
	reFenceOpen = regexp.MustCompile("(?m)^```[a-zA-Z0-9]*[ \t]*$")
	reSlug      = regexp.MustCompile(`[^a-z0-9-]+`)
	reDashRun   = regexp.MustCompile(`-{2,}`)
)

// Truncate shortens a string to at most n characters, adding "..." if it was truncated.
func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// StripThink removes <think>…</think> blocks that some models embed.
func StripThink(s string) string {
	return reThink.ReplaceAllString(s, "")
}

// StripFences removes markdown code fences wrapping LLM output.
// Models routinely fence generated documents and scripts even when asked
// not to; the inner text is returned trimmed.
func StripFences(s string) string {
	return strings.TrimSpace(reFenceOpen.ReplaceAllString(s, ""))
}

// StringOrDefault returns s if it's not empty, or def if s is empty.
func StringOrDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// Slugify lowercases s and reduces it to a hyphenated identifier suitable
// for a capability folder name.
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = reSlug.ReplaceAllString(s, "-")
	s = reDashRun.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// ToolHint generates a short hint string for a list of tool calls,
// e.g. `web_fetch("https://example.com")`.
func ToolHint(tcs []schema.ToolCallRequest) string {
	parts := make([]string, 0, len(tcs))
	for _, tc := range tcs {
		var firstVal string
		for _, v := range tc.Arguments {
			if s, ok := v.(string); ok {
				firstVal = s
			}
			break
		}
		if firstVal == "" {
			parts = append(parts, tc.Name)
			continue
		}
		if len(firstVal) > 40 {
			firstVal = firstVal[:40] + "…"
		}
		parts = append(parts, fmt.Sprintf("%s(%q)", tc.Name, firstVal))
	}
	return strings.Join(parts, ", ")
}
