package dispatch

import (
	"regexp"
	"strings"
)

// listQueryPatterns matches meta-queries asking what the assistant can do.
// These are answered straight from the registry without a model call; the
// answer uses the same format the listing tool produces.
var listQueryPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^what (?:skills|capabilities|tools) do you have\??$`),
	regexp.MustCompile(`^what can you do\??$`),
	regexp.MustCompile(`^(?:list|show)(?: your| me your| all| the)? (?:skills|capabilities|tools)\??$`),
	regexp.MustCompile(`^(?:skills|capabilities)\??$`),
	regexp.MustCompile(`^help\??$`),
}

// isListQuery reports whether query is a capability-listing meta-query.
// Matching is exact after normalization, so a query that merely mentions
// capabilities still goes through the model.
func isListQuery(query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	q = strings.TrimRight(q, ".!")
	for _, p := range listQueryPatterns {
		if p.MatchString(q) {
			return true
		}
	}
	return false
}
