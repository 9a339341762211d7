package registry

import (
	"fmt"
	"strings"

	"github.com/skillweaver/skillweaver/internal/schema"
)

// FormatForPrompt renders the capability catalog as a block suitable for the
// system prompt. The descriptions let the model route without loading any
// instruction bodies.
func FormatForPrompt(caps []schema.CapabilityDescriptor) string {
	if len(caps) == 0 {
		return "No capabilities are currently installed."
	}
	var b strings.Builder
	b.WriteString("Available capabilities:\n")
	for _, c := range caps {
		fmt.Fprintf(&b, "- %s: %s\n", c.Name, c.Description)
	}
	return strings.TrimRight(b.String(), "\n")
}

// FormatListing renders the catalog the way the listing tool reports it, one
// capability per line. The fast path reuses this so a meta-query answered
// without the model is format-identical to the tool's output.
func FormatListing(caps []schema.CapabilityDescriptor) string {
	if len(caps) == 0 {
		return "No capabilities installed."
	}
	var b strings.Builder
	for _, c := range caps {
		fmt.Fprintf(&b, "%s: %s\n", c.Name, c.Description)
	}
	return strings.TrimRight(b.String(), "\n")
}

// Instructions returns the instruction body of the named capability from a
// snapshot taken by List.
func Instructions(caps []schema.CapabilityDescriptor, name string) (string, error) {
	for _, c := range caps {
		if c.Name == name {
			return c.Instructions, nil
		}
	}
	return "", fmt.Errorf("capability %q not found", name)
}

// Listings converts descriptors to their listing form for API responses.
func Listings(caps []schema.CapabilityDescriptor) []schema.CapabilityListing {
	out := make([]schema.CapabilityListing, 0, len(caps))
	for _, c := range caps {
		out = append(out, schema.CapabilityListing{Name: c.Name, Description: c.Description})
	}
	return out
}
