package schema

// CapabilityDescriptor is the parsed representation of one capability in the
// store. A descriptor is immutable once loaded into a snapshot; the registry
// re-parses from disk on every listing and never mutates an entry in place.
type CapabilityDescriptor struct {
	// Name uniquely identifies the capability and must equal the name of the
	// store folder it was loaded from.
	Name string
	// Description is the routing trigger text, rendered verbatim into the
	// catalog block of the dispatch system prompt.
	Description string
	// Instructions is the full document body after the second separator,
	// kept verbatim including any internal separators. Opaque to the
	// registry; only the model reads it, after selection.
	Instructions string
	// HandlerPath is the absolute path to the capability's executable
	// handler, or "" for description-only capabilities.
	HandlerPath string
	// Dir is the absolute path of the capability folder.
	Dir string
}

// Executable reports whether this capability has a runnable handler.
func (d CapabilityDescriptor) Executable() bool { return d.HandlerPath != "" }

// CapabilityListing is one {name, description} entry of the catalog,
// served to both the listing tool and the gateway API.
type CapabilityListing struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}
