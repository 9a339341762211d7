package dispatch

import (
	"encoding/json"
	"fmt"

	"github.com/skillweaver/skillweaver/internal/schema"
)

// runState is the mutable bookkeeping of one dispatch run. A run selects at
// most one capability, and it loads instructions only for the capability it
// selected.
type runState struct {
	selectedCapability string
	instructionsLoaded bool

	toolsCalled []string
	trace       []schema.ToolTrace
	usage       schema.TokenUsage

	// cache deduplicates identical tool calls within the run: the second
	// invocation with the same name and arguments replays the first result
	// instead of re-executing.
	cache map[string]string
}

func newRunState() *runState {
	return &runState{cache: make(map[string]string)}
}

// cacheKey is stable across calls because json.Marshal sorts map keys.
func cacheKey(name string, args map[string]any) string {
	raw, err := json.Marshal(args)
	if err != nil {
		raw = []byte(fmt.Sprintf("%v", args))
	}
	return name + ":" + string(raw)
}

func (s *runState) cached(name string, args map[string]any) (string, bool) {
	out, ok := s.cache[cacheKey(name, args)]
	return out, ok
}

func (s *runState) remember(name string, args map[string]any, result string) {
	s.cache[cacheKey(name, args)] = result
}

// noteSelection records the capability whose instructions were just loaded.
// Only the first successful load sets the selection; later loads are served
// but do not change it.
func (s *runState) noteSelection(capability string) {
	if s.selectedCapability == "" {
		s.selectedCapability = capability
	}
	s.instructionsLoaded = true
}

func (s *runState) record(name string, args map[string]any, result string, previewLen int) {
	s.toolsCalled = append(s.toolsCalled, name)
	preview := result
	if len(preview) > previewLen {
		preview = preview[:previewLen]
	}
	s.trace = append(s.trace, schema.ToolTrace{
		Tool:          name,
		Arguments:     args,
		ResultPreview: preview,
	})
}
