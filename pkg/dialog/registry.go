package dialog

import (
	"fmt"
	"strings"
	"sync"
)

// FlowSource provides flow definitions to the state machine. Both Registry
// and Loader satisfy it; the loader swaps registries on hot reload.
type FlowSource interface {
	Get(name string) (*Flow, bool)
	MatchIntent(utterance string) (*Flow, bool)
	All() []*Flow
}

// Registry holds an ordered set of validated flows. Order is intent
// priority: the first flow whose keyword appears in an utterance wins.
type Registry struct {
	mu     sync.RWMutex
	flows  []*Flow
	byName map[string]*Flow
}

// NewRegistry creates a registry from the given flows, validating each.
func NewRegistry(flows ...*Flow) (*Registry, error) {
	r := &Registry{byName: make(map[string]*Flow, len(flows))}
	for _, f := range flows {
		if err := r.add(f); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *Registry) add(f *Flow) error {
	if err := ValidateFlow(f); err != nil {
		return err
	}
	if _, dup := r.byName[f.Name]; dup {
		return fmt.Errorf("flow %q: duplicate name", f.Name)
	}
	r.flows = append(r.flows, f)
	r.byName[f.Name] = f
	return nil
}

// ValidateFlow checks a flow definition for consistency.
func ValidateFlow(f *Flow) error {
	if f.Name == "" {
		return fmt.Errorf("flow: name is required")
	}
	if f.Mode == ModeIdle || f.Mode == "" {
		return fmt.Errorf("flow %q: mode is required and cannot be %q", f.Name, ModeIdle)
	}
	if len(f.Keywords) == 0 {
		return fmt.Errorf("flow %q: at least one intent keyword is required", f.Name)
	}
	if len(f.Steps) < 2 {
		return fmt.Errorf("flow %q: at least one field step and a terminal step are required", f.Name)
	}
	if f.Effect == "" {
		return fmt.Errorf("flow %q: effect is required", f.Name)
	}

	seen := make(map[string]struct{}, len(f.Steps))
	for i, s := range f.Steps {
		if s.Key == "" {
			return fmt.Errorf("flow %q step %d: key is required", f.Name, i)
		}
		if _, dup := seen[s.Key]; dup {
			return fmt.Errorf("flow %q step %d: duplicate key %q", f.Name, i, s.Key)
		}
		seen[s.Key] = struct{}{}
		if s.Prompt == "" {
			return fmt.Errorf("flow %q step %q: prompt is required", f.Name, s.Key)
		}
		if _, err := RenderPrompt(s.Prompt, nil); err != nil {
			return fmt.Errorf("flow %q step %q: prompt template: %w", f.Name, s.Key, err)
		}
		if s.Terminal && i != len(f.Steps)-1 {
			return fmt.Errorf("flow %q step %q: terminal step must be last", f.Name, s.Key)
		}
	}
	if !f.Steps[len(f.Steps)-1].Terminal {
		return fmt.Errorf("flow %q: last step must be terminal", f.Name)
	}
	return nil
}

// Get returns a flow by name.
func (r *Registry) Get(name string) (*Flow, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.byName[name]
	return f, ok
}

// MatchIntent scans an utterance for flow entry keywords, in registry
// priority order, using case-insensitive substring matching.
func (r *Registry) MatchIntent(utterance string) (*Flow, bool) {
	lowered := strings.ToLower(utterance)
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, f := range r.flows {
		for _, kw := range f.Keywords {
			if strings.Contains(lowered, kw) {
				return f, true
			}
		}
	}
	return nil, false
}

// All returns the flows in priority order.
func (r *Registry) All() []*Flow {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cp := make([]*Flow, len(r.flows))
	copy(cp, r.flows)
	return cp
}
