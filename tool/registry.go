package tool

import (
	"fmt"
	"sort"
	"sync"
)

// Registry holds the process-wide set of tools. It is populated during
// startup, frozen before the first conversation is served, and read-only
// thereafter — frozen lookups need no locking and the registry is safely
// shared by all sessions.
type Registry struct {
	mu     sync.Mutex
	frozen bool
	tools  map[string]Tool
}

// NewRegistry creates an empty registry.
func NewRegistry(tools ...Tool) *Registry {
	r := &Registry{tools: make(map[string]Tool, len(tools))}
	for _, t := range tools {
		r.tools[t.Name()] = t
	}
	return r
}

// Register adds a tool. Registering after Freeze or under a duplicate name is
// a programming error and returns one.
func (r *Registry) Register(t Tool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen {
		return fmt.Errorf("registry is frozen; register tools during startup")
	}
	if _, exists := r.tools[t.Name()]; exists {
		return fmt.Errorf("tool %q already registered", t.Name())
	}
	r.tools[t.Name()] = t
	return nil
}

// Freeze marks the registry immutable. Idempotent.
func (r *Registry) Freeze() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frozen = true
}

// Lookup returns the tool registered under name.
func (r *Registry) Lookup(name string) (Tool, bool) {
	t, ok := r.tools[name]
	return t, ok
}

// Names returns the sorted tool names, mainly for logging and prompts.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered tools.
func (r *Registry) Len() int { return len(r.tools) }
