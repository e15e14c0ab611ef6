// ABOUTME: Provider interface and explicit provider registry
// ABOUTME: Registry is constructed at startup and injected; no package-level state

package llm

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Provider is a streaming chat-completion backend.
type Provider interface {
	// Name returns the provider identifier ("openai", "groq", ...).
	Name() string

	// Stream starts a streaming completion. The context cancels the
	// underlying HTTP request; cancellation surfaces as a stream error.
	Stream(ctx context.Context, req Request) *Stream

	// Complete performs a one-shot, non-streaming completion and returns
	// the assistant message. Used by health probes and batch-style calls.
	Complete(ctx context.Context, req Request) (Message, error)
}

// Config carries provider construction parameters.
type Config struct {
	APIKey  string
	BaseURL string
}

// Factory builds a Provider from a Config.
type Factory func(cfg Config) Provider

// Registry maps provider names to factories. Safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates an empty provider registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds or replaces a factory under the given name.
func (r *Registry) Register(name string, factory Factory) {
	r.mu.Lock()
	r.factories[strings.ToLower(name)] = factory
	r.mu.Unlock()
}

// New constructs the named provider. Unknown names are an error listing
// the registered providers.
func (r *Registry) New(name string, cfg Config) (Provider, error) {
	r.mu.RLock()
	factory, ok := r.factories[strings.ToLower(name)]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown provider %q (registered: %s)", name, strings.Join(r.Names(), ", "))
	}
	return factory(cfg), nil
}

// Names returns the registered provider names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
