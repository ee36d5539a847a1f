// Package tools provides the retrieval tools the model can call during
// generation, plus the registry that dispatches tool requests by name.
package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
)

// ErrUnknownTool indicates a tool request naming a tool that was never
// registered.
var ErrUnknownTool = errors.New("unknown tool")

// Source is one citation produced by a tool invocation.
type Source struct {
	// Label is the display text, e.g. "Introduction to MCP - Lesson 2".
	Label string `json:"label"`

	// Link is the lesson or course URL when one is known.
	Link string `json:"link,omitempty"`
}

// Invocation is the outcome of a single tool execution. Text goes back to
// the model as the tool result; Sources back the final answer's citations.
// Each execution returns its own Invocation, so concurrent queries never
// observe each other's sources.
type Invocation struct {
	Text    string   `json:"text"`
	Sources []Source `json:"sources,omitempty"`
}

// Tool is a retrieval capability exposed to the model. Execute receives the
// raw JSON arguments of a tool request; Define registers the tool and its
// input schema with Genkit so the model sees it.
type Tool interface {
	Name() string
	Description() string
	Execute(ctx context.Context, input json.RawMessage) (*Invocation, error)
	Define(g *genkit.Genkit) ai.Tool
}

// Registry holds the registered tools and dispatches executions by name.
//
// Thread-safe for concurrent use.
type Registry struct {
	g *genkit.Genkit

	mu    sync.RWMutex
	tools map[string]Tool
	order []string
}

// NewRegistry creates a Registry bound to a Genkit instance.
func NewRegistry(g *genkit.Genkit) *Registry {
	return &Registry{
		g:     g,
		tools: make(map[string]Tool),
	}
}

// Register defines the tool with Genkit and makes it dispatchable.
// Registering two tools under one name is a wiring bug and errors.
func (r *Registry) Register(t Tool) error {
	if t == nil {
		return errors.New("tool is nil")
	}
	name := t.Name()
	if name == "" {
		return errors.New("tool has no name")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tools[name]; exists {
		return fmt.Errorf("tool %q already registered", name)
	}
	t.Define(r.g)
	r.tools[name] = t
	r.order = append(r.order, name)
	return nil
}

// Execute dispatches one tool request. The input is the tool request's
// arguments re-encoded as JSON.
func (r *Registry) Execute(ctx context.Context, name string, input json.RawMessage) (*Invocation, error) {
	r.mu.RLock()
	t, ok := r.tools[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTool, name)
	}
	return t.Execute(ctx, input)
}

// Names returns the registered tool names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

// Refs returns Genkit references for all registered tools, for attaching
// to a generate call.
func (r *Registry) Refs() []ai.ToolRef {
	names := r.Names()
	refs := make([]ai.ToolRef, 0, len(names))
	for _, name := range names {
		if tool := genkit.LookupTool(r.g, name); tool != nil {
			refs = append(refs, tool)
		}
	}
	return refs
}

// decodeInput unmarshals raw tool arguments into the tool's input struct.
// An empty payload decodes to the zero value.
func decodeInput(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decoding tool input: %w", err)
	}
	return nil
}
