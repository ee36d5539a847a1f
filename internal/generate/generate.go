// Package generate runs the tool-calling conversation with the model: one
// round that may request tools, a dispatch step, and one follow-up round
// that must produce the final answer.
package generate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"golang.org/x/time/rate"

	"github.com/lectern-ai/lectern/internal/tools"
)

// ErrGeneration wraps model call failures.
var ErrGeneration = errors.New("generation failed")

// fallbackAnswer is returned when the model produces no text at all.
const fallbackAnswer = "I couldn't generate a response. Please try rephrasing your question."

// roundState tags where a query is in the two-round protocol. The follow-up
// round never offers tools, so a single query performs at most two model
// calls regardless of what the model requests.
type roundState int

const (
	// stateInitial: first model call, tools offered.
	stateInitial roundState = iota
	// stateDispatch: executing the tool requests from the initial round.
	stateDispatch
	// stateFollowUp: second model call with tool results, no tools offered.
	stateFollowUp
	// stateDone: the latest response text is the answer.
	stateDone
)

// Result is the outcome of one generated answer.
type Result struct {
	// Answer is the final response text.
	Answer string

	// Sources are the citations gathered from this query's tool
	// invocations, in execution order.
	Sources []tools.Source

	// ToolCalls names the tools invoked, in execution order.
	ToolCalls []string
}

// Generator orchestrates model calls and tool dispatch for one answer.
//
// Thread-safe: per-query state lives on the stack, so a single Generator
// serves concurrent queries.
type Generator struct {
	g         *genkit.Genkit
	modelName string
	registry  *tools.Registry
	limiter   *rate.Limiter
	logger    *slog.Logger
}

// Config holds the Generator dependencies.
type Config struct {
	// Genkit instance with the model and tools registered.
	Genkit *genkit.Genkit

	// ModelName selects the model, e.g. "googleai/gemini-2.5-flash".
	ModelName string

	// Registry dispatches the model's tool requests.
	Registry *tools.Registry

	// RateLimiter throttles model calls (nil = 10 rps, burst 30).
	RateLimiter *rate.Limiter

	// Logger for debugging (nil = slog.Default()).
	Logger *slog.Logger
}

func (c Config) validate() error {
	if c.Genkit == nil {
		return errors.New("genkit instance is required")
	}
	if c.ModelName == "" {
		return errors.New("model name is required")
	}
	if c.Registry == nil {
		return errors.New("tool registry is required")
	}
	return nil
}

// New creates a Generator.
func New(cfg Config) (*Generator, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid generator config: %w", err)
	}
	if cfg.RateLimiter == nil {
		cfg.RateLimiter = rate.NewLimiter(10, 30)
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Generator{
		g:         cfg.Genkit,
		modelName: cfg.ModelName,
		registry:  cfg.Registry,
		limiter:   cfg.RateLimiter,
		logger:    cfg.Logger,
	}, nil
}

// Answer runs the two-round protocol for one question. history is the
// rendered prior conversation ("" for a fresh session); it rides in the
// system prompt, not the message list.
func (gen *Generator) Answer(ctx context.Context, question, history string) (*Result, error) {
	system := systemPrompt(history)
	messages := []*ai.Message{ai.NewUserMessage(ai.NewTextPart(question))}

	var (
		resp      *ai.ModelResponse
		sources   []tools.Source
		toolCalls []string
		err       error
	)

	for state := stateInitial; state != stateDone; {
		switch state {
		case stateInitial:
			resp, err = gen.call(ctx, system, messages,
				ai.WithTools(gen.registry.Refs()...),
				ai.WithReturnToolRequests(true),
			)
			if err != nil {
				return nil, err
			}
			if len(resp.ToolRequests()) == 0 {
				state = stateDone
				break
			}
			state = stateDispatch

		case stateDispatch:
			toolMsg, invoked, invSources, dispatchErr := gen.dispatch(ctx, resp.ToolRequests())
			if dispatchErr != nil {
				return nil, dispatchErr
			}
			sources = append(sources, invSources...)
			toolCalls = append(toolCalls, invoked...)
			messages = append(messages, resp.Message, toolMsg)
			state = stateFollowUp

		case stateFollowUp:
			// No tools offered: the answer must come from this call.
			resp, err = gen.call(ctx, system, messages)
			if err != nil {
				return nil, err
			}
			state = stateDone
		}
	}

	answer := strings.TrimSpace(resp.Text())
	if answer == "" {
		gen.logger.Warn("model returned empty answer", "tool_calls", toolCalls)
		answer = fallbackAnswer
	}
	return &Result{Answer: answer, Sources: sources, ToolCalls: toolCalls}, nil
}

// call performs one rate-limited model call.
func (gen *Generator) call(ctx context.Context, system string, messages []*ai.Message, extra ...ai.GenerateOption) (*ai.ModelResponse, error) {
	if err := gen.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: waiting for rate limiter: %v", ErrGeneration, err)
	}

	opts := []ai.GenerateOption{
		ai.WithModelName(gen.modelName),
		ai.WithSystem(system),
		ai.WithMessages(messages...),
	}
	opts = append(opts, extra...)

	resp, err := genkit.Generate(ctx, gen.g, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGeneration, err)
	}
	return resp, nil
}

// dispatch executes the requested tools and builds the tool result message.
// A tool that fails to execute reports the failure back to the model as its
// result; an unknown tool name aborts the query.
func (gen *Generator) dispatch(ctx context.Context, requests []*ai.ToolRequest) (*ai.Message, []string, []tools.Source, error) {
	parts := make([]*ai.Part, 0, len(requests))
	invoked := make([]string, 0, len(requests))
	var sources []tools.Source

	for _, req := range requests {
		raw, err := json.Marshal(req.Input)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("%w: encoding input for tool %q: %v", ErrGeneration, req.Name, err)
		}

		var output string
		inv, err := gen.registry.Execute(ctx, req.Name, raw)
		switch {
		case errors.Is(err, tools.ErrUnknownTool):
			return nil, nil, nil, err
		case err != nil:
			gen.logger.Warn("tool execution failed", "tool", req.Name, "error", err)
			output = fmt.Sprintf("Tool execution failed: %v", err)
		default:
			output = inv.Text
			sources = append(sources, inv.Sources...)
		}

		invoked = append(invoked, req.Name)
		parts = append(parts, ai.NewToolResponsePart(&ai.ToolResponse{
			Name:   req.Name,
			Ref:    req.Ref,
			Output: output,
		}))
	}

	return ai.NewMessage(ai.RoleTool, nil, parts...), invoked, sources, nil
}
