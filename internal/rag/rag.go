// Package rag wires the pieces of the retrieval-augmented pipeline: course
// ingestion into the vector index, and question answering with per-session
// conversation memory.
package rag

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/lectern-ai/lectern/internal/course"
	"github.com/lectern-ai/lectern/internal/generate"
	"github.com/lectern-ai/lectern/internal/session"
	"github.com/lectern-ai/lectern/internal/tools"
	"github.com/lectern-ai/lectern/internal/vectorstore"
)

// Answer is the result of one answered question.
type Answer struct {
	// SessionID identifies the conversation, newly allocated when the
	// query arrived without one.
	SessionID string `json:"session_id"`

	// Text is the assistant's answer.
	Text string `json:"answer"`

	// Sources cite the course material consulted for this answer.
	Sources []tools.Source `json:"sources"`
}

// System is the top-level pipeline facade.
type System struct {
	store     *vectorstore.Store
	chunker   course.Chunker
	generator *generate.Generator
	sessions  *session.Store
	logger    *slog.Logger
}

// Config holds the System dependencies.
type Config struct {
	Store     *vectorstore.Store
	Chunker   course.Chunker
	Generator *generate.Generator
	Sessions  *session.Store
	Logger    *slog.Logger
}

func (c Config) validate() error {
	if c.Store == nil {
		return errors.New("vector store is required")
	}
	if c.Generator == nil {
		return errors.New("generator is required")
	}
	if c.Sessions == nil {
		return errors.New("session store is required")
	}
	return nil
}

// New creates the pipeline from already-constructed parts.
func New(cfg Config) (*System, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid rag config: %w", err)
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &System{
		store:     cfg.Store,
		chunker:   cfg.Chunker,
		generator: cfg.Generator,
		sessions:  cfg.Sessions,
		logger:    cfg.Logger,
	}, nil
}

// Query answers one question. An empty sessionID starts a fresh
// conversation; the exchange is recorded only after a successful answer.
func (s *System) Query(ctx context.Context, question, sessionID string) (*Answer, error) {
	if sessionID == "" {
		sessionID = s.sessions.Create()
	}

	history := s.sessions.FormatHistory(sessionID)
	res, err := s.generator.Answer(ctx, question, history)
	if err != nil {
		return nil, fmt.Errorf("answering query: %w", err)
	}

	s.sessions.Append(sessionID, question, res.Answer)
	s.logger.Info("answered query",
		"session_id", sessionID,
		"tool_calls", res.ToolCalls,
		"sources", len(res.Sources))

	return &Answer{
		SessionID: sessionID,
		Text:      res.Answer,
		Sources:   res.Sources,
	}, nil
}

// DeleteSession drops a conversation and its history.
func (s *System) DeleteSession(id string) error {
	return s.sessions.Delete(id)
}

// Stats summarizes the indexed corpus.
func (s *System) Stats() vectorstore.Stats {
	return s.store.Stats()
}
