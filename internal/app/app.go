// Package app assembles the pipeline from configuration: provider setup,
// vector index, tools, generator, sessions and the rag facade.
package app

import (
	"log/slog"

	"github.com/firebase/genkit/go/genkit"

	"github.com/lectern-ai/lectern/internal/config"
	"github.com/lectern-ai/lectern/internal/rag"
	"github.com/lectern-ai/lectern/internal/session"
	"github.com/lectern-ai/lectern/internal/tools"
	"github.com/lectern-ai/lectern/internal/vectorstore"
)

// App holds the wired components. Fields are exported so commands can reach
// the layer they need directly.
type App struct {
	Config   *config.Config
	Logger   *slog.Logger
	Genkit   *genkit.Genkit
	Store    *vectorstore.Store
	Registry *tools.Registry
	Sessions *session.Store
	System   *rag.System
}
