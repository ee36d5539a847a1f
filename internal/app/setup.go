package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"github.com/firebase/genkit/go/plugins/googlegenai"
	"github.com/firebase/genkit/go/plugins/ollama"

	"github.com/lectern-ai/lectern/internal/config"
	"github.com/lectern-ai/lectern/internal/course"
	"github.com/lectern-ai/lectern/internal/generate"
	"github.com/lectern-ai/lectern/internal/rag"
	"github.com/lectern-ai/lectern/internal/session"
	"github.com/lectern-ai/lectern/internal/tools"
	"github.com/lectern-ai/lectern/internal/vectorstore"
)

// Setup wires the application from configuration. The returned App owns no
// external resources; the vector index lives in memory and is rebuilt by
// ingesting the docs directory.
func Setup(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	g, err := provideGenkit(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	embedder := provideEmbedder(g, cfg)

	store, err := vectorstore.New(vectorstore.Config{
		Embedder:   embedder,
		MaxResults: cfg.MaxResults,
		Logger:     logger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating vector store: %w", err)
	}

	registry := tools.NewRegistry(g)
	search, err := tools.NewSearchTool(store, logger)
	if err != nil {
		return nil, fmt.Errorf("creating search tool: %w", err)
	}
	outline, err := tools.NewOutlineTool(store, logger)
	if err != nil {
		return nil, fmt.Errorf("creating outline tool: %w", err)
	}
	for _, tool := range []tools.Tool{search, outline} {
		if err := registry.Register(tool); err != nil {
			return nil, fmt.Errorf("registering tool %s: %w", tool.Name(), err)
		}
	}

	generator, err := generate.New(generate.Config{
		Genkit:    g,
		ModelName: modelRef(cfg),
		Registry:  registry,
		Logger:    logger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating generator: %w", err)
	}

	sessions := session.NewStore(cfg.MaxHistory, logger)

	system, err := rag.New(rag.Config{
		Store:     store,
		Chunker:   course.NewChunker(cfg.ChunkSize, cfg.ChunkOverlap),
		Generator: generator,
		Sessions:  sessions,
		Logger:    logger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating rag system: %w", err)
	}

	return &App{
		Config:   cfg,
		Logger:   logger,
		Genkit:   g,
		Store:    store,
		Registry: registry,
		Sessions: sessions,
		System:   system,
	}, nil
}

// provideGenkit initializes Genkit with the configured AI provider.
func provideGenkit(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*genkit.Genkit, error) {
	switch cfg.Provider {
	case config.ProviderOllama:
		ollamaPlugin := &ollama.Ollama{ServerAddress: cfg.OllamaHost}
		g := genkit.Init(ctx, genkit.WithPlugins(ollamaPlugin))
		if g == nil {
			return nil, errors.New("initializing genkit with ollama provider")
		}
		// Ollama requires explicit model registration (no auto-discovery).
		ollamaPlugin.DefineModel(g, ollama.ModelDefinition{
			Name: cfg.ModelName,
			Type: "chat",
		}, nil)
		ollamaPlugin.DefineEmbedder(g, cfg.OllamaHost, cfg.EmbedderModel, nil)
		logger.Info("initialized genkit", "provider", cfg.Provider,
			"model", cfg.ModelName, "host", cfg.OllamaHost)
		return g, nil

	default: // gemini
		g := genkit.Init(ctx, genkit.WithPlugins(&googlegenai.GoogleAI{}))
		if g == nil {
			return nil, errors.New("initializing genkit with gemini provider")
		}
		logger.Info("initialized genkit", "provider", cfg.Provider, "model", cfg.ModelName)
		return g, nil
	}
}

// provideEmbedder looks up the embedder registered by the provider plugin.
// The ollama embedder is keyed by server address, gemini by model name.
func provideEmbedder(g *genkit.Genkit, cfg *config.Config) ai.Embedder {
	switch cfg.Provider {
	case config.ProviderOllama:
		return ollama.Embedder(g, cfg.OllamaHost)
	default:
		return googlegenai.GoogleAIEmbedder(g, cfg.EmbedderModel)
	}
}

// modelRef returns the fully qualified Genkit model name. A model name that
// already carries a provider prefix is used as-is.
func modelRef(cfg *config.Config) string {
	if strings.Contains(cfg.ModelName, "/") {
		return cfg.ModelName
	}
	switch cfg.Provider {
	case config.ProviderOllama:
		return "ollama/" + cfg.ModelName
	default:
		return "googleai/" + cfg.ModelName
	}
}
