// Package pipeline wires retrieval and generation into the single
// synchronous entry point the API and CLI consume: a question goes in, an
// answer string comes out. The flow is retrieve, then generate; generation
// always runs, because empty retrieval is an expected state the generator's
// empty-context guard handles.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"sage/config"
	"sage/internal/generation"
	"sage/internal/port"
)

const processingErrorMessage = "I encountered an issue processing your question. Please try rephrasing it."

// Retriever is the retrieval stage contract.
type Retriever interface {
	Retrieve(ctx context.Context, query string) []string
}

// Pipeline answers questions against the indexed knowledge base.
// It holds no per-request state and is safe for concurrent use.
type Pipeline struct {
	retriever Retriever
	completer port.Completer
	models    config.ModelsConfig
	timeout   time.Duration
}

func New(retriever Retriever, completer port.Completer, models config.ModelsConfig, timeout time.Duration) *Pipeline {
	return &Pipeline{
		retriever: retriever,
		completer: completer,
		models:    models,
		timeout:   timeout,
	}
}

// ResolveModel maps a caller-supplied model reference to a fully-qualified
// allow-listed name. The reference may be a registry key ("llama") or an
// already fully-qualified name; anything unknown resolves to the configured
// default model rather than failing.
func (p *Pipeline) ResolveModel(ref string) string {
	if entry, ok := p.models.Registry[ref]; ok {
		return entry.Name
	}
	for _, entry := range p.models.Registry {
		if entry.Name == ref {
			return ref
		}
	}
	return p.models.Registry[p.models.Default].Name
}

// Answer runs the question through retrieval and generation and returns the
// final answer. It always returns a string, never an error: every failure
// inside the pipeline degrades to a fixed user-facing message.
func (p *Pipeline) Answer(ctx context.Context, question, modelRef string) string {
	model := p.ResolveModel(modelRef)

	gen, err := generation.NewGenerator(p.completer, model, p.timeout, p.models.Allowed)
	if err != nil {
		// Config validation keeps registry names inside the allow-list,
		// so this only fires on a misconfigured deployment.
		slog.Error("generator construction failed", "model", model, "error", err)
		return processingErrorMessage
	}

	chunks := p.retriever.Retrieve(ctx, question)
	return gen.Generate(ctx, question, chunks)
}
