package resilience

import (
	"context"

	"github.com/custodia-labs/vocal/internal/core/domain"
	"github.com/custodia-labs/vocal/internal/core/ports/driven"
)

// Ensure decorators implement the interfaces.
var (
	_ driven.EmbeddingService = (*Embedder)(nil)
	_ driven.LLMService       = (*LLM)(nil)
	_ driven.ChartRenderer    = (*Renderer)(nil)
)

// Embedder applies a policy to every embedding call.
type Embedder struct {
	driven.EmbeddingService
	policy Policy
}

// WrapEmbedder returns next bounded by p. A nil next stays nil.
func WrapEmbedder(next driven.EmbeddingService, p Policy) driven.EmbeddingService {
	if next == nil {
		return nil
	}
	return &Embedder{EmbeddingService: next, policy: p}
}

// Embed embeds one text.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return Do(ctx, e.policy, "embed", func(ctx context.Context) ([]float32, error) {
		return e.EmbeddingService.Embed(ctx, text)
	})
}

// EmbedBatch embeds texts in order.
func (e *Embedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return Do(ctx, e.policy, "embed batch", func(ctx context.Context) ([][]float32, error) {
		return e.EmbeddingService.EmbedBatch(ctx, texts)
	})
}

// LLM applies a policy to every generation call.
type LLM struct {
	driven.LLMService
	policy Policy
}

// WrapLLM returns next bounded by p. A nil next stays nil.
func WrapLLM(next driven.LLMService, p Policy) driven.LLMService {
	if next == nil {
		return nil
	}
	return &LLM{LLMService: next, policy: p}
}

// Generate produces a completion.
func (l *LLM) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	return Do(ctx, l.policy, "generate", func(ctx context.Context) (string, error) {
		return l.LLMService.Generate(ctx, prompt, opts)
	})
}

// Chat conducts a conversation.
func (l *LLM) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	return Do(ctx, l.policy, "chat", func(ctx context.Context) (string, error) {
		return l.LLMService.Chat(ctx, messages, opts)
	})
}

// RewriteQuery rewrites a semantic query.
func (l *LLM) RewriteQuery(ctx context.Context, query string) (string, error) {
	return Do(ctx, l.policy, "rewrite query", func(ctx context.Context) (string, error) {
		return l.LLMService.RewriteQuery(ctx, query)
	})
}

// Renderer applies a policy to chart rendering.
type Renderer struct {
	next   driven.ChartRenderer
	policy Policy
}

// WrapRenderer returns next bounded by p. A nil next stays nil.
func WrapRenderer(next driven.ChartRenderer, p Policy) driven.ChartRenderer {
	if next == nil {
		return nil
	}
	return &Renderer{next: next, policy: p}
}

// Render renders one chart. domain.ErrNoChartData is never retried.
func (r *Renderer) Render(ctx context.Context, req domain.ChartRequest) (domain.ChartResult, error) {
	return Do(ctx, r.policy, "render chart", func(ctx context.Context) (domain.ChartResult, error) {
		return r.next.Render(ctx, req)
	})
}
