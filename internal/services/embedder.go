package services

import (
	"context"
	"fmt"
	"sync"

	"google.golang.org/genai"
)

// Embedder computes a semantic vector for a piece of text. Calls may be
// slow; they are blocking from the worker's perspective and hold no
// lock while waiting on the backend.
type Embedder interface {
	EmbedText(ctx context.Context, text string) ([]float32, error)
}

type geminiEmbedder struct {
	apiKey     string
	embedModel string

	once    sync.Once
	client  *genai.Client
	initErr error
}

func NewGeminiEmbedder(apiKey string) Embedder {
	return &geminiEmbedder{
		apiKey:     apiKey,
		embedModel: "text-embedding-004",
	}
}

// initClient creates the shared client on first use. The handle lives
// for the process lifetime and is safe for concurrent readers.
func (g *geminiEmbedder) initClient(ctx context.Context) (*genai.Client, error) {
	g.once.Do(func() {
		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  g.apiKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			g.initErr = fmt.Errorf("failed to create gemini client: %w", err)
			return
		}
		g.client = client
	})
	return g.client, g.initErr
}

func (g *geminiEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	client, err := g.initClient(ctx)
	if err != nil {
		return nil, Transient(err)
	}

	// Truncate text if too long (max ~10000 tokens for embedding)
	if len(text) > 40000 {
		text = text[:40000]
	}

	result, err := client.Models.EmbedContent(ctx, g.embedModel, genai.Text(text), nil)
	if err != nil {
		return nil, Transient(fmt.Errorf("failed to generate embedding: %w", err))
	}

	if result == nil || len(result.Embeddings) == 0 {
		return nil, Transient(fmt.Errorf("empty embedding result"))
	}

	return result.Embeddings[0].Values, nil
}
