package main

import (
	"context"
	"log"

	"smartrecruit/resume-analyzer/internal/config"
	"smartrecruit/resume-analyzer/internal/services"
)

// Seeds the skills vocabulary into the Qdrant index. Run once before
// the first analysis, and again whenever the vocabulary changes;
// upserts are deterministic per term so re-runs overwrite in place.
func main() {
	log.Println("🚀 Starting vocabulary ingestion...")

	cfg := config.Load()

	embedder := services.NewGeminiEmbedder(cfg.Gemini.APIKey)

	vocabulary, err := services.NewVocabularyIndex(
		cfg.Qdrant.URL,
		cfg.Qdrant.APIKey,
		cfg.Qdrant.Collection,
	)
	if err != nil {
		log.Fatalf("❌ Failed to initialize vocabulary index: %v", err)
	}

	if err := vocabulary.InitCollection(); err != nil {
		log.Fatalf("❌ Failed to initialize collection: %v", err)
	}

	ctx := context.Background()

	terms := append([]string{}, services.ReferenceSkills...)
	terms = append(terms, services.SoftSkills...)

	successCount := 0
	failCount := 0

	for _, term := range terms {
		embedding, err := embedder.EmbedText(ctx, term)
		if err != nil {
			log.Printf("❌ Failed to embed term %q: %v", term, err)
			failCount++
			continue
		}

		if err := vocabulary.UpsertTerm(ctx, term, embedding); err != nil {
			log.Printf("❌ Failed to store term %q: %v", term, err)
			failCount++
			continue
		}

		successCount++
	}

	log.Printf("✅ Ingestion complete: %d terms stored, %d failed\n", successCount, failCount)
}
