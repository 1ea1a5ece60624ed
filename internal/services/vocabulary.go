package services

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strconv"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
)

// ReferenceSkills is the lexical vocabulary matched against resume
// text. The same terms are embedded into the vector index so that
// near-synonyms resolve to a canonical skill name.
var ReferenceSkills = []string{
	"python", "java", "javascript", "typescript", "go", "html", "css",
	"react", "angular", "vue", "django", "flask", "node.js", "spring",
	"sql", "nosql", "mongodb", "postgresql", "mysql", "redis",
	"docker", "kubernetes", "aws", "azure", "gcp", "terraform",
	"git", "ci/cd", "linux", "rest", "grpc", "graphql",
	"machine learning", "deep learning", "data analysis", "nlp",
}

// SoftSkills complements the technical vocabulary; matches land in the
// same skills map with the same confidence rules.
var SoftSkills = []string{
	"communication", "leadership", "travail d'équipe", "teamwork",
	"résolution de problèmes", "problem solving", "créativité",
	"creativity", "adaptabilité", "adaptability", "gestion du temps",
	"time management",
}

// TermMatch is a vocabulary term returned by a nearest-neighbour
// query, with its cosine similarity to the query vector.
type TermMatch struct {
	Term  string
	Score float32
}

// VocabularyIndex is the vector index of reference skill terms used
// for semantic matching.
type VocabularyIndex interface {
	InitCollection() error
	UpsertTerm(ctx context.Context, term string, embedding []float32) error
	NearestTerms(ctx context.Context, queryEmbedding []float32, limit int) ([]TermMatch, error)
}

type vocabularyIndex struct {
	client         *qdrant.Client
	collectionName string
	vectorSize     uint64
}

func NewVocabularyIndex(urlStr, apiKey, collectionName string) (VocabularyIndex, error) {
	// Parse URL to extract host, port, and TLS usage
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid Qdrant URL: %w", err)
	}

	host := parsed.Hostname()
	useTLS := parsed.Scheme == "https"

	// For gRPC client, use port 6334 by default (gRPC port)
	port := 6334
	if p := parsed.Port(); p != "" {
		if v, err := strconv.Atoi(p); err == nil {
			port = v
		}
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   host,
		Port:   port,
		APIKey: apiKey,
		UseTLS: useTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}

	return &vocabularyIndex{
		client:         client,
		collectionName: collectionName,
		vectorSize:     768, // text-embedding-004 size
	}, nil
}

// InitCollection implements VocabularyIndex.
func (v *vocabularyIndex) InitCollection() error {
	ctx := context.Background()

	exists, err := v.client.CollectionExists(ctx, v.collectionName)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}

	if exists {
		log.Println("✅ Vocabulary collection already exists")
		return nil
	}

	err = v.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: v.collectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     v.vectorSize,
			Distance: qdrant.Distance_Cosine,
		}),
	})

	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	log.Printf("✅ Qdrant collection '%s' created successfully\n", v.collectionName)
	return nil
}

// UpsertTerm implements VocabularyIndex. Point IDs derive from the
// term itself so re-ingestion overwrites instead of duplicating.
func (v *vocabularyIndex) UpsertTerm(ctx context.Context, term string, embedding []float32) error {
	pointID := uuid.NewSHA1(uuid.NameSpaceOID, []byte(term))

	point := &qdrant.PointStruct{
		Id:      qdrant.NewID(pointID.String()),
		Vectors: qdrant.NewVectors(embedding...),
		Payload: qdrant.NewValueMap(map[string]interface{}{
			"term": term,
		}),
	}

	_, err := v.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: v.collectionName,
		Points:         []*qdrant.PointStruct{point},
	})
	if err != nil {
		return fmt.Errorf("failed to upsert term: %w", err)
	}

	return nil
}

// NearestTerms implements VocabularyIndex.
func (v *vocabularyIndex) NearestTerms(ctx context.Context, queryEmbedding []float32, limit int) ([]TermMatch, error) {
	searchResult, err := v.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: v.collectionName,
		Query:          qdrant.NewQuery(queryEmbedding...),
		Limit:          qdrant.PtrOf(uint64(limit)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, Transient(fmt.Errorf("failed to search vocabulary: %w", err))
	}

	var matches []TermMatch
	for _, point := range searchResult {
		match := TermMatch{Score: point.Score}

		if term, ok := point.Payload["term"]; ok {
			if val, ok := term.GetKind().(*qdrant.Value_StringValue); ok {
				match.Term = val.StringValue
			}
		}
		if match.Term == "" {
			continue
		}

		matches = append(matches, match)
	}

	return matches, nil
}
