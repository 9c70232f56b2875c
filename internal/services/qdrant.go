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

// embeddingSize matches the text-embedding-004 output vector.
const embeddingSize = 768

// RubricChunk is one scoring-guideline snippet retrieved for prompt grounding.
type RubricChunk struct {
	ID        string
	Score     float32
	Text      string
	Dimension string
}

type QdrantService interface {
	InitCollection(ctx context.Context) error
	UpsertRubricChunk(ctx context.Context, rubricID, dimension, text string, embedding []float32) error
	SearchSimilar(ctx context.Context, queryEmbedding []float32, dimension string, limit int) ([]RubricChunk, error)
	DeleteRubric(ctx context.Context, rubricID string) error
}

type qdrantService struct {
	client         *qdrant.Client
	collectionName string
}

func NewQdrantService(urlStr, apiKey, collectionName string) (QdrantService, error) {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid Qdrant URL: %w", err)
	}

	// The client speaks gRPC; 6334 is the gRPC port when the URL names none.
	port := 6334
	if p := parsed.Port(); p != "" {
		if v, err := strconv.Atoi(p); err == nil {
			port = v
		}
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   parsed.Hostname(),
		Port:   port,
		APIKey: apiKey,
		UseTLS: parsed.Scheme == "https",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}

	return &qdrantService{client: client, collectionName: collectionName}, nil
}

// InitCollection implements QdrantService.
func (q *qdrantService) InitCollection(ctx context.Context) error {
	exists, err := q.client.CollectionExists(ctx, q.collectionName)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}
	if exists {
		log.Println("✅ Rubric collection already exists")
		return nil
	}

	if err := q.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: q.collectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     embeddingSize,
			Distance: qdrant.Distance_Cosine,
		}),
	}); err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	log.Printf("✅ Qdrant collection '%s' created successfully\n", q.collectionName)
	return nil
}

// UpsertRubricChunk implements QdrantService.
func (q *qdrantService) UpsertRubricChunk(ctx context.Context, rubricID, dimension, text string, embedding []float32) error {
	_, err := q.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: q.collectionName,
		Points: []*qdrant.PointStruct{{
			Id:      qdrant.NewIDNum(uint64(uuid.New().ID())),
			Vectors: qdrant.NewVectors(embedding...),
			Payload: qdrant.NewValueMap(map[string]interface{}{
				"rubric_id": rubricID,
				"dimension": dimension,
				"text":      text,
			}),
		}},
	})
	if err != nil {
		return fmt.Errorf("failed to upsert rubric chunk: %w", err)
	}

	return nil
}

// SearchSimilar implements QdrantService.
func (q *qdrantService) SearchSimilar(ctx context.Context, queryEmbedding []float32, dimension string, limit int) ([]RubricChunk, error) {
	points, err := q.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: q.collectionName,
		Query:          qdrant.NewQuery(queryEmbedding...),
		Filter:         dimensionFilter(dimension),
		Limit:          qdrant.PtrOf(uint64(limit)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search rubric chunks: %w", err)
	}

	chunks := make([]RubricChunk, 0, len(points))
	for _, point := range points {
		chunks = append(chunks, RubricChunk{
			ID:        point.Payload["rubric_id"].GetStringValue(),
			Score:     point.Score,
			Text:      point.Payload["text"].GetStringValue(),
			Dimension: point.Payload["dimension"].GetStringValue(),
		})
	}

	return chunks, nil
}

// DeleteRubric implements QdrantService. It removes every chunk that was
// ingested under the given rubric id.
func (q *qdrantService) DeleteRubric(ctx context.Context, rubricID string) error {
	_, err := q.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: q.collectionName,
		Points: &qdrant.PointsSelector{
			PointsSelectorOneOf: &qdrant.PointsSelector_Filter{
				Filter: &qdrant.Filter{
					Must: []*qdrant.Condition{qdrant.NewMatch("rubric_id", rubricID)},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to delete rubric: %w", err)
	}

	return nil
}

func dimensionFilter(dimension string) *qdrant.Filter {
	if dimension == "" {
		return nil
	}
	return &qdrant.Filter{
		Must: []*qdrant.Condition{qdrant.NewMatch("dimension", dimension)},
	}
}
