package ai

import (
	"context"
	"fmt"

	genai "github.com/google/generative-ai-go/genai"
)

// The API accepts up to 100 contents per batch request.
const embeddingBatchSize = 100

// EmbedTexts returns one vector per input, batching requests as needed.
// The purpose selects the retrieval task type so document and query vectors
// land in the same space the provider optimizes for.
func (gc *GeminiClient) EmbedTexts(ctx context.Context, texts []string, purpose EmbeddingPurpose) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	em := gc.client.EmbeddingModel(gc.embeddingModel)
	switch purpose {
	case EmbedQuery:
		em.TaskType = genai.TaskTypeRetrievalQuery
	default:
		em.TaskType = genai.TaskTypeRetrievalDocument
	}

	vectors := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += embeddingBatchSize {
		end := start + embeddingBatchSize
		if end > len(texts) {
			end = len(texts)
		}

		batch := em.NewBatch()
		for _, text := range texts[start:end] {
			batch.AddContent(genai.Text(text))
		}

		if err := gc.rateLimiter.Wait(ctx); err != nil {
			return nil, err
		}

		result, err := gc.breaker.Execute(func() (interface{}, error) {
			return em.BatchEmbedContents(ctx, batch)
		})
		if err != nil {
			return nil, fmt.Errorf("embedding request failed: %w", err)
		}

		resp := result.(*genai.BatchEmbedContentsResponse)
		if len(resp.Embeddings) != end-start {
			return nil, fmt.Errorf("embedding count mismatch: got %d, want %d", len(resp.Embeddings), end-start)
		}
		for _, emb := range resp.Embeddings {
			if emb == nil || len(emb.Values) == 0 {
				return nil, fmt.Errorf("empty embedding in response")
			}
			vectors = append(vectors, emb.Values)
		}
	}
	return vectors, nil
}
