package services

import (
	"context"
	"fmt"
	"time"

	"docchat-backend/internal/ai"
	"docchat-backend/internal/logger"
	"docchat-backend/internal/telemetry"
	"docchat-backend/models"
	"docchat-backend/utils"

	"github.com/google/uuid"
)

// DocumentService runs the synchronous ingest pipeline:
// extract -> chunk -> embed -> store. A failure at any step leaves no
// partial document or chunk state behind.
type DocumentService struct {
	sessions        *SessionManager
	embedder        ai.Embedder
	chunkSize       int
	chunkOverlap    int
	providerTimeout int
	metrics         *telemetry.Metrics
}

func NewDocumentService(sessions *SessionManager, embedder ai.Embedder, chunkSize, chunkOverlap, providerTimeoutSeconds int, metrics *telemetry.Metrics) *DocumentService {
	if chunkSize <= 0 {
		chunkSize = 500
	}
	if chunkOverlap < 0 || chunkOverlap >= chunkSize {
		chunkOverlap = chunkSize / 10
	}
	return &DocumentService{
		sessions:        sessions,
		embedder:        embedder,
		chunkSize:       chunkSize,
		chunkOverlap:    chunkOverlap,
		providerTimeout: providerTimeoutSeconds,
		metrics:         metrics,
	}
}

// Ingest extracts text from the uploaded bytes, chunks and embeds it, and
// stores document plus chunks as one unit.
func (s *DocumentService) Ingest(ctx context.Context, userID, filename string, data []byte) (*models.Document, []models.Chunk, error) {
	start := time.Now()

	text, err := ExtractText(data, filename)
	if err != nil {
		s.recordUpload(start, "extraction_failed")
		return nil, nil, err
	}

	chunkTexts := ChunkText(text, s.chunkSize, s.chunkOverlap)
	if len(chunkTexts) == 0 {
		s.recordUpload(start, "extraction_failed")
		return nil, nil, fmt.Errorf("%w: no chunks produced from %s", ErrExtractionFailed, filename)
	}

	pctx, cancel := utils.WithProviderTimeout(ctx, s.providerTimeout)
	defer cancel()

	vectors, err := s.embedder.EmbedTexts(pctx, chunkTexts, ai.EmbedDocument)
	if err != nil {
		logger.Error("chunk embedding failed, rejecting upload",
			"user_id", userID, "operation", "ingest", "filename", filename, "error", err)
		s.recordUpload(start, "embedding_failed")
		return nil, nil, fmt.Errorf("embedding failed: %w", err)
	}
	if len(vectors) != len(chunkTexts) {
		s.recordUpload(start, "embedding_failed")
		return nil, nil, fmt.Errorf("embedding count mismatch: got %d, want %d", len(vectors), len(chunkTexts))
	}

	doc := models.Document{
		ID:            uuid.NewString(),
		UserID:        userID,
		Filename:      filename,
		Text:          text,
		UploadedAt:    time.Now().UTC(),
		ContentLength: len(text),
	}

	chunks := make([]models.Chunk, len(chunkTexts))
	for i, chunkText := range chunkTexts {
		chunks[i] = models.Chunk{
			DocumentID: doc.ID,
			Index:      i,
			Text:       chunkText,
			Embedding:  vectors[i],
		}
	}

	s.sessions.StoreDocument(userID, doc, chunks)
	s.recordUpload(start, "success")

	logger.Info("document ingested",
		"user_id", userID, "document_id", doc.ID, "filename", filename,
		"content_length", doc.ContentLength, "chunks", len(chunks))
	return &doc, chunks, nil
}

func (s *DocumentService) recordUpload(start time.Time, status string) {
	if s.metrics != nil {
		s.metrics.RecordUpload(time.Since(start).Seconds(), status)
	}
}
