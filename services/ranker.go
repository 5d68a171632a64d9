package services

import (
	"math"
	"sort"
)

// ChunkRef is an embedded chunk plus the document metadata needed to rank
// and render it.
type ChunkRef struct {
	DocumentID string
	Filename   string
	Index      int
	Text       string
	Vector     []float32
}

// RankedChunk is a chunk that cleared the similarity floor.
type RankedChunk struct {
	DocumentID string  `json:"document_id"`
	Filename   string  `json:"filename"`
	ChunkIndex int     `json:"chunk_index"`
	Text       string  `json:"text"`
	Score      float64 `json:"score"`
}

// RankChunks scores every chunk against the query vector by cosine
// similarity and returns at most topK chunks with score >= minScore, best
// first. The sort is stable so ties keep original chunk order. A zero-norm
// vector on either side scores 0, which the default floor filters out.
func RankChunks(query []float32, chunks []ChunkRef, topK int, minScore float64) []RankedChunk {
	if topK <= 0 {
		topK = 5
	}
	if len(chunks) == 0 {
		return nil
	}

	ranked := make([]RankedChunk, 0, len(chunks))
	for _, c := range chunks {
		score := cosineSimilarity(query, c.Vector)
		if score < minScore {
			continue
		}
		ranked = append(ranked, RankedChunk{
			DocumentID: c.DocumentID,
			Filename:   c.Filename,
			ChunkIndex: c.Index,
			Text:       c.Text,
			Score:      score,
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	if len(ranked) > topK {
		ranked = ranked[:topK]
	}
	return ranked
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA <= 0 || normB <= 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
