package services

import (
	"fmt"
	"math"
	"testing"
)

func refs(vectors ...[]float32) []ChunkRef {
	out := make([]ChunkRef, len(vectors))
	for i, v := range vectors {
		out[i] = ChunkRef{
			DocumentID: "doc",
			Filename:   "doc.txt",
			Index:      i,
			Text:       fmt.Sprintf("chunk %d", i),
			Vector:     v,
		}
	}
	return out
}

func TestRankChunksTopK(t *testing.T) {
	query := []float32{1, 0}
	chunks := refs(
		[]float32{1, 0},
		[]float32{0.9, 0.1},
		[]float32{0.8, 0.2},
		[]float32{0.7, 0.3},
	)
	ranked := RankChunks(query, chunks, 2, 0)
	if len(ranked) != 2 {
		t.Fatalf("expected 2 results, got %d", len(ranked))
	}
	if ranked[0].ChunkIndex != 0 {
		t.Fatalf("expected best chunk first, got index %d", ranked[0].ChunkIndex)
	}
	if ranked[0].Score < ranked[1].Score {
		t.Fatal("results not sorted best first")
	}
}

func TestRankChunksMinScoreFloor(t *testing.T) {
	query := []float32{1, 0}
	chunks := refs(
		[]float32{1, 0},  // score 1
		[]float32{0, 1},  // score 0
		[]float32{-1, 0}, // score -1
	)
	ranked := RankChunks(query, chunks, 5, 0.3)
	if len(ranked) != 1 {
		t.Fatalf("expected 1 result above floor, got %d", len(ranked))
	}
	if ranked[0].ChunkIndex != 0 {
		t.Fatalf("wrong chunk survived the floor: %d", ranked[0].ChunkIndex)
	}
}

func TestRankChunksMonotoneInThreshold(t *testing.T) {
	query := []float32{1, 0}
	chunks := refs(
		[]float32{1, 0},
		[]float32{1, 1},
		[]float32{1, 3},
		[]float32{0, 1},
	)
	prev := len(chunks) + 1
	for _, floor := range []float64{0, 0.25, 0.5, 0.75, 0.99} {
		n := len(RankChunks(query, chunks, 10, floor))
		if n > prev {
			t.Fatalf("result count grew from %d to %d when floor rose to %v", prev, n, floor)
		}
		prev = n
	}
}

func TestRankChunksStableTies(t *testing.T) {
	query := []float32{1, 0}
	// Identical vectors, so every score ties; upload order must be preserved.
	chunks := refs(
		[]float32{1, 0},
		[]float32{1, 0},
		[]float32{1, 0},
	)
	ranked := RankChunks(query, chunks, 5, 0)
	for i, r := range ranked {
		if r.ChunkIndex != i {
			t.Fatalf("tie order broken at position %d: got chunk %d", i, r.ChunkIndex)
		}
	}
}

func TestRankChunksZeroNormExcluded(t *testing.T) {
	query := []float32{1, 0}
	chunks := refs(
		[]float32{0, 0},
		[]float32{1, 0},
	)
	ranked := RankChunks(query, chunks, 5, 0.3)
	if len(ranked) != 1 || ranked[0].ChunkIndex != 1 {
		t.Fatalf("zero-norm vector should be filtered by the default floor, got %v", ranked)
	}
}

func TestRankChunksEmptyInput(t *testing.T) {
	if got := RankChunks([]float32{1, 0}, nil, 5, 0.3); got != nil {
		t.Fatalf("expected nil for no chunks, got %v", got)
	}
}

func TestCosineSimilarity(t *testing.T) {
	cases := []struct {
		a, b []float32
		want float64
	}{
		{[]float32{1, 0}, []float32{1, 0}, 1},
		{[]float32{1, 0}, []float32{0, 1}, 0},
		{[]float32{1, 0}, []float32{-1, 0}, -1},
		{[]float32{1, 0}, []float32{0, 0}, 0},
		{[]float32{1, 0}, []float32{1, 0, 0}, 0},
		{nil, nil, 0},
	}
	for i, c := range cases {
		if got := cosineSimilarity(c.a, c.b); math.Abs(got-c.want) > 1e-9 {
			t.Errorf("case %d: got %v, want %v", i, got, c.want)
		}
	}
}
