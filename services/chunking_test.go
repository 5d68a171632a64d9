package services

import (
	"fmt"
	"strings"
	"testing"
)

func TestChunkShortTextSingleChunk(t *testing.T) {
	text := "hello world"
	chunks := ChunkText(text, 500, 50)
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0] != text {
		t.Fatalf("expected %q, got %q", text, chunks[0])
	}
}

func TestChunkEmptyTextNoChunks(t *testing.T) {
	if chunks := ChunkText("   \n  ", 500, 50); chunks != nil {
		t.Fatalf("expected no chunks, got %v", chunks)
	}
}

func TestChunkNoEmptyChunks(t *testing.T) {
	text := strings.Repeat("Some sentence here. ", 200)
	for _, chunk := range ChunkText(text, 300, 40) {
		if strings.TrimSpace(chunk) == "" {
			t.Fatal("found empty chunk in output")
		}
	}
}

func TestChunkDeterministic(t *testing.T) {
	text := strings.Repeat("The quick brown fox jumps over the lazy dog. ", 100)
	a := ChunkText(text, 400, 60)
	b := ChunkText(text, 400, 60)
	if len(a) != len(b) {
		t.Fatalf("chunk counts differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("chunk %d differs between runs", i)
		}
	}
}

func TestChunkCoversTextWithoutGaps(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 120; i++ {
		fmt.Fprintf(&sb, "Sentence number %d ends here. ", i)
	}
	text := strings.TrimSpace(sb.String())

	chunks := ChunkText(text, 350, 50)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}

	// Every chunk must be findable in the original, and consecutive chunks
	// must overlap or at worst be separated by stripped whitespace.
	prevStart, prevEnd := -1, 0
	for i, chunk := range chunks {
		searchFrom := 0
		if prevStart >= 0 {
			searchFrom = prevStart + 1
		}
		idx := strings.Index(text[searchFrom:], chunk)
		if idx < 0 {
			t.Fatalf("chunk %d not found in original text", i)
		}
		start := searchFrom + idx
		if prevStart >= 0 {
			if start > prevEnd {
				gap := text[prevEnd:start]
				if strings.TrimSpace(gap) != "" {
					t.Fatalf("gap %q between chunks %d and %d", gap, i-1, i)
				}
			}
		}
		prevStart, prevEnd = start, start+len(chunk)
	}
	if prevEnd < len(text) {
		tail := text[prevEnd:]
		if strings.TrimSpace(tail) != "" {
			t.Fatalf("text tail %q not covered by any chunk", tail)
		}
	}
}

func TestChunkPrefersSentenceBoundary(t *testing.T) {
	// First sentence ends inside the boundary lookback window, so the first
	// chunk should end on the period instead of the raw size cut.
	text := strings.Repeat("a", 269) + ". " + strings.Repeat("b", 400)
	chunks := ChunkText(text, 300, 30)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	if !strings.HasSuffix(chunks[0], ".") {
		t.Fatalf("expected first chunk to end at sentence boundary, got %q", chunks[0])
	}
}

func TestChunkTerminates(t *testing.T) {
	// Pathological config where the boundary cut lands inside the overlap
	// region must still advance and finish.
	text := strings.Repeat("ab. ", 500)
	chunks := ChunkText(text, 60, 50)
	if len(chunks) == 0 {
		t.Fatal("expected chunks")
	}
}
