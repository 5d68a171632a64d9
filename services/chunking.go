package services

import "strings"

// boundary characters the chunker prefers to cut on
const chunkBoundaryChars = ".!?\n"

// ChunkText splits text into overlapping windows of at most size bytes,
// preferring to cut at a sentence or paragraph boundary near the window end.
// Chunks are whitespace-trimmed and never empty; the function is
// deterministic and side-effect free.
func ChunkText(text string, size, overlap int) []string {
	if size <= 0 {
		size = 500
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= size {
		overlap = size / 2
	}

	if len(text) <= size {
		if trimmed := strings.TrimSpace(text); trimmed != "" {
			return []string{trimmed}
		}
		return nil
	}

	// How far back from the window end to look for a boundary.
	lookback := size / 4
	if lookback > 50 {
		lookback = 50
	}

	var chunks []string
	start := 0
	for start < len(text) {
		end := start + size
		if end >= len(text) {
			end = len(text)
		} else if cut := boundaryCut(text, start+size-lookback, end); cut > start {
			end = cut
		}

		if trimmed := strings.TrimSpace(text[start:end]); trimmed != "" {
			chunks = append(chunks, trimmed)
		}

		if end >= len(text) {
			break
		}
		next := end - overlap
		if next <= start {
			// boundary cut landed inside the overlap region; advance anyway
			next = end
		}
		start = next
	}
	return chunks
}

// boundaryCut searches backward through text[from:to] for the last sentence
// or paragraph boundary and returns the index just past it, or 0 when none
// is found.
func boundaryCut(text string, from, to int) int {
	if from < 0 {
		from = 0
	}
	for i := to - 1; i >= from; i-- {
		if strings.IndexByte(chunkBoundaryChars, text[i]) >= 0 {
			return i + 1
		}
	}
	return 0
}
