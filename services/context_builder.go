package services

import (
	"fmt"
	"strings"

	"docchat-backend/models"
)

const truncationMarker = "... [truncated]"

// BuildSemanticContext concatenates ranked chunks into a context block,
// best match first, never exceeding maxLength. A block that does not fit is
// skipped whole rather than truncated.
func BuildSemanticContext(ranked []RankedChunk, maxLength int) string {
	if len(ranked) == 0 || maxLength <= 0 {
		return ""
	}

	var sb strings.Builder
	for _, chunk := range ranked {
		block := fmt.Sprintf("\n=== Document: %s (Similarity: %.3f) ===\n%s",
			chunk.Filename, chunk.Score, chunk.Text)
		if sb.Len()+len(block) > maxLength {
			continue
		}
		sb.WriteString(block)
	}
	return sb.String()
}

// BuildDocumentContext concatenates whole documents in upload order as a
// fallback when semantic retrieval finds nothing. A document that exceeds
// the remaining budget is truncated to fit, marked, and ends the assembly.
func BuildDocumentContext(docs []models.Document, maxLength int) string {
	if len(docs) == 0 || maxLength <= 0 {
		return ""
	}

	var sb strings.Builder
	for _, doc := range docs {
		header := fmt.Sprintf("\n=== Document: %s ===\n", doc.Filename)
		remaining := maxLength - sb.Len() - len(header)
		if remaining <= 0 {
			break
		}
		if len(doc.Text) > remaining {
			room := remaining - len(truncationMarker)
			if room > 0 {
				sb.WriteString(header)
				sb.WriteString(doc.Text[:room])
				sb.WriteString(truncationMarker)
			}
			break
		}
		sb.WriteString(header)
		sb.WriteString(doc.Text)
	}
	return sb.String()
}
