package models

import "time"

// Document is an uploaded file after text extraction. Immutable once stored;
// deleting it removes its chunks with it.
type Document struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	Filename      string    `json:"filename"`
	Text          string    `json:"-"`
	UploadedAt    time.Time `json:"uploaded_at"`
	ContentLength int       `json:"content_length"`
}

// Chunk is a contiguous slice of a document's text together with its
// embedding vector. Indices are contiguous from 0 in original text order.
type Chunk struct {
	DocumentID string    `json:"document_id"`
	Index      int       `json:"index"`
	Text       string    `json:"text"`
	Embedding  []float32 `json:"-"`
}

// DocumentSummary is the client-facing view of a stored document.
type DocumentSummary struct {
	ID            string    `json:"id"`
	Filename      string    `json:"filename"`
	UploadedAt    time.Time `json:"uploaded_at"`
	ContentLength int       `json:"content_length"`
	ChunkCount    int       `json:"chunk_count"`
	Preview       string    `json:"content_preview"`
}

// UploadResponse is returned after a successful upload.
type UploadResponse struct {
	Message       string `json:"message"`
	DocumentID    string `json:"document_id"`
	Filename      string `json:"filename"`
	ContentLength int    `json:"content_length"`
	ChunkCount    int    `json:"chunk_count"`
	Preview       string `json:"content_preview"`
}
