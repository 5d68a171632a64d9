package services

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestIngestSmallTextFile(t *testing.T) {
	embedder := &fakeEmbedder{vector: []float32{1, 0}}
	sessions := NewSessionManager(10)
	svc := NewDocumentService(sessions, embedder, 500, 50, 60, nil)

	doc, chunks, err := svc.Ingest(context.Background(), "u", "hello.txt", []byte("hello world"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.ID == "" {
		t.Fatal("document id not assigned")
	}
	if doc.ContentLength != len("hello world") {
		t.Fatalf("content length %d, want %d", doc.ContentLength, len("hello world"))
	}
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk for short text, got %d", len(chunks))
	}
	if chunks[0].Index != 0 || chunks[0].Text != "hello world" {
		t.Fatalf("unexpected chunk: %+v", chunks[0])
	}
	if len(chunks[0].Embedding) == 0 {
		t.Fatal("chunk not embedded")
	}
	if got := sessions.Documents("u"); len(got) != 1 {
		t.Fatalf("document not stored, got %d", len(got))
	}
}

func TestIngestChunkIndicesContiguous(t *testing.T) {
	embedder := &fakeEmbedder{vector: []float32{1, 0}}
	sessions := NewSessionManager(10)
	svc := NewDocumentService(sessions, embedder, 100, 20, 60, nil)

	text := strings.Repeat("A sentence that fills the window. ", 30)
	doc, chunks, err := svc.Ingest(context.Background(), "u", "long.txt", []byte(text))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if c.Index != i {
			t.Fatalf("chunk %d has index %d", i, c.Index)
		}
		if c.DocumentID != doc.ID {
			t.Fatalf("chunk %d belongs to %q, want %q", i, c.DocumentID, doc.ID)
		}
	}
}

func TestIngestUnsupportedFormat(t *testing.T) {
	embedder := &fakeEmbedder{vector: []float32{1, 0}}
	sessions := NewSessionManager(10)
	svc := NewDocumentService(sessions, embedder, 500, 50, 60, nil)

	_, _, err := svc.Ingest(context.Background(), "u", "image.png", []byte("data"))
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
	if embedder.calls != 0 {
		t.Fatal("embedder should not run when extraction fails")
	}
	if got := sessions.Documents("u"); len(got) != 0 {
		t.Fatalf("no document should be stored, got %d", len(got))
	}
}

func TestIngestEmbeddingFailureStoresNothing(t *testing.T) {
	embedder := &fakeEmbedder{err: errors.New("embeddings down")}
	sessions := NewSessionManager(10)
	svc := NewDocumentService(sessions, embedder, 500, 50, 60, nil)

	_, _, err := svc.Ingest(context.Background(), "u", "notes.txt", []byte("some text"))
	if err == nil {
		t.Fatal("expected embedding error")
	}
	if got := sessions.Documents("u"); len(got) != 0 {
		t.Fatalf("partial state stored after embedding failure: %d docs", len(got))
	}
	if got := sessions.AllChunks("u"); len(got) != 0 {
		t.Fatalf("partial chunks stored after embedding failure: %d", len(got))
	}
}
