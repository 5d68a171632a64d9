package services

import "errors"

var (
	ErrEmptyMessage      = errors.New("message is required")
	ErrEmptyQuery        = errors.New("query is required")
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrExtractionFailed  = errors.New("text extraction failed")
	ErrDocumentNotFound  = errors.New("document not found")
)
