package services

import (
	"archive/zip"
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestIsAllowedFile(t *testing.T) {
	cases := []struct {
		filename string
		want     bool
	}{
		{"notes.txt", true},
		{"README.md", true},
		{"report.PDF", true},
		{"letter.docx", true},
		{"image.png", false},
		{"script.sh", false},
		{"noextension", false},
	}
	for _, c := range cases {
		if got := IsAllowedFile(c.filename); got != c.want {
			t.Errorf("IsAllowedFile(%q) = %v, want %v", c.filename, got, c.want)
		}
	}
}

func TestExtractTextPlain(t *testing.T) {
	text, err := ExtractText([]byte("  hello world\n"), "notes.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "hello world" {
		t.Fatalf("expected trimmed text, got %q", text)
	}
}

func TestExtractTextMarkdown(t *testing.T) {
	text, err := ExtractText([]byte("# Title\n\nBody text."), "doc.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(text, "Body text.") {
		t.Fatalf("markdown content lost: %q", text)
	}
}

func TestExtractTextUnsupportedFormat(t *testing.T) {
	_, err := ExtractText([]byte("data"), "image.png")
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestExtractTextEmptyContent(t *testing.T) {
	_, err := ExtractText([]byte("   \n\t  "), "empty.txt")
	if !errors.Is(err, ErrExtractionFailed) {
		t.Fatalf("expected ErrExtractionFailed for empty file, got %v", err)
	}
}

func TestExtractTextCorruptPDF(t *testing.T) {
	_, err := ExtractText([]byte("not a pdf at all"), "broken.pdf")
	if !errors.Is(err, ErrExtractionFailed) {
		t.Fatalf("expected ErrExtractionFailed, got %v", err)
	}
}

func TestExtractTextDocx(t *testing.T) {
	documentXML := `<?xml version="1.0" encoding="UTF-8"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>First paragraph.</w:t></w:r></w:p>
    <w:p><w:r><w:t>Second paragraph.</w:t></w:r></w:p>
  </w:body>
</w:document>`

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	f, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatalf("creating zip entry: %v", err)
	}
	if _, err := f.Write([]byte(documentXML)); err != nil {
		t.Fatalf("writing zip entry: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("closing zip: %v", err)
	}

	text, err := ExtractText(buf.Bytes(), "letter.docx")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(text, "First paragraph.") || !strings.Contains(text, "Second paragraph.") {
		t.Fatalf("paragraph text missing: %q", text)
	}
	if !strings.Contains(text, "First paragraph.\nSecond paragraph.") {
		t.Fatalf("paragraphs should be newline separated: %q", text)
	}
}

func TestExtractTextDocxMissingDocument(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	f, _ := zw.Create("word/other.xml")
	f.Write([]byte("<x/>"))
	zw.Close()

	_, err := ExtractText(buf.Bytes(), "letter.docx")
	if !errors.Is(err, ErrExtractionFailed) {
		t.Fatalf("expected ErrExtractionFailed, got %v", err)
	}
}
