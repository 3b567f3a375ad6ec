package rag_service

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/serisow/paperinsight/paper_type"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestExtractTextRejectsCorruptInput(t *testing.T) {
	extractor := NewDocumentExtractor(discardLogger())

	tests := []struct {
		name     string
		filename string
		data     []byte
	}{
		{
			name:     "Garbage bytes with pdf extension",
			filename: "paper.pdf",
			data:     []byte("this is not a pdf at all"),
		},
		{
			name:     "Empty file",
			filename: "paper.pdf",
			data:     nil,
		},
		{
			name:     "Truncated header",
			filename: "paper.pdf",
			data:     []byte("%PDF-1.7"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := extractor.ExtractText(tt.filename, tt.data)
			if err == nil {
				t.Fatal("Expected an error for corrupt input")
			}

			var parseErr *paper_type.ParseError
			if !errors.As(err, &parseErr) {
				t.Errorf("Expected a ParseError, got %T: %v", err, err)
			}
		})
	}
}

func TestExtractTextRejectsUnsupportedExtension(t *testing.T) {
	extractor := NewDocumentExtractor(discardLogger())

	_, err := extractor.ExtractText("notes.txt", []byte("plain text"))
	if err == nil {
		t.Fatal("Expected an error for an unsupported extension")
	}

	var parseErr *paper_type.ParseError
	if !errors.As(err, &parseErr) {
		t.Errorf("Expected a ParseError, got %T: %v", err, err)
	}
}
