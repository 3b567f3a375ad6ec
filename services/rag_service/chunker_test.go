package rag_service

import (
	"strings"
	"testing"
)

func TestChunkerSplit(t *testing.T) {
	tests := []struct {
		name      string
		chunkSize int
		overlap   int
		text      string
		minChunks int
		maxChunks int
	}{
		{
			name:      "Short text fits in one chunk",
			chunkSize: 1000,
			overlap:   200,
			text:      "Alpha beta gamma.",
			minChunks: 1,
			maxChunks: 1,
		},
		{
			name:      "Long text produces multiple chunks",
			chunkSize: 100,
			overlap:   20,
			text:      strings.Repeat("The quick brown fox jumps over the lazy dog. ", 30),
			minChunks: 10,
			maxChunks: 25,
		},
		{
			name:      "Whitespace only yields no chunks",
			chunkSize: 100,
			overlap:   20,
			text:      "   \n\t  ",
			minChunks: 0,
			maxChunks: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewChunker(tt.chunkSize, tt.overlap)
			chunks := c.Split(tt.text)

			if len(chunks) < tt.minChunks || len(chunks) > tt.maxChunks {
				t.Errorf("Expected between %d and %d chunks, got %d", tt.minChunks, tt.maxChunks, len(chunks))
			}

			for i, chunk := range chunks {
				if strings.TrimSpace(chunk) == "" {
					t.Errorf("Chunk %d is empty", i)
				}
				if len([]rune(chunk)) > tt.chunkSize {
					t.Errorf("Chunk %d exceeds the chunk size: %d > %d", i, len([]rune(chunk)), tt.chunkSize)
				}
			}
		})
	}
}

func TestChunkerPreservesOrderAndCoverage(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 40; i++ {
		b.WriteString("Sentence number ")
		b.WriteString(strings.Repeat("x", i%7))
		b.WriteString(" ends here. ")
	}
	text := b.String()

	c := NewChunker(120, 30)
	chunks := c.Split(text)
	if len(chunks) < 2 {
		t.Fatalf("Expected multiple chunks, got %d", len(chunks))
	}

	// Each chunk must reappear in the source, and chunk start positions
	// must be strictly increasing: overlap never reorders the document.
	lastPos := -1
	for i, chunk := range chunks {
		pos := strings.Index(text, chunk)
		if pos == -1 {
			t.Fatalf("Chunk %d is not a substring of the source text: %q", i, chunk)
		}
		if pos <= lastPos {
			t.Errorf("Chunk %d starts at %d, not after previous chunk start %d", i, pos, lastPos)
		}
		lastPos = pos
	}

	// The final chunk must reach the end of the document.
	last := chunks[len(chunks)-1]
	if !strings.HasSuffix(strings.TrimSpace(text), last) {
		t.Errorf("Last chunk does not cover the end of the document")
	}
}

func TestChunkerOverlap(t *testing.T) {
	// With no boundary characters the splitter falls back to hard cuts,
	// which makes the overlap exact and easy to verify.
	text := strings.Repeat("a", 250)
	c := NewChunker(100, 20)
	chunks := c.Split(text)

	if len(chunks) < 3 {
		t.Fatalf("Expected at least 3 chunks, got %d", len(chunks))
	}
	if len(chunks[0]) != 100 {
		t.Errorf("Expected first chunk of 100 chars, got %d", len(chunks[0]))
	}

	// Consecutive windows must share the overlap region.
	suffix := chunks[0][len(chunks[0])-20:]
	if !strings.HasPrefix(chunks[1], suffix) {
		t.Errorf("Second chunk does not start with the overlap of the first")
	}
}

func TestNewChunkerGuards(t *testing.T) {
	c := NewChunker(0, -5)
	chunks := c.Split("some text")
	if len(chunks) != 1 {
		t.Fatalf("Expected defaults to produce one chunk, got %d", len(chunks))
	}

	// Overlap >= size must not loop forever.
	c = NewChunker(10, 50)
	chunks = c.Split(strings.Repeat("b", 100))
	if len(chunks) == 0 {
		t.Fatal("Expected chunks from degenerate overlap configuration")
	}
}
