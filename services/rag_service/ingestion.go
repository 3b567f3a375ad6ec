package rag_service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/pgvector/pgvector-go"
	"github.com/serisow/paperinsight/paper_type"
)

// TextExtractor turns raw uploaded bytes into plain text.
type TextExtractor interface {
	ExtractText(filename string, data []byte) (string, error)
}

// IngestionStore is the slice of the paper store the pipeline drives.
type IngestionStore interface {
	UpdateStatus(ctx context.Context, id string, status paper_type.PaperStatus, detail string) error
	ClearArtifacts(ctx context.Context, id string) error
}

// ChunkIndexer persists a paper's full chunk set as one unit.
type ChunkIndexer interface {
	Replace(ctx context.Context, paperID string, chunks []paper_type.Chunk) error
}

// Ingestor runs the per-paper processing pipeline:
// parse -> chunk -> embed -> index, driving the paper's status from
// pending through processing to processed or failed. Each paper is
// processed at most once at a time; a second Ingest call for a paper that
// is still running is rejected.
type Ingestor struct {
	store     IngestionStore
	index     ChunkIndexer
	embedder  Embedder
	extractor TextExtractor
	chunker   *Chunker
	logger    *slog.Logger

	maxAttempts int
	retryDelay  time.Duration

	// Keyed by paper id. Same pattern the pipeline scheduler uses to
	// prevent two runs of the same pipeline from interleaving.
	running sync.Map
}

func NewIngestor(store IngestionStore, index ChunkIndexer, embedder Embedder, extractor TextExtractor, chunker *Chunker, logger *slog.Logger) *Ingestor {
	return &Ingestor{
		store:       store,
		index:       index,
		embedder:    embedder,
		extractor:   extractor,
		chunker:     chunker,
		logger:      logger,
		maxAttempts: 3,
		retryDelay:  2 * time.Second,
	}
}

// Ingest processes one uploaded paper. Every failure writes a readable
// reason to the paper record before transitioning to failed; the returned
// error exists for the caller's log only.
func (ing *Ingestor) Ingest(ctx context.Context, paperID, filename string, data []byte) error {
	if _, loaded := ing.running.LoadOrStore(paperID, struct{}{}); loaded {
		ing.logger.Warn("Rejected concurrent ingestion",
			slog.String("paper_id", paperID))
		return paper_type.ErrIngestionInProgress
	}
	defer ing.running.Delete(paperID)

	// Re-ingestion must not leave artifacts computed from the old chunks.
	if err := ing.store.ClearArtifacts(ctx, paperID); err != nil {
		return fmt.Errorf("failed to clear artifacts before ingestion of paper %s: %w", paperID, err)
	}

	if err := ing.store.UpdateStatus(ctx, paperID, paper_type.StatusProcessing, ""); err != nil {
		return fmt.Errorf("failed to mark paper %s as processing: %w", paperID, err)
	}

	text, err := ing.extractor.ExtractText(filename, data)
	if err != nil {
		return ing.fail(ctx, paperID, err)
	}

	texts := ing.chunker.Split(text)
	if len(texts) == 0 {
		return ing.fail(ctx, paperID, &paper_type.ParseError{Reason: "document contains no extractable text"})
	}

	embeddings, err := ing.embedWithRetry(ctx, texts)
	if err != nil {
		return ing.fail(ctx, paperID, &paper_type.EmbeddingError{Err: err})
	}

	chunks := make([]paper_type.Chunk, len(texts))
	for i, content := range texts {
		chunks[i] = paper_type.Chunk{
			PaperID:   paperID,
			Index:     i,
			Content:   content,
			Embedding: embeddings[i],
		}
	}

	if err := ing.indexWithRetry(ctx, paperID, chunks); err != nil {
		return ing.fail(ctx, paperID, &paper_type.IndexError{Err: err})
	}

	if err := ing.store.UpdateStatus(ctx, paperID, paper_type.StatusProcessed, ""); err != nil {
		return fmt.Errorf("failed to mark paper %s as processed: %w", paperID, err)
	}

	ing.logger.Info("Paper ingestion completed",
		slog.String("paper_id", paperID),
		slog.String("filename", filename),
		slog.Int("chunk_count", len(chunks)))

	return nil
}

// embedWithRetry computes all chunk embeddings in one batch, retrying with
// bounded exponential backoff before giving up.
func (ing *Ingestor) embedWithRetry(ctx context.Context, texts []string) ([]pgvector.Vector, error) {
	delay := ing.retryDelay
	var lastErr error

	for attempt := 1; attempt <= ing.maxAttempts; attempt++ {
		vectors, err := ing.embedder.EmbedBatch(ctx, texts)
		if err == nil {
			return vectors, nil
		}
		lastErr = err

		if attempt == ing.maxAttempts {
			break
		}

		ing.logger.Warn("Embedding attempt failed, retrying",
			slog.Int("attempt", attempt),
			slog.Duration("retry_delay", delay),
			slog.String("error", err.Error()))

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		delay *= 2
	}

	return nil, fmt.Errorf("embedding failed after %d attempts: %w", ing.maxAttempts, lastErr)
}

// indexWithRetry retries the whole replace. The index's delete-then-insert
// transaction makes a repeated attempt safe: either the old chunk set or
// the complete new one is visible, never a mix.
func (ing *Ingestor) indexWithRetry(ctx context.Context, paperID string, chunks []paper_type.Chunk) error {
	delay := ing.retryDelay
	var lastErr error

	for attempt := 1; attempt <= ing.maxAttempts; attempt++ {
		err := ing.index.Replace(ctx, paperID, chunks)
		if err == nil {
			return nil
		}
		lastErr = err

		if attempt == ing.maxAttempts {
			break
		}

		ing.logger.Warn("Index attempt failed, retrying",
			slog.Int("attempt", attempt),
			slog.Duration("retry_delay", delay),
			slog.String("error", err.Error()))

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		delay *= 2
	}

	return fmt.Errorf("indexing failed after %d attempts: %w", ing.maxAttempts, lastErr)
}

// fail records the reason on the paper and transitions it to failed. The
// status row is the only durable trace of why ingestion stopped.
func (ing *Ingestor) fail(ctx context.Context, paperID string, cause error) error {
	ing.logger.Error("Paper ingestion failed",
		slog.String("paper_id", paperID),
		slog.String("error", cause.Error()))

	if err := ing.store.UpdateStatus(ctx, paperID, paper_type.StatusFailed, cause.Error()); err != nil {
		ing.logger.Error("Failed to record ingestion failure",
			slog.String("paper_id", paperID),
			slog.String("error", err.Error()))
	}

	return cause
}
