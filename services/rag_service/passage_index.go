package rag_service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
	"github.com/serisow/paperinsight/paper_type"
)

// PassageIndex stores chunk embeddings in the paper_chunks table, one
// logical namespace per paper id enforced by a metadata filter. Search
// never crosses paper boundaries.
type PassageIndex struct {
	db     *pgxpool.Pool
	logger *slog.Logger
}

func NewPassageIndex(db *pgxpool.Pool, logger *slog.Logger) *PassageIndex {
	return &PassageIndex{
		db:     db,
		logger: logger,
	}
}

// Replace swaps the full chunk set for a paper in one transaction: previous
// chunks are deleted before the new ones are inserted, so a re-index never
// leaks stale passages and a partial failure leaves the old set intact.
func (ix *PassageIndex) Replace(ctx context.Context, paperID string, chunks []paper_type.Chunk) error {
	tx, err := ix.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin index transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM paper_chunks WHERE paper_id = $1`, paperID); err != nil {
		return fmt.Errorf("failed to clear previous chunks for paper %s: %w", paperID, err)
	}

	batch := &pgx.Batch{}
	for _, chunk := range chunks {
		batch.Queue(
			`INSERT INTO paper_chunks (paper_id, chunk_index, content, embedding) VALUES ($1, $2, $3, $4)`,
			paperID, chunk.Index, chunk.Content, chunk.Embedding)
	}

	br := tx.SendBatch(ctx, batch)
	for range chunks {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return fmt.Errorf("failed to insert chunk for paper %s: %w", paperID, err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("failed to flush chunk batch for paper %s: %w", paperID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit chunk set for paper %s: %w", paperID, err)
	}

	ix.logger.Info("Indexed paper chunks",
		slog.String("paper_id", paperID),
		slog.Int("chunk_count", len(chunks)))

	return nil
}

// Search returns the k most similar chunks of one paper, best first, using
// cosine similarity. Fewer than k chunks means all of them come back.
func (ix *PassageIndex) Search(ctx context.Context, paperID string, query pgvector.Vector, k int) ([]paper_type.Passage, error) {
	if k <= 0 {
		k = 5
	}

	rows, err := ix.db.Query(ctx, `
        SELECT content, 1 - (embedding <=> $2) AS score
        FROM paper_chunks
        WHERE paper_id = $1
        ORDER BY embedding <=> $2
        LIMIT $3`, paperID, query, k)
	if err != nil {
		return nil, fmt.Errorf("failed to search chunks for paper %s: %w", paperID, err)
	}
	defer rows.Close()

	passages := make([]paper_type.Passage, 0, k)
	for rows.Next() {
		var p paper_type.Passage
		if err := rows.Scan(&p.Content, &p.Score); err != nil {
			return nil, fmt.Errorf("failed to scan search result: %w", err)
		}
		passages = append(passages, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read search results: %w", err)
	}

	return passages, nil
}

// CountChunks reports how many chunks are indexed for a paper.
func (ix *PassageIndex) CountChunks(ctx context.Context, paperID string) (int, error) {
	var count int
	err := ix.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM paper_chunks WHERE paper_id = $1`, paperID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count chunks for paper %s: %w", paperID, err)
	}
	return count, nil
}
