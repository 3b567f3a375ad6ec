package db

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

func Connect(databaseURL string) (*pgxpool.Pool, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
	}

	var pool *pgxpool.Pool
	var err error
	maxRetries := 10
	retryDelay := time.Second * 10

	for i := 0; i < maxRetries; i++ {
		config, err := pgxpool.ParseConfig(databaseURL)
		if err != nil {
			return nil, fmt.Errorf("unable to parse DATABASE_URL: %v", err)
		}

		pool, err = pgxpool.NewWithConfig(context.Background(), config)
		if err == nil {
			err = pool.Ping(context.Background())
			if err == nil {
				log.Println("Successfully connected to the database")
				break
			}
		}

		log.Printf("Failed to connect to the database (attempt %d/%d): %v", i+1, maxRetries, err)
		if i < maxRetries-1 {
			log.Printf("Retrying in %v...", retryDelay)
			time.Sleep(retryDelay)
		}
	}

	if err != nil {
		return nil, fmt.Errorf("failed to connect to the database after %d attempts: %v", maxRetries, err)
	}

	// Enable pgvector extension
	_, err = pool.Exec(context.Background(), "CREATE EXTENSION IF NOT EXISTS vector")
	if err != nil {
		return nil, fmt.Errorf("unable to create vector extension: %v", err)
	}

	return pool, nil
}

// Migrate creates the papers and paper_chunks tables if they do not exist.
// The embedding dimensionality is fixed for the lifetime of an index, so it
// is baked into the DDL from configuration.
func Migrate(ctx context.Context, pool *pgxpool.Pool, embeddingDim int) error {
	createPapers := `
        CREATE TABLE IF NOT EXISTS papers (
            id UUID PRIMARY KEY,
            filename TEXT NOT NULL,
            upload_date TIMESTAMPTZ NOT NULL DEFAULT now(),
            status TEXT NOT NULL DEFAULT 'pending',
            status_detail TEXT NOT NULL DEFAULT '',
            summary TEXT,
            extracted_definitions JSONB,
            generated_questions JSONB
        )`
	if _, err := pool.Exec(ctx, createPapers); err != nil {
		return fmt.Errorf("failed to create papers table: %w", err)
	}

	createChunks := fmt.Sprintf(`
        CREATE TABLE IF NOT EXISTS paper_chunks (
            id BIGSERIAL PRIMARY KEY,
            paper_id UUID NOT NULL REFERENCES papers(id) ON DELETE CASCADE,
            chunk_index INT NOT NULL,
            content TEXT NOT NULL,
            embedding vector(%d) NOT NULL
        )`, embeddingDim)
	if _, err := pool.Exec(ctx, createChunks); err != nil {
		return fmt.Errorf("failed to create paper_chunks table: %w", err)
	}

	createLookup := `CREATE INDEX IF NOT EXISTS idx_paper_chunks_paper_id ON paper_chunks (paper_id)`
	if _, err := pool.Exec(ctx, createLookup); err != nil {
		return fmt.Errorf("failed to create paper_chunks lookup index: %w", err)
	}

	return nil
}
