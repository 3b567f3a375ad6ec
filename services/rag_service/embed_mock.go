package rag_service

import (
	"context"

	"github.com/pgvector/pgvector-go"
)

type MockEmbedder struct {
	EmbedFunc      func(ctx context.Context, text string) (pgvector.Vector, error)
	EmbedBatchFunc func(ctx context.Context, texts []string) ([]pgvector.Vector, error)
}

func (m *MockEmbedder) Embed(ctx context.Context, text string) (pgvector.Vector, error) {
	if m.EmbedFunc != nil {
		return m.EmbedFunc(ctx, text)
	}
	return pgvector.NewVector([]float32{0, 0, 0}), nil
}

func (m *MockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([]pgvector.Vector, error) {
	if m.EmbedBatchFunc != nil {
		return m.EmbedBatchFunc(ctx, texts)
	}
	vectors := make([]pgvector.Vector, len(texts))
	for i := range texts {
		vectors[i] = pgvector.NewVector([]float32{0, 0, 0})
	}
	return vectors, nil
}
