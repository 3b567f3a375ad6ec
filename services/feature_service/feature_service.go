package feature_service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pgvector/pgvector-go"
	"github.com/serisow/paperinsight/paper_type"
	"github.com/serisow/paperinsight/services/llm_service"
)

// Fixed retrieval queries per feature. Each feature call performs exactly
// one retrieval round with its query and one generation round.
const (
	summaryQuery     = "main ideas, findings and conclusions of this document"
	definitionsQuery = "key terms, concepts and their definitions"
	questionsQuery   = "important facts and ideas to generate study questions from"
)

// ArtifactStore is the slice of the paper store the generator reads status
// from and writes artifacts into.
type ArtifactStore interface {
	GetPaper(ctx context.Context, id string) (paper_type.Paper, error)
	SetSummary(ctx context.Context, id string, summary string) error
	SetDefinitions(ctx context.Context, id string, definitions []paper_type.Definition) error
	SetQuestions(ctx context.Context, id string, questions []paper_type.Question) error
}

// PassageSearcher retrieves the most similar chunks of one paper.
type PassageSearcher interface {
	Search(ctx context.Context, paperID string, query pgvector.Vector, k int) ([]paper_type.Passage, error)
}

// QueryEmbedder embeds a single retrieval query.
type QueryEmbedder interface {
	Embed(ctx context.Context, text string) (pgvector.Vector, error)
}

// FeatureService answers the three study-aid features over an ingested
// paper: summary, key-term definitions, and practice questions. Each
// operation is independently invocable and overwrites its prior artifact.
// Two concurrent calls for the same paper and feature race benignly: the
// last stored value wins, never a blend of both.
type FeatureService struct {
	store    ArtifactStore
	index    PassageSearcher
	embedder QueryEmbedder
	llm      llm_service.LLMService
	topK     int
	logger   *slog.Logger
}

func NewFeatureService(store ArtifactStore, index PassageSearcher, embedder QueryEmbedder, llm llm_service.LLMService, topK int, logger *slog.Logger) *FeatureService {
	if topK <= 0 {
		topK = 5
	}
	return &FeatureService{
		store:    store,
		index:    index,
		embedder: embedder,
		llm:      llm,
		topK:     topK,
		logger:   logger,
	}
}

func (s *FeatureService) Summarize(ctx context.Context, paperID string) (string, error) {
	passages, err := s.retrieve(ctx, paperID, summaryQuery)
	if err != nil {
		return "", err
	}

	raw, err := s.llm.CallLLM(ctx, summaryPrompt(passages))
	if err != nil {
		return "", &paper_type.GenerationCapabilityError{Err: err}
	}

	summary, err := parseSummary(raw)
	if err != nil {
		return "", err
	}

	if err := s.store.SetSummary(ctx, paperID, summary); err != nil {
		return "", err
	}

	s.logger.Info("Stored summary",
		slog.String("paper_id", paperID),
		slog.Int("length", len(summary)))

	return summary, nil
}

func (s *FeatureService) ExtractDefinitions(ctx context.Context, paperID string) ([]paper_type.Definition, error) {
	passages, err := s.retrieve(ctx, paperID, definitionsQuery)
	if err != nil {
		return nil, err
	}

	raw, err := s.llm.CallLLM(ctx, definitionsPrompt(passages))
	if err != nil {
		return nil, &paper_type.GenerationCapabilityError{Err: err}
	}

	definitions, err := parseDefinitions(raw)
	if err != nil {
		return nil, err
	}

	if err := s.store.SetDefinitions(ctx, paperID, definitions); err != nil {
		return nil, err
	}

	s.logger.Info("Stored definitions",
		slog.String("paper_id", paperID),
		slog.Int("count", len(definitions)))

	return definitions, nil
}

func (s *FeatureService) GenerateQuestions(ctx context.Context, paperID string) ([]paper_type.Question, error) {
	passages, err := s.retrieve(ctx, paperID, questionsQuery)
	if err != nil {
		return nil, err
	}

	raw, err := s.llm.CallLLM(ctx, questionsPrompt(passages))
	if err != nil {
		return nil, &paper_type.GenerationCapabilityError{Err: err}
	}

	candidates, err := parseQuestions(raw)
	if err != nil {
		return nil, err
	}

	// Malformed individual questions are dropped as long as at least one
	// valid record remains; an empty result fails the whole call and leaves
	// any previously stored questions untouched.
	questions := make([]paper_type.Question, 0, len(candidates))
	for i, q := range candidates {
		if err := validateQuestion(q); err != nil {
			s.logger.Warn("Dropping malformed question",
				slog.String("paper_id", paperID),
				slog.Int("position", i),
				slog.String("error", err.Error()))
			continue
		}
		questions = append(questions, q)
	}
	if len(questions) == 0 {
		return nil, &paper_type.GenerationFormatError{Reason: "no valid questions in model output"}
	}

	if err := s.store.SetQuestions(ctx, paperID, questions); err != nil {
		return nil, err
	}

	s.logger.Info("Stored questions",
		slog.String("paper_id", paperID),
		slog.Int("count", len(questions)))

	return questions, nil
}

// retrieve re-checks the paper's status at call time, then runs the one
// retrieval round for the feature. The status is never cached across calls,
// so a paper that finishes processing after a NotReady answer succeeds on
// the next attempt.
func (s *FeatureService) retrieve(ctx context.Context, paperID, query string) ([]paper_type.Passage, error) {
	paper, err := s.store.GetPaper(ctx, paperID)
	if err != nil {
		return nil, err
	}
	if paper.Status != paper_type.StatusProcessed {
		return nil, &paper_type.NotReadyError{Status: paper.Status}
	}

	queryEmbedding, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, &paper_type.EmbeddingError{Err: err}
	}

	passages, err := s.index.Search(ctx, paperID, queryEmbedding, s.topK)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve passages for paper %s: %w", paperID, err)
	}
	if len(passages) == 0 {
		return nil, fmt.Errorf("no indexed passages found for paper %s", paperID)
	}

	return passages, nil
}
