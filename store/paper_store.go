package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/serisow/paperinsight/paper_type"
)

// PaperStore owns the papers table. All writes are single-row statements,
// so a concurrent reader never observes a partially updated record.
type PaperStore struct {
	db     *pgxpool.Pool
	logger *slog.Logger
}

func NewPaperStore(db *pgxpool.Pool, logger *slog.Logger) *PaperStore {
	return &PaperStore{
		db:     db,
		logger: logger,
	}
}

func (s *PaperStore) CreatePaper(ctx context.Context, filename string) (paper_type.Paper, error) {
	id := uuid.NewString()

	query := `INSERT INTO papers (id, filename, status)
              VALUES ($1, $2, $3)
              RETURNING id, filename, upload_date, status`
	var p paper_type.Paper
	err := s.db.QueryRow(ctx, query, id, filename, paper_type.StatusPending).
		Scan(&p.ID, &p.Filename, &p.UploadDate, &p.Status)
	if err != nil {
		return paper_type.Paper{}, fmt.Errorf("failed to create paper record: %w", err)
	}

	s.logger.Info("Created paper record",
		slog.String("paper_id", p.ID),
		slog.String("filename", p.Filename))

	return p, nil
}

func (s *PaperStore) GetPaper(ctx context.Context, id string) (paper_type.Paper, error) {
	query := `SELECT id, filename, upload_date, status, status_detail,
                     summary, extracted_definitions, generated_questions
              FROM papers WHERE id = $1`

	var p paper_type.Paper
	var summary *string
	var definitionsJSON, questionsJSON []byte

	err := s.db.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.Filename, &p.UploadDate, &p.Status, &p.StatusDetail,
		&summary, &definitionsJSON, &questionsJSON)
	if errors.Is(err, pgx.ErrNoRows) {
		return paper_type.Paper{}, paper_type.ErrPaperNotFound
	}
	if err != nil {
		return paper_type.Paper{}, fmt.Errorf("failed to fetch paper %s: %w", id, err)
	}

	if summary != nil {
		p.Summary = *summary
	}
	if len(definitionsJSON) > 0 {
		if err := json.Unmarshal(definitionsJSON, &p.Definitions); err != nil {
			return paper_type.Paper{}, fmt.Errorf("failed to decode stored definitions for paper %s: %w", id, err)
		}
	}
	if len(questionsJSON) > 0 {
		if err := json.Unmarshal(questionsJSON, &p.Questions); err != nil {
			return paper_type.Paper{}, fmt.Errorf("failed to decode stored questions for paper %s: %w", id, err)
		}
	}

	return p, nil
}

// ListPapers returns every paper without its artifacts, newest upload first.
func (s *PaperStore) ListPapers(ctx context.Context) ([]paper_type.PaperSummary, error) {
	query := `SELECT id, filename, upload_date, status
              FROM papers ORDER BY upload_date DESC`

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list papers: %w", err)
	}
	defer rows.Close()

	papers := make([]paper_type.PaperSummary, 0)
	for rows.Next() {
		var p paper_type.PaperSummary
		if err := rows.Scan(&p.ID, &p.Filename, &p.UploadDate, &p.Status); err != nil {
			return nil, fmt.Errorf("failed to scan paper row: %w", err)
		}
		papers = append(papers, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read paper rows: %w", err)
	}

	return papers, nil
}

func (s *PaperStore) UpdateStatus(ctx context.Context, id string, status paper_type.PaperStatus, detail string) error {
	query := `UPDATE papers SET status = $2, status_detail = $3 WHERE id = $1`
	tag, err := s.db.Exec(ctx, query, id, status, detail)
	if err != nil {
		return fmt.Errorf("failed to update status for paper %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return paper_type.ErrPaperNotFound
	}

	s.logger.Info("Updated paper status",
		slog.String("paper_id", id),
		slog.String("status", string(status)))

	return nil
}

func (s *PaperStore) SetSummary(ctx context.Context, id string, summary string) error {
	query := `UPDATE papers SET summary = $2 WHERE id = $1`
	tag, err := s.db.Exec(ctx, query, id, summary)
	if err != nil {
		return fmt.Errorf("failed to store summary for paper %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return paper_type.ErrPaperNotFound
	}
	return nil
}

func (s *PaperStore) SetDefinitions(ctx context.Context, id string, definitions []paper_type.Definition) error {
	payload, err := json.Marshal(definitions)
	if err != nil {
		return fmt.Errorf("failed to encode definitions for paper %s: %w", id, err)
	}

	query := `UPDATE papers SET extracted_definitions = $2 WHERE id = $1`
	tag, err := s.db.Exec(ctx, query, id, payload)
	if err != nil {
		return fmt.Errorf("failed to store definitions for paper %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return paper_type.ErrPaperNotFound
	}
	return nil
}

func (s *PaperStore) SetQuestions(ctx context.Context, id string, questions []paper_type.Question) error {
	payload, err := json.Marshal(questions)
	if err != nil {
		return fmt.Errorf("failed to encode questions for paper %s: %w", id, err)
	}

	query := `UPDATE papers SET generated_questions = $2 WHERE id = $1`
	tag, err := s.db.Exec(ctx, query, id, payload)
	if err != nil {
		return fmt.Errorf("failed to store questions for paper %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return paper_type.ErrPaperNotFound
	}
	return nil
}

// ClearArtifacts drops all generated artifacts, used before re-ingestion.
func (s *PaperStore) ClearArtifacts(ctx context.Context, id string) error {
	query := `UPDATE papers
              SET summary = NULL, extracted_definitions = NULL, generated_questions = NULL
              WHERE id = $1`
	tag, err := s.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to clear artifacts for paper %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return paper_type.ErrPaperNotFound
	}
	return nil
}
