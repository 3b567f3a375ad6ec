package paper_type

import (
	"time"

	"github.com/pgvector/pgvector-go"
)

type PaperStatus string

const (
	StatusPending    PaperStatus = "pending"
	StatusProcessing PaperStatus = "processing"
	StatusProcessed  PaperStatus = "processed"
	StatusFailed     PaperStatus = "failed"
)

const (
	QuestionTypeMultipleChoice = "multiple_choice"
	QuestionTypeShortAnswer    = "short_answer"
)

// Paper is the durable record for one uploaded document.
type Paper struct {
	ID           string       `json:"id"`
	Filename     string       `json:"filename"`
	UploadDate   time.Time    `json:"upload_date"`
	Status       PaperStatus  `json:"status"`
	StatusDetail string       `json:"status_detail,omitempty"`
	Summary      string       `json:"summary,omitempty"`
	Definitions  []Definition `json:"extracted_definitions,omitempty"`
	Questions    []Question   `json:"generated_questions,omitempty"`
}

// PaperSummary is the listing view of a paper, without artifacts.
type PaperSummary struct {
	ID         string      `json:"id"`
	Filename   string      `json:"filename"`
	UploadDate time.Time   `json:"upload_date"`
	Status     PaperStatus `json:"status"`
}

type Definition struct {
	Term       string `json:"term"`
	Definition string `json:"definition"`
}

type Question struct {
	Question      string   `json:"question"`
	Type          string   `json:"type"`
	Options       []string `json:"options,omitempty"`
	CorrectAnswer string   `json:"correct_answer"`
}

// Chunk is one embedded span of a paper's extracted text. Chunks live only
// in the passage index and are replaced wholesale on re-ingestion.
type Chunk struct {
	PaperID   string
	Index     int
	Content   string
	Embedding pgvector.Vector
}

// Passage is a retrieval hit: chunk text plus its similarity score.
type Passage struct {
	Content string  `json:"content"`
	Score   float64 `json:"score"`
}
