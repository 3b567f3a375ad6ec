package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/serisow/paperinsight/paper_type"
)

// FeatureRunner maps 1:1 onto the three RAG feature operations.
type FeatureRunner interface {
	Summarize(ctx context.Context, paperID string) (string, error)
	ExtractDefinitions(ctx context.Context, paperID string) ([]paper_type.Definition, error)
	GenerateQuestions(ctx context.Context, paperID string) ([]paper_type.Question, error)
}

type FeatureHandler struct {
	features FeatureRunner
	logger   *slog.Logger
}

func NewFeatureHandler(features FeatureRunner, logger *slog.Logger) *FeatureHandler {
	return &FeatureHandler{
		features: features,
		logger:   logger,
	}
}

func (h *FeatureHandler) Summarize(w http.ResponseWriter, r *http.Request) {
	paperID := mux.Vars(r)["id"]

	summary, err := h.features.Summarize(r.Context(), paperID)
	if err != nil {
		h.writeFeatureError(w, paperID, "summarize", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"paper_id": paperID,
		"summary":  summary,
	})
}

func (h *FeatureHandler) ExtractDefinitions(w http.ResponseWriter, r *http.Request) {
	paperID := mux.Vars(r)["id"]

	definitions, err := h.features.ExtractDefinitions(r.Context(), paperID)
	if err != nil {
		h.writeFeatureError(w, paperID, "extract-definitions", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"paper_id":    paperID,
		"definitions": definitions,
	})
}

func (h *FeatureHandler) GenerateQuestions(w http.ResponseWriter, r *http.Request) {
	paperID := mux.Vars(r)["id"]

	questions, err := h.features.GenerateQuestions(r.Context(), paperID)
	if err != nil {
		h.writeFeatureError(w, paperID, "generate-questions", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"paper_id":  paperID,
		"questions": questions,
	})
}

// writeFeatureError maps the typed failures of the feature operations onto
// client-visible status codes.
func (h *FeatureHandler) writeFeatureError(w http.ResponseWriter, paperID, feature string, err error) {
	h.logger.Error("Feature operation failed",
		slog.String("paper_id", paperID),
		slog.String("feature", feature),
		slog.String("error", err.Error()))

	var notReady *paper_type.NotReadyError
	var formatErr *paper_type.GenerationFormatError
	var capabilityErr *paper_type.GenerationCapabilityError
	var embeddingErr *paper_type.EmbeddingError

	switch {
	case errors.Is(err, paper_type.ErrPaperNotFound):
		writeJSONError(w, "Paper not found", http.StatusNotFound)
	case errors.As(err, &notReady):
		writeJSONError(w, err.Error(), http.StatusConflict)
	case errors.As(err, &formatErr):
		writeJSONError(w, err.Error(), http.StatusBadGateway)
	case errors.As(err, &capabilityErr):
		writeJSONError(w, err.Error(), http.StatusBadGateway)
	case errors.As(err, &embeddingErr):
		writeJSONError(w, err.Error(), http.StatusBadGateway)
	default:
		writeJSONError(w, "Internal server error", http.StatusInternalServerError)
	}
}
