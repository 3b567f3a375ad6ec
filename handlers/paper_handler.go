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

// PaperReader is the read-only slice of the paper store the status and
// listing endpoints need. They pass store state through verbatim.
type PaperReader interface {
	GetPaper(ctx context.Context, id string) (paper_type.Paper, error)
	ListPapers(ctx context.Context) ([]paper_type.PaperSummary, error)
}

type PaperHandler struct {
	store  PaperReader
	logger *slog.Logger
}

func NewPaperHandler(store PaperReader, logger *slog.Logger) *PaperHandler {
	return &PaperHandler{
		store:  store,
		logger: logger,
	}
}

func (h *PaperHandler) GetPaper(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	paperID := vars["id"]

	paper, err := h.store.GetPaper(r.Context(), paperID)
	if errors.Is(err, paper_type.ErrPaperNotFound) {
		writeJSONError(w, "Paper not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.logger.Error("Failed to fetch paper",
			slog.String("paper_id", paperID),
			slog.String("error", err.Error()))
		writeJSONError(w, "Failed to fetch paper", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(paper)
}

func (h *PaperHandler) ListPapers(w http.ResponseWriter, r *http.Request) {
	papers, err := h.store.ListPapers(r.Context())
	if err != nil {
		h.logger.Error("Failed to list papers",
			slog.String("error", err.Error()))
		writeJSONError(w, "Failed to list papers", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(papers)
}
