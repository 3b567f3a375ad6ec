package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/serisow/paperinsight/paper_type"
)

var allowedExtensions = map[string]struct{}{
	".pdf":  {},
	".doc":  {},
	".docx": {},
}

// UploadStore is the part of the paper store the upload handler needs.
type UploadStore interface {
	CreatePaper(ctx context.Context, filename string) (paper_type.Paper, error)
}

// PaperIngestor runs the background processing pipeline for one upload.
type PaperIngestor interface {
	Ingest(ctx context.Context, paperID, filename string, data []byte) error
}

type UploadHandler struct {
	store          UploadStore
	ingestor       PaperIngestor
	maxUploadBytes int64
	logger         *slog.Logger
}

func NewUploadHandler(store UploadStore, ingestor PaperIngestor, maxUploadBytes int64, logger *slog.Logger) *UploadHandler {
	return &UploadHandler{
		store:          store,
		ingestor:       ingestor,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

func (h *UploadHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.logger.Info("Received file upload request")

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		writeJSONError(w, "Failed to parse multipart form", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSONError(w, "Failed to get file from form", http.StatusBadRequest)
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if _, ok := allowedExtensions[ext]; !ok {
		h.logger.Error("Unsupported file type",
			slog.String("filename", header.Filename),
			slog.String("extension", ext))
		writeJSONError(w, "Unsupported file type", http.StatusBadRequest)
		return
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, file); err != nil {
		writeJSONError(w, "Failed to read file", http.StatusInternalServerError)
		return
	}

	paper, err := h.store.CreatePaper(r.Context(), header.Filename)
	if err != nil {
		h.logger.Error("Failed to create paper record",
			slog.String("filename", header.Filename),
			slog.String("error", err.Error()))
		writeJSONError(w, "Failed to create paper record", http.StatusInternalServerError)
		return
	}

	// Processing runs in the background, detached from the request. The
	// client polls GET /papers/{id} for the outcome; failures are recorded
	// on the paper record, not returned here.
	data := buf.Bytes()
	go func() {
		if err := h.ingestor.Ingest(context.Background(), paper.ID, paper.Filename, data); err != nil {
			h.logger.Error("Background ingestion returned an error",
				slog.String("paper_id", paper.ID),
				slog.String("error", err.Error()))
		}
	}()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]string{
		"message":  "File uploaded and processing started.",
		"paper_id": paper.ID,
	})
}

func writeJSONError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
