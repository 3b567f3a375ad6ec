package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/serisow/paperinsight/paper_type"
)

type fakeUploadStore struct {
	createErr error
	created   []string
}

func (f *fakeUploadStore) CreatePaper(ctx context.Context, filename string) (paper_type.Paper, error) {
	if f.createErr != nil {
		return paper_type.Paper{}, f.createErr
	}
	f.created = append(f.created, filename)
	return paper_type.Paper{
		ID:       "paper-1",
		Filename: filename,
		Status:   paper_type.StatusPending,
	}, nil
}

type fakeIngestor struct {
	mu      sync.Mutex
	done    chan struct{}
	paperID string
	data    []byte
}

func (f *fakeIngestor) Ingest(ctx context.Context, paperID, filename string, data []byte) error {
	f.mu.Lock()
	f.paperID = paperID
	f.data = data
	f.mu.Unlock()
	close(f.done)
	return nil
}

func multipartUpload(t *testing.T, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("Failed to build multipart form: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("Failed to write file content: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("Failed to close multipart writer: %v", err)
	}
	return &body, writer.FormDataContentType()
}

func TestUploadAcceptsPDFAndStartsIngestion(t *testing.T) {
	store := &fakeUploadStore{}
	ingestor := &fakeIngestor{done: make(chan struct{})}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := NewUploadHandler(store, ingestor, 10<<20, logger)

	content := []byte("%PDF-1.4 fake body")
	body, contentType := multipartUpload(t, "thesis.pdf", content)

	req := httptest.NewRequest("POST", "/upload-paper", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("Expected status 202, got %d", rec.Code)
	}

	var resp map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("Response body is not JSON: %v", err)
	}
	if resp["paper_id"] != "paper-1" {
		t.Errorf("Unexpected paper id in response: %q", resp["paper_id"])
	}

	<-ingestor.done
	ingestor.mu.Lock()
	defer ingestor.mu.Unlock()
	if ingestor.paperID != "paper-1" {
		t.Errorf("Ingestion started with wrong paper id: %q", ingestor.paperID)
	}
	if !bytes.Equal(ingestor.data, content) {
		t.Error("Ingestion received different bytes than were uploaded")
	}
	if len(store.created) != 1 || store.created[0] != "thesis.pdf" {
		t.Errorf("Unexpected created papers: %v", store.created)
	}
}

func TestUploadRejectsUnsupportedExtension(t *testing.T) {
	store := &fakeUploadStore{}
	ingestor := &fakeIngestor{done: make(chan struct{})}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := NewUploadHandler(store, ingestor, 10<<20, logger)

	body, contentType := multipartUpload(t, "notes.txt", []byte("plain text"))

	req := httptest.NewRequest("POST", "/upload-paper", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected status 400, got %d", rec.Code)
	}
	if len(store.created) != 0 {
		t.Error("No paper record should be created for a rejected upload")
	}
}

func TestUploadRejectsMissingFileField(t *testing.T) {
	store := &fakeUploadStore{}
	ingestor := &fakeIngestor{done: make(chan struct{})}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := NewUploadHandler(store, ingestor, 10<<20, logger)

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	if err := writer.WriteField("other", "value"); err != nil {
		t.Fatalf("Failed to write form field: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("Failed to close multipart writer: %v", err)
	}

	req := httptest.NewRequest("POST", "/upload-paper", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected status 400, got %d", rec.Code)
	}
}

func TestUploadReportsStoreFailure(t *testing.T) {
	store := &fakeUploadStore{createErr: io.ErrUnexpectedEOF}
	ingestor := &fakeIngestor{done: make(chan struct{})}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := NewUploadHandler(store, ingestor, 10<<20, logger)

	body, contentType := multipartUpload(t, "thesis.pdf", []byte("%PDF-1.4"))

	req := httptest.NewRequest("POST", "/upload-paper", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("Expected status 500, got %d", rec.Code)
	}

	select {
	case <-ingestor.done:
		t.Error("Ingestion must not start when the paper record cannot be created")
	default:
	}
}
