package handlers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/serisow/paperinsight/paper_type"
)

type fakePaperReader struct {
	papers map[string]paper_type.Paper
	list   []paper_type.PaperSummary
	err    error
}

func (f *fakePaperReader) GetPaper(ctx context.Context, id string) (paper_type.Paper, error) {
	if f.err != nil {
		return paper_type.Paper{}, f.err
	}
	p, ok := f.papers[id]
	if !ok {
		return paper_type.Paper{}, paper_type.ErrPaperNotFound
	}
	return p, nil
}

func (f *fakePaperReader) ListPapers(ctx context.Context) ([]paper_type.PaperSummary, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.list, nil
}

func newPaperTestRouter(store PaperReader) *mux.Router {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := NewPaperHandler(store, logger)

	r := mux.NewRouter()
	r.HandleFunc("/papers", h.ListPapers).Methods("GET")
	r.HandleFunc("/papers/{id}", h.GetPaper).Methods("GET")
	return r
}

func TestGetPaper(t *testing.T) {
	uploaded := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)
	store := &fakePaperReader{
		papers: map[string]paper_type.Paper{
			"p1": {
				ID:         "p1",
				Filename:   "retrieval.pdf",
				UploadDate: uploaded,
				Status:     paper_type.StatusProcessed,
				Summary:    "A study of retrieval.",
			},
		},
	}
	router := newPaperTestRouter(store)

	req := httptest.NewRequest("GET", "/papers/p1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	var got paper_type.Paper
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("Response body is not JSON: %v", err)
	}
	if got.ID != "p1" || got.Filename != "retrieval.pdf" {
		t.Errorf("Unexpected paper in response: %+v", got)
	}
	if got.Status != paper_type.StatusProcessed {
		t.Errorf("Expected status %q, got %q", paper_type.StatusProcessed, got.Status)
	}
	if got.Summary != "A study of retrieval." {
		t.Errorf("Unexpected summary in response: %q", got.Summary)
	}
}

func TestGetPaperNotFound(t *testing.T) {
	router := newPaperTestRouter(&fakePaperReader{papers: map[string]paper_type.Paper{}})

	req := httptest.NewRequest("GET", "/papers/missing", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("Expected status 404, got %d", rec.Code)
	}
}

func TestGetPaperStoreFailure(t *testing.T) {
	router := newPaperTestRouter(&fakePaperReader{err: io.ErrUnexpectedEOF})

	req := httptest.NewRequest("GET", "/papers/p1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("Expected status 500, got %d", rec.Code)
	}
}

func TestListPapers(t *testing.T) {
	store := &fakePaperReader{
		list: []paper_type.PaperSummary{
			{ID: "p2", Filename: "second.pdf", Status: paper_type.StatusPending},
			{ID: "p1", Filename: "first.pdf", Status: paper_type.StatusProcessed},
		},
	}
	router := newPaperTestRouter(store)

	req := httptest.NewRequest("GET", "/papers", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	var got []paper_type.PaperSummary
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("Response body is not JSON: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Expected 2 papers, got %d", len(got))
	}
	if got[0].ID != "p2" || got[1].ID != "p1" {
		t.Errorf("Papers returned out of order: %+v", got)
	}
}
