package handlers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/serisow/paperinsight/paper_type"
)

type fakeFeatures struct {
	summarizeErr error
	summary      string
}

func (f *fakeFeatures) Summarize(ctx context.Context, paperID string) (string, error) {
	if f.summarizeErr != nil {
		return "", f.summarizeErr
	}
	return f.summary, nil
}

func (f *fakeFeatures) ExtractDefinitions(ctx context.Context, paperID string) ([]paper_type.Definition, error) {
	return []paper_type.Definition{{Term: "Chunk", Definition: "A span of text."}}, nil
}

func (f *fakeFeatures) GenerateQuestions(ctx context.Context, paperID string) ([]paper_type.Question, error) {
	return []paper_type.Question{{
		Question:      "What is alpha?",
		Type:          paper_type.QuestionTypeShortAnswer,
		CorrectAnswer: "The first letter.",
	}}, nil
}

func newFeatureTestRouter(features FeatureRunner) *mux.Router {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := NewFeatureHandler(features, logger)

	r := mux.NewRouter()
	r.HandleFunc("/papers/{id}/summarize", h.Summarize).Methods("POST")
	r.HandleFunc("/papers/{id}/extract-definitions", h.ExtractDefinitions).Methods("POST")
	r.HandleFunc("/papers/{id}/generate-questions", h.GenerateQuestions).Methods("POST")
	return r
}

func TestFeatureHandlerErrorMapping(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedStatus int
	}{
		{
			name:           "Unknown paper",
			err:            paper_type.ErrPaperNotFound,
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "Paper still processing",
			err:            &paper_type.NotReadyError{Status: paper_type.StatusProcessing},
			expectedStatus: http.StatusConflict,
		},
		{
			name:           "Model answered in the wrong shape",
			err:            &paper_type.GenerationFormatError{Reason: "not JSON"},
			expectedStatus: http.StatusBadGateway,
		},
		{
			name:           "Model call failed",
			err:            &paper_type.GenerationCapabilityError{Err: context.DeadlineExceeded},
			expectedStatus: http.StatusBadGateway,
		},
		{
			name:           "Unexpected failure",
			err:            io.ErrUnexpectedEOF,
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newFeatureTestRouter(&fakeFeatures{summarizeErr: tt.err})

			req := httptest.NewRequest("POST", "/papers/p1/summarize", nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, rec.Code)
			}

			var body map[string]string
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatalf("Response body is not JSON: %v", err)
			}
			if body["error"] == "" {
				t.Error("Expected an error message in the response body")
			}
		})
	}
}

func TestFeatureHandlerSuccess(t *testing.T) {
	router := newFeatureTestRouter(&fakeFeatures{summary: "A summary."})

	req := httptest.NewRequest("POST", "/papers/p1/summarize", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("Response body is not JSON: %v", err)
	}
	if body["summary"] != "A summary." {
		t.Errorf("Unexpected summary in response: %q", body["summary"])
	}
	if body["paper_id"] != "p1" {
		t.Errorf("Unexpected paper id in response: %q", body["paper_id"])
	}
}
