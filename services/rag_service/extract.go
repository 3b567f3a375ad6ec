package rag_service

import (
	"bytes"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"code.sajari.com/docconv/v2"
	"github.com/ledongthuc/pdf"
	"github.com/serisow/paperinsight/paper_type"
)

var wordMimeTypes = map[string]string{
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

type DocumentExtractor struct {
	logger *slog.Logger
}

func NewDocumentExtractor(logger *slog.Logger) *DocumentExtractor {
	return &DocumentExtractor{
		logger: logger,
	}
}

// ExtractText dispatches on the file extension. Every failure comes back as
// a ParseError so the ingestion pipeline can record a readable reason.
func (e *DocumentExtractor) ExtractText(filename string, data []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".pdf":
		return e.ExtractTextFromPDF(data)
	case ".doc", ".docx":
		return e.ExtractTextFromWord(data, wordMimeTypes[ext])
	default:
		return "", &paper_type.ParseError{Reason: fmt.Sprintf("unsupported file type %q", ext)}
	}
}

func (e *DocumentExtractor) ExtractTextFromPDF(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		e.logger.Error("Failed to create PDF reader",
			slog.String("error", err.Error()),
			slog.Int("data_size", len(data)))
		return "", &paper_type.ParseError{Reason: "unreadable PDF", Err: err}
	}

	totalPage := reader.NumPage()
	e.logger.Debug("Starting PDF text extraction",
		slog.Int("total_pages", totalPage))

	var fullText strings.Builder
	for pageIndex := 1; pageIndex <= totalPage; pageIndex++ {
		page := reader.Page(pageIndex)
		if page.V.IsNull() {
			e.logger.Warn("Null page encountered",
				slog.Int("page_number", pageIndex))
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			e.logger.Error("Failed to extract text from page",
				slog.Int("page_number", pageIndex),
				slog.String("error", err.Error()))
			return "", &paper_type.ParseError{
				Reason: fmt.Sprintf("failed to extract text from page %d", pageIndex),
				Err:    err,
			}
		}

		fullText.WriteString(text)
	}

	if strings.TrimSpace(fullText.String()) == "" {
		e.logger.Error("No text extracted from PDF",
			slog.Int("total_pages", totalPage))
		return "", &paper_type.ParseError{Reason: "no text content extracted from PDF"}
	}

	e.logger.Info("Successfully extracted text from PDF",
		slog.Int("total_pages", totalPage),
		slog.Int("total_text_length", fullText.Len()))

	return fullText.String(), nil
}

func (e *DocumentExtractor) ExtractTextFromWord(data []byte, mimeType string) (string, error) {
	e.logger.Debug("Starting Word document text extraction",
		slog.Int("data_size", len(data)))

	result, err := docconv.Convert(bytes.NewReader(data), mimeType, false)
	if err != nil {
		e.logger.Error("Failed to convert Word document",
			slog.String("error", err.Error()),
			slog.Int("data_size", len(data)))
		return "", &paper_type.ParseError{Reason: "unreadable Word document", Err: err}
	}

	if strings.TrimSpace(result.Body) == "" {
		e.logger.Error("No text extracted from Word document")
		return "", &paper_type.ParseError{Reason: "no text content extracted from Word document"}
	}

	return result.Body, nil
}
