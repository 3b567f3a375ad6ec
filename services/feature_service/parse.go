package feature_service

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/serisow/paperinsight/paper_type"
)

// stripCodeFence removes a surrounding markdown code fence, which chat
// models frequently wrap JSON answers in despite instructions.
func stripCodeFence(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}

func parseSummary(raw string) (string, error) {
	summary := strings.TrimSpace(raw)
	if summary == "" {
		return "", &paper_type.GenerationFormatError{Reason: "model returned an empty summary"}
	}
	return summary, nil
}

func parseDefinitions(raw string) ([]paper_type.Definition, error) {
	var payload struct {
		Definitions []paper_type.Definition `json:"definitions"`
	}
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &payload); err != nil {
		return nil, &paper_type.GenerationFormatError{
			Reason: fmt.Sprintf("definitions output is not valid JSON: %v", err),
		}
	}

	if len(payload.Definitions) == 0 {
		return nil, &paper_type.GenerationFormatError{Reason: "definitions list is empty"}
	}

	for i, d := range payload.Definitions {
		if strings.TrimSpace(d.Term) == "" {
			return nil, &paper_type.GenerationFormatError{
				Reason: fmt.Sprintf("definition %d has an empty term", i),
			}
		}
		if strings.TrimSpace(d.Definition) == "" {
			return nil, &paper_type.GenerationFormatError{
				Reason: fmt.Sprintf("definition %d (%q) has an empty definition", i, d.Term),
			}
		}
	}

	return payload.Definitions, nil
}

func parseQuestions(raw string) ([]paper_type.Question, error) {
	var payload struct {
		Questions []paper_type.Question `json:"questions"`
	}
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &payload); err != nil {
		return nil, &paper_type.GenerationFormatError{
			Reason: fmt.Sprintf("questions output is not valid JSON: %v", err),
		}
	}

	if len(payload.Questions) == 0 {
		return nil, &paper_type.GenerationFormatError{Reason: "questions list is empty"}
	}

	return payload.Questions, nil
}

// validateQuestion enforces the question record invariants: multiple choice
// needs at least two options with the correct answer among them, short
// answer needs a non-empty answer and no options.
func validateQuestion(q paper_type.Question) error {
	if strings.TrimSpace(q.Question) == "" {
		return fmt.Errorf("question text is empty")
	}
	if strings.TrimSpace(q.CorrectAnswer) == "" {
		return fmt.Errorf("correct_answer is empty")
	}

	switch q.Type {
	case paper_type.QuestionTypeMultipleChoice:
		if len(q.Options) < 2 {
			return fmt.Errorf("multiple_choice question has %d options, need at least 2", len(q.Options))
		}
		for _, opt := range q.Options {
			if strings.TrimSpace(opt) == "" {
				return fmt.Errorf("multiple_choice question has an empty option")
			}
			if opt == q.CorrectAnswer {
				return nil
			}
		}
		return fmt.Errorf("correct_answer is not one of the options")
	case paper_type.QuestionTypeShortAnswer:
		if len(q.Options) != 0 {
			return fmt.Errorf("short_answer question must not carry options")
		}
		return nil
	default:
		return fmt.Errorf("unknown question type %q", q.Type)
	}
}
