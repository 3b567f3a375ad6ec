package feature_service

import (
	"fmt"
	"strings"

	"github.com/serisow/paperinsight/paper_type"
)

func contextBlock(passages []paper_type.Passage) string {
	var b strings.Builder
	for i, p := range passages {
		fmt.Fprintf(&b, "[Passage %d]\n%s\n\n", i+1, strings.TrimSpace(p.Content))
	}
	return strings.TrimSpace(b.String())
}

func summaryPrompt(passages []paper_type.Passage) string {
	return fmt.Sprintf(`The following passages are excerpts from an academic paper.

%s

Write a concise summary of the paper based on these passages. Cover the main
ideas, findings and conclusions. Respond with the summary text only, no
preamble.`, contextBlock(passages))
}

func definitionsPrompt(passages []paper_type.Passage) string {
	return fmt.Sprintf(`The following passages are excerpts from an academic paper.

%s

Extract the key terms and concepts together with concise definitions.
Respond with JSON only, in exactly this shape:

{"definitions": [{"term": "...", "definition": "..."}]}

Every term and every definition must be non-empty. Do not include any text
outside the JSON object.`, contextBlock(passages))
}

func questionsPrompt(passages []paper_type.Passage) string {
	return fmt.Sprintf(`The following passages are excerpts from an academic paper.

%s

Generate 5 study questions about this material, mixing multiple choice and
short answer. Respond with JSON only, in exactly this shape:

{"questions": [{"question": "...", "type": "multiple_choice", "options": ["...", "..."], "correct_answer": "..."}]}

Rules: "type" is "multiple_choice" or "short_answer". Multiple choice
questions must have at least 2 options and the correct_answer must be one of
them, copied verbatim. Short answer questions must omit options and carry a
non-empty correct_answer. Do not include any text outside the JSON object.`, contextBlock(passages))
}
