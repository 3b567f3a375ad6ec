package llm_service

import "context"

// LLMService is the generation capability. One call, one completion; the
// core never retries generation on its own.
type LLMService interface {
	CallLLM(ctx context.Context, prompt string) (string, error)
}
