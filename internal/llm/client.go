// Package llm wraps the text-completion service used to polish
// transaction descriptions. The pipeline treats the service as
// optional: everything it does has a deterministic fallback.
package llm

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// DefaultModel is the Gemini model used when none is configured.
const DefaultModel = "gemini-2.5-flash"

// Completer is the minimal text-completion contract the pipeline
// depends on. Implementations must respect ctx cancellation; callers
// bound every call with a timeout.
type Completer interface {
	Complete(ctx context.Context, prompt string, maxTokens int, temperature float32) (string, error)
}

// GeminiCompleter calls the Gemini API through the GenAI SDK.
// Credentials come from the environment (GEMINI_API_KEY or application
// default credentials).
type GeminiCompleter struct {
	model string
}

// NewGeminiCompleter creates a completer for the given model name,
// falling back to DefaultModel when empty.
func NewGeminiCompleter(model string) *GeminiCompleter {
	if model == "" {
		model = DefaultModel
	}
	return &GeminiCompleter{model: model}
}

// Complete sends a single-turn prompt and returns the cleaned response
// text.
func (g *GeminiCompleter) Complete(ctx context.Context, prompt string, maxTokens int, temperature float32) (string, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return "", fmt.Errorf("Complete: create genai client: %w", err)
	}

	contents := []*genai.Content{
		{
			Role:  "user",
			Parts: []*genai.Part{{Text: prompt}},
		},
	}

	cfg := &genai.GenerateContentConfig{
		MaxOutputTokens: int32(maxTokens),
		Temperature:     genai.Ptr(temperature),
	}

	resp, err := client.Models.GenerateContent(ctx, g.model, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("Complete: generate content: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("Complete: empty response from model")
	}

	return CleanResponse(text), nil
}

// CleanResponse strips Markdown fences, wrapping quotes and anything
// past the first line, which models sometimes add despite instructions
// to return a bare label.
func CleanResponse(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		}
		if idx := strings.LastIndex(s, "```"); idx != -1 {
			s = s[:idx]
		}
		s = strings.TrimSpace(s)
	}

	if idx := strings.IndexByte(s, '\n'); idx != -1 {
		s = strings.TrimSpace(s[:idx])
	}

	s = strings.Trim(s, "\"'`")
	return strings.TrimSpace(s)
}
