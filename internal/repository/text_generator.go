package repository

import "context"

// TextGenerator is the language-model service used for structured extraction.
type TextGenerator interface {
	// Generate returns the raw model output for prompt.
	Generate(ctx context.Context, prompt string) (string, error)
}
