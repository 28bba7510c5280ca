package pipeline

import (
	"context"
	"errors"
	"strings"

	"github.com/user/listing-ingestor/internal/repository"
)

// ExtractionClient sends prompts to the model service.
type ExtractionClient struct {
	generator repository.TextGenerator
}

func NewExtractionClient(generator repository.TextGenerator) *ExtractionClient {
	return &ExtractionClient{generator: generator}
}

// Extract returns the model's raw output, trimmed. Every failure is an *repository.ExtractionServiceError.
func (c *ExtractionClient) Extract(ctx context.Context, prompt string) (string, error) {
	if c.generator == nil {
		return "", &repository.ExtractionServiceError{Err: repository.ErrNotConfigured}
	}

	out, err := c.generator.Generate(ctx, prompt)
	if err != nil {
		var svcErr *repository.ExtractionServiceError
		if errors.As(err, &svcErr) {
			return "", err
		}
		return "", &repository.ExtractionServiceError{Err: err}
	}
	return strings.TrimSpace(out), nil
}
