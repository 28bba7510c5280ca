package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/listing-ingestor/internal/repository"
)

type fakeGenerator struct {
	response string
	err      error
	calls    int
	prompt   string
}

func (g *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	g.calls++
	g.prompt = prompt
	return g.response, g.err
}

func TestExtractionClientTrims(t *testing.T) {
	gen := &fakeGenerator{response: "\n  {\"title\":\"X\"}  \n"}

	out, err := NewExtractionClient(gen).Extract(context.Background(), "prompt")

	require.NoError(t, err)
	assert.Equal(t, `{"title":"X"}`, out)
	assert.Equal(t, "prompt", gen.prompt)
}

func TestExtractionClientUnconfigured(t *testing.T) {
	_, err := NewExtractionClient(nil).Extract(context.Background(), "prompt")

	var svcErr *repository.ExtractionServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.ErrorIs(t, err, repository.ErrNotConfigured)
}

func TestExtractionClientWrapsUpstreamErrors(t *testing.T) {
	upstream := errors.New("connection refused")
	gen := &fakeGenerator{err: upstream}

	_, err := NewExtractionClient(gen).Extract(context.Background(), "prompt")

	var svcErr *repository.ExtractionServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.ErrorIs(t, err, upstream)
	assert.Equal(t, 1, gen.calls)
}
