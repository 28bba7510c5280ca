package pipeline

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/user/listing-ingestor/internal/entity"
)

func TestPromptBuilderCapsCandidates(t *testing.T) {
	urls := make([]string, 80)
	for i := range urls {
		urls[i] = fmt.Sprintf("https://example.com/p/%d.jpg", i)
	}
	content := &entity.SanitizedContent{Text: "Price: 2,800,000 THB", CandidateImageURLs: urls}

	prompt := NewPromptBuilder(50, 5).Build("https://example.com/listing/1", content)

	assert.Contains(t, prompt, "SOURCE URL: https://example.com/listing/1")
	assert.Contains(t, prompt, "https://example.com/p/49.jpg")
	assert.NotContains(t, prompt, "https://example.com/p/50.jpg")
	assert.Contains(t, prompt, "Price: 2,800,000 THB")
	assert.Contains(t, prompt, "array of 1 to 5 strings")
}

func TestPromptBuilderListsSchemaAndVocabulary(t *testing.T) {
	prompt := NewPromptBuilder(0, 0).Build("https://example.com/", &entity.SanitizedContent{})

	for _, field := range entity.ListingFields {
		assert.Contains(t, prompt, `"`+field+`"`)
	}
	for _, amenity := range entity.AmenityVocabulary {
		assert.Contains(t, prompt, amenity)
	}
	assert.Contains(t, prompt, "(none)")
	assert.Contains(t, prompt, "use 0 for numeric fields, an empty string for text fields, and an empty array for collections")
	assert.True(t, strings.Contains(prompt, "no markdown code fences"))
}
