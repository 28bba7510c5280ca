package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/user/listing-ingestor/internal/entity"
)

func TestAssembleReplacesImageURLs(t *testing.T) {
	validated := &entity.ValidatedListing{
		Listing: entity.ExtractedListing{
			Title:     "Condo",
			Price:     2800000,
			Amenities: []string{"pool"},
			ImageURLs: []string{"https://src/1.jpg", "https://src/2.jpg", "https://src/3.jpg"},
		},
		Outcomes: map[string]entity.FieldOutcome{entity.FieldTitle: entity.OutcomePresent},
	}
	images := []entity.PersistedImage{
		{SourceURL: "https://src/1.jpg", Status: entity.ImageFetchFailed},
		{SourceURL: "https://src/2.jpg", PublicURL: "https://cdn/2.jpg", Status: entity.ImageOK},
		{SourceURL: "https://src/3.jpg", PublicURL: "https://cdn/3.jpg", Status: entity.ImageOK},
	}

	result := Assemble("https://example.com/listing/1", validated, images)

	assert.Equal(t, "Condo", result.Title)
	assert.Equal(t, int64(2800000), result.Price)
	assert.Equal(t, []string{"https://cdn/2.jpg", "https://cdn/3.jpg"}, result.ImageURLs)
	assert.Equal(t, "https://cdn/2.jpg", result.MainImageURL)
	assert.Equal(t, "https://example.com/listing/1", result.SourceURL)
	assert.Equal(t, entity.OutcomePresent, result.FieldOutcomes[entity.FieldTitle])
	assert.Equal(t, []string{"https://src/1.jpg", "https://src/2.jpg", "https://src/3.jpg"},
		validated.Listing.ImageURLs, "input must not be modified")
}

func TestAssembleWithoutImages(t *testing.T) {
	validated := &entity.ValidatedListing{Listing: entity.ExtractedListing{Title: "Condo"}}

	result := Assemble("https://example.com/", validated, nil)

	assert.Equal(t, []string{}, result.ImageURLs)
	assert.Equal(t, []string{}, result.Amenities)
	assert.Empty(t, result.MainImageURL)
}
