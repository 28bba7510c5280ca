package pipeline

import (
	"maps"
	"slices"

	"github.com/user/listing-ingestor/internal/entity"
)

// Assemble merges a validated listing with the image pipeline output. ImageURLs
// become the public URLs of the successfully persisted images, in order.
func Assemble(sourceURL string, validated *entity.ValidatedListing, images []entity.PersistedImage) *entity.IngestionResult {
	result := &entity.IngestionResult{
		ExtractedListing: validated.Listing,
		SourceURL:        sourceURL,
		FieldOutcomes:    maps.Clone(validated.Outcomes),
		FlaggedAmenities: slices.Clone(validated.FlaggedAmenities),
	}

	result.Amenities = slices.Clone(validated.Listing.Amenities)
	if result.Amenities == nil {
		result.Amenities = []string{}
	}

	result.ImageURLs = []string{}
	for _, img := range OKImages(images) {
		result.ImageURLs = append(result.ImageURLs, img.PublicURL)
	}
	if len(result.ImageURLs) > 0 {
		result.MainImageURL = result.ImageURLs[0]
	}
	return result
}
