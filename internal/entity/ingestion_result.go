package entity

// IngestionResult is the record returned to the caller: the listing fields with
// ImageURLs replaced by persisted public URLs.
type IngestionResult struct {
	ExtractedListing
	MainImageURL string `json:"main_image_url"`

	SourceURL        string                  `json:"source_url"`
	FieldOutcomes    map[string]FieldOutcome `json:"field_outcomes,omitempty"`
	FlaggedAmenities []string                `json:"flagged_amenities,omitempty"`
	Cached           bool                    `json:"cached,omitempty"`
}
