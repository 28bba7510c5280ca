package response

import "github.com/user/listing-ingestor/internal/entity"

type ErrorResponse struct {
	Error string `json:"error"`
}

// IngestionsResponse lists recorded attempts for one source URL, newest first.
type IngestionsResponse struct {
	URL        string                    `json:"url"`
	Ingestions []*entity.IngestionRecord `json:"ingestions"`
}

// HealthResponse maps each dependency to "healthy" or "unhealthy".
type HealthResponse map[string]string
