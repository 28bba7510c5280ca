package entity

import "time"

// IngestionStatus is the final state of an ingestion attempt.
type IngestionStatus string

const (
	IngestionSucceeded IngestionStatus = "succeeded"
	IngestionFailed    IngestionStatus = "failed"
)

// IngestionRecord mirrors the `ingestion_log` PostgreSQL table schema.
type IngestionRecord struct {
	ID              int64                   `json:"id"`
	RequestID       string                  `json:"request_id"`
	SourceURL       string                  `json:"source_url"`
	Status          IngestionStatus         `json:"status"`
	ErrorKind       string                  `json:"error_kind,omitempty"`
	ErrorMessage    string                  `json:"error_message,omitempty"`
	ImagesRequested int                     `json:"images_requested"`
	ImagesPersisted int                     `json:"images_persisted"`
	FieldOutcomes   map[string]FieldOutcome `json:"field_outcomes,omitempty"`
	DurationMS      int64                   `json:"duration_ms"`
	CreatedAt       time.Time               `json:"created_at"`
}
