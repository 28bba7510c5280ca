package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/user/listing-ingestor/internal/entity"
)

// IngestionLogRepoImpl provides a concrete implementation for the IngestionLogRepository interface using PostgreSQL.
type IngestionLogRepoImpl struct {
	db *pgxpool.Pool
}

// NewIngestionLogRepo creates a new instance of IngestionLogRepoImpl.
func NewIngestionLogRepo(db *pgxpool.Pool) *IngestionLogRepoImpl {
	return &IngestionLogRepoImpl{db: db}
}

// NewPool connects to PostgreSQL and verifies the connection.
func NewPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("creating pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return pool, nil
}

// Save appends an attempt and fills in the generated ID and CreatedAt.
func (r *IngestionLogRepoImpl) Save(ctx context.Context, record *entity.IngestionRecord) error {
	outcomes, err := marshalOutcomes(record.FieldOutcomes)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO ingestion_log (request_id, source_url, status, error_kind, error_message,
			images_requested, images_persisted, field_outcomes, duration_ms)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at;
	`
	return r.db.QueryRow(ctx, query,
		record.RequestID,
		record.SourceURL,
		string(record.Status),
		record.ErrorKind,
		record.ErrorMessage,
		record.ImagesRequested,
		record.ImagesPersisted,
		outcomes,
		record.DurationMS,
	).Scan(&record.ID, &record.CreatedAt)
}

// FindByURL retrieves the most recent attempts for a source URL.
func (r *IngestionLogRepoImpl) FindByURL(ctx context.Context, url string, limit int) ([]*entity.IngestionRecord, error) {
	query := `
		SELECT id, request_id, source_url, status, error_kind, error_message,
			images_requested, images_persisted, field_outcomes, duration_ms, created_at
		FROM ingestion_log
		WHERE source_url = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2;
	`
	rows, err := r.db.Query(ctx, query, url, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []*entity.IngestionRecord{}
	for rows.Next() {
		var (
			rec      entity.IngestionRecord
			status   string
			outcomes []byte
		)
		if err := rows.Scan(
			&rec.ID,
			&rec.RequestID,
			&rec.SourceURL,
			&status,
			&rec.ErrorKind,
			&rec.ErrorMessage,
			&rec.ImagesRequested,
			&rec.ImagesPersisted,
			&outcomes,
			&rec.DurationMS,
			&rec.CreatedAt,
		); err != nil {
			return nil, err
		}
		rec.Status = entity.IngestionStatus(status)
		if len(outcomes) > 0 {
			if err := json.Unmarshal(outcomes, &rec.FieldOutcomes); err != nil {
				return nil, fmt.Errorf("decoding field outcomes: %w", err)
			}
		}
		records = append(records, &rec)
	}

	return records, rows.Err()
}

func (r *IngestionLogRepoImpl) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}

// marshalOutcomes returns nil for an empty map so the column stays NULL.
func marshalOutcomes(outcomes map[string]entity.FieldOutcome) ([]byte, error) {
	if len(outcomes) == 0 {
		return nil, nil
	}
	raw, err := json.Marshal(outcomes)
	if err != nil {
		return nil, fmt.Errorf("encoding field outcomes: %w", err)
	}
	return raw, nil
}
