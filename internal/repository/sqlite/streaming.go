package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"nicodb/internal/domain"
)

const streamingColumns = `id, external_id, provider_kind, title, start_time, end_time,
	duration_seconds, status, streamer_id, channel_id, created_at, updated_at`

// StreamingRepository implements repository.StreamingRepository for SQLite
type StreamingRepository struct {
	db *DB
}

// NewStreamingRepository creates a new StreamingRepository
func NewStreamingRepository(db *DB) *StreamingRepository {
	return &StreamingRepository{db: db}
}

// Upsert inserts the program, or overwrites every mutable field of the
// existing row with the same external id
func (r *StreamingRepository) Upsert(ctx context.Context, streaming *domain.Streaming) (*domain.Streaming, error) {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO streamings (`+streamingColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(external_id) DO UPDATE SET
			provider_kind = excluded.provider_kind,
			title = excluded.title,
			start_time = excluded.start_time,
			end_time = excluded.end_time,
			duration_seconds = excluded.duration_seconds,
			status = excluded.status,
			streamer_id = excluded.streamer_id,
			channel_id = excluded.channel_id,
			updated_at = excluded.updated_at`,
		streaming.ID,
		streaming.ExternalID,
		int(streaming.ProviderKind),
		streaming.Title,
		streaming.StartTime.UTC(),
		streaming.EndTime.UTC(),
		int64(streaming.Duration/time.Second),
		int(streaming.Status),
		streaming.StreamerID,
		streaming.ChannelID,
		streaming.CreatedAt.UTC(),
		streaming.UpdatedAt.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert streaming: %w", err)
	}

	return r.GetByExternalID(ctx, streaming.ExternalID)
}

// GetByExternalID retrieves a program by its numeric platform id
func (r *StreamingRepository) GetByExternalID(ctx context.Context, externalID int64) (*domain.Streaming, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+streamingColumns+" FROM streamings WHERE external_id = ?",
		externalID,
	)

	s, err := scanStreaming(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: streaming %d", domain.ErrNotFound, externalID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query streaming: %w", err)
	}

	return s, nil
}

// Count returns the number of stored programs
func (r *StreamingRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM streamings").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count streamings: %w", err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanStreaming(row rowScanner) (*domain.Streaming, error) {
	var (
		s               domain.Streaming
		providerKind    int
		status          int
		durationSeconds int64
	)
	err := row.Scan(
		&s.ID,
		&s.ExternalID,
		&providerKind,
		&s.Title,
		&s.StartTime,
		&s.EndTime,
		&durationSeconds,
		&status,
		&s.StreamerID,
		&s.ChannelID,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	s.ProviderKind = domain.ProviderKind(providerKind)
	s.Status = domain.Status(status)
	s.Duration = time.Duration(durationSeconds) * time.Second
	s.StartTime = s.StartTime.UTC()
	s.EndTime = s.EndTime.UTC()
	s.CreatedAt = s.CreatedAt.UTC()
	s.UpdatedAt = s.UpdatedAt.UTC()
	return &s, nil
}
