package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"nicodb/internal/domain"
)

// StreamerRepository implements repository.StreamerRepository for SQLite
type StreamerRepository struct {
	db *DB
}

// NewStreamerRepository creates a new StreamerRepository
func NewStreamerRepository(db *DB) *StreamerRepository {
	return &StreamerRepository{db: db}
}

// Create appends a streamer name row
func (r *StreamerRepository) Create(ctx context.Context, streamer *domain.Streamer) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO streamers (id, external_id, name, recorded_at) VALUES (?, ?, ?, ?)",
		streamer.ID,
		streamer.ExternalID,
		streamer.Name,
		streamer.RecordedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert streamer: %w", err)
	}
	return nil
}

// GetLatestByExternalID retrieves the most recently recorded row for an external id.
// Rows with equal recorded_at are ordered by insertion.
func (r *StreamerRepository) GetLatestByExternalID(ctx context.Context, externalID int64) (*domain.Streamer, error) {
	var s domain.Streamer
	err := r.db.QueryRowContext(ctx,
		`SELECT id, external_id, name, recorded_at FROM streamers
		WHERE external_id = ?
		ORDER BY recorded_at DESC, rowid DESC
		LIMIT 1`,
		externalID,
	).Scan(&s.ID, &s.ExternalID, &s.Name, &s.RecordedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: streamer %d", domain.ErrNotFound, externalID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query streamer: %w", err)
	}

	s.RecordedAt = s.RecordedAt.UTC()
	return &s, nil
}

// ListByExternalID retrieves every name recorded for an external id, oldest first
func (r *StreamerRepository) ListByExternalID(ctx context.Context, externalID int64) ([]*domain.Streamer, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, external_id, name, recorded_at FROM streamers
		WHERE external_id = ?
		ORDER BY recorded_at ASC, rowid ASC`,
		externalID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query streamers: %w", err)
	}
	defer rows.Close()

	var streamers []*domain.Streamer
	for rows.Next() {
		var s domain.Streamer
		if err := rows.Scan(&s.ID, &s.ExternalID, &s.Name, &s.RecordedAt); err != nil {
			return nil, fmt.Errorf("failed to scan streamer: %w", err)
		}
		s.RecordedAt = s.RecordedAt.UTC()
		streamers = append(streamers, &s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating streamers: %w", err)
	}

	return streamers, nil
}

// Delete deletes a streamer row. Programs referencing it are removed by cascade.
func (r *StreamerRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM streamers WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete streamer: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: streamer %s", domain.ErrNotFound, id)
	}

	return nil
}
