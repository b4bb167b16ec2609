package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"nicodb/internal/domain"
)

// ChannelRepository implements repository.ChannelRepository for SQLite
type ChannelRepository struct {
	db *DB
}

// NewChannelRepository creates a new ChannelRepository
func NewChannelRepository(db *DB) *ChannelRepository {
	return &ChannelRepository{db: db}
}

// Upsert inserts the channel, or overwrites the names of the existing row with
// the same external id. The stored row is returned; its id and created_at are
// those of the first insert.
func (r *ChannelRepository) Upsert(ctx context.Context, channel *domain.Channel) (*domain.Channel, error) {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO channels (id, external_id, name, company_name, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(external_id) DO UPDATE SET
			name = excluded.name,
			company_name = excluded.company_name,
			updated_at = excluded.updated_at`,
		channel.ID,
		channel.ExternalID,
		channel.Name,
		channel.CompanyName,
		channel.CreatedAt.UTC(),
		channel.UpdatedAt.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert channel: %w", err)
	}

	return r.GetByExternalID(ctx, channel.ExternalID)
}

// GetByExternalID retrieves a channel by its platform id
func (r *ChannelRepository) GetByExternalID(ctx context.Context, externalID int64) (*domain.Channel, error) {
	var c domain.Channel
	err := r.db.QueryRowContext(ctx,
		"SELECT id, external_id, name, company_name, created_at, updated_at FROM channels WHERE external_id = ?",
		externalID,
	).Scan(&c.ID, &c.ExternalID, &c.Name, &c.CompanyName, &c.CreatedAt, &c.UpdatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: channel %d", domain.ErrNotFound, externalID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query channel: %w", err)
	}

	c.CreatedAt = c.CreatedAt.UTC()
	c.UpdatedAt = c.UpdatedAt.UTC()
	return &c, nil
}

// Delete deletes a channel. Programs referencing it are removed by cascade.
func (r *ChannelRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM channels WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete channel: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: channel %s", domain.ErrNotFound, id)
	}

	return nil
}
