package repository

import (
	"context"

	"nicodb/internal/domain"
)

// StreamerRepository handles the append-only streamer name history
type StreamerRepository interface {
	Create(ctx context.Context, streamer *domain.Streamer) error
	GetLatestByExternalID(ctx context.Context, externalID int64) (*domain.Streamer, error)
	ListByExternalID(ctx context.Context, externalID int64) ([]*domain.Streamer, error)
	Delete(ctx context.Context, id string) error
}

// ChannelRepository handles channel data persistence, one row per external id
type ChannelRepository interface {
	Upsert(ctx context.Context, channel *domain.Channel) (*domain.Channel, error)
	GetByExternalID(ctx context.Context, externalID int64) (*domain.Channel, error)
	Delete(ctx context.Context, id string) error
}

// StreamingRepository handles program data persistence, one row per external id
type StreamingRepository interface {
	Upsert(ctx context.Context, streaming *domain.Streaming) (*domain.Streaming, error)
	GetByExternalID(ctx context.Context, externalID int64) (*domain.Streaming, error)
	Count(ctx context.Context) (int, error)
}
