package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"nicodb/internal/domain"
	"nicodb/internal/logger"
	"nicodb/internal/metrics"
	"nicodb/internal/repository"
)

// Persist stages, in execution order
const (
	stageStreamer  = "streamer"
	stageChannel   = "channel"
	stageStreaming = "streaming"
)

var (
	_ domain.StreamingReconciler = (*Reconciler)(nil)
	_ domain.StreamerLookup      = (*Reconciler)(nil)
)

// Reconciler maps normalized records onto streamer, channel and program rows.
// It implements domain.StreamingReconciler and domain.StreamerLookup.
type Reconciler struct {
	streamerRepo  repository.StreamerRepository
	channelRepo   repository.ChannelRepository
	streamingRepo repository.StreamingRepository
	placeholders  domain.Placeholders
	logger        *logger.Logger
	now           func() time.Time
}

// NewReconciler creates a new Reconciler
func NewReconciler(
	streamerRepo repository.StreamerRepository,
	channelRepo repository.ChannelRepository,
	streamingRepo repository.StreamingRepository,
	placeholders domain.Placeholders,
) *Reconciler {
	return &Reconciler{
		streamerRepo:  streamerRepo,
		channelRepo:   channelRepo,
		streamingRepo: streamingRepo,
		placeholders:  placeholders,
		logger:        logger.GetGlobalLogger(),
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// ResolveOrCreateStreamer returns the latest row for the external id when its
// name matches, and otherwise appends a new row. A new row is always recorded
// strictly after the previous latest one.
func (r *Reconciler) ResolveOrCreateStreamer(ctx context.Context, externalID int64, name string) (*domain.Streamer, error) {
	latest, err := r.streamerRepo.GetLatestByExternalID(ctx, externalID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("failed to get latest streamer: %w", err)
	}
	if latest != nil && latest.Name == name {
		return latest, nil
	}

	recordedAt := r.now()
	if latest != nil && !recordedAt.After(latest.RecordedAt) {
		recordedAt = latest.RecordedAt.Add(time.Microsecond)
	}

	streamer := &domain.Streamer{
		ID:         uuid.New().String(),
		ExternalID: externalID,
		Name:       name,
		RecordedAt: recordedAt,
	}
	if err := r.streamerRepo.Create(ctx, streamer); err != nil {
		return nil, fmt.Errorf("failed to create streamer: %w", err)
	}
	metrics.StreamerNamesRecorded.Inc()

	if latest != nil {
		r.logger.Info("streamer renamed", map[string]interface{}{
			"streamer_id": externalID,
			"old_name":    latest.Name,
			"new_name":    name,
		})
	}

	return streamer, nil
}

// UpsertChannel inserts the channel or overwrites its names in place
func (r *Reconciler) UpsertChannel(ctx context.Context, externalID int64, name, companyName string) (*domain.Channel, error) {
	now := r.now()
	channel, err := r.channelRepo.Upsert(ctx, &domain.Channel{
		ID:          uuid.New().String(),
		ExternalID:  externalID,
		Name:        name,
		CompanyName: companyName,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return nil, err
	}
	return channel, nil
}

// UpsertStreaming inserts the program or overwrites every mutable field,
// including the streamer and channel references
func (r *Reconciler) UpsertStreaming(ctx context.Context, record domain.StreamRecord, streamer *domain.Streamer, channel *domain.Channel) (*domain.Streaming, error) {
	externalID, err := strconv.ParseInt(record.ExternalID, 10, 64)
	if err != nil {
		return nil, &domain.InvalidFieldError{Field: "external_id", Value: record.ExternalID, Reason: "not numeric"}
	}

	now := r.now()
	streaming, err := r.streamingRepo.Upsert(ctx, &domain.Streaming{
		ID:           uuid.New().String(),
		ExternalID:   externalID,
		ProviderKind: record.ProviderKind,
		Title:        record.Title,
		StartTime:    record.StartTime,
		EndTime:      record.EndTime,
		Duration:     record.Duration,
		Status:       record.Status,
		StreamerID:   streamer.ID,
		ChannelID:    channel.ID,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return nil, err
	}
	return streaming, nil
}

// Persist resolves the streamer, upserts the channel and upserts the program,
// in that order. Completed stages are not rolled back when a later one fails.
func (r *Reconciler) Persist(ctx context.Context, record domain.StreamRecord) error {
	var completed []string
	fail := func(stage string, err error) error {
		r.logger.Error("failed to save streaming data", map[string]interface{}{
			"streaming_id":     record.ExternalID,
			"stage":            stage,
			"completed_stages": completed,
			"streamer_id":      record.StreamerExternalID,
			"channel_id":       record.ChannelExternalID,
			"error":            err,
		})
		return &domain.PersistenceError{Stage: stage, ExternalID: record.ExternalID, Err: err}
	}

	streamer, err := r.ResolveOrCreateStreamer(ctx, record.StreamerExternalID, record.StreamerName)
	if err != nil {
		return fail(stageStreamer, err)
	}
	completed = append(completed, stageStreamer)

	channel, err := r.UpsertChannel(ctx, record.ChannelExternalID, record.ChannelName, record.CompanyName)
	if err != nil {
		return fail(stageChannel, err)
	}
	completed = append(completed, stageChannel)

	if _, err := r.UpsertStreaming(ctx, record, streamer, channel); err != nil {
		return fail(stageStreaming, err)
	}

	r.logger.Debug("saved streaming data", map[string]interface{}{
		"streaming_id": record.ExternalID,
		"status":       int(record.Status),
		"streamer_id":  streamer.ExternalID,
		"channel_id":   channel.ExternalID,
	})
	return nil
}

// LatestName returns the current name of a streamer, or the nonexistent
// streamer message when the id has never been recorded
func (r *Reconciler) LatestName(ctx context.Context, externalID int64) (string, error) {
	latest, err := r.streamerRepo.GetLatestByExternalID(ctx, externalID)
	if errors.Is(err, domain.ErrNotFound) {
		return r.placeholders.NonexistentStreamer, nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get latest streamer: %w", err)
	}
	return latest.Name, nil
}

// History returns every recorded name of a streamer, oldest first
func (r *Reconciler) History(ctx context.Context, externalID int64) ([]*domain.Streamer, error) {
	streamers, err := r.streamerRepo.ListByExternalID(ctx, externalID)
	if err != nil {
		return nil, fmt.Errorf("failed to list streamer history: %w", err)
	}
	return streamers, nil
}
