package domain

import "context"

// StreamingPipeline fetches, extracts, decodes, normalizes and persists one program id.
// A non-200 page is not an error: a placeholder record is saved and
// OutcomeRecovered is returned.
type StreamingPipeline interface {
	FetchAndStore(ctx context.Context, streamingID string) (Outcome, error)
}

// StreamingReconciler maps a StreamRecord onto the persisted entities
type StreamingReconciler interface {
	// ResolveOrCreateStreamer returns the latest row for the external id, appending
	// a new row when none exists or the name changed
	ResolveOrCreateStreamer(ctx context.Context, externalID int64, name string) (*Streamer, error)

	// UpsertChannel inserts the channel or overwrites its names in place
	UpsertChannel(ctx context.Context, externalID int64, name, companyName string) (*Channel, error)

	// UpsertStreaming inserts the program or overwrites every mutable field
	UpsertStreaming(ctx context.Context, record StreamRecord, streamer *Streamer, channel *Channel) (*Streaming, error)

	// Persist runs the three operations above in order
	Persist(ctx context.Context, record StreamRecord) error
}

// StreamerLookup answers questions about the streamer name history
type StreamerLookup interface {
	// LatestName returns the current name for the external id, or a fixed
	// "nonexistent streamer" message when the id has never been seen
	LatestName(ctx context.Context, externalID int64) (string, error)

	// History returns every recorded name for the external id, oldest first
	History(ctx context.Context, externalID int64) ([]*Streamer, error)
}
