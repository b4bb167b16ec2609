package service

import (
	"context"
	"fmt"
	"strconv"

	"nicodb/internal/adapter"
	"nicodb/internal/domain"
	"nicodb/internal/extract"
	"nicodb/internal/logger"
	"nicodb/internal/metrics"
)

// Pipeline stages, used as the failure label in logs and metrics
const (
	stageFetch     = "fetch"
	stageExtract   = "extract"
	stageDecode    = "decode"
	stageNormalize = "normalize"
	stagePersist   = "persist"
)

// PageFetcher retrieves program pages
type PageFetcher interface {
	StreamingURL(streamingID string) string
	FetchPage(ctx context.Context, url string) (*adapter.Page, error)
}

// StreamingPipeline runs one program id from page request to storage.
// It implements domain.StreamingPipeline.
type StreamingPipeline struct {
	fetcher      PageFetcher
	normalizer   *extract.Normalizer
	reconciler   domain.StreamingReconciler
	placeholders domain.Placeholders
	logger       *logger.Logger
}

// NewStreamingPipeline creates a new StreamingPipeline
func NewStreamingPipeline(
	fetcher PageFetcher,
	reconciler domain.StreamingReconciler,
	placeholders domain.Placeholders,
) *StreamingPipeline {
	return &StreamingPipeline{
		fetcher:      fetcher,
		normalizer:   extract.NewNormalizer(placeholders),
		reconciler:   reconciler,
		placeholders: placeholders,
		logger:       logger.GetGlobalLogger(),
	}
}

// FetchAndStore fetches the page of a program id and persists the result.
// A non-200 page stores a placeholder record and returns OutcomeRecovered.
// Every call is bracketed by START and END log lines.
func (p *StreamingPipeline) FetchAndStore(ctx context.Context, streamingID string) (outcome domain.Outcome, err error) {
	p.logger.Info("START", map[string]interface{}{"streaming_id": streamingID})
	defer func() {
		fields := map[string]interface{}{"streaming_id": streamingID}
		if err != nil {
			fields["error"] = err
		} else {
			fields["outcome"] = outcome.String()
		}
		p.logger.Info("END", fields)
	}()

	record, outcome, stage, err := p.fetchRecord(ctx, streamingID)
	if err != nil {
		return p.fail(streamingID, stage, err)
	}

	if err := p.reconciler.Persist(ctx, record); err != nil {
		return p.fail(streamingID, stagePersist, err)
	}

	metrics.RecordOutcome(outcome.String())
	p.logger.Info("saved streaming data", map[string]interface{}{
		"streaming_id": record.ExternalID,
		"outcome":      outcome.String(),
		"status":       record.Status.String(),
		"title":        record.Title,
	})
	return outcome, nil
}

// Preview runs every stage except persistence and returns the record that
// FetchAndStore would save
func (p *StreamingPipeline) Preview(ctx context.Context, streamingID string) (domain.StreamRecord, domain.Outcome, error) {
	record, outcome, stage, err := p.fetchRecord(ctx, streamingID)
	if err != nil {
		return domain.StreamRecord{}, 0, fmt.Errorf("%s stage failed: %w", stage, err)
	}
	return record, outcome, nil
}

func (p *StreamingPipeline) fetchRecord(ctx context.Context, streamingID string) (domain.StreamRecord, domain.Outcome, string, error) {
	url := p.fetcher.StreamingURL(streamingID)

	page, err := p.fetcher.FetchPage(ctx, url)
	if err != nil {
		return domain.StreamRecord{}, 0, stageFetch, err
	}

	if !page.OK() {
		id, err := adapter.ExtractStreamingID(page.URL)
		if err != nil {
			return domain.StreamRecord{}, 0, stageFetch, err
		}
		p.logger.Warn("streaming page not available", map[string]interface{}{
			"streaming_id": id,
			"status_code":  page.StatusCode,
			"url":          page.URL,
		})
		record := p.placeholders.UnreachableRecord(strconv.FormatInt(id, 10), page.StatusCode)
		return record, domain.OutcomeRecovered, "", nil
	}

	node, err := extract.LocateEmbeddedNode(page.Body)
	if err != nil {
		return domain.StreamRecord{}, 0, stageExtract, err
	}

	payload, err := extract.DecodePayload(node)
	if err != nil {
		return domain.StreamRecord{}, 0, stageDecode, err
	}

	record, err := p.normalizer.Normalize(payload)
	if err != nil {
		return domain.StreamRecord{}, 0, stageNormalize, err
	}

	return record, domain.OutcomeStored, "", nil
}

func (p *StreamingPipeline) fail(streamingID, stage string, err error) (domain.Outcome, error) {
	metrics.RecordFailure(stage)
	p.logger.Error("failed to process streaming", map[string]interface{}{
		"streaming_id": streamingID,
		"stage":        stage,
		"error":        err,
	})
	return 0, err
}
