package service

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/google/uuid"

	"nicodb/internal/domain"
	"nicodb/internal/logger"
)

// IDRange is an inclusive range of program ids
type IDRange struct {
	Start int64
	End   int64
}

// Len returns the number of ids in the range
func (r IDRange) Len() int64 {
	return r.End - r.Start + 1
}

// ResolveRange validates the command line range. A nil end means the range
// holds only start.
func ResolveRange(start int64, end *int64) (IDRange, error) {
	if start < 0 {
		return IDRange{}, fmt.Errorf("%w: start id must not be negative, got %d", domain.ErrInvalidInput, start)
	}

	r := IDRange{Start: start, End: start}
	if end != nil {
		r.End = *end
	}
	if r.Start > r.End {
		return IDRange{}, &domain.InvalidRangeError{Start: r.Start, End: r.End}
	}
	return r, nil
}

// RangeResult contains the results of a range run
type RangeResult struct {
	Range     IDRange
	Stored    []int64
	Recovered []int64
	Failed    []int64
	Errors    []error
	Cancelled bool
	Elapsed   time.Duration
}

// Processed returns the number of ids that were attempted
func (r *RangeResult) Processed() int {
	return len(r.Stored) + len(r.Recovered) + len(r.Failed)
}

// RangeRunner runs the pipeline for every id of a range, in ascending order,
// one id at a time
type RangeRunner struct {
	pipeline domain.StreamingPipeline
	logger   *logger.Logger
}

// NewRangeRunner creates a new RangeRunner
func NewRangeRunner(pipeline domain.StreamingPipeline) *RangeRunner {
	return &RangeRunner{
		pipeline: pipeline,
		logger:   logger.GetGlobalLogger(),
	}
}

// Run processes the range. Per-id failures are logged and skipped. Cancelling
// ctx stops the run before the next id; the id in flight always completes.
func (r *RangeRunner) Run(ctx context.Context, ids IDRange) *RangeResult {
	result := &RangeResult{Range: ids}
	log := r.logger.WithField("run_id", uuid.New().String())
	started := time.Now()

	log.Info("START", map[string]interface{}{
		"start_id": ids.Start,
		"end_id":   ids.End,
	})

	for id := ids.Start; id <= ids.End; id++ {
		if ctx.Err() != nil {
			result.Cancelled = true
			log.Warn("range interrupted", map[string]interface{}{
				"next_id": id,
				"error":   ctx.Err(),
			})
			break
		}

		outcome, err := r.pipeline.FetchAndStore(context.WithoutCancel(ctx), strconv.FormatInt(id, 10))
		switch {
		case err != nil:
			result.Failed = append(result.Failed, id)
			result.Errors = append(result.Errors, fmt.Errorf("streaming %d: %w", id, err))
			log.Error("failed to fetch streaming data", map[string]interface{}{
				"streaming_id": id,
				"error":        err,
			})
		case outcome == domain.OutcomeRecovered:
			result.Recovered = append(result.Recovered, id)
		default:
			result.Stored = append(result.Stored, id)
		}

		if id == math.MaxInt64 {
			break
		}
	}

	result.Elapsed = time.Since(started)
	log.Info("END", map[string]interface{}{
		"start_id":  ids.Start,
		"end_id":    ids.End,
		"stored":    len(result.Stored),
		"recovered": len(result.Recovered),
		"failed":    len(result.Failed),
		"cancelled": result.Cancelled,
		"elapsed":   result.Elapsed,
	})

	return result
}
