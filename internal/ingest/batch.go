package ingest

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"lqsmatch/internal/logging"
)

// runBatch fans rows out over a bounded worker pool. Every row produces a
// RowResult at its input index; a cancelled context marks unstarted rows
// failed instead of dropping them silently.
func (e *Engine) runBatch(ctx context.Context, agencyID, kind string, total int, fn func(context.Context, int) RowResult) (*BatchReport, error) {
	report := &BatchReport{
		RunID:    uuid.NewString(),
		AgencyID: agencyID,
		Kind:     kind,
		Results:  make([]RowResult, total),
	}
	logger := e.logger.With(
		logging.String(logging.FieldRunID, report.RunID),
		logging.String(logging.FieldAgencyID, agencyID),
		logging.String(logging.FieldEventType, kind),
	)

	start := time.Now()
	logger.Info("batch started", logging.Int("rows", total))

	group, groupCtx := errgroup.WithContext(ctx)
	workers := e.cfg.Batch.Workers
	if workers < 1 {
		workers = 1
	}
	group.SetLimit(workers)

	for i := 0; i < total; i++ {
		index := i
		group.Go(func() error {
			select {
			case <-groupCtx.Done():
				report.Results[index] = failedResult(index, groupCtx.Err())
				return nil
			default:
			}
			result := fn(groupCtx, index)
			report.Results[index] = result
			logger.Debug("row processed",
				logging.Int(logging.FieldRowIndex, index),
				logging.String(logging.FieldOutcome, string(result.Status)),
				logging.String("reason", result.Reason),
				logging.Int64(logging.FieldHousehold, result.HouseholdID),
			)
			return nil
		})
	}
	_ = group.Wait()

	logger.Info("batch finished",
		logging.Int("rows", total),
		logging.Int("created", report.Count(StatusCreated)),
		logging.Int("updated", report.Count(StatusUpdated)),
		logging.Int("matched", report.Count(StatusMatched)),
		logging.Int("flagged", report.Count(StatusFlagged)),
		logging.Int("skipped", report.Count(StatusSkippedInvalid)),
		logging.Int("failed", report.Count(StatusFailed)),
		logging.Duration("elapsed", time.Since(start)),
	)

	if err := ctx.Err(); err != nil {
		return report, err
	}
	return report, nil
}
