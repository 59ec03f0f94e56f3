package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/docuflow/doc-scanner/internal/events"
	"github.com/docuflow/doc-scanner/internal/extractor"
	"github.com/docuflow/doc-scanner/internal/store"
	"github.com/docuflow/doc-scanner/internal/store/model"
	"github.com/docuflow/doc-scanner/pkg/metrics"
)

// Broadcaster pushes events to live subscribers. Satisfied by ws.Hub.
type Broadcaster interface {
	Broadcast(event any)
}

const (
	// Advisory per-file estimate returned to the batch caller. Real progress
	// is observed on the push channel only.
	perFileEstimateSeconds = 5
)

// BatchResult is what the batch trigger returns immediately, before any
// task has finished.
type BatchResult struct {
	ScheduledIDs     []uint
	Count            int
	EstimatedSeconds int
}

// Runner schedules one independent background task per pending upload.
// Tasks are tracked so in-flight work can be drained on shutdown.
type Runner struct {
	store     store.Store
	hub       Broadcaster
	extractor extractor.Extractor
	timeout   time.Duration

	wg       sync.WaitGroup
	mu       sync.Mutex
	inFlight map[uint]struct{}
}

func NewRunner(s store.Store, hub Broadcaster, ex extractor.Extractor, timeout time.Duration) *Runner {
	return &Runner{
		store:     s,
		hub:       hub,
		extractor: ex,
		timeout:   timeout,
		inFlight:  make(map[uint]struct{}),
	}
}

// EnqueuePendingBatch queries all pending uploads and schedules a task for
// each. It returns as soon as the tasks are spawned; a store query failure
// is the only error surfaced to the caller.
func (r *Runner) EnqueuePendingBatch(ctx context.Context) (BatchResult, error) {
	pending, err := r.store.Upload().List(ctx,
		store.NewUploadQueryFilter().ByStatus(model.UploadStatusPending), nil)
	if err != nil {
		return BatchResult{}, fmt.Errorf("failed to query pending uploads: %w", err)
	}

	if len(pending) == 0 {
		return BatchResult{ScheduledIDs: []uint{}}, nil
	}

	ids := make([]uint, 0, len(pending))
	for _, upload := range pending {
		ids = append(ids, upload.ID)

		r.mu.Lock()
		r.inFlight[upload.ID] = struct{}{}
		r.mu.Unlock()

		r.wg.Add(1)
		go r.process(upload)
	}

	zap.S().Named("jobs").Infow("batch scheduled", "count", len(ids), "ids", ids)

	return BatchResult{
		ScheduledIDs:     ids,
		Count:            len(ids),
		EstimatedSeconds: len(ids) * perFileEstimateSeconds,
	}, nil
}

// InFlight reports the number of tasks that have been scheduled but have
// not reached a terminal outcome yet.
func (r *Runner) InFlight() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.inFlight)
}

// Drain blocks until all in-flight tasks finish or the context expires.
func (r *Runner) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("drain interrupted with %d tasks in flight: %w", r.InFlight(), ctx.Err())
	}
}

// process runs one task to a terminal outcome. It is an isolated failure
// domain: any fault, including a panic, ends as a failed status on this
// record and never reaches the batch caller or other tasks.
func (r *Runner) process(upload model.Upload) {
	// Tasks outlive the triggering request on purpose.
	ctx := context.Background()
	logger := zap.S().Named("jobs").With("file_id", upload.ID, "filename", upload.Filename)

	defer func() {
		if fault := recover(); fault != nil {
			logger.Errorw("task panicked", "panic", fault)
			r.markFailed(ctx, upload.ID, fmt.Sprintf("%v", fault), metrics.ExtractionOutcomeFailed)
		}

		r.mu.Lock()
		delete(r.inFlight, upload.ID)
		r.mu.Unlock()
		r.wg.Done()
	}()

	if _, err := r.store.Upload().Update(ctx, upload.ID, map[string]any{
		"status": model.UploadStatusAnalyzing,
	}); err != nil {
		logger.Errorw("failed to mark upload analyzing", "error", err)
		r.markFailed(ctx, upload.ID, fmt.Sprintf("store unavailable: %v", err), metrics.ExtractionOutcomeFailed)
		return
	}
	r.hub.Broadcast(events.NewFileStatus(upload.ID, model.UploadStatusAnalyzing, map[string]any{
		"filename": upload.Filename,
		"message":  "Analysis started",
	}))

	r.hub.Broadcast(events.NewAnalysisProgress(upload.ID, 10, "initializing"))
	r.hub.Broadcast(events.NewAnalysisProgress(upload.ID, 30, "extracting"))

	result, timedOut := r.extractBounded(ctx, upload.RawContent)

	switch {
	case timedOut:
		logger.Warnw("extraction timed out", "timeout", r.timeout)
		r.markFailed(ctx, upload.ID, result.Error, metrics.ExtractionOutcomeTimeout)

	case !result.Success:
		logger.Warnw("extraction failed", "error", result.Error)
		r.markFailed(ctx, upload.ID, result.Error, metrics.ExtractionOutcomeFailed)

	default:
		r.hub.Broadcast(events.NewAnalysisProgress(upload.ID, 80, "post-processing"))

		data, err := json.Marshal(result.Data)
		if err != nil {
			logger.Errorw("failed to serialize extracted data", "error", err)
			r.markFailed(ctx, upload.ID, fmt.Sprintf("failed to serialize extracted data: %v", err), metrics.ExtractionOutcomeFailed)
			return
		}

		if _, err := r.store.Upload().Update(ctx, upload.ID, map[string]any{
			"status":         model.UploadStatusCompleted,
			"extracted_data": data,
			"error_message":  nil,
		}); err != nil {
			logger.Errorw("failed to persist extraction result", "error", err)
			r.markFailed(ctx, upload.ID, fmt.Sprintf("store unavailable: %v", err), metrics.ExtractionOutcomeFailed)
			return
		}

		r.hub.Broadcast(events.NewAnalysisProgress(upload.ID, 100, "completed"))
		r.hub.Broadcast(events.NewFileStatus(upload.ID, model.UploadStatusCompleted, map[string]any{
			"filename":       upload.Filename,
			"extracted_data": result.Data,
		}))
		metrics.IncreaseExtractionsTotalMetric(metrics.ExtractionOutcomeCompleted)
		logger.Infow("extraction completed")
	}
}

// extractBounded invokes the extractor with a hard wall-clock bound. The
// extractor call is not cancellable; on timeout the pending result is
// abandoned and later discarded through the buffered channel, never awaited
// twice.
func (r *Runner) extractBounded(ctx context.Context, content []byte) (extractor.Result, bool) {
	resultCh := make(chan extractor.Result, 1)

	go func() {
		// The extractor contract forbids panics, but a fault here would
		// escape the task-boundary recover in process. Contain it and
		// report it as a failed result instead.
		defer func() {
			if fault := recover(); fault != nil {
				zap.S().Named("jobs").Errorw("extractor panicked", "panic", fault)
				resultCh <- extractor.Failure(fmt.Sprintf("extractor fault: %v", fault))
			}
		}()
		resultCh <- r.extractor.Extract(ctx, content)
	}()

	timer := time.NewTimer(r.timeout)
	defer timer.Stop()

	select {
	case result := <-resultCh:
		return result, false
	case <-timer.C:
		return extractor.Failure(fmt.Sprintf("timeout: extraction did not complete within %s", r.timeout)), true
	}
}

// markFailed records the terminal failure and emits the matching event.
// Best effort: if the store itself is down the update is lost, which is an
// acknowledged gap.
func (r *Runner) markFailed(ctx context.Context, id uint, message, outcome string) {
	if _, err := r.store.Upload().Update(ctx, id, map[string]any{
		"status":         model.UploadStatusFailed,
		"error_message":  message,
		"extracted_data": nil,
	}); err != nil {
		zap.S().Named("jobs").Errorw("failed to persist failure", "file_id", id, "error", err)
	}

	r.hub.Broadcast(events.NewFileStatus(id, model.UploadStatusFailed, map[string]any{
		"error": message,
	}))
	metrics.IncreaseExtractionsTotalMetric(outcome)
}
