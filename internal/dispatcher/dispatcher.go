// Package dispatcher manages worker fan-out over the planned job list.
package dispatcher

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/climex-dev/climex/internal/power"
	"github.com/climex-dev/climex/internal/progress"
)

// MaxInFlight caps pool concurrency regardless of the requested value. The
// provider asks clients to keep at most five requests in flight.
const MaxInFlight = 5

// Executor runs a single job to completion. *fetcher.Fetcher satisfies it.
type Executor interface {
	Execute(ctx context.Context, job power.Job) power.Outcome
}

// Dispatcher fans planned jobs out to a bounded pool of executors and
// collects their outcomes behind a synchronous barrier.
type Dispatcher struct {
	executor Executor
	emitter  progress.Emitter
	logger   *zap.Logger
}

// New creates a Dispatcher. emitter may be nil when no progress reporting
// is wanted.
func New(executor Executor, emitter progress.Emitter, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		executor: executor,
		emitter:  emitter,
		logger:   logger,
	}
}

// Run executes every job with at most min(processes, MaxInFlight) workers
// and blocks until all outcomes are collected. Outcomes arrive in
// completion order, not input order. One progress event is emitted per
// completion with a monotone fraction; in-flight jobs are never canceled
// once dispatched.
func (d *Dispatcher) Run(ctx context.Context, jobs []power.Job, processes int) []power.Outcome {
	workers := processes
	if workers <= 0 {
		workers = 1
	}
	if workers > MaxInFlight {
		workers = MaxInFlight
	}

	batchID := uuid.New()
	started := time.Now()
	d.emit(progress.Event{
		BatchID: batchID,
		TS:      started.UTC(),
		Stage:   progress.StageBatchStart,
		Total:   len(jobs),
	})
	d.logger.Info("dispatching batch",
		zap.String("batch_id", batchID.String()),
		zap.Int("jobs", len(jobs)),
		zap.Int("workers", workers),
	)

	feed := make(chan power.Job)
	results := make(chan timedOutcome)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range feed {
				begin := time.Now()
				outcome := d.executor.Execute(ctx, job)
				results <- timedOutcome{outcome: outcome, url: job.URL, dur: time.Since(begin)}
			}
		}()
	}

	go func() {
		defer close(feed)
		for _, job := range jobs {
			feed <- job
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	outcomes := make([]power.Outcome, 0, len(jobs))
	for res := range results {
		outcomes = append(outcomes, res.outcome)
		d.emit(progress.Event{
			BatchID:    batchID,
			TS:         time.Now().UTC(),
			Stage:      progress.StageJobDone,
			Identifier: res.outcome.Meta.Identifier,
			URL:        res.url,
			Completed:  len(outcomes),
			Total:      len(jobs),
			Success:    res.outcome.Success,
			Dur:        res.dur,
			Note:       res.outcome.Err,
		})
	}

	d.emit(progress.Event{
		BatchID: batchID,
		TS:      time.Now().UTC(),
		Stage:   progress.StageBatchDone,
		Total:   len(jobs),
		Dur:     time.Since(started),
	})
	return outcomes
}

func (d *Dispatcher) emit(evt progress.Event) {
	if d.emitter == nil {
		return
	}
	d.emitter.Emit(evt)
}

type timedOutcome struct {
	outcome power.Outcome
	url     string
	dur     time.Duration
}
