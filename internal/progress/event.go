// Package progress defines the event structures emitted by the download
// pipeline while a batch runs.
package progress

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Stage denotes the type of milestone represented by an Event.
type Stage string

// Supported progress stages.
const (
	StageBatchStart Stage = "BATCH_START"
	StageJobDone    Stage = "JOB_DONE"
	StageBatchDone  Stage = "BATCH_DONE"
)

// Event captures a single milestone of batch progress.
type Event struct {
	// BatchID uniquely identifies a download batch.
	BatchID uuid.UUID
	// TS is the UTC timestamp recorded by the emitter.
	TS time.Time
	// Stage denotes which lifecycle milestone occurred.
	Stage Stage
	// Identifier scopes job events to the originating location row.
	Identifier string
	// URL is the provider request URL for job events.
	URL string
	// Completed and Total drive the monotone completion fraction.
	Completed int
	Total     int
	// Success reports the job outcome for StageJobDone events.
	Success bool
	// Dur captures execution latency for jobs and whole batches.
	Dur time.Duration
	// Note lets emitters attach low-volume context (e.g. error text).
	Note string
}

// Fraction returns the completed share of the batch, in [0, 1].
func (e Event) Fraction() float64 {
	if e.Total <= 0 {
		return 0
	}
	return float64(e.Completed) / float64(e.Total)
}

// Validate performs coarse validation on Event payloads.
func (e Event) Validate() error {
	if e.BatchID == uuid.Nil {
		return errors.New("batch id is required")
	}
	if e.TS.IsZero() {
		return errors.New("timestamp is required")
	}
	switch e.Stage {
	case StageBatchStart, StageBatchDone:
	case StageJobDone:
		if e.Total <= 0 {
			return errors.New("job done requires a batch total")
		}
	default:
		return errors.New("unknown stage")
	}
	return nil
}
