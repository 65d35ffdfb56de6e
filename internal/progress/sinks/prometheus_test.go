package sinks

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/climex-dev/climex/internal/progress"
)

func TestPrometheusSinkCounts(t *testing.T) {
	t.Parallel()

	registry := prometheus.NewRegistry()
	sink, err := NewPrometheusSink(registry)
	require.NoError(t, err)

	batchID := uuid.New()
	now := time.Now().UTC()
	batch := []progress.Event{
		{BatchID: batchID, TS: now, Stage: progress.StageBatchStart, Total: 3},
		{BatchID: batchID, TS: now, Stage: progress.StageJobDone, Completed: 1, Total: 3, Success: true, Dur: time.Second},
		{BatchID: batchID, TS: now, Stage: progress.StageJobDone, Completed: 2, Total: 3, Success: true, Dur: time.Second},
		{BatchID: batchID, TS: now, Stage: progress.StageJobDone, Completed: 3, Total: 3, Success: false, Dur: time.Second},
		{BatchID: batchID, TS: now, Stage: progress.StageBatchDone, Total: 3, Dur: 3 * time.Second},
	}
	require.NoError(t, sink.Consume(context.Background(), batch))

	require.Equal(t, 1.0, testutil.ToFloat64(sink.batchesStarted))
	require.Equal(t, 1.0, testutil.ToFloat64(sink.batchesCompleted))
	require.Equal(t, 2.0, testutil.ToFloat64(sink.jobsCompleted.WithLabelValues("success")))
	require.Equal(t, 1.0, testutil.ToFloat64(sink.jobsCompleted.WithLabelValues("failure")))
	require.Equal(t, 1.0, testutil.ToFloat64(sink.batchProgress))
}

func TestPrometheusSinkDoubleRegister(t *testing.T) {
	t.Parallel()

	registry := prometheus.NewRegistry()
	_, err := NewPrometheusSink(registry)
	require.NoError(t, err)

	_, err = NewPrometheusSink(registry)
	require.Error(t, err, "registering the same collectors twice must fail")
}
