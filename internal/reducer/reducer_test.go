package reducer

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/climex-dev/climex/internal/power"
	"github.com/climex-dev/climex/internal/table"
)

func outcomeFixture(index int, success bool) power.Outcome {
	o := power.Outcome{
		Meta: power.JobMeta{
			Index:      index,
			Latitude:   19.4,
			Longitude:  -99.1,
			StartDate:  "20150101",
			EndDate:    "20150305",
			Identifier: "idx_" + string(rune('0'+index)),
			Filename:   "idx_" + string(rune('0'+index)) + ".csv",
		},
		Success:      success,
		DownloadedAt: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}
	if !success {
		o.Err = "connection refused"
	}
	return o
}

func writeDownload(t *testing.T, folder, name string, cols []string, rows [][]string) {
	t.Helper()
	tbl := table.New(cols...)
	for _, row := range rows {
		require.NoError(t, tbl.AppendRow(row))
	}
	require.NoError(t, tbl.WriteCSV(filepath.Join(folder, name)))
}

func TestSummaryOneRowPerOutcome(t *testing.T) {
	t.Parallel()

	outcomes := []power.Outcome{outcomeFixture(0, true), outcomeFixture(1, false)}
	summary := New(zap.NewNop()).Summary(outcomes)

	require.Equal(t, summaryColumns, summary.Columns())
	require.Equal(t, 2, summary.Len())
	require.Equal(t, "true", summary.Cell(0, "success"))
	require.Equal(t, "", summary.Cell(0, "error"))
	require.Equal(t, "false", summary.Cell(1, "success"))
	require.Equal(t, "connection refused", summary.Cell(1, "error"))
	require.Equal(t, "2026-08-01 12:00:00", summary.Cell(0, "downloaded_at"))
}

func TestReduceReturnsSummaryWithoutConsolidation(t *testing.T) {
	t.Parallel()

	outcomes := []power.Outcome{outcomeFixture(0, true)}
	got := New(zap.NewNop()).Reduce(outcomes, t.TempDir(), false)
	require.Equal(t, summaryColumns, got.Columns())
}

func TestReduceReturnsSummaryWhenNothingSucceeded(t *testing.T) {
	t.Parallel()

	outcomes := []power.Outcome{outcomeFixture(0, false), outcomeFixture(1, false)}
	got := New(zap.NewNop()).Reduce(outcomes, t.TempDir(), true)
	require.Equal(t, summaryColumns, got.Columns())
	require.Equal(t, 2, got.Len())
}

func TestConsolidateMergesReadableFiles(t *testing.T) {
	t.Parallel()

	folder := t.TempDir()
	writeDownload(t, folder, "idx_0.csv",
		[]string{"identifier", "latitude", "longitude", "date", "T2M"},
		[][]string{{"idx_0", "19.4", "-99.1", "2015-01-01", "13.4"}})
	writeDownload(t, folder, "idx_1.csv",
		[]string{"identifier", "latitude", "longitude", "date", "RH2M"},
		[][]string{{"idx_1", "20.6", "-103.3", "2015-01-01", "81"}})

	outcomes := []power.Outcome{
		outcomeFixture(0, true),
		outcomeFixture(1, true),
		outcomeFixture(2, false), // failed jobs are never read back
	}
	got := New(zap.NewNop()).Consolidate(outcomes, folder)

	require.Equal(t, 2, got.Len())
	require.Equal(t, []string{"identifier", "latitude", "longitude", "date", "T2M", "RH2M"}, got.Columns())
	require.Equal(t, "13.4", got.Cell(0, "T2M"))
	require.Equal(t, "", got.Cell(0, "RH2M"), "column union leaves gaps empty")
	require.Equal(t, "81", got.Cell(1, "RH2M"))
}

func TestConsolidateSkipsMissingAndEmptyFiles(t *testing.T) {
	t.Parallel()

	folder := t.TempDir()
	writeDownload(t, folder, "idx_0.csv",
		[]string{"identifier", "T2M"},
		[][]string{{"idx_0", "13.4"}})
	// idx_1.csv intentionally absent (the silent-non-failure case).
	require.NoError(t, os.WriteFile(filepath.Join(folder, "idx_2.csv"), nil, 0o600))

	outcomes := []power.Outcome{
		outcomeFixture(0, true),
		outcomeFixture(1, true),
		outcomeFixture(2, true),
	}
	got := New(zap.NewNop()).Consolidate(outcomes, folder)
	require.Equal(t, 1, got.Len())
}

func TestConsolidateNothingReadableReturnsEmpty(t *testing.T) {
	t.Parallel()

	outcomes := []power.Outcome{outcomeFixture(0, true)}
	got := New(zap.NewNop()).Consolidate(outcomes, t.TempDir())
	require.True(t, got.Empty())
}

func TestConsolidateIdempotent(t *testing.T) {
	t.Parallel()

	folder := t.TempDir()
	writeDownload(t, folder, "idx_0.csv",
		[]string{"identifier", "T2M"},
		[][]string{{"idx_0", "13.4"}, {"idx_0", "14.2"}})

	outcomes := []power.Outcome{outcomeFixture(0, true)}
	r := New(zap.NewNop())

	first := r.Consolidate(outcomes, folder)
	second := r.Consolidate(outcomes, folder)

	require.Equal(t, first.Columns(), second.Columns())
	require.Equal(t, first.Len(), second.Len())
	for i := 0; i < first.Len(); i++ {
		require.Equal(t, first.Row(i), second.Row(i))
	}
}
