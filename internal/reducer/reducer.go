// Package reducer aggregates per-job outcomes into the summary table and
// optionally consolidates the downloaded files into a single table.
package reducer

import (
	"os"
	"path/filepath"
	"strconv"

	"go.uber.org/zap"

	"github.com/climex-dev/climex/internal/power"
	"github.com/climex-dev/climex/internal/table"
)

// summaryColumns is the flattened outcome layout, one row per job.
var summaryColumns = []string{
	"index", "latitude", "longitude", "start_date", "end_date",
	"identifier", "filename", "success", "error", "downloaded_at",
}

// Reducer builds result tables from collected outcomes.
type Reducer struct {
	logger *zap.Logger
}

// New constructs a Reducer.
func New(logger *zap.Logger) *Reducer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reducer{logger: logger}
}

// Reduce implements the pipeline's result contract: the summary table when
// consolidate is false or nothing succeeded, otherwise the consolidated
// table of all readable downloaded files.
func (r *Reducer) Reduce(outcomes []power.Outcome, outputFolder string, consolidate bool) *table.Table {
	summary := r.Summary(outcomes)
	if !consolidate || !anySucceeded(outcomes) {
		return summary
	}
	return r.Consolidate(outcomes, outputFolder)
}

// Summary flattens every outcome into one table row, in the order outcomes
// were collected.
func (r *Reducer) Summary(outcomes []power.Outcome) *table.Table {
	t := table.New(summaryColumns...)
	for _, o := range outcomes {
		row := []string{
			strconv.Itoa(o.Meta.Index),
			strconv.FormatFloat(o.Meta.Latitude, 'f', -1, 64),
			strconv.FormatFloat(o.Meta.Longitude, 'f', -1, 64),
			o.Meta.StartDate,
			o.Meta.EndDate,
			o.Meta.Identifier,
			o.Meta.Filename,
			strconv.FormatBool(o.Success),
			o.Err,
			o.DownloadedAt.Format("2006-01-02 15:04:05"),
		}
		// Row width matches summaryColumns by construction.
		_ = t.AppendRow(row)
	}
	return t
}

// Consolidate re-reads the destination file of every successful outcome and
// concatenates them row-wise with a column union. Files that are missing,
// unreadable, or empty are skipped with a warning; a job that succeeded
// without data legitimately has no file. Returns an empty table when
// nothing was readable.
func (r *Reducer) Consolidate(outcomes []power.Outcome, outputFolder string) *table.Table {
	merged := table.New()
	loaded := 0
	for _, o := range outcomes {
		if !o.Success {
			continue
		}
		path := filepath.Join(outputFolder, o.Meta.Filename)
		part, err := readPart(path)
		if err != nil {
			r.logger.Warn("skipping unreadable download",
				zap.String("filename", o.Meta.Filename),
				zap.Error(err),
			)
			continue
		}
		if part.Empty() {
			r.logger.Warn("skipping empty download", zap.String("filename", o.Meta.Filename))
			continue
		}
		merged.Concat(part)
		loaded++
	}
	r.logger.Info("consolidated downloads",
		zap.Int("files", loaded),
		zap.Int("rows", merged.Len()),
	)
	return merged
}

func readPart(path string) (*table.Table, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	return table.ReadCSV(path)
}

func anySucceeded(outcomes []power.Outcome) bool {
	for _, o := range outcomes {
		if o.Success {
			return true
		}
	}
	return false
}
