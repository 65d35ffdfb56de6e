// Package fetcher executes planned fetch jobs: one HTTP GET against the
// provider per job, response normalization into a tabular file, and
// conversion of every failure mode into a recorded outcome.
package fetcher

import (
	"context"
	"crypto/tls"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/climex-dev/climex/internal/power"
)

// DefaultTimeout bounds each provider request.
const DefaultTimeout = 30 * time.Second

// Config controls Fetcher behavior.
type Config struct {
	// Timeout bounds each HTTP request. Defaults to DefaultTimeout.
	Timeout time.Duration
	// InsecureSkipVerify disables TLS certificate verification on this
	// fetcher's transport only. Verification is on by default.
	InsecureSkipVerify bool
	// FailOnMissingData makes responses without parameter data count as
	// failures instead of silent successes.
	FailOnMissingData bool
}

// Fetcher downloads provider responses and writes them as CSV files.
type Fetcher struct {
	client        *http.Client
	failOnMissing bool
	logger        *zap.Logger
}

// New constructs a Fetcher.
func New(cfg Config, logger *zap.Logger) *Fetcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	transport := http.DefaultTransport
	if cfg.InsecureSkipVerify {
		transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true}, // #nosec G402 -- explicit caller opt-in
		}
	}
	return &Fetcher{
		client: &http.Client{
			Transport: transport,
			Timeout:   cfg.Timeout,
		},
		failOnMissing: cfg.FailOnMissingData,
		logger:        logger,
	}
}

// Execute runs one job to completion. It never returns an error: network,
// parse, and write failures all degrade to a failed Outcome so one bad
// location cannot abort the batch.
func (f *Fetcher) Execute(ctx context.Context, job power.Job) power.Outcome {
	outcome := power.Outcome{Meta: job.Meta, Success: true}
	if err := f.execute(ctx, job); err != nil {
		outcome.Success = false
		outcome.Err = err.Error()
		f.logger.Debug("job failed",
			zap.String("identifier", job.Meta.Identifier),
			zap.Error(err),
		)
	}
	outcome.DownloadedAt = time.Now().UTC()
	return outcome
}

func (f *Fetcher) execute(ctx context.Context, job power.Job) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, job.URL, nil)
	if err != nil {
		return err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	params, found, err := parseParameters(resp.Body)
	if err != nil {
		return err
	}
	if !found {
		// No parameter block: success with no file written, unless the
		// caller opted into strict mode.
		if f.failOnMissing {
			return errMissingParameterData
		}
		f.logger.Debug("response carried no parameter data",
			zap.String("identifier", job.Meta.Identifier),
			zap.Int("status", resp.StatusCode),
		)
		return nil
	}

	tbl := buildTable(job.Meta, params)
	if tbl.Empty() {
		return nil
	}
	if err := tbl.WriteCSV(job.Dest); err != nil {
		return err
	}
	return nil
}
