// Package power defines the core types of the NASA POWER acquisition
// pipeline: locations, planned fetch jobs, and per-job outcomes shared by
// the planner, fetcher, dispatcher, and reducer subsystems.
package power

import (
	"fmt"
	"time"
)

// TemporalResolution selects the temporal aggregation of the provider data.
type TemporalResolution string

// Supported temporal resolutions.
const (
	TemporalDaily       TemporalResolution = "daily"
	TemporalMonthly     TemporalResolution = "monthly"
	TemporalClimatology TemporalResolution = "climatology"
)

// SpatialResolution selects point or regional queries.
type SpatialResolution string

// Supported spatial resolutions.
const (
	SpatialPoint    SpatialResolution = "point"
	SpatialRegional SpatialResolution = "regional"
)

// Community is the NASA POWER user community a query is issued for.
type Community string

// Supported provider communities.
const (
	CommunityRE Community = "RE" // renewable energy
	CommunityAG Community = "AG" // agroclimatology
	CommunitySB Community = "SB" // sustainable buildings
)

// JobMeta carries the per-location bookkeeping attached to a Job and echoed
// back on its Outcome.
type JobMeta struct {
	// Index is the zero-based row index in the input location table.
	Index int
	// Latitude and Longitude are the query coordinates.
	Latitude  float64
	Longitude float64
	// StartDate and EndDate are the resolved compact (YYYYMMDD) dates, or
	// empty for climatology queries where dates do not apply.
	StartDate string
	EndDate   string
	// Identifier is the caller-supplied row identifier, or idx_<N>.
	Identifier string
	// Filename is the destination file name within the output folder.
	Filename string
}

// Job is one planned fetch-and-write unit derived from a single location
// row. Jobs are immutable once planned and consumed exactly once.
type Job struct {
	// URL is the fully-resolved provider request URL.
	URL string
	// Dest is the destination file path. Uniqueness is the caller's
	// responsibility; colliding paths are overwritten last-writer-wins.
	Dest string
	Meta JobMeta
}

// Outcome is the terminal success/failure record produced for a Job.
// Exactly one Outcome exists per Job; it is never retried or mutated.
type Outcome struct {
	Meta JobMeta
	// Success reports whether the fetch completed without error. A
	// response carrying no parameter data still counts as success unless
	// the fetcher is configured otherwise.
	Success bool
	// Err holds the failure description. Empty iff Success.
	Err string
	// DownloadedAt is the completion timestamp in UTC.
	DownloadedAt time.Time
}

// ConfigError reports invalid pipeline options. It is raised before any
// network or filesystem activity and is the only error class that fails the
// whole call.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return "power: invalid configuration: " + e.Reason
}

func configErrorf(format string, args ...any) error {
	return &ConfigError{Reason: fmt.Sprintf(format, args...)}
}
