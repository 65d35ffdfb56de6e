package power

import (
	"time"

	"github.com/climex-dev/climex/internal/table"
)

// Default query settings, matching the provider's renewable-energy daily
// point product.
const (
	DefaultStartDate = "20150101"
	DefaultEndDate   = "20150305"
	DefaultProcesses = 5
)

// DefaultParameters is the temperature parameter set requested when the
// caller does not name any.
var DefaultParameters = []string{"T2M", "T2MDEW", "T2MWET", "TS", "T2M_RANGE", "T2M_MAX", "T2M_MIN"}

// Options configures a download batch.
type Options struct {
	// LatitudeColumn and LongitudeColumn name the coordinate columns in
	// the input location table.
	LatitudeColumn  string
	LongitudeColumn string

	// StartDate and EndDate are the global compact (YYYYMMDD) date range,
	// used for every row that has no per-row dates. Ignored for
	// climatology queries.
	StartDate string
	EndDate   string

	// Parameters is the list of climate variables to request.
	Parameters []string

	Temporal  TemporalResolution
	Spatial   SpatialResolution
	Community Community

	// StartColumn and EndColumn optionally name per-row date columns that
	// override the global range. IDColumn optionally names the column used
	// for destination file names; rows fall back to idx_<N>.
	StartColumn string
	EndColumn   string
	IDColumn    string

	// OutputFolder receives one CSV file per successful non-empty job.
	OutputFolder string

	// Processes requests pool concurrency; capped at the provider's
	// courtesy limit of 5 by the dispatcher.
	Processes int

	// Consolidate requests the merged table of all downloaded files
	// instead of the per-job summary.
	Consolidate bool

	// InsecureSkipVerify disables TLS certificate verification on the
	// fetch transport. Off by default.
	InsecureSkipVerify bool

	// FailOnMissingData makes a response without parameter data count as
	// a failed outcome instead of a silent success.
	FailOnMissingData bool
}

// WithDefaults returns a copy of o with unset fields replaced by the
// package defaults.
func (o Options) WithDefaults() Options {
	if o.LatitudeColumn == "" {
		o.LatitudeColumn = "latitude"
	}
	if o.LongitudeColumn == "" {
		o.LongitudeColumn = "longitude"
	}
	if o.StartDate == "" {
		o.StartDate = DefaultStartDate
	}
	if o.EndDate == "" {
		o.EndDate = DefaultEndDate
	}
	if len(o.Parameters) == 0 {
		o.Parameters = append([]string(nil), DefaultParameters...)
	}
	if o.Temporal == "" {
		o.Temporal = TemporalDaily
	}
	if o.Spatial == "" {
		o.Spatial = SpatialPoint
	}
	if o.Community == "" {
		o.Community = CommunityRE
	}
	if o.OutputFolder == "" {
		o.OutputFolder = "./nasa_power_data"
	}
	if o.Processes <= 0 {
		o.Processes = DefaultProcesses
	}
	return o
}

// Validate checks o against the location table. It performs no I/O; a
// violation is reported as a *ConfigError before any side effect occurs.
func (o Options) Validate(locations *table.Table) error {
	if locations == nil {
		return configErrorf("location table is required")
	}
	if !locations.HasColumn(o.LatitudeColumn) || !locations.HasColumn(o.LongitudeColumn) {
		return configErrorf("location table must contain columns %q and %q", o.LatitudeColumn, o.LongitudeColumn)
	}
	if len(o.Parameters) == 0 {
		return configErrorf("at least one parameter is required")
	}
	switch o.Temporal {
	case TemporalDaily, TemporalMonthly, TemporalClimatology:
	default:
		return configErrorf("temporal resolution %q must be one of daily, monthly, climatology", o.Temporal)
	}
	switch o.Spatial {
	case SpatialPoint, SpatialRegional:
	default:
		return configErrorf("spatial resolution %q must be one of point, regional", o.Spatial)
	}
	switch o.Community {
	case CommunityRE, CommunityAG, CommunitySB:
	default:
		return configErrorf("community %q must be one of RE, AG, SB", o.Community)
	}
	if o.OutputFolder == "" {
		return configErrorf("output folder is required")
	}
	return nil
}

// dateLayouts are the accepted input layouts for per-row date columns.
var dateLayouts = []string{
	"20060102",
	"2006-01-02",
	"2006/01/02",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// parseCompactDate parses a per-row date value and reformats it to the
// provider's compact YYYYMMDD form.
func parseCompactDate(value string) (string, error) {
	for _, layout := range dateLayouts {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts.Format("20060102"), nil
		}
	}
	return "", configErrorf("cannot parse date %q", value)
}
