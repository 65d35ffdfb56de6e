package power

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/climex-dev/climex/internal/table"
)

// providerHost is the NASA POWER API endpoint.
const providerHost = "power.larc.nasa.gov"

// Plan validates the options and derives one Job per location row. The
// output folder is created as a side effect of planning, only after
// validation passes. No network activity happens here.
func Plan(locations *table.Table, opts Options) ([]Job, error) {
	opts = opts.WithDefaults()
	if err := opts.Validate(locations); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(opts.OutputFolder, 0o750); err != nil {
		return nil, fmt.Errorf("create output folder: %w", err)
	}

	jobs := make([]Job, 0, locations.Len())
	for i := 0; i < locations.Len(); i++ {
		job, err := planRow(locations, i, opts)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}

func planRow(locations *table.Table, row int, opts Options) (Job, error) {
	lat, err := strconv.ParseFloat(strings.TrimSpace(locations.Cell(row, opts.LatitudeColumn)), 64)
	if err != nil {
		return Job{}, configErrorf("row %d: latitude %q is not numeric", row, locations.Cell(row, opts.LatitudeColumn))
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(locations.Cell(row, opts.LongitudeColumn)), 64)
	if err != nil {
		return Job{}, configErrorf("row %d: longitude %q is not numeric", row, locations.Cell(row, opts.LongitudeColumn))
	}

	start, end := opts.StartDate, opts.EndDate
	if opts.StartColumn != "" && locations.HasColumn(opts.StartColumn) {
		start, err = parseCompactDate(locations.Cell(row, opts.StartColumn))
		if err != nil {
			return Job{}, fmt.Errorf("row %d: start date: %w", row, err)
		}
	}
	if opts.EndColumn != "" && locations.HasColumn(opts.EndColumn) {
		end, err = parseCompactDate(locations.Cell(row, opts.EndColumn))
		if err != nil {
			return Job{}, fmt.Errorf("row %d: end date: %w", row, err)
		}
	}

	identifier := fmt.Sprintf("idx_%d", row)
	if opts.IDColumn != "" && locations.HasColumn(opts.IDColumn) {
		if v := strings.TrimSpace(locations.Cell(row, opts.IDColumn)); v != "" {
			identifier = v
		}
	}
	filename := identifier + ".csv"

	meta := JobMeta{
		Index:      row,
		Latitude:   lat,
		Longitude:  lon,
		Identifier: identifier,
		Filename:   filename,
	}
	if opts.Temporal != TemporalClimatology {
		meta.StartDate = start
		meta.EndDate = end
	}

	return Job{
		URL:  requestURL(opts, lat, lon, start, end),
		Dest: filepath.Join(opts.OutputFolder, filename),
		Meta: meta,
	}, nil
}

// requestURL builds the provider request for one location. Climatology
// queries carry no date range.
func requestURL(opts Options, lat, lon float64, start, end string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "https://%s/api/temporal/%s/%s?", providerHost, opts.Temporal, opts.Spatial)
	fmt.Fprintf(&b, "parameters=%s&community=%s", strings.Join(opts.Parameters, ","), opts.Community)
	fmt.Fprintf(&b, "&longitude=%s&latitude=%s", formatCoord(lon), formatCoord(lat))
	if opts.Temporal != TemporalClimatology {
		fmt.Fprintf(&b, "&start=%s&end=%s", start, end)
	}
	b.WriteString("&format=JSON")
	return b.String()
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
