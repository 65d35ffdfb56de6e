// Package centroid loads municipality centroid reference tables and filters
// them by state. It is a standalone helper, independent of the download
// pipeline.
package centroid

import (
	"fmt"

	"github.com/climex-dev/climex/internal/table"
)

// geoColumn is the geographic code column the reference table is keyed by.
const geoColumn = "CVEGEO"

// LoadState reads the centroid CSV at path and returns only the rows whose
// geographic code ends with the given 3-character state code. The derived
// state code is not part of the returned table.
func LoadState(path, state string) (*table.Table, error) {
	if len(state) != 3 {
		return nil, fmt.Errorf("state code %q must be 3 characters", state)
	}
	src, err := table.ReadCSV(path)
	if err != nil {
		return nil, err
	}
	if !src.HasColumn(geoColumn) {
		return nil, fmt.Errorf("%s: missing %s column", path, geoColumn)
	}

	out := table.New(src.Columns()...)
	for i := 0; i < src.Len(); i++ {
		code := src.Cell(i, geoColumn)
		if len(code) < 3 || code[len(code)-3:] != state {
			continue
		}
		if err := out.AppendRow(src.Row(i)); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}
	return out, nil
}
