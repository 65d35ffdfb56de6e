package fetcher

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/climex-dev/climex/internal/power"
	"github.com/climex-dev/climex/internal/table"
)

var errMissingParameterData = errors.New("response contains no properties.parameter data")

// series holds one climate variable's period-to-value mapping in provider
// order.
type series struct {
	name    string
	periods []string
	values  map[string]string
}

// parseParameters walks the provider JSON document looking for the nested
// properties.parameter object. It uses a token decoder rather than a map so
// that variable and period order match the response body. found is false
// when the document parses but carries no parameter block.
func parseParameters(r io.Reader) (out []series, found bool, err error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	if err := expectDelim(dec, '{'); err != nil {
		return nil, false, err
	}
	for dec.More() {
		key, err := stringToken(dec)
		if err != nil {
			return nil, false, err
		}
		if key != "properties" {
			if err := skipValue(dec); err != nil {
				return nil, false, err
			}
			continue
		}
		return parseProperties(dec)
	}
	return nil, false, nil
}

func parseProperties(dec *json.Decoder) ([]series, bool, error) {
	if err := expectDelim(dec, '{'); err != nil {
		return nil, false, err
	}
	for dec.More() {
		key, err := stringToken(dec)
		if err != nil {
			return nil, false, err
		}
		if key != "parameter" {
			if err := skipValue(dec); err != nil {
				return nil, false, err
			}
			continue
		}
		out, err := parseParameterBlock(dec)
		if err != nil {
			return nil, false, err
		}
		return out, true, nil
	}
	return nil, false, nil
}

func parseParameterBlock(dec *json.Decoder) ([]series, error) {
	if err := expectDelim(dec, '{'); err != nil {
		return nil, err
	}
	var out []series
	for dec.More() {
		name, err := stringToken(dec)
		if err != nil {
			return nil, err
		}
		s := series{name: name, values: make(map[string]string)}
		if err := expectDelim(dec, '{'); err != nil {
			return nil, err
		}
		for dec.More() {
			period, err := stringToken(dec)
			if err != nil {
				return nil, err
			}
			tok, err := dec.Token()
			if err != nil {
				return nil, err
			}
			s.periods = append(s.periods, period)
			s.values[period] = scalarString(tok)
		}
		if err := expectDelim(dec, '}'); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := expectDelim(dec, '}'); err != nil {
		return nil, err
	}
	return out, nil
}

// buildTable converts the parsed series into the per-job output table. Rows
// follow the provider's period order; columns start with the job metadata
// and the date-or-period column, followed by the variables in response
// order.
func buildTable(meta power.JobMeta, params []series) *table.Table {
	periods := unionPeriods(params)
	if len(periods) == 0 || len(params) == 0 {
		return table.New()
	}

	timeCol, timeVals := periodColumn(periods)

	cols := []string{"identifier", "latitude", "longitude", timeCol}
	for _, s := range params {
		cols = append(cols, s.name)
	}
	t := table.New(cols...)

	lat := strconv.FormatFloat(meta.Latitude, 'f', -1, 64)
	lon := strconv.FormatFloat(meta.Longitude, 'f', -1, 64)
	for i, p := range periods {
		row := make([]string, 0, len(cols))
		row = append(row, meta.Identifier, lat, lon, timeVals[i])
		for _, s := range params {
			row = append(row, s.values[p])
		}
		// Row width is fixed by construction, AppendRow cannot fail here.
		_ = t.AppendRow(row)
	}
	return t
}

// periodColumn decides between the date and period representations: when
// every period key parses as a compact YYYYMMDD date the output carries a
// parsed date column, otherwise the raw keys pass through verbatim.
func periodColumn(periods []string) (string, []string) {
	dates := make([]string, len(periods))
	for i, p := range periods {
		ts, err := time.Parse("20060102", p)
		if err != nil {
			return "period", periods
		}
		dates[i] = ts.Format("2006-01-02")
	}
	return "date", dates
}

// unionPeriods merges period keys across all variables preserving
// first-seen order.
func unionPeriods(params []series) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, s := range params {
		for _, p := range s.periods {
			if _, ok := seen[p]; ok {
				continue
			}
			seen[p] = struct{}{}
			out = append(out, p)
		}
	}
	return out
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("unexpected JSON token %v, want %v", tok, want)
	}
	return nil
}

func stringToken(dec *json.Decoder) (string, error) {
	tok, err := dec.Token()
	if err != nil {
		return "", err
	}
	s, ok := tok.(string)
	if !ok {
		return "", fmt.Errorf("unexpected JSON token %v, want string", tok)
	}
	return s, nil
}

// skipValue consumes one JSON value of any shape.
func skipValue(dec *json.Decoder) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); ok && (d == '{' || d == '[') {
		depth := 1
		for depth > 0 {
			tok, err := dec.Token()
			if err != nil {
				return err
			}
			if d, ok := tok.(json.Delim); ok {
				switch d {
				case '{', '[':
					depth++
				case '}', ']':
					depth--
				}
			}
		}
	}
	return nil
}

// scalarString renders a leaf JSON value for CSV output. Numbers keep their
// wire representation.
func scalarString(tok json.Token) string {
	switch v := tok.(type) {
	case nil:
		return ""
	case json.Number:
		return v.String()
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}
