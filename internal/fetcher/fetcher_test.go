package fetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/climex-dev/climex/internal/power"
	"github.com/climex-dev/climex/internal/table"
)

// dailyBody mimics the provider's daily point response. Key order matters:
// the decoder must preserve it in the output columns.
const dailyBody = `{
  "type": "Feature",
  "geometry": {"type": "Point", "coordinates": [-99.1332, 19.4326, 2240.0]},
  "properties": {
    "parameter": {
      "T2M": {"20150101": 13.4, "20150102": 14.2},
      "T2M_MAX": {"20150101": 21.1, "20150102": 22.8}
    }
  },
  "header": {"title": "NASA/POWER", "fill_value": -999.0}
}`

const climatologyBody = `{
  "properties": {
    "parameter": {
      "T2M": {"JAN": 13.4, "ANN": 16.0}
    }
  }
}`

func testJob(t *testing.T, url string) power.Job {
	t.Helper()
	return power.Job{
		URL:  url,
		Dest: filepath.Join(t.TempDir(), "MX-CDMX.csv"),
		Meta: power.JobMeta{
			Index:      0,
			Latitude:   19.4326,
			Longitude:  -99.1332,
			Identifier: "MX-CDMX",
			Filename:   "MX-CDMX.csv",
		},
	}
}

func serveBody(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestExecuteWritesOrderedColumns(t *testing.T) {
	t.Parallel()

	srv := serveBody(t, dailyBody)
	job := testJob(t, srv.URL)

	outcome := New(Config{}, zap.NewNop()).Execute(context.Background(), job)
	require.True(t, outcome.Success)
	require.Empty(t, outcome.Err)
	require.Equal(t, job.Meta, outcome.Meta)
	require.False(t, outcome.DownloadedAt.IsZero())

	got, err := table.ReadCSV(job.Dest)
	require.NoError(t, err)
	require.Equal(t, []string{"identifier", "latitude", "longitude", "date", "T2M", "T2M_MAX"}, got.Columns())
	require.Equal(t, 2, got.Len())

	require.Equal(t, "MX-CDMX", got.Cell(0, "identifier"))
	require.Equal(t, "19.4326", got.Cell(0, "latitude"))
	require.Equal(t, "-99.1332", got.Cell(0, "longitude"))
	require.Equal(t, "2015-01-01", got.Cell(0, "date"))
	require.Equal(t, "13.4", got.Cell(0, "T2M"))
	require.Equal(t, "22.8", got.Cell(1, "T2M_MAX"))
}

func TestExecutePeriodColumnForClimatology(t *testing.T) {
	t.Parallel()

	srv := serveBody(t, climatologyBody)
	job := testJob(t, srv.URL)

	outcome := New(Config{}, zap.NewNop()).Execute(context.Background(), job)
	require.True(t, outcome.Success)

	got, err := table.ReadCSV(job.Dest)
	require.NoError(t, err)
	require.Equal(t, []string{"identifier", "latitude", "longitude", "period", "T2M"}, got.Columns())
	require.Equal(t, "JAN", got.Cell(0, "period"))
	require.Equal(t, "ANN", got.Cell(1, "period"))
	require.False(t, got.HasColumn("date"), "date and period are mutually exclusive")
}

func TestExecuteMissingParameterIsSilentSuccess(t *testing.T) {
	t.Parallel()

	for _, body := range []string{
		`{"message": "no data for point"}`,
		`{"properties": {"geometry": {}}}`,
	} {
		srv := serveBody(t, body)
		job := testJob(t, srv.URL)

		outcome := New(Config{}, zap.NewNop()).Execute(context.Background(), job)
		require.True(t, outcome.Success)
		require.Empty(t, outcome.Err)

		_, err := os.Stat(job.Dest)
		require.True(t, os.IsNotExist(err), "no file must be written")
	}
}

func TestExecuteMissingParameterStrictMode(t *testing.T) {
	t.Parallel()

	srv := serveBody(t, `{"message": "no data"}`)
	job := testJob(t, srv.URL)

	outcome := New(Config{FailOnMissingData: true}, zap.NewNop()).Execute(context.Background(), job)
	require.False(t, outcome.Success)
	require.Contains(t, outcome.Err, "properties.parameter")
}

func TestExecuteEmptyParameterBlockWritesNothing(t *testing.T) {
	t.Parallel()

	srv := serveBody(t, `{"properties": {"parameter": {}}}`)
	job := testJob(t, srv.URL)

	outcome := New(Config{}, zap.NewNop()).Execute(context.Background(), job)
	require.True(t, outcome.Success)

	_, err := os.Stat(job.Dest)
	require.True(t, os.IsNotExist(err))
}

func TestExecuteMalformedResponseFails(t *testing.T) {
	t.Parallel()

	srv := serveBody(t, "<html>boom</html>")
	job := testJob(t, srv.URL)

	outcome := New(Config{}, zap.NewNop()).Execute(context.Background(), job)
	require.False(t, outcome.Success)
	require.NotEmpty(t, outcome.Err)
}

func TestExecuteTimeoutFails(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(300 * time.Millisecond)
		_, _ = w.Write([]byte(dailyBody))
	}))
	t.Cleanup(srv.Close)
	job := testJob(t, srv.URL)

	outcome := New(Config{Timeout: 50 * time.Millisecond}, zap.NewNop()).Execute(context.Background(), job)
	require.False(t, outcome.Success)
	require.NotEmpty(t, outcome.Err)
}

func TestExecuteNetworkErrorFails(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close()
	job := testJob(t, srv.URL)

	outcome := New(Config{}, zap.NewNop()).Execute(context.Background(), job)
	require.False(t, outcome.Success)
	require.NotEmpty(t, outcome.Err)
}

func TestExecuteWriteFailure(t *testing.T) {
	t.Parallel()

	srv := serveBody(t, dailyBody)
	job := testJob(t, srv.URL)
	job.Dest = filepath.Join(t.TempDir(), "missing", "dir", "out.csv")

	outcome := New(Config{}, zap.NewNop()).Execute(context.Background(), job)
	require.False(t, outcome.Success)
	require.NotEmpty(t, outcome.Err)
}

func TestParseParametersPreservesProviderOrder(t *testing.T) {
	t.Parallel()

	srv := serveBody(t, `{
	  "properties": {
	    "parameter": {
	      "WS10M": {"20150101": 3.1},
	      "ALLSKY_SFC_SW_DWN": {"20150101": 5.8},
	      "T2M": {"20150101": 13.4}
	    }
	  }
	}`)
	job := testJob(t, srv.URL)

	outcome := New(Config{}, zap.NewNop()).Execute(context.Background(), job)
	require.True(t, outcome.Success)

	got, err := table.ReadCSV(job.Dest)
	require.NoError(t, err)
	require.Equal(t,
		[]string{"identifier", "latitude", "longitude", "date", "WS10M", "ALLSKY_SFC_SW_DWN", "T2M"},
		got.Columns(),
	)
}
