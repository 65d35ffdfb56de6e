package centroid

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const centroidCSV = `CVEGEO,latitude,longitude
01001001,21.88,-102.29
09002015,19.36,-99.15
09003015,19.40,-99.10
14001120,20.68,-103.35
`

func writeFixture(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "centroids.csv")
	require.NoError(t, os.WriteFile(path, []byte(centroidCSV), 0o600))
	return path
}

func TestLoadStateFiltersBySuffix(t *testing.T) {
	t.Parallel()

	got, err := LoadState(writeFixture(t), "015")
	require.NoError(t, err)
	require.Equal(t, 2, got.Len())
	require.Equal(t, "09002015", got.Cell(0, "CVEGEO"))
	require.Equal(t, "09003015", got.Cell(1, "CVEGEO"))

	// The derived state column never appears in the result.
	require.Equal(t, []string{"CVEGEO", "latitude", "longitude"}, got.Columns())
}

func TestLoadStateNoMatches(t *testing.T) {
	t.Parallel()

	got, err := LoadState(writeFixture(t), "999")
	require.NoError(t, err)
	require.True(t, got.Empty())
}

func TestLoadStateRejectsBadCode(t *testing.T) {
	t.Parallel()

	_, err := LoadState(writeFixture(t), "01")
	require.Error(t, err)
}

func TestLoadStateMissingGeoColumn(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "bad.csv")
	require.NoError(t, os.WriteFile(path, []byte("a,b\n1,2\n"), 0o600))

	_, err := LoadState(path, "015")
	require.Error(t, err)
	require.Contains(t, err.Error(), "CVEGEO")
}
