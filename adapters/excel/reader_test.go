package excel

import (
	"os"
	"path/filepath"
	"testing"

	"parceldash/domain/survey"
	"parceldash/internal"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDataReader_CSV(t *testing.T) {
	path := writeFile(t, "communes.csv", "Commune, Individual parcels, Collective parcels, Conflicts, Quality score, Status\n"+
		"BALA,718,144,0,92.4,success\n"+
		"\n"+
		"NDOGA_BABACAR,0,0,0,12.5,ERROR\n")

	data, err := NewDataReader(path, internal.NewNopLogger()).ReadData()
	require.NoError(t, err)
	assert.Equal(t, []string{"Commune", "Individual parcels", "Collective parcels", "Conflicts", "Quality score", "Status"}, data.Headers)
	require.Len(t, data.Rows, 2)

	records, warnings, err := ParseCommunes(data)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	require.Len(t, records, 2)
	assert.Equal(t, survey.CommuneRecord{
		Name: "BALA", IndividualParcelCount: 718, CollectiveParcelCount: 144, QualityScore: 92.4, Status: survey.StatusSuccess,
	}, records[0])
	assert.Equal(t, survey.StatusError, records[1].Status)
}

func TestDataReader_Errors(t *testing.T) {
	_, err := NewDataReader(filepath.Join(t.TempDir(), "missing.csv"), internal.NewNopLogger()).ReadData()
	assert.ErrorIs(t, err, os.ErrNotExist)

	headerOnly := writeFile(t, "empty.csv", "name,status\n")
	_, err = NewDataReader(headerOnly, internal.NewNopLogger()).ReadData()
	assert.Error(t, err)
}

func TestParseCommunes(t *testing.T) {
	t.Run("requires a name column", func(t *testing.T) {
		_, _, err := ParseCommunes(&TableData{Headers: []string{"status"}, Rows: []RawRowData{{"status": "SUCCESS"}}})
		assert.Error(t, err)
	})

	t.Run("skips nameless rows with a warning", func(t *testing.T) {
		records, warnings, err := ParseCommunes(&TableData{
			Headers: []string{"name", "conflict_count"},
			Rows:    []RawRowData{{"name": "", "conflict_count": "3"}, {"name": "KOAR", "conflict_count": "1"}},
		})
		require.NoError(t, err)
		assert.Len(t, warnings, 1)
		require.Len(t, records, 1)
		assert.Equal(t, 1, records[0].ConflictCount)
		assert.Equal(t, survey.StatusSuccess, records[0].Status)
	})

	t.Run("accepts float counts and thousands separators", func(t *testing.T) {
		records, _, err := ParseCommunes(&TableData{
			Headers: []string{"name", "rawParcelCount", "individual"},
			Rows:    []RawRowData{{"name": "MISSIRAH", "rawParcelCount": "2,104", "individual": "1490.0"}},
		})
		require.NoError(t, err)
		assert.Equal(t, 2104, records[0].RawParcelCount)
		assert.Equal(t, 1490, records[0].IndividualParcelCount)
	})

	t.Run("rejects non-numeric counts", func(t *testing.T) {
		_, _, err := ParseCommunes(&TableData{
			Headers: []string{"name", "conflicts"},
			Rows:    []RawRowData{{"name": "GABOU", "conflicts": "many"}},
		})
		assert.ErrorContains(t, err, "line 2")
	})
}

func TestWriteCommunes_RoundTripsThroughReader(t *testing.T) {
	ds, err := survey.Seed()
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "communes.xlsx")
	require.NoError(t, WriteCommunes(path, ds.Communes))

	data, err := NewDataReader(path, internal.NewNopLogger()).ReadData()
	require.NoError(t, err)
	records, warnings, err := ParseCommunes(data)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, ds.Communes, records)
}
