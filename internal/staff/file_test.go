package staff

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"
)

func writeTempCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "staff.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFileCSV(t *testing.T) {
	path := writeTempCSV(t, "Full Name,Job Title,Email\nJane Doe,Owner,jane@acme.com\nBob Smith,Engineer,\n,Ghost Row,\n")

	cands, err := LoadFile(path)
	require.NoError(t, err)
	require.Len(t, cands, 2)

	assert.Equal(t, "Jane Doe", cands[0].FullName)
	assert.Equal(t, "Owner", cands[0].JobTitle)
	assert.Equal(t, "jane@acme.com", cands[0].Email)
	assert.Equal(t, "Bob Smith", cands[1].FullName)
	assert.Empty(t, cands[1].Email)
}

func TestLoadFileAlternateHeaders(t *testing.T) {
	path := writeTempCSV(t, "name,position,linkedin\nJane Doe,CEO,https://linkedin.com/in/jane\n")

	cands, err := LoadFile(path)
	require.NoError(t, err)
	require.Len(t, cands, 1)
	assert.Equal(t, "CEO", cands[0].JobTitle)
	assert.Equal(t, "https://linkedin.com/in/jane", cands[0].LinkedInURL)
}

func TestLoadFileMissingNameColumn(t *testing.T) {
	path := writeTempCSV(t, "title,email\nCEO,x@y.com\n")

	_, err := LoadFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no name column")
}

func TestLoadFileEmpty(t *testing.T) {
	path := writeTempCSV(t, "Full Name,Job Title\n")

	_, err := LoadFile(path)
	assert.Error(t, err)
}

func TestLoadFileXLSX(t *testing.T) {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Staff")
	require.NoError(t, err)
	for _, rowData := range [][]string{
		{"Full Name", "Job Title"},
		{"Jane Doe", "Owner"},
	} {
		row := sheet.AddRow()
		for _, v := range rowData {
			row.AddCell().SetString(v)
		}
	}
	path := filepath.Join(t.TempDir(), "staff.xlsx")
	require.NoError(t, f.Save(path))

	cands, err := LoadFile(path)
	require.NoError(t, err)
	require.Len(t, cands, 1)
	assert.Equal(t, "Jane Doe", cands[0].FullName)
	assert.Equal(t, "Owner", cands[0].JobTitle)
}

func TestLoadFileJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "staff.json")
	content := `[{"fullName":"Jane Doe","position":"Owner","email":"jane@acme.com"}]`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cands, err := LoadFile(path)
	require.NoError(t, err)
	require.Len(t, cands, 1)
	assert.Equal(t, "Jane Doe", cands[0].FullName)
	assert.Equal(t, "Owner", cands[0].JobTitle)
	assert.Equal(t, "jane@acme.com", cands[0].Email)
}
