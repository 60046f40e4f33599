package export

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/outreach-cli/internal/model"
)

func testRun() *model.DiscoveryRun {
	return &model.DiscoveryRun{
		ID:     "run-1",
		Domain: "acme.com",
		Status: model.RunStatusComplete,
		Contacts: []model.Contact{
			{
				FullName: "Jane Doe", FirstName: "Jane", LastName: "Doe",
				JobTitle: "Owner", Email: "jane.doe@acme.com",
				EmailSource: model.CatalogSource(4), Status: model.StatusVerified,
				PriorityScore: 95, RelevanceScore: 80,
				LinkedInURL: "https://linkedin.com/in/janedoe",
			},
			{
				FullName: "Bob Smith", FirstName: "Bob", LastName: "Smith",
				JobTitle: "Engineer", Status: model.StatusUnverified,
				PriorityScore: 50,
			},
		},
	}
}

func TestWriteCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "contacts.csv")
	require.NoError(t, WriteCSV(testRun(), path))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, contactColumns, rows[0])
	assert.Equal(t, []string{
		"acme.com", "Jane Doe", "Jane", "Doe", "Owner",
		"jane.doe@acme.com", "catalog_4", "verified", "95", "80",
		"https://linkedin.com/in/janedoe",
	}, rows[1])
	assert.Equal(t, "Bob Smith", rows[2][1])
	assert.Equal(t, "", rows[2][5])
	assert.Equal(t, "unverified", rows[2][7])
}

func TestWriteXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "contacts.xlsx")
	require.NoError(t, WriteXLSX(testRun(), path))

	f, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	require.Len(t, f.Sheets, 1)

	sheet := f.Sheets[0]
	assert.Equal(t, "Contacts", sheet.Name)
	require.Len(t, sheet.Rows, 3)
	assert.Equal(t, "Domain", sheet.Rows[0].Cells[0].String())
	assert.Equal(t, "jane.doe@acme.com", sheet.Rows[1].Cells[5].String())
	assert.Equal(t, "catalog_4", sheet.Rows[1].Cells[6].String())
}

func TestWriteCSVBadPath(t *testing.T) {
	err := WriteCSV(testRun(), filepath.Join(t.TempDir(), "missing", "contacts.csv"))
	assert.Error(t, err)
}
