// Package export writes discovery run results to CSV and XLSX files for
// hand-off to CRM imports.
package export

import (
	"encoding/csv"
	"os"
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/outreach-cli/internal/model"
)

// contactColumns defines the ordered output columns.
var contactColumns = []string{
	"Domain",
	"Full Name",
	"First Name",
	"Last Name",
	"Job Title",
	"Email",
	"Email Source",
	"Verification Status",
	"Priority",
	"Relevance",
	"LinkedIn",
}

// WriteCSV writes a run's contacts as a CSV file.
func WriteCSV(run *model.DiscoveryRun, outputPath string) error {
	f, err := os.Create(outputPath)
	if err != nil {
		return eris.Wrap(err, "export: create file")
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write(contactColumns); err != nil {
		return eris.Wrap(err, "export: write header")
	}

	for i := range run.Contacts {
		if err := w.Write(contactRow(run.Domain, &run.Contacts[i])); err != nil {
			return eris.Wrap(err, "export: write row")
		}
	}

	return nil
}

// WriteXLSX writes a run's contacts as a single-sheet XLSX workbook.
func WriteXLSX(run *model.DiscoveryRun, outputPath string) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Contacts")
	if err != nil {
		return eris.Wrap(err, "export: add sheet")
	}

	header := sheet.AddRow()
	for _, col := range contactColumns {
		header.AddCell().SetString(col)
	}

	for i := range run.Contacts {
		row := sheet.AddRow()
		for _, val := range contactRow(run.Domain, &run.Contacts[i]) {
			row.AddCell().SetString(val)
		}
	}

	if err := f.Save(outputPath); err != nil {
		return eris.Wrap(err, "export: save workbook")
	}
	return nil
}

// contactRow maps a Contact to an ordered output row.
func contactRow(domain string, c *model.Contact) []string {
	return []string{
		domain,                         // Domain
		c.FullName,                     // Full Name
		c.FirstName,                    // First Name
		c.LastName,                     // Last Name
		c.JobTitle,                     // Job Title
		c.Email,                        // Email
		string(c.EmailSource),          // Email Source
		string(c.Status),               // Verification Status
		strconv.Itoa(c.PriorityScore),  // Priority
		strconv.Itoa(c.RelevanceScore), // Relevance
		c.LinkedInURL,                  // LinkedIn
	}
}
