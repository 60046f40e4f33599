package staff

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

// LoadFile reads a staff list from a CSV, XLSX, or JSON file into candidates
// for Intake. JSON files hold an array in the Apify dataset shape. For
// tabular files the first row is a header; column matching is
// case-insensitive on name, title, email, and linkedin.
func LoadFile(path string) ([]Candidate, error) {
	var rows [][]string
	var err error

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return readJSONCandidates(path)
	case ".xlsx":
		rows, err = readXLSXRows(path)
	default:
		rows, err = readCSVRows(path)
	}
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, eris.Errorf("staff file %s has no data rows", path)
	}

	cols := mapColumns(rows[0])
	if cols.name < 0 {
		return nil, eris.Errorf("staff file %s has no name column", path)
	}

	var out []Candidate
	for _, row := range rows[1:] {
		c := Candidate{
			FullName:    cell(row, cols.name),
			JobTitle:    cell(row, cols.title),
			Email:       cell(row, cols.email),
			LinkedInURL: cell(row, cols.linkedin),
		}
		if c.FullName == "" {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

type columnIndex struct {
	name, title, email, linkedin int
}

func mapColumns(header []string) columnIndex {
	cols := columnIndex{name: -1, title: -1, email: -1, linkedin: -1}
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "full name", "full_name", "name", "fullname":
			cols.name = i
		case "job title", "job_title", "title", "position":
			cols.title = i
		case "email":
			cols.email = i
		case "linkedin", "linkedin_url", "profile url", "profileurl":
			cols.linkedin = i
		}
	}
	return cols
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func readJSONCandidates(path string) ([]Candidate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "staff: read file")
	}
	var cands []Candidate
	if err := json.Unmarshal(data, &cands); err != nil {
		return nil, eris.Wrap(err, "staff: parse json")
	}
	return cands, nil
}

func readCSVRows(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "staff: open file")
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, eris.Wrap(err, "staff: read csv")
	}
	return rows, nil
}

func readXLSXRows(path string) ([][]string, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "staff: open workbook")
	}
	if len(f.Sheets) == 0 {
		return nil, eris.Errorf("staff file %s has no sheets", path)
	}

	var rows [][]string
	for _, row := range f.Sheets[0].Rows {
		var vals []string
		for _, c := range row.Cells {
			vals = append(vals, c.String())
		}
		rows = append(rows, vals)
	}
	return rows, nil
}
