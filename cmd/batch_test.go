package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeManifest(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "manifest.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadManifest(t *testing.T) {
	path := writeManifest(t, "acme.com,staff/acme.csv\nhttps://widgets.io,staff/widgets.csv,Widgets Inc\n")

	jobs, err := loadManifest(path)
	require.NoError(t, err)
	require.Len(t, jobs, 2)

	assert.Equal(t, "acme.com", jobs[0].domain)
	assert.Equal(t, "staff/acme.csv", jobs[0].staffFile)
	assert.Equal(t, "acme", jobs[0].company)

	assert.Equal(t, "widgets.io", jobs[1].domain)
	assert.Equal(t, "Widgets Inc", jobs[1].company)
}

func TestLoadManifest_SkipsHeader(t *testing.T) {
	path := writeManifest(t, "domain,staff_file\nacme.com,staff/acme.csv\n")

	jobs, err := loadManifest(path)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "acme.com", jobs[0].domain)
}

func TestLoadManifest_ShortRow(t *testing.T) {
	path := writeManifest(t, "acme.com\n")

	_, err := loadManifest(path)
	assert.Error(t, err)
}
