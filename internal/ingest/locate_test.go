package ingest

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mjavadshamsi/harmonize-joe-ejm/internal/domain"
)

const joePattern = `joe_resultset_(\d{2})_(\d{2})_(\d{4})`

func touch(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, n := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, n), []byte("x"), 0o644))
	}
}

func TestFindLatestPicksLatestDate(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir,
		"joe_resultset_15_02_2024.xlsx",
		"joe_resultset_01_03_2024.xlsx",
		"joe_resultset_20_12_2023.xlsx",
		"joe_resultset_31_02_2024.xlsx", // not a real date
		"copy_of_joe_resultset_20_12_2025.xlsx",
		"notes.txt",
	)
	require.NoError(t, os.Mkdir(filepath.Join(dir, "joe_resultset_01_01_2030"), 0o755))

	path, date, ok, err := FindLatest(dir, joePattern)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(dir, "joe_resultset_01_03_2024.xlsx"), path)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), date)
}

func TestFindLatestNothingUsable(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "joe_resultset_31_02_2024.xlsx", "joe_resultset_00_13_2024.xlsx", "other.csv")

	_, _, ok, err := FindLatest(dir, joePattern)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFindLatestMissingDir(t *testing.T) {
	_, _, ok, err := FindLatest(filepath.Join(t.TempDir(), "nope"), joePattern)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFindLatestBadPattern(t *testing.T) {
	_, _, _, err := FindLatest(t.TempDir(), `(\d{2`)
	assert.Error(t, err)
}

func TestBatchDate(t *testing.T) {
	assert.Equal(t, "J_2024-3-1", BatchDate(domain.SourceJOE, "joe_listings/joe_resultset_01_03_2024.xlsx", joePattern))
	assert.Equal(t, "E_2024-12-9", BatchDate(domain.SourceEJM, "positions_09_12_2024.csv", `positions_(\d{2})_(\d{2})_(\d{4})`))
	assert.Equal(t, "J_unknown", BatchDate(domain.SourceJOE, "export.xlsx", joePattern))
}
