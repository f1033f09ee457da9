package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/mjavadshamsi/harmonize-joe-ejm/internal/domain"
)

func headerRow() []string {
	return append([]string(nil), domain.MasterColumns...)
}

func TestOpenCreatesTwoEmptySheets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "master.xlsx")

	wb, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, wb.Close())
	assert.Empty(t, wb.Listings())
	assert.Empty(t, wb.Deleted())

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetListings, SheetDeleted}, f.GetSheetList())
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		require.NoError(t, err)
		require.Len(t, rows, 1, "header only in %s", name)
		assert.Equal(t, headerRow(), rows[0])
	}
}

func TestAppendSaveReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "master.xlsx")
	deadline := time.Date(2024, 11, 15, 0, 0, 0, 0, time.UTC)

	wb, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, wb.Append(SheetListings, []domain.Record{
		{Institution: "Uni A", Deadline: &deadline, Country: "FRANCE", JPID: "1", JOEURL: "https://www.aeaweb.org/joe/listing.php?JOE_ID=1", BatchDate: "J_2024-3-1", Source: domain.SourceJOE},
		{Institution: "Uni B", Country: "Germany", EJMID: "101", BatchDate: "E_2024-3-1", Source: domain.SourceEJM},
	}))
	require.NoError(t, wb.Append(SheetDeleted, []domain.Record{
		{Institution: "Uni C", Country: "CHINA", JPID: "2", BatchDate: "J_2024-3-1", Source: domain.SourceJOE},
	}))
	assert.Len(t, wb.Listings(), 2, "appended rows are visible before save")
	require.NoError(t, wb.Save())
	require.NoError(t, wb.Close())

	wb, err = Open(path)
	require.NoError(t, err)
	listings := wb.Listings()
	require.Len(t, listings, 2)
	require.Len(t, wb.Deleted(), 1)

	assert.Equal(t, "Uni A", listings[0].Institution)
	assert.Equal(t, "1", listings[0].JPID)
	require.NotNil(t, listings[0].Deadline)
	assert.True(t, deadline.Equal(*listings[0].Deadline))
	assert.Equal(t, domain.SourceJOE, listings[0].Source)
	assert.Equal(t, "101", listings[1].EJMID)
	assert.Nil(t, listings[1].Deadline)
	assert.Equal(t, "CHINA", wb.Deleted()[0].Country)

	// a second save only adds rows below the existing ones
	require.NoError(t, wb.Append(SheetListings, []domain.Record{{Institution: "Uni D", JPID: "3", Source: domain.SourceJOE}}))
	require.NoError(t, wb.Save())
	require.NoError(t, wb.Close())

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(SheetListings)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, headerRow(), rows[0])
	assert.Equal(t, "Uni D", rows[3][0])
}

func TestOpenAddsMissingSheet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "master.xlsx")

	f := excelize.NewFile()
	require.NoError(t, f.SetSheetName("Sheet1", SheetListings))
	hdr := []any{"jp_id", "institution", "BatchDate"}
	row := []any{55, "Uni Z", "J_2023-12-1"}
	require.NoError(t, f.SetSheetRow(SheetListings, "A1", &hdr))
	require.NoError(t, f.SetSheetRow(SheetListings, "A2", &row))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	wb, err := Open(path)
	require.NoError(t, err)
	defer wb.Close()

	require.Len(t, wb.Listings(), 1)
	got := wb.Listings()[0]
	assert.Equal(t, "55", got.JPID)
	assert.Equal(t, "Uni Z", got.Institution)
	assert.Equal(t, "J_2023-12-1", got.BatchDate)
	assert.Empty(t, wb.Deleted())

	// rows go under the existing header, by column name
	require.NoError(t, wb.Append(SheetListings, []domain.Record{{Institution: "Uni Y", JPID: "56", BatchDate: "J_2024-3-1"}}))
	require.NoError(t, wb.Save())

	check, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer check.Close()
	assert.Contains(t, check.GetSheetList(), SheetDeleted)
	rows, err := check.GetRows(SheetListings)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"56", "Uni Y", "J_2024-3-1"}, rows[2])
}

func TestOpenRejectsForeignLayout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "master.xlsx")

	f := excelize.NewFile()
	require.NoError(t, f.SetSheetName("Sheet1", SheetListings))
	hdr := []any{"foo", "bar"}
	require.NoError(t, f.SetSheetRow(SheetListings, "A1", &hdr))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	_, err := Open(path)
	assert.ErrorIs(t, err, ErrUnexpectedLayout)
}

func TestExistingIdentifiers(t *testing.T) {
	ids := ExistingIdentifiers(
		[]domain.Record{{JPID: "1"}, {EJMID: "101"}, {}},
		[]domain.Record{{JPID: "2"}},
	)
	assert.Equal(t, map[string]struct{}{"1": {}, "101": {}, "2": {}}, ids)
}

func TestIdentifiersSurviveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "master.xlsx")

	wb, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, wb.Append(SheetListings, []domain.Record{
		{EJMID: "0123", Source: domain.SourceEJM},
		{EJMID: "+12", Source: domain.SourceEJM},
		{JPID: "1001", Source: domain.SourceJOE},
	}))
	require.NoError(t, wb.Save())
	require.NoError(t, wb.Close())

	wb, err = Open(path)
	require.NoError(t, err)
	defer wb.Close()

	ids := ExistingIdentifiers(wb.Listings(), wb.Deleted())
	for _, id := range []string{"0123", "+12", "1001"} {
		assert.Contains(t, ids, id)
	}
	assert.NotContains(t, ids, "123")
}

func TestLockIsExclusive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "master.xlsx")

	unlock, err := Lock(path)
	require.NoError(t, err)

	_, err = Lock(path)
	assert.ErrorIs(t, err, ErrLocked)

	require.NoError(t, unlock())

	unlock, err = Lock(path)
	require.NoError(t, err)
	require.NoError(t, unlock())
}
