package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/mjavadshamsi/harmonize-joe-ejm/internal/domain"
)

const (
	SheetListings = "Listings"
	SheetDeleted  = "Deleted"
)

var ErrUnexpectedLayout = errors.New("unexpected sheet layout")

type sheet struct {
	records []domain.Record
	pending []domain.Record
	nextRow int
	columns []string // header as read, used to place appended values
}

// Workbook is the master file held in memory: one ordered collection per
// sheet plus the rows appended since it was opened.
type Workbook struct {
	path   string
	file   *excelize.File
	sheets map[string]*sheet
}

// Open loads the master file at path, creating it with empty Listings and
// Deleted sheets when it does not exist yet.
func Open(path string) (*Workbook, error) {
	_, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return create(path)
	}
	if err != nil {
		return nil, err
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open master file: %w", err)
	}
	wb := &Workbook{path: path, file: f, sheets: map[string]*sheet{}}
	for _, name := range []string{SheetListings, SheetDeleted} {
		if err := wb.loadSheet(name); err != nil {
			_ = f.Close()
			return nil, err
		}
	}
	return wb, nil
}

func create(path string) (*Workbook, error) {
	f := excelize.NewFile()
	def := f.GetSheetName(0)

	wb := &Workbook{path: path, file: f, sheets: map[string]*sheet{}}
	for _, name := range []string{SheetListings, SheetDeleted} {
		if err := wb.newSheet(name); err != nil {
			_ = f.Close()
			return nil, err
		}
	}
	if err := f.DeleteSheet(def); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("drop default sheet: %w", err)
	}
	if idx, err := f.GetSheetIndex(SheetListings); err == nil && idx >= 0 {
		f.SetActiveSheet(idx)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			_ = f.Close()
			return nil, err
		}
	}
	if err := wb.persist(); err != nil {
		_ = f.Close()
		return nil, err
	}
	return wb, nil
}

func (wb *Workbook) newSheet(name string) error {
	if _, err := wb.file.NewSheet(name); err != nil {
		return fmt.Errorf("create sheet %s: %w", name, err)
	}
	if err := wb.writeHeader(name); err != nil {
		return err
	}
	wb.sheets[name] = &sheet{nextRow: 2, columns: domain.MasterColumns}
	return nil
}

func (wb *Workbook) writeHeader(name string) error {
	header := make([]any, len(domain.MasterColumns))
	for i, c := range domain.MasterColumns {
		header[i] = c
	}
	if err := wb.file.SetSheetRow(name, "A1", &header); err != nil {
		return fmt.Errorf("write header %s: %w", name, err)
	}
	return nil
}

func (wb *Workbook) loadSheet(name string) error {
	idx, err := wb.file.GetSheetIndex(name)
	if err != nil {
		return fmt.Errorf("look up sheet %s: %w", name, err)
	}
	if idx < 0 {
		return wb.newSheet(name)
	}

	rows, err := wb.file.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return fmt.Errorf("read sheet %s: %w", name, err)
	}
	if len(rows) == 0 {
		if err := wb.writeHeader(name); err != nil {
			return err
		}
		wb.sheets[name] = &sheet{nextRow: 2, columns: domain.MasterColumns}
		return nil
	}

	header := make([]string, len(rows[0]))
	known := 0
	for i, h := range rows[0] {
		header[i] = strings.TrimSpace(h)
		if isMasterColumn(header[i]) {
			known++
		}
	}
	if known == 0 {
		return fmt.Errorf("%w: sheet %s has no master columns in its header", ErrUnexpectedLayout, name)
	}

	sh := &sheet{nextRow: len(rows) + 1, columns: header}
	for _, row := range rows[1:] {
		if blankRow(row) {
			continue
		}
		var rec domain.Record
		for i, col := range header {
			if i >= len(row) {
				break
			}
			rec.Set(col, row[i], parseStoredDeadline)
		}
		sh.records = append(sh.records, rec)
	}
	wb.sheets[name] = sh
	return nil
}

// Records returns the sheet's rows, including rows appended but not saved.
func (wb *Workbook) Records(name string) []domain.Record {
	sh, ok := wb.sheets[name]
	if !ok {
		return nil
	}
	return sh.records
}

func (wb *Workbook) Listings() []domain.Record { return wb.Records(SheetListings) }
func (wb *Workbook) Deleted() []domain.Record  { return wb.Records(SheetDeleted) }

// Append queues records for the sheet. Nothing reaches the file until Save.
func (wb *Workbook) Append(name string, recs []domain.Record) error {
	sh, ok := wb.sheets[name]
	if !ok {
		return fmt.Errorf("unknown sheet %q", name)
	}
	sh.records = append(sh.records, recs...)
	sh.pending = append(sh.pending, recs...)
	return nil
}

// Save writes pending rows below the existing content (never a header) and
// replaces the file on disk.
func (wb *Workbook) Save() error {
	for _, name := range []string{SheetListings, SheetDeleted} {
		sh := wb.sheets[name]
		for _, rec := range sh.pending {
			if err := wb.writeRow(name, sh, rec); err != nil {
				return err
			}
			sh.nextRow++
		}
		sh.pending = nil
	}
	return wb.persist()
}

func (wb *Workbook) writeRow(name string, sh *sheet, rec domain.Record) error {
	byName := make(map[string]any, len(domain.MasterColumns))
	for i, v := range rec.Values() {
		byName[domain.MasterColumns[i]] = v
	}
	for i, col := range sh.columns {
		v, ok := byName[col]
		if !ok || v == nil {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(i+1, sh.nextRow)
		if err != nil {
			return err
		}
		if err := wb.file.SetCellValue(name, cell, v); err != nil {
			return fmt.Errorf("write %s!%s: %w", name, cell, err)
		}
	}
	return nil
}

// persist saves through a temp file so an interrupted write leaves the
// previous master in place.
func (wb *Workbook) persist() error {
	tmp, err := os.CreateTemp(filepath.Dir(wb.path), "."+filepath.Base(wb.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("save master file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := wb.file.WriteTo(tmp); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("save master file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("save master file: %w", err)
	}
	_ = os.Chmod(tmp.Name(), 0o644)
	if err := os.Rename(tmp.Name(), wb.path); err != nil {
		return fmt.Errorf("replace master file: %w", err)
	}
	return nil
}

func (wb *Workbook) Close() error {
	if wb == nil || wb.file == nil {
		return nil
	}
	return wb.file.Close()
}

// ExistingIdentifiers is the union of every present jp_id and ejm_id across
// both collections.
func ExistingIdentifiers(listings, deleted []domain.Record) map[string]struct{} {
	ids := make(map[string]struct{}, len(listings)+len(deleted))
	for _, coll := range [][]domain.Record{listings, deleted} {
		for _, r := range coll {
			if r.JPID != "" {
				ids[r.JPID] = struct{}{}
			}
			if r.EJMID != "" {
				ids[r.EJMID] = struct{}{}
			}
		}
	}
	return ids
}

func isMasterColumn(name string) bool {
	for _, c := range domain.MasterColumns {
		if c == name {
			return true
		}
	}
	return false
}

func blankRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func parseStoredDeadline(s string) *time.Time {
	return domain.ParseDeadline(s, true)
}
