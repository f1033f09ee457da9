// Package joe normalizes AEA JOE result-set exports (xlsx).
package joe

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/mjavadshamsi/harmonize-joe-ejm/internal/domain"
	"github.com/mjavadshamsi/harmonize-joe-ejm/internal/ingest"
	"github.com/mjavadshamsi/harmonize-joe-ejm/internal/ingest/util"
)

const listingURL = "https://www.aeaweb.org/joe/listing.php?JOE_ID="

// dropped before renaming; none of them survive into the master schema.
var removeCols = map[string]bool{
	"joe_issue_ID":            true,
	"jp_section":              true,
	"jp_full_text":            true,
	"jp_agency_insertion_num": true,
	"locations":               true,
	"JEL_Classifications":     true,
	"salary_range":            true,
	"Date_Active":             true,
}

type Config struct {
	Dir     string
	Pattern string
}

type Connector struct {
	cfg Config
}

var _ ingest.Connector = (*Connector)(nil)

func New(cfg Config) *Connector {
	return &Connector{cfg: cfg}
}

func (c *Connector) Name() string          { return "joe" }
func (c *Connector) Source() domain.Source { return domain.SourceJOE }
func (c *Connector) Dir() string           { return c.cfg.Dir }
func (c *Connector) Pattern() string       { return c.cfg.Pattern }

// Load reads the first sheet of a JOE export. Row 1 is the header.
func (c *Connector) Load(ctx context.Context, path string) (domain.Batch, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return domain.Batch{}, fmt.Errorf("open joe export: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return domain.Batch{}, fmt.Errorf("joe export %s has no sheets", path)
	}
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return domain.Batch{}, fmt.Errorf("read joe export: %w", err)
	}

	batch := domain.Batch{
		Source:    domain.SourceJOE,
		BatchDate: ingest.BatchDate(domain.SourceJOE, path, c.cfg.Pattern),
	}
	if len(rows) == 0 {
		return batch, nil
	}

	header := rows[0]
	for _, row := range rows[1:] {
		if err := ctx.Err(); err != nil {
			return domain.Batch{}, err
		}
		if blank(row) {
			continue
		}
		rec := Normalize(header, row)
		rec.BatchDate = batch.BatchDate
		rec.Source = domain.SourceJOE
		batch.Records = append(batch.Records, rec)
	}
	return batch, nil
}

// Normalize maps one raw JOE row onto the shared schema. BatchDate and
// Source are left to the caller.
func Normalize(header, row []string) domain.Record {
	var rec domain.Record
	var locations string
	for i, raw := range header {
		col := strings.TrimSpace(raw)
		val := ""
		if i < len(row) {
			val = row[i]
		}
		if col == "locations" {
			locations = val
		}
		if removeCols[col] {
			continue
		}
		rec.Set(renameColumn(col), util.StripMarkup(val), parseDeadline)
	}

	// country is always derived, whatever the export carried under that name
	rec.Country = util.CountryFromLocations(locations)
	rec.JOEURL = ""
	if rec.JPID != "" {
		rec.JOEURL = listingURL + rec.JPID
	}
	return rec
}

func renameColumn(col string) string {
	switch {
	case col == "jp_id":
		return col
	case col == "Application_deadline":
		return "deadline"
	case strings.HasPrefix(col, "jp_"):
		return strings.TrimPrefix(col, "jp_")
	default:
		return col
	}
}

func parseDeadline(s string) *time.Time {
	return domain.ParseDeadline(s, true)
}

func blank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
