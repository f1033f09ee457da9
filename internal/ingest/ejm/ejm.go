// Package ejm normalizes EconJobMarket position exports (csv with a
// one-line preamble above the header).
package ejm

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/mjavadshamsi/harmonize-joe-ejm/internal/domain"
	"github.com/mjavadshamsi/harmonize-joe-ejm/internal/ingest"
	"github.com/mjavadshamsi/harmonize-joe-ejm/internal/ingest/util"
)

var ErrMissingColumn = errors.New("ejm export is missing a required column")

var renames = map[string]string{
	"Id":                 "ejm_id",
	"URL":                "ejm_url",
	"Ad title":           "title",
	"Types":              "section",
	"Categories":         "keywords",
	"Deadline":           "deadline",
	"Department":         "department",
	"Institution":        "institution",
	"Country":            "country",
	"Application method": "application_method",
}

// Only these renamed columns are carried into the master schema.
var keep = map[string]bool{
	"ejm_id":      true,
	"ejm_url":     true,
	"title":       true,
	"keywords":    true,
	"deadline":    true,
	"department":  true,
	"institution": true,
	"country":     true,
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

func (c *Connector) Name() string          { return "ejm" }
func (c *Connector) Source() domain.Source { return domain.SourceEJM }
func (c *Connector) Dir() string           { return c.cfg.Dir }
func (c *Connector) Pattern() string       { return c.cfg.Pattern }

func (c *Connector) Load(ctx context.Context, path string) (domain.Batch, error) {
	f, err := os.Open(path)
	if err != nil {
		return domain.Batch{}, fmt.Errorf("open ejm export: %w", err)
	}
	defer f.Close()

	recs, err := Parse(ctx, f)
	if err != nil {
		return domain.Batch{}, fmt.Errorf("parse %s: %w", path, err)
	}

	batch := domain.Batch{
		Source:    domain.SourceEJM,
		BatchDate: ingest.BatchDate(domain.SourceEJM, path, c.cfg.Pattern),
		Records:   recs,
	}
	for i := range batch.Records {
		batch.Records[i].BatchDate = batch.BatchDate
		batch.Records[i].Source = domain.SourceEJM
	}
	return batch, nil
}

// Parse reads an EJM export: the first line is discarded, the second is the
// header and data starts on the third.
func Parse(ctx context.Context, r io.Reader) ([]domain.Record, error) {
	br := bufio.NewReader(transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder())))
	if _, err := br.ReadString('\n'); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, err
	}

	cr := csv.NewReader(br)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	cols := make([]string, len(header))
	hasID := false
	for i, h := range header {
		name := renames[strings.TrimSpace(h)]
		if keep[name] {
			cols[i] = name
		}
		if name == "ejm_id" {
			hasID = true
		}
	}
	if !hasID {
		return nil, fmt.Errorf("%w: Id", ErrMissingColumn)
	}

	var out []domain.Record
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}

		var rec domain.Record
		for i, col := range cols {
			if col == "" || i >= len(row) {
				continue
			}
			rec.Set(col, util.CleanText(row[i]), parseDeadline)
		}
		out = append(out, rec)
	}
	return out, nil
}

func parseDeadline(s string) *time.Time {
	return domain.ParseDeadline(s, false)
}
