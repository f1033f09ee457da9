package domain

import (
	"strconv"
	"strings"
	"time"
)

// MasterColumns is the fixed column set and order of both master sheets.
var MasterColumns = []string{
	"institution", "division", "department", "keywords", "title",
	"deadline", "country", "jp_id", "ejm_id", "joe_url",
	"ejm_url", "BatchDate", "Source",
}

const DateLayout = "2006-01-02"

// Record is one listing in the shared schema. Empty strings and a nil
// Deadline mean "absent".
type Record struct {
	Institution string
	Division    string
	Department  string
	Keywords    string
	Title       string
	Deadline    *time.Time
	Country     string
	JPID        string
	EJMID       string
	JOEURL      string
	EJMURL      string
	BatchDate   string
	Source      Source
}

// Identifier returns jp_id when present, else ejm_id.
func (r Record) Identifier() string {
	if r.JPID != "" {
		return r.JPID
	}
	return r.EJMID
}

// Values returns the record in MasterColumns order; absent fields are nil.
func (r Record) Values() []any {
	str := func(s string) any {
		if s == "" {
			return nil
		}
		return s
	}
	var deadline any
	if r.Deadline != nil {
		deadline = r.Deadline.Format(DateLayout)
	}
	return []any{
		str(r.Institution),
		str(r.Division),
		str(r.Department),
		str(r.Keywords),
		str(r.Title),
		deadline,
		str(r.Country),
		idValue(r.JPID),
		idValue(r.EJMID),
		str(r.JOEURL),
		str(r.EJMURL),
		str(r.BatchDate),
		str(string(r.Source)),
	}
}

// Set assigns a master column by name. Unknown columns are ignored.
// Deadline values go through parse; a nil parse result leaves it absent.
func (r *Record) Set(column, value string, parse func(string) *time.Time) {
	value = strings.TrimSpace(value)
	switch column {
	case "institution":
		r.Institution = value
	case "division":
		r.Division = value
	case "department":
		r.Department = value
	case "keywords":
		r.Keywords = value
	case "title":
		r.Title = value
	case "deadline":
		if parse != nil {
			r.Deadline = parse(value)
		}
	case "country":
		r.Country = value
	case "jp_id":
		r.JPID = CanonicalID(value)
	case "ejm_id":
		r.EJMID = CanonicalID(value)
	case "joe_url":
		r.JOEURL = value
	case "ejm_url":
		r.EJMURL = value
	case "BatchDate":
		r.BatchDate = value
	case "Source":
		r.Source = Source(value)
	}
}

// CanonicalID trims an identifier and drops the ".0" that spreadsheet
// round-trips put on integral numbers.
func CanonicalID(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f == float64(int64(f)) && strings.ContainsAny(s, ".eE") {
		return strconv.FormatInt(int64(f), 10)
	}
	return s
}

// idValue writes integral identifiers as numbers so spreadsheets keep them
// numeric, like the source exports do. Only ids that print back unchanged
// are converted; "0123" stays text so it still matches on the next read.
func idValue(s string) any {
	if s == "" {
		return nil
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil && strconv.FormatInt(n, 10) == s {
		return n
	}
	return s
}
