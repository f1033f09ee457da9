package domain

import (
	"fmt"
	"time"
)

type Source string

const (
	SourceJOE Source = "JOE"
	SourceEJM Source = "EJM"
)

// Letter is the BatchDate prefix for the source.
func (s Source) Letter() string {
	switch s {
	case SourceJOE:
		return "J"
	case SourceEJM:
		return "E"
	default:
		return "X"
	}
}

// IdentifierOf returns the identifier field a batch of this source is
// deduplicated on.
func (s Source) IdentifierOf(r Record) string {
	if s == SourceEJM {
		return r.EJMID
	}
	return r.JPID
}

// RequiresCountry reports whether an absent country excludes a record.
// Only EJM listings are held to this.
func (s Source) RequiresCountry() bool {
	return s == SourceEJM
}

// BatchTag builds "<Letter>_<year>-<month>-<day>" without zero padding,
// or "<Letter>_unknown" when the date could not be read.
func BatchTag(s Source, date time.Time, ok bool) string {
	if !ok {
		return s.Letter() + "_unknown"
	}
	return fmt.Sprintf("%s_%d-%d-%d", s.Letter(), date.Year(), int(date.Month()), date.Day())
}

// Batch is the normalized content of one input file.
type Batch struct {
	Source    Source
	BatchDate string
	Records   []Record
}
