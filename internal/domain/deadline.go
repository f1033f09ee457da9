package domain

import (
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

var deadlineLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"01/02/2006 15:04",
	"1/2/06",
	"01-02-06",
	"January 2, 2006",
	"Jan 2, 2006",
	"2 January 2006",
	"2 Jan 2006",
	"02-Jan-2006",
	"Monday, January 2, 2006",
	"January 2006",
	"2006-01",
	"2006",
}

// minSerial is 1954-10-03; smaller numbers are years or noise, not dates.
const minSerial = 20000

// ParseDeadline coerces a deadline cell to a calendar date. Unparseable or
// empty input yields nil. With serial set, numbers that no layout accepts
// are read as Excel date serials.
func ParseDeadline(s string, serial bool) *time.Time {
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return nil
	}
	for _, layout := range deadlineLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return dateOnly(t)
		}
	}
	if !serial {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < minSerial {
		return nil
	}
	t, err := excelize.ExcelDateToTime(f, false)
	if err != nil {
		return nil
	}
	return dateOnly(t)
}

func dateOnly(t time.Time) *time.Time {
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return &d
}
