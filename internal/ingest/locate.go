package ingest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"time"

	"github.com/mjavadshamsi/harmonize-joe-ejm/internal/domain"
)

type candidate struct {
	name string
	date time.Time
}

// FindLatest returns the file in dir whose name carries the latest date.
// pattern must capture day, month and year, in that order. Names that match
// but do not hold a real calendar date are skipped. ok is false when nothing
// qualifies, including when dir does not exist.
func FindLatest(dir, pattern string) (path string, date time.Time, ok bool, err error) {
	re, err := compileAnchored(pattern)
	if err != nil {
		return "", time.Time{}, false, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", time.Time{}, false, nil
		}
		return "", time.Time{}, false, fmt.Errorf("read dir %s: %w", dir, err)
	}

	var found []candidate
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		d, ok := dateFromName(re, e.Name())
		if !ok {
			continue
		}
		found = append(found, candidate{name: e.Name(), date: d})
	}
	if len(found) == 0 {
		return "", time.Time{}, false, nil
	}

	// Latest date first; equal dates fall back to the name so the pick is stable.
	sort.Slice(found, func(i, j int) bool {
		if !found[i].date.Equal(found[j].date) {
			return found[i].date.After(found[j].date)
		}
		return found[i].name > found[j].name
	})
	return filepath.Join(dir, found[0].name), found[0].date, true, nil
}

// BatchDate derives the batch tag for a located file.
func BatchDate(src domain.Source, path, pattern string) string {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return domain.BatchTag(src, time.Time{}, false)
	}
	d, ok := dateFromName(re, filepath.Base(path))
	return domain.BatchTag(src, d, ok)
}

func compileAnchored(pattern string) (*regexp.Regexp, error) {
	re, err := regexp.Compile(`^(?:` + pattern + `)`)
	if err != nil {
		return nil, fmt.Errorf("compile pattern %q: %w", pattern, err)
	}
	return re, nil
}

func dateFromName(re *regexp.Regexp, name string) (time.Time, bool) {
	m := re.FindStringSubmatch(name)
	if len(m) < 4 {
		return time.Time{}, false
	}
	day, err1 := strconv.Atoi(m[1])
	month, err2 := strconv.Atoi(m[2])
	year, err3 := strconv.Atoi(m[3])
	if err1 != nil || err2 != nil || err3 != nil {
		return time.Time{}, false
	}
	d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	// time.Date normalizes 31 Feb into March; reject that instead.
	if d.Year() != year || int(d.Month()) != month || d.Day() != day {
		return time.Time{}, false
	}
	return d, true
}
