// Package reconcile decides which records of a new batch are appended to
// the master file and to which sheet.
package reconcile

import (
	"strings"

	"github.com/mjavadshamsi/harmonize-joe-ejm/internal/domain"
	"github.com/mjavadshamsi/harmonize-joe-ejm/internal/store"
)

// Engine holds the exclusion policy. ExcludedCountries are matched as
// lower-case substrings of a record's country.
type Engine struct {
	ExcludedCountries []string
}

func New(excluded []string) Engine {
	out := make([]string, 0, len(excluded))
	for _, c := range excluded {
		if c = strings.TrimSpace(lower(c)); c != "" {
			out = append(out, c)
		}
	}
	return Engine{ExcludedCountries: out}
}

// Decision is the outcome for one record that survived deduplication.
type Decision struct {
	Record domain.Record
	Keep   bool
	Reason string
}

type Result struct {
	Listings   []domain.Record
	Deleted    []domain.Record
	Duplicates int
	Decisions  []Decision
}

// Reconcile classifies batch against the current store contents. Records
// whose identifier is already stored are dropped; the rest go to Listings
// or Deleted. Order within each output follows the batch.
func (e Engine) Reconcile(batch domain.Batch, listings, deleted []domain.Record) Result {
	existing := store.ExistingIdentifiers(listings, deleted)
	seenBatches := batchDates(listings, deleted)

	var res Result
	for _, r := range batch.Records {
		id := batch.Source.IdentifierOf(r)
		if id != "" {
			if _, dup := existing[id]; dup {
				res.Duplicates++
				continue
			}
		}

		// snapshot taken before this batch: the batch never replays itself
		_, replayed := seenBatches[r.BatchDate]
		keep, why := e.ShouldKeep(batch.Source, r, replayed)
		res.Decisions = append(res.Decisions, Decision{Record: r, Keep: keep, Reason: why})
		if keep {
			res.Listings = append(res.Listings, r)
		} else {
			res.Deleted = append(res.Deleted, r)
		}
	}
	return res
}

func batchDates(listings, deleted []domain.Record) map[string]struct{} {
	out := map[string]struct{}{}
	for _, coll := range [][]domain.Record{listings, deleted} {
		for _, r := range coll {
			if r.BatchDate != "" {
				out[r.BatchDate] = struct{}{}
			}
		}
	}
	return out
}
