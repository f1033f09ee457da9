package reconcile

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/mjavadshamsi/harmonize-joe-ejm/internal/domain"
)

const (
	ReasonBatchReplay     = "batch_replay"
	ReasonExcludedCountry = "excluded_country"
	ReasonMissingCountry  = "missing_country"
)

// lower applies full Unicode lower-casing. Casers carry state, so each call
// gets its own.
func lower(s string) string {
	return cases.Lower(language.Und).String(s)
}

// ShouldKeep decides whether a deduplicated record goes to Listings.
// replayed is true when the store already holds rows with the record's
// BatchDate. reason only explains the decision; it does not change it.
func (e Engine) ShouldKeep(src domain.Source, r domain.Record, replayed bool) (keep bool, reason string) {
	// 1) Same input file seen before
	if replayed {
		return false, ReasonBatchReplay
	}

	country := lower(r.Country)

	// 2) EJM rows must name a country; JOE rows may not
	if country == "" && src.RequiresCountry() {
		return false, ReasonMissingCountry
	}

	// 3) Blocklist, substring match
	for _, ex := range e.ExcludedCountries {
		if ex == "" {
			continue
		}
		if strings.Contains(country, ex) {
			return false, ReasonExcludedCountry
		}
	}

	return true, ""
}
