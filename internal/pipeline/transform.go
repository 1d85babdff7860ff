package pipeline

import (
	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/covid-report-etl/internal/domain"
)

// ReportTransformer implements Transformer using the domain transform
// functions. The injected clock pins the trailing report window to the
// moment of the run, so tests can freeze it.
type ReportTransformer struct {
	thresholds domain.Thresholds
	clock      clockwork.Clock
}

// NewTransformer creates a ReportTransformer.
func NewTransformer(thresholds domain.Thresholds, clock clockwork.Clock) *ReportTransformer {
	return &ReportTransformer{
		thresholds: thresholds,
		clock:      clock,
	}
}

func (t *ReportTransformer) Transform(raw domain.Table, country string) (domain.Table, domain.CountrySummary, error) {
	return domain.ProcessCountry(raw, country, t.thresholds, t.clock.Now())
}
