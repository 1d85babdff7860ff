package domain

// Risk tier labels. The Spanish labels are load-bearing: the historical
// dataset and downstream dashboards already key on them.
const (
	RiskLow    = "bajo"
	RiskMedium = "medio"
	RiskHigh   = "alto"
)

// Cutoffs used when a threshold is unset (zero or negative).
const (
	fallbackLowCutoff    = 1000
	fallbackMediumCutoff = 10000
)

// Thresholds holds the case-count cutoffs for risk classification. High is
// carried through configuration for operator visibility, but the classifier
// consults only Low and Medium: the top tier is open-ended.
type Thresholds struct {
	Low    int
	Medium int
	High   int
}

// ClassifyRisk maps a new-case count to a risk tier. Counts above Medium are
// alto, counts above Low are medio, and everything else, including negative
// corrections, is bajo. Comparisons are strict, so a count exactly at a
// cutoff stays in the lower tier.
func ClassifyRisk(newCases int, t Thresholds) string {
	low, medium := t.Low, t.Medium
	if low <= 0 {
		low = fallbackLowCutoff
	}
	if medium <= 0 {
		medium = fallbackMediumCutoff
	}

	switch {
	case newCases > medium:
		return RiskHigh
	case newCases > low:
		return RiskMedium
	default:
		return RiskLow
	}
}
