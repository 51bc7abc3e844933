package service

import (
	"database/sql"
	"time"
)

// decayMultiplier is the tiered inactivity discount applied to heat. It is a
// pure, monotonically non-increasing step function of days since activity.
func decayMultiplier(daysSinceActivity int) float64 {
	switch {
	case daysSinceActivity <= 7:
		return 1.00
	case daysSinceActivity <= 14:
		return 0.95
	case daysSinceActivity <= 30:
		return 0.85
	case daysSinceActivity <= 60:
		return 0.70
	case daysSinceActivity <= 90:
		return 0.50
	default:
		return 0.30
	}
}

// effectiveDecay resolves days-since-activity and the multiplier, covering
// the no-history edge cases: a brand-new contact with no activity keeps the
// full multiplier until the grace window passes; after that, silence lands
// in the bottom tier.
func effectiveDecay(lastActivity sql.NullTime, createdAt, asOf time.Time, graceDays int) (float64, int) {
	if lastActivity.Valid {
		days := daysBetween(lastActivity.Time, asOf)
		return decayMultiplier(days), days
	}

	ageDays := daysBetween(createdAt, asOf)
	if ageDays <= graceDays {
		return 1.00, ageDays
	}
	return decayMultiplier(91), ageDays
}

func daysBetween(from, to time.Time) int {
	if to.Before(from) {
		return 0
	}
	return int(to.Sub(from).Hours() / 24)
}
