// Package guard keeps non-buyer activity out of the scores: trashed and
// opted-out contacts, and event bursts that look like crawler noise or a
// stale third-party cookie rather than a human buyer.
package guard

import (
	contactdomain "github.com/propelre/leadpulse/internal/contact/domain"
	signaldomain "github.com/propelre/leadpulse/internal/signal/domain"
)

const (
	ExcludeReasonStage = "stage"
	ExcludeReasonTags  = "tags"
)

// Decision is the guard outcome for one contact in one run. Evaluate is
// pure, so replaying the same inputs always reproduces the decision.
type Decision struct {
	Excluded      bool
	ExcludeReason string
	Neutralized   bool
	SuspectFlag   bool
}

// Suppressed reports whether event-derived counters must be zeroed.
func (d Decision) Suppressed() bool {
	return d.Excluded || d.Neutralized
}

// Evaluate applies the guard rules in order: stage filter, tag filter,
// anomaly detector. anomalyThreshold is the 24h event count at which a
// contact with zero inbound communications is treated as misattributed.
func Evaluate(contact *contactdomain.Contact, counts signaldomain.SignalCounts, anomalyThreshold int) Decision {
	if contact.Stage == contactdomain.StageTrash {
		return Decision{Excluded: true, ExcludeReason: ExcludeReasonStage}
	}
	if contact.HasOptOutTag() {
		return Decision{Excluded: true, ExcludeReason: ExcludeReasonTags}
	}
	if anomalyThreshold > 0 && counts.EventsLast24h >= anomalyThreshold && counts.InboundLast24h == 0 {
		return Decision{Neutralized: true, SuspectFlag: true}
	}
	return Decision{}
}

// Apply zeroes the event-based counters for a suppressed contact.
// Communication counters are left intact: a real conversation still counts
// even when browsing activity is suspect. Raw rows are never touched.
func Apply(d Decision, counts signaldomain.SignalCounts) signaldomain.SignalCounts {
	if !d.Suppressed() {
		return counts
	}
	counts.SiteVisits = 0
	counts.Views = 0
	counts.Favorites = 0
	counts.Shares = 0
	counts.Inquiries = 0
	counts.RepeatViews = 0
	counts.AvgPriceViewed = 0
	counts.MaxPriceViewed = 0
	return counts
}
