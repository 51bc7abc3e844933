package service

import (
	"math"
	"time"

	contactdomain "github.com/propelre/leadpulse/internal/contact/domain"
	"github.com/propelre/leadpulse/internal/scoring/domain"
	signaldomain "github.com/propelre/leadpulse/internal/signal/domain"
)

// Scores holds the four computed dimensions before persistence. Heat here is
// pre-decay; the orchestrator applies the decay multiplier and blends
// priority from the decayed value.
type Scores struct {
	Heat         int
	Value        int
	Relationship int
}

// computeScores is a pure function of the guarded counts, stated
// preferences, and config. A contact with no signals scores zero across the
// board; missing data is never an error.
func computeScores(counts signaldomain.SignalCounts, prefs contactdomain.StatedPreferences, asOf time.Time, cfg domain.ScoreConfig) Scores {
	return Scores{
		Heat:         heatScore(counts, cfg),
		Value:        valueScore(counts, prefs, cfg),
		Relationship: relationshipScore(counts, asOf, cfg),
	}
}

func heatScore(counts signaldomain.SignalCounts, cfg domain.ScoreConfig) int {
	score := float64(counts.SiteVisits)*cfg.VisitWeight +
		float64(counts.Views)*cfg.ViewWeight +
		float64(counts.Favorites)*cfg.FavoriteWeight +
		float64(counts.Shares)*cfg.ShareWeight +
		float64(counts.Inquiries)*cfg.InquiryWeight

	// Intent signals add a fixed bonus when present.
	if counts.RepeatViews > 0 {
		score += cfg.RepeatViewBonus
	}
	if cfg.BurstThreshold > 0 && counts.TotalEvents() >= cfg.BurstThreshold {
		score += cfg.BurstBonus
	}
	if counts.Views > 0 && float64(counts.Favorites)/float64(counts.Views) >= cfg.FavoriteRateThreshold {
		score += cfg.FavoriteRateBonus
	}
	if counts.Shares > 0 {
		score += cfg.ShareBonus
	}

	return clampScore(score)
}

func valueScore(counts signaldomain.SignalCounts, prefs contactdomain.StatedPreferences, cfg domain.ScoreConfig) int {
	if counts.AvgPriceViewed <= 0 {
		return 0
	}

	score := 0
	for _, band := range cfg.ValueBands {
		score = band.Score
		if band.UpTo > 0 && counts.AvgPriceViewed <= band.UpTo {
			break
		}
	}

	// Browsing near the stated ceiling signals a buyer shopping at the top
	// of their budget rather than window-shopping above it.
	if prefs.MaxPrice != nil && *prefs.MaxPrice > 0 &&
		counts.MaxPriceViewed >= *prefs.MaxPrice*0.9 && counts.MaxPriceViewed <= *prefs.MaxPrice {
		score += cfg.BudgetStretchBonus
	}

	return clampScore(float64(score))
}

func relationshipScore(counts signaldomain.SignalCounts, asOf time.Time, cfg domain.ScoreConfig) int {
	score := float64(counts.InboundCalls)*cfg.InboundCallWeight +
		float64(counts.InboundTexts)*cfg.InboundTextWeight +
		float64(counts.InboundEmails)*cfg.InboundEmailWeight +
		float64(counts.OutboundCalls)*cfg.OutboundCallWeight +
		float64(counts.OutboundTexts)*cfg.OutboundTextWeight +
		float64(counts.OutboundEmails)*cfg.OutboundEmailWeight

	if counts.LastInboundAt.Valid {
		age := asOf.Sub(counts.LastInboundAt.Time)
		switch {
		case age <= 7*24*time.Hour:
			score += cfg.CommRecencyBonus7d
		case age <= 14*24*time.Hour:
			score += cfg.CommRecencyBonus14d
		}
	}

	return clampScore(score)
}

// priorityScore blends the persisted (post-decay) heat with value and
// relationship using the configured weights.
func priorityScore(heat, value, relationship int, cfg domain.ScoreConfig) int {
	blended := float64(heat)*cfg.HeatWeight +
		float64(value)*cfg.ValueWeight +
		float64(relationship)*cfg.RelationshipWeight
	return clampScore(math.Round(blended))
}

func clampScore(v float64) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return int(math.Round(v))
}
