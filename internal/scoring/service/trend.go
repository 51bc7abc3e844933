package service

import (
	"math"

	contactdomain "github.com/propelre/leadpulse/internal/contact/domain"
	"github.com/propelre/leadpulse/internal/scoring/domain"
)

type trendResult struct {
	Avg       float64
	Delta     float64
	Direction contactdomain.ScoreTrend
	Alert     bool
}

// evaluateTrend compares the new (decayed) heat against the rolling average
// of the trailing-window snapshots. Shorter history just means a shorter
// average; no history means no momentum, so the contact reads stable.
func evaluateTrend(history []domain.ScoreSnapshot, currentHeat int, cfg domain.ScoreConfig) trendResult {
	if len(history) == 0 {
		return trendResult{
			Avg:       float64(currentHeat),
			Direction: contactdomain.TrendStable,
		}
	}

	var sum float64
	for _, snap := range history {
		sum += float64(snap.Heat)
	}
	avg := sum / float64(len(history))
	delta := float64(currentHeat) - avg

	direction := contactdomain.TrendStable
	switch {
	case delta > cfg.TrendNoiseThreshold:
		direction = contactdomain.TrendWarming
	case delta < -cfg.TrendNoiseThreshold:
		direction = contactdomain.TrendCooling
	}

	return trendResult{
		Avg:       avg,
		Delta:     delta,
		Direction: direction,
		Alert:     math.Abs(delta) > cfg.TrendAlertThreshold,
	}
}
