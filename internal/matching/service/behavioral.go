package service

import (
	"sort"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/propelre/leadpulse/internal/matching/domain"
	signaldomain "github.com/propelre/leadpulse/internal/signal/domain"
)

type pricePoint struct {
	price  float64
	weight float64
}

// inferBehavioral turns browsing history into preferences. Signal strength
// weights the percentiles: an inquiry says far more about intent than a
// drive-by view.
func inferBehavioral(signals []signaldomain.PropertySignal, cityByRef map[snowflake.ID]string, cfg domain.MatchConfig) domain.BehavioralPreferences {
	if len(signals) == 0 {
		return domain.BehavioralPreferences{}
	}

	points := make([]pricePoint, 0, len(signals))
	cityWeights := map[string]float64{}

	for _, sig := range signals {
		w := signalWeight(sig.Type, cfg)
		points = append(points, pricePoint{price: sig.Price, weight: w})
		if city, ok := cityByRef[sig.PropertyRef]; ok && city != "" {
			cityWeights[strings.ToLower(city)] += w
		}
	}

	sort.Slice(points, func(i, j int) bool { return points[i].price < points[j].price })

	var total float64
	for _, p := range points {
		total += p.weight
	}

	prefs := domain.BehavioralPreferences{
		PriceLow:   weightedPercentile(points, total, 0.10),
		PriceHigh:  weightedPercentile(points, total, 0.90),
		TopCity:    topCity(cityWeights),
		SampleSize: len(signals),
	}
	prefs.Confidence = float64(len(signals)) / float64(cfg.ConfidenceSampleSize)
	if prefs.Confidence > 1 {
		prefs.Confidence = 1
	}
	return prefs
}

func signalWeight(t signaldomain.EventType, cfg domain.MatchConfig) float64 {
	switch t {
	case signaldomain.EventInquiry:
		return cfg.InquirySignalWeight
	case signaldomain.EventFavorite:
		return cfg.FavoriteSignalWeight
	default:
		return cfg.ViewSignalWeight
	}
}

func weightedPercentile(points []pricePoint, total, pct float64) float64 {
	if len(points) == 0 || total <= 0 {
		return 0
	}
	target := total * pct
	var cum float64
	for _, p := range points {
		cum += p.weight
		if cum >= target {
			return p.price
		}
	}
	return points[len(points)-1].price
}

// topCity picks the highest-weighted city; ties break lexicographically so
// inference stays deterministic.
func topCity(weights map[string]float64) string {
	var best string
	var bestWeight float64
	for city, w := range weights {
		if w > bestWeight || (w == bestWeight && (best == "" || city < best)) {
			best = city
			bestWeight = w
		}
	}
	return best
}
