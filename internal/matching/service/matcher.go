package service

import (
	"math"
	"sort"
	"strings"
	"time"

	catalogdomain "github.com/propelre/leadpulse/internal/catalog/domain"
	contactdomain "github.com/propelre/leadpulse/internal/contact/domain"
	"github.com/propelre/leadpulse/internal/matching/domain"
)

const (
	factorPriceFit = "price_fit"
	factorLocation = "location"
	factorSize     = "size"
	factorRecency  = "recency"
)

// factorScore is a 0-100 read on one factor, or missing when neither stated
// nor behavioral data can speak to it.
type factorScore struct {
	value   float64
	missing bool
}

func present(v float64) factorScore { return factorScore{value: v} }

var missing = factorScore{missing: true}

// scoreMatch is a pure function of (buyer snapshot, property, asOf, config).
func scoreMatch(buyer domain.BuyerSnapshot, property catalogdomain.Property, asOf time.Time, cfg domain.MatchConfig) domain.MatchResult {
	statedPrice := statedPriceFit(buyer.Stated, property)
	behavioralPrice := behavioralPriceFit(buyer.Behavioral, property)
	price := blend(statedPrice, behavioralPrice, cfg)

	statedLoc := statedLocationFit(buyer.Stated, property)
	behavioralLoc := behavioralLocationFit(buyer.Behavioral, property)
	location := blend(statedLoc, behavioralLoc, cfg)

	// Size has no behavioral signal; it is stated-or-neutral.
	size := blend(sizeFit(buyer.Stated, property), missing, cfg)

	recency := recencyFit(property, asOf)

	resolve := func(f factorScore) float64 {
		if f.missing {
			return cfg.NeutralScore
		}
		return f.value
	}

	breakdown := map[string]float64{
		factorPriceFit: round2(resolve(price) * cfg.PriceWeight),
		factorLocation: round2(resolve(location) * cfg.LocationWeight),
		factorSize:     round2(resolve(size) * cfg.SizeWeight),
		factorRecency:  round2(recency * cfg.RecencyWeight),
	}

	total := breakdown[factorPriceFit] + breakdown[factorLocation] + breakdown[factorSize] + breakdown[factorRecency]

	return domain.MatchResult{
		BuyerID:             buyer.BuyerID,
		PropertyID:          property.ID,
		TotalScore:          clampTotal(total),
		Breakdown:           breakdown,
		StatedComponent:     round2(componentAverage(statedPrice, statedLoc, sizeFit(buyer.Stated, property))),
		BehavioralComponent: round2(componentAverage(behavioralPrice, behavioralLoc)),
	}
}

// blend combines the stated and behavioral reads on a factor using the
// configured 40/60 split. With only one side available that side speaks
// alone; with neither, the factor is reported missing and resolved to the
// neutral midpoint by the caller.
func blend(stated, behavioral factorScore, cfg domain.MatchConfig) factorScore {
	switch {
	case !stated.missing && !behavioral.missing:
		return present(stated.value*cfg.StatedWeight + behavioral.value*cfg.BehavioralWeight)
	case !stated.missing:
		return stated
	case !behavioral.missing:
		return behavioral
	default:
		return missing
	}
}

func statedPriceFit(prefs contactdomain.StatedPreferences, property catalogdomain.Property) factorScore {
	if prefs.MinPrice == nil && prefs.MaxPrice == nil {
		return missing
	}
	low, high := 0.0, math.MaxFloat64
	if prefs.MinPrice != nil {
		low = *prefs.MinPrice
	}
	if prefs.MaxPrice != nil {
		high = *prefs.MaxPrice
	}
	return present(rangeFit(property.Price, low, high))
}

func behavioralPriceFit(prefs domain.BehavioralPreferences, property catalogdomain.Property) factorScore {
	if prefs.Empty() || prefs.PriceHigh <= 0 {
		return missing
	}
	return present(rangeFit(property.Price, prefs.PriceLow, prefs.PriceHigh))
}

// rangeFit scores 100 inside [low, high] and falls off linearly with the
// relative distance outside it; 50% out of range scores zero.
func rangeFit(price, low, high float64) float64 {
	if price >= low && price <= high {
		return 100
	}
	var overshoot float64
	if price < low && low > 0 {
		overshoot = (low - price) / low
	} else if high > 0 && high != math.MaxFloat64 {
		overshoot = (price - high) / high
	}
	score := 100 - overshoot*200
	if score < 0 {
		return 0
	}
	return score
}

func statedLocationFit(prefs contactdomain.StatedPreferences, property catalogdomain.Property) factorScore {
	if len(prefs.Cities) == 0 {
		return missing
	}
	for _, city := range prefs.Cities {
		if strings.EqualFold(strings.TrimSpace(city), strings.TrimSpace(property.City)) {
			return present(100)
		}
	}
	return present(25)
}

func behavioralLocationFit(prefs domain.BehavioralPreferences, property catalogdomain.Property) factorScore {
	if prefs.Empty() || prefs.TopCity == "" {
		return missing
	}
	if strings.EqualFold(prefs.TopCity, strings.TrimSpace(property.City)) {
		return present(100)
	}
	return present(25)
}

func sizeFit(prefs contactdomain.StatedPreferences, property catalogdomain.Property) factorScore {
	var scores []float64

	if prefs.MinBeds != nil {
		scores = append(scores, thresholdFit(float64(property.Beds), float64(*prefs.MinBeds), 25))
	}
	if prefs.MinBaths != nil {
		scores = append(scores, thresholdFit(property.Baths, *prefs.MinBaths, 30))
	}
	if prefs.MinSqft != nil && *prefs.MinSqft > 0 {
		scores = append(scores, ratioFit(float64(property.Sqft), float64(*prefs.MinSqft)))
	}
	if prefs.MinAcreage != nil && *prefs.MinAcreage > 0 {
		scores = append(scores, ratioFit(property.Acreage, *prefs.MinAcreage))
	}

	if len(scores) == 0 {
		return missing
	}
	var sum float64
	for _, s := range scores {
		sum += s
	}
	return present(sum / float64(len(scores)))
}

// thresholdFit scores 100 at or above the minimum and docks penalty points
// per unit of shortfall.
func thresholdFit(actual, minimum, penalty float64) float64 {
	if actual >= minimum {
		return 100
	}
	score := 100 - (minimum-actual)*penalty
	if score < 0 {
		return 0
	}
	return score
}

func ratioFit(actual, minimum float64) float64 {
	if actual >= minimum {
		return 100
	}
	return actual / minimum * 100
}

// recencyFit rewards fresh listings; anything sitting past 90 days bottoms
// out at 10 rather than zero since stale inventory can still fit.
func recencyFit(property catalogdomain.Property, asOf time.Time) float64 {
	score := 100 - float64(property.DaysOnMarket(asOf))
	if score < 10 {
		return 10
	}
	return score
}

func componentAverage(scores ...factorScore) float64 {
	var sum float64
	var n int
	for _, s := range scores {
		if s.missing {
			continue
		}
		sum += s.value
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

func clampTotal(v float64) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return int(math.Round(v))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// sortResults orders best-first with a stable ID tie-break so rankings are
// reproducible run to run.
func sortResults(results []domain.MatchResult) {
	sort.Slice(results, func(i, j int) bool {
		if results[i].TotalScore != results[j].TotalScore {
			return results[i].TotalScore > results[j].TotalScore
		}
		return results[i].PropertyID < results[j].PropertyID
	})
}
