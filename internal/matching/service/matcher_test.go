package service

import (
	"testing"
	"time"

	catalogdomain "github.com/propelre/leadpulse/internal/catalog/domain"
	contactdomain "github.com/propelre/leadpulse/internal/contact/domain"
	"github.com/propelre/leadpulse/internal/matching/domain"
	"github.com/stretchr/testify/assert"
)

var matchAsOf = time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)

func freshProperty(price float64, city string) catalogdomain.Property {
	return catalogdomain.Property{
		ID:       1001,
		City:     city,
		Price:    price,
		ListedAt: matchAsOf.Add(-10 * 24 * time.Hour),
		Status:   catalogdomain.PropertyActive,
	}
}

func TestScoreMatch_NeutralMidpointWhenNoData(t *testing.T) {
	cfg := domain.DefaultMatchConfig()
	buyer := domain.BuyerSnapshot{BuyerID: 7}
	property := freshProperty(300000, "Austin")

	got := scoreMatch(buyer, property, matchAsOf, cfg)

	// Price, location, and size all resolve to the neutral 50; recency is
	// the only data-driven factor (90 at ten days on market).
	assert.Equal(t, 15.0, got.Breakdown["price_fit"])
	assert.Equal(t, 12.5, got.Breakdown["location"])
	assert.Equal(t, 12.5, got.Breakdown["size"])
	assert.Equal(t, 18.0, got.Breakdown["recency"])
	assert.Equal(t, 58, got.TotalScore)
}

func TestScoreMatch_StatedPriceInRange(t *testing.T) {
	cfg := domain.DefaultMatchConfig()
	low, high := 200000.0, 400000.0
	buyer := domain.BuyerSnapshot{
		BuyerID: 7,
		Stated:  contactdomain.StatedPreferences{MinPrice: &low, MaxPrice: &high},
	}

	got := scoreMatch(buyer, freshProperty(300000, "Austin"), matchAsOf, cfg)

	assert.Equal(t, 30.0, got.Breakdown["price_fit"])
}

func TestScoreMatch_PriceOutOfRangeFallsOff(t *testing.T) {
	cfg := domain.DefaultMatchConfig()
	low, high := 200000.0, 400000.0
	buyer := domain.BuyerSnapshot{
		Stated: contactdomain.StatedPreferences{MinPrice: &low, MaxPrice: &high},
	}

	nearMiss := scoreMatch(buyer, freshProperty(440000, "Austin"), matchAsOf, cfg)
	farMiss := scoreMatch(buyer, freshProperty(700000, "Austin"), matchAsOf, cfg)

	assert.Less(t, nearMiss.Breakdown["price_fit"], 30.0)
	assert.Greater(t, nearMiss.Breakdown["price_fit"], farMiss.Breakdown["price_fit"])
	assert.Zero(t, farMiss.Breakdown["price_fit"]) // 75% over budget
}

func TestScoreMatch_LocationMatch(t *testing.T) {
	cfg := domain.DefaultMatchConfig()
	buyer := domain.BuyerSnapshot{
		Stated: contactdomain.StatedPreferences{Cities: []string{"Austin", "Round Rock"}},
	}

	hit := scoreMatch(buyer, freshProperty(300000, "austin"), matchAsOf, cfg)
	miss := scoreMatch(buyer, freshProperty(300000, "Dallas"), matchAsOf, cfg)

	assert.Equal(t, 25.0, hit.Breakdown["location"])
	assert.Equal(t, 6.25, miss.Breakdown["location"])
}

func TestScoreMatch_StatedAndBehavioralBlend(t *testing.T) {
	cfg := domain.DefaultMatchConfig()
	low, high := 200000.0, 400000.0
	buyer := domain.BuyerSnapshot{
		Stated: contactdomain.StatedPreferences{MinPrice: &low, MaxPrice: &high},
		Behavioral: domain.BehavioralPreferences{
			PriceLow:   500000,
			PriceHigh:  600000,
			SampleSize: 10,
		},
	}

	// Stated says yes (100), behavioral says no: 0.4*100 + 0.6*behavioral.
	got := scoreMatch(buyer, freshProperty(300000, "Austin"), matchAsOf, cfg)

	assert.Less(t, got.Breakdown["price_fit"], 30.0)
	assert.Greater(t, got.Breakdown["price_fit"], 0.4*100*cfg.PriceWeight-0.01)
}

func TestScoreMatch_SizeFactors(t *testing.T) {
	cfg := domain.DefaultMatchConfig()
	beds := 3
	sqft := 2000
	buyer := domain.BuyerSnapshot{
		Stated: contactdomain.StatedPreferences{MinBeds: &beds, MinSqft: &sqft},
	}

	property := freshProperty(300000, "Austin")
	property.Beds = 4
	property.Sqft = 2400

	got := scoreMatch(buyer, property, matchAsOf, cfg)

	assert.Equal(t, 25.0, got.Breakdown["size"]) // both minimums met

	property.Beds = 2
	property.Sqft = 1000
	short := scoreMatch(buyer, property, matchAsOf, cfg)
	assert.Less(t, short.Breakdown["size"], got.Breakdown["size"])
}

func TestScoreMatch_RecencyFloor(t *testing.T) {
	cfg := domain.DefaultMatchConfig()
	stale := freshProperty(300000, "Austin")
	stale.ListedAt = matchAsOf.Add(-200 * 24 * time.Hour)

	got := scoreMatch(domain.BuyerSnapshot{}, stale, matchAsOf, cfg)

	assert.Equal(t, 2.0, got.Breakdown["recency"]) // floor of 10 * 0.20
}

func TestScoreMatch_Deterministic(t *testing.T) {
	cfg := domain.DefaultMatchConfig()
	low, high := 250000.0, 450000.0
	buyer := domain.BuyerSnapshot{
		BuyerID: 9,
		Stated:  contactdomain.StatedPreferences{MinPrice: &low, MaxPrice: &high, Cities: []string{"Austin"}},
		Behavioral: domain.BehavioralPreferences{
			PriceLow:   280000,
			PriceHigh:  420000,
			TopCity:    "austin",
			SampleSize: 15,
		},
	}
	property := freshProperty(350000, "Austin")

	first := scoreMatch(buyer, property, matchAsOf, cfg)
	for i := 0; i < 25; i++ {
		assert.Equal(t, first, scoreMatch(buyer, property, matchAsOf, cfg))
	}
}

func TestScoreMatch_BreakdownSumsToTotal(t *testing.T) {
	cfg := domain.DefaultMatchConfig()
	got := scoreMatch(domain.BuyerSnapshot{}, freshProperty(300000, "Austin"), matchAsOf, cfg)

	var sum float64
	for _, v := range got.Breakdown {
		sum += v
	}
	assert.InDelta(t, float64(got.TotalScore), sum, 0.5)
}

func TestSortResults_DescendingWithIDTieBreak(t *testing.T) {
	results := []domain.MatchResult{
		{PropertyID: 3, TotalScore: 70},
		{PropertyID: 1, TotalScore: 90},
		{PropertyID: 4, TotalScore: 70},
		{PropertyID: 2, TotalScore: 80},
	}

	sortResults(results)

	assert.Equal(t, []int{90, 80, 70, 70}, []int{
		results[0].TotalScore, results[1].TotalScore, results[2].TotalScore, results[3].TotalScore,
	})
	assert.Less(t, int64(results[2].PropertyID), int64(results[3].PropertyID))
}
