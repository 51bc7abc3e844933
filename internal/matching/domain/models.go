package domain

import (
	"context"
	"errors"
	"math"

	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/propelre/leadpulse/internal/catalog/domain"
	contactdomain "github.com/propelre/leadpulse/internal/contact/domain"
)

// MatchConfig carries every weight the matcher uses. Same config + same
// buyer snapshot + same property always produces the same breakdown.
type MatchConfig struct {
	StatedWeight     float64 `json:"stated_weight"`
	BehavioralWeight float64 `json:"behavioral_weight"`

	PriceWeight    float64 `json:"price_weight"`
	LocationWeight float64 `json:"location_weight"`
	SizeWeight     float64 `json:"size_weight"`
	RecencyWeight  float64 `json:"recency_weight"`

	// NeutralScore is used when a factor has no stated or behavioral data.
	NeutralScore float64 `json:"neutral_score"`

	// Behavioral signal strengths for preference inference.
	InquirySignalWeight  float64 `json:"inquiry_signal_weight"`
	FavoriteSignalWeight float64 `json:"favorite_signal_weight"`
	ViewSignalWeight     float64 `json:"view_signal_weight"`

	// ConfidenceSampleSize is the sample count at which behavioral
	// confidence reaches 1.0.
	ConfidenceSampleSize int `json:"confidence_sample_size"`
}

func DefaultMatchConfig() MatchConfig {
	return MatchConfig{
		StatedWeight:     0.4,
		BehavioralWeight: 0.6,

		PriceWeight:    0.30,
		LocationWeight: 0.25,
		SizeWeight:     0.25,
		RecencyWeight:  0.20,

		NeutralScore: 50,

		InquirySignalWeight:  4.0,
		FavoriteSignalWeight: 2.75,
		ViewSignalWeight:     1.0,

		ConfidenceSampleSize: 20,
	}
}

func (c MatchConfig) Validate() error {
	if math.Abs(c.StatedWeight+c.BehavioralWeight-1.0) > 0.001 {
		return ErrInvalidConfig
	}
	if math.Abs(c.PriceWeight+c.LocationWeight+c.SizeWeight+c.RecencyWeight-1.0) > 0.001 {
		return ErrInvalidConfig
	}
	if c.NeutralScore < 0 || c.NeutralScore > 100 {
		return ErrInvalidConfig
	}
	if c.ConfidenceSampleSize < 1 {
		return ErrInvalidConfig
	}
	return nil
}

// BehavioralPreferences are inferred from view/favorite/inquiry history.
type BehavioralPreferences struct {
	PriceLow   float64 `json:"price_low"`  // weighted 10th percentile
	PriceHigh  float64 `json:"price_high"` // weighted 90th percentile
	TopCity    string  `json:"top_city"`
	Confidence float64 `json:"confidence"`
	SampleSize int     `json:"sample_size"`
}

func (b BehavioralPreferences) Empty() bool {
	return b.SampleSize == 0
}

// BuyerSnapshot is the immutable matching input for one buyer.
type BuyerSnapshot struct {
	BuyerID    snowflake.ID                    `json:"buyer_id"`
	Stated     contactdomain.StatedPreferences `json:"stated"`
	Behavioral BehavioralPreferences           `json:"behavioral"`
}

// MatchResult carries the full factor breakdown: every point of the total is
// inspectable, never an opaque scalar.
type MatchResult struct {
	BuyerID    snowflake.ID `json:"buyer_id"`
	PropertyID snowflake.ID `json:"property_id"`
	TotalScore int          `json:"total_score"`

	// Breakdown maps factor name to its weighted contribution; the
	// contributions sum to TotalScore up to rounding.
	Breakdown map[string]float64 `json:"score_breakdown"`

	StatedComponent     float64 `json:"stated_component"`
	BehavioralComponent float64 `json:"behavioral_component"`
}

type Service interface {
	// MatchProperties ranks candidates for a buyer, best first. Stateless
	// and safe to call concurrently for different buyers.
	MatchProperties(ctx context.Context, buyerID snowflake.ID, candidates []catalogdomain.Property, cfg MatchConfig) ([]MatchResult, error)

	// BuyerSnapshot assembles the stated + inferred preference view used
	// for matching.
	BuyerSnapshot(ctx context.Context, buyerID snowflake.ID) (BuyerSnapshot, error)
}

var (
	ErrInvalidConfig = errors.New("invalid_match_config")
	ErrBuyerNotFound = errors.New("buyer_not_found")
)
