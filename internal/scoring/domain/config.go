package domain

import (
	"math"

	"github.com/propelre/leadpulse/internal/config"
)

// PriceBand maps an average viewed price to a value score. Bands are
// evaluated in order; the first band whose UpTo covers the price wins.
type PriceBand struct {
	UpTo  float64 `json:"up_to"` // 0 means no upper bound
	Score int     `json:"score"`
}

// ScoreConfig is the full weight/threshold set for one scoring run. It is
// captured verbatim on the run record so any historical score can be
// reproduced. The defaults are product-tuned; treat them as data, not truth.
type ScoreConfig struct {
	ActivityWindowDays int `json:"activity_window_days"`
	Workers            int `json:"workers"`

	// Heat
	VisitWeight    float64 `json:"visit_weight"`
	ViewWeight     float64 `json:"view_weight"`
	FavoriteWeight float64 `json:"favorite_weight"`
	ShareWeight    float64 `json:"share_weight"`
	InquiryWeight  float64 `json:"inquiry_weight"`

	// Intent signal bonuses
	RepeatViewBonus       float64 `json:"repeat_view_bonus"`
	BurstBonus            float64 `json:"burst_bonus"`
	BurstThreshold        int     `json:"burst_threshold"`
	FavoriteRateBonus     float64 `json:"favorite_rate_bonus"`
	FavoriteRateThreshold float64 `json:"favorite_rate_threshold"`
	ShareBonus            float64 `json:"share_bonus"`

	// Value
	ValueBands         []PriceBand `json:"value_bands"`
	BudgetStretchBonus int         `json:"budget_stretch_bonus"`

	// Relationship
	InboundCallWeight   float64 `json:"inbound_call_weight"`
	InboundTextWeight   float64 `json:"inbound_text_weight"`
	InboundEmailWeight  float64 `json:"inbound_email_weight"`
	OutboundCallWeight  float64 `json:"outbound_call_weight"`
	OutboundTextWeight  float64 `json:"outbound_text_weight"`
	OutboundEmailWeight float64 `json:"outbound_email_weight"`
	CommRecencyBonus7d  float64 `json:"comm_recency_bonus_7d"`
	CommRecencyBonus14d float64 `json:"comm_recency_bonus_14d"`

	// Priority blend; must sum to 1.0.
	HeatWeight         float64 `json:"heat_weight"`
	ValueWeight        float64 `json:"value_weight"`
	RelationshipWeight float64 `json:"relationship_weight"`

	// Guard
	AnomalyEventThreshold int `json:"anomaly_event_threshold"`

	// Decay
	NewContactGraceDays int `json:"new_contact_grace_days"`

	// Trend
	TrendWindowDays     int     `json:"trend_window_days"`
	TrendNoiseThreshold float64 `json:"trend_noise_threshold"`
	TrendAlertThreshold float64 `json:"trend_alert_threshold"`
}

// DefaultScoreConfig returns the tuned defaults.
func DefaultScoreConfig() ScoreConfig {
	return ScoreConfig{
		ActivityWindowDays: 30,
		Workers:            8,

		VisitWeight:    3,
		ViewWeight:     2,
		FavoriteWeight: 5,
		ShareWeight:    4,
		InquiryWeight:  6,

		RepeatViewBonus:       10,
		BurstBonus:            15,
		BurstThreshold:        10,
		FavoriteRateBonus:     10,
		FavoriteRateThreshold: 0.25,
		ShareBonus:            5,

		ValueBands: []PriceBand{
			{UpTo: 150_000, Score: 20},
			{UpTo: 300_000, Score: 40},
			{UpTo: 500_000, Score: 60},
			{UpTo: 750_000, Score: 80},
			{UpTo: 0, Score: 95},
		},
		BudgetStretchBonus: 5,

		InboundCallWeight:   8,
		InboundTextWeight:   5,
		InboundEmailWeight:  3,
		OutboundCallWeight:  3,
		OutboundTextWeight:  2,
		OutboundEmailWeight: 1,
		CommRecencyBonus7d:  15,
		CommRecencyBonus14d: 8,

		HeatWeight:         0.5,
		ValueWeight:        0.3,
		RelationshipWeight: 0.2,

		AnomalyEventThreshold: 15,

		NewContactGraceDays: 7,

		TrendWindowDays:     7,
		TrendNoiseThreshold: 3,
		TrendAlertThreshold: 20,
	}
}

// FromAppConfig overlays the env-exposed knobs onto the defaults.
func FromAppConfig(cfg config.ScoringConfig) ScoreConfig {
	out := DefaultScoreConfig()
	if cfg.AnomalyEventThreshold > 0 {
		out.AnomalyEventThreshold = cfg.AnomalyEventThreshold
	}
	if cfg.TrendNoiseThreshold > 0 {
		out.TrendNoiseThreshold = cfg.TrendNoiseThreshold
	}
	if cfg.TrendAlertThreshold > 0 {
		out.TrendAlertThreshold = cfg.TrendAlertThreshold
	}
	if cfg.HeatWeight > 0 || cfg.ValueWeight > 0 || cfg.RelationshipWeight > 0 {
		out.HeatWeight = cfg.HeatWeight
		out.ValueWeight = cfg.ValueWeight
		out.RelationshipWeight = cfg.RelationshipWeight
	}
	if cfg.Workers > 0 {
		out.Workers = cfg.Workers
	}
	return out
}

// Validate rejects a config that would make a run meaningless. Invalid
// config is fatal at run start, before any writes.
func (c ScoreConfig) Validate() error {
	sum := c.HeatWeight + c.ValueWeight + c.RelationshipWeight
	if math.Abs(sum-1.0) > 0.001 {
		return ErrInvalidConfig
	}
	if c.ActivityWindowDays < 1 || c.Workers < 1 {
		return ErrInvalidConfig
	}
	if c.AnomalyEventThreshold < 1 || c.TrendWindowDays < 1 {
		return ErrInvalidConfig
	}
	if c.TrendNoiseThreshold < 0 || c.TrendAlertThreshold <= 0 {
		return ErrInvalidConfig
	}
	if len(c.ValueBands) == 0 {
		return ErrInvalidConfig
	}
	return nil
}
