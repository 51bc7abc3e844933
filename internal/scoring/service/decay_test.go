package service

import (
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDecayMultiplier_Tiers(t *testing.T) {
	cases := []struct {
		days int
		want float64
	}{
		{0, 1.00},
		{5, 1.00},
		{7, 1.00},
		{10, 0.95},
		{14, 0.95},
		{28, 0.85},
		{45, 0.70},
		{75, 0.50},
		{120, 0.30},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, decayMultiplier(tc.days), "days=%d", tc.days)
	}
}

func TestDecayMultiplier_MonotonicallyNonIncreasing(t *testing.T) {
	prev := decayMultiplier(0)
	for days := 1; days <= 200; days++ {
		cur := decayMultiplier(days)
		if cur > prev {
			t.Fatalf("multiplier increased at day %d: %f > %f", days, cur, prev)
		}
		prev = cur
	}
}

func TestEffectiveDecay_UsesLastActivity(t *testing.T) {
	now := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	last := sql.NullTime{Time: now.Add(-45 * 24 * time.Hour), Valid: true}

	mult, days := effectiveDecay(last, now.Add(-365*24*time.Hour), now, 7)

	assert.Equal(t, 0.70, mult)
	assert.Equal(t, 45, days)
}

func TestEffectiveDecay_NewContactGrace(t *testing.T) {
	now := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	created := now.Add(-3 * 24 * time.Hour)

	mult, days := effectiveDecay(sql.NullTime{}, created, now, 7)

	assert.Equal(t, 1.00, mult)
	assert.Equal(t, 3, days)
}

func TestEffectiveDecay_SilentPastGraceBottomsOut(t *testing.T) {
	now := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	created := now.Add(-30 * 24 * time.Hour)

	mult, _ := effectiveDecay(sql.NullTime{}, created, now, 7)

	assert.Equal(t, 0.30, mult)
}
