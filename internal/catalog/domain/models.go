package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

type PropertyStatus string

const (
	PropertyActive  PropertyStatus = "active"
	PropertyPending PropertyStatus = "pending"
	PropertySold    PropertyStatus = "sold"
)

// Property is a catalog record written by the external listing feed and read
// by the matching engine.
type Property struct {
	ID          snowflake.ID                `gorm:"primaryKey" json:"id"`
	ExternalRef string                      `gorm:"uniqueIndex;not null" json:"external_ref"`
	Address     string                      `json:"address"`
	City        string                      `gorm:"index" json:"city"`
	Price       float64                     `gorm:"not null" json:"price"`
	Beds        int                         `json:"beds"`
	Baths       float64                     `json:"baths"`
	Sqft        int                         `json:"sqft"`
	Acreage     float64                     `json:"acreage"`
	Features    datatypes.JSONSlice[string] `json:"features,omitempty"`
	ListedAt    time.Time                   `json:"listed_at"`
	Status      PropertyStatus              `gorm:"not null;default:active;index" json:"status"`
	CreatedAt   time.Time                   `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time                   `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// DaysOnMarket is measured against the caller's reference time so match
// scoring stays a pure function of its inputs.
func (p Property) DaysOnMarket(asOf time.Time) int {
	if p.ListedAt.IsZero() || asOf.Before(p.ListedAt) {
		return 0
	}
	return int(asOf.Sub(p.ListedAt).Hours() / 24)
}
