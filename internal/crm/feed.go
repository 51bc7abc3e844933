// Package crm defines the boundary with the external CRM synchronization
// client. The engine only consumes its feed; fetching, auth, and pagination
// live on the other side.
package crm

import (
	"context"
	"errors"
	"time"
)

// ContactRecord is per-contact metadata from the CRM feed.
type ContactRecord struct {
	ExternalRef string
	Name        string
	Stage       string
	Tags        []string
	MinPrice    *float64
	MaxPrice    *float64
	MinBeds     *int
	MinBaths    *float64
	MinSqft     *int
	MinAcreage  *float64
	Cities      []string
	Features    []string
}

// EventRecord is one behavioral event keyed by the upstream contact ref.
type EventRecord struct {
	SourceRef     string
	ContactRef    string
	Type          string
	OccurredAt    time.Time
	PropertyRef   string
	PropertyPrice float64
}

// CommRecord is one call/text/email keyed by the upstream contact ref.
type CommRecord struct {
	SourceRef       string
	ContactRef      string
	Type            string
	Direction       string
	OccurredAt      time.Time
	DurationSeconds int
}

// Feed is implemented by the CRM sync collaborator. Implementations must
// honor ctx; callers apply a bounded timeout.
type Feed interface {
	FetchContacts(ctx context.Context) ([]ContactRecord, error)
	FetchEvents(ctx context.Context, since time.Time) ([]EventRecord, error)
	FetchCommunications(ctx context.Context, since time.Time) ([]CommRecord, error)
}

// ErrSourceUnavailable marks the whole data source as unreachable. Callers
// treat it as fatal; any other error is a per-record problem.
var ErrSourceUnavailable = errors.New("crm_source_unavailable")
