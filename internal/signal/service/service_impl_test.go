package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/propelre/leadpulse/internal/clock"
	"github.com/propelre/leadpulse/internal/config"
	contactdomain "github.com/propelre/leadpulse/internal/contact/domain"
	contactrepo "github.com/propelre/leadpulse/internal/contact/repository"
	"github.com/propelre/leadpulse/internal/crm"
	"github.com/propelre/leadpulse/internal/migration"
	"github.com/propelre/leadpulse/internal/signal/domain"
	signalrepo "github.com/propelre/leadpulse/internal/signal/repository"
	"github.com/propelre/leadpulse/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fakeFeed struct {
	contacts []crm.ContactRecord
	events   []crm.EventRecord
	comms    []crm.CommRecord
	err      error
}

func (f *fakeFeed) FetchContacts(ctx context.Context) ([]crm.ContactRecord, error) {
	return f.contacts, f.err
}

func (f *fakeFeed) FetchEvents(ctx context.Context, since time.Time) ([]crm.EventRecord, error) {
	return f.events, f.err
}

func (f *fakeFeed) FetchCommunications(ctx context.Context, since time.Time) ([]crm.CommRecord, error) {
	return f.comms, f.err
}

type ingestFixture struct {
	svc   *Service
	feed  *fakeFeed
	conn  *gorm.DB
	clock *clock.FakeClock
}

func setupIngestTest(t *testing.T) *ingestFixture {
	t.Helper()

	conn, err := db.NewTest()
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := migration.Run(conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	node, err := snowflake.NewNode(2)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}
	fake := clock.NewFakeClock(time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC))
	feed := &fakeFeed{}

	cfg := config.Config{}
	cfg.Scheduler.FeedTimeout = 30 * time.Second

	svc := New(Params{
		DB:          conn,
		Log:         zap.NewNop(),
		GenID:       node,
		Clock:       fake,
		Config:      cfg,
		Feed:        feed,
		ContactRepo: contactrepo.Provide(),
		SignalRepo:  signalrepo.Provide(),
	}).(*Service)

	return &ingestFixture{svc: svc, feed: feed, conn: conn, clock: fake}
}

func TestSyncFromFeed_CreatesAndUpdatesContacts(t *testing.T) {
	f := setupIngestTest(t)
	maxPrice := 450000.0
	f.feed.contacts = []crm.ContactRecord{
		{ExternalRef: "crm-1", Name: "Riley Chen", Stage: "active", Tags: []string{"vip"}, MaxPrice: &maxPrice, Cities: []string{"Austin"}},
	}

	result, err := f.svc.SyncFromFeed(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.ContactsCreated)

	var contact contactdomain.Contact
	require.NoError(t, f.conn.First(&contact, "external_ref = ?", "crm-1").Error)
	assert.Equal(t, contactdomain.StageActive, contact.Stage)
	require.NotNil(t, contact.Preferences.Data().MaxPrice)
	assert.Equal(t, 450000.0, *contact.Preferences.Data().MaxPrice)

	// Second pass with a stage change updates in place.
	f.feed.contacts[0].Stage = "client"
	result, err = f.svc.SyncFromFeed(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.ContactsUpdated)
	assert.Zero(t, result.ContactsCreated)

	require.NoError(t, f.conn.First(&contact, "external_ref = ?", "crm-1").Error)
	assert.Equal(t, contactdomain.StageClient, contact.Stage)
}

func TestSyncFromFeed_AppendsEventsIdempotently(t *testing.T) {
	f := setupIngestTest(t)
	f.feed.contacts = []crm.ContactRecord{{ExternalRef: "crm-1", Name: "Riley Chen", Stage: "active"}}
	f.feed.events = []crm.EventRecord{
		{SourceRef: "ev-1", ContactRef: "crm-1", Type: "property_view", OccurredAt: f.clock.Now().Add(-time.Hour), PropertyPrice: 350000},
		{SourceRef: "ev-2", ContactRef: "crm-1", Type: "Favorite", OccurredAt: f.clock.Now().Add(-time.Hour)},
	}

	result, err := f.svc.SyncFromFeed(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, result.EventsAppended)

	// Replaying the same feed window appends nothing new.
	result, err = f.svc.SyncFromFeed(context.Background())
	require.NoError(t, err)
	assert.Zero(t, result.EventsAppended)
	assert.Equal(t, 2, result.Duplicates)

	var events int64
	require.NoError(t, f.conn.Model(&domain.Event{}).Count(&events).Error)
	assert.EqualValues(t, 2, events)
}

func TestSyncFromFeed_RejectsUnknownEventType(t *testing.T) {
	f := setupIngestTest(t)
	f.feed.contacts = []crm.ContactRecord{{ExternalRef: "crm-1", Name: "Riley Chen", Stage: "active"}}
	f.feed.events = []crm.EventRecord{
		{SourceRef: "ev-1", ContactRef: "crm-1", Type: "drone_flyover", OccurredAt: f.clock.Now()},
	}

	result, err := f.svc.SyncFromFeed(context.Background())
	require.NoError(t, err)

	assert.Zero(t, result.EventsAppended)
	assert.Equal(t, 1, result.Malformed)
}

func TestSyncFromFeed_CommDirections(t *testing.T) {
	f := setupIngestTest(t)
	f.feed.contacts = []crm.ContactRecord{{ExternalRef: "crm-1", Name: "Riley Chen", Stage: "active"}}
	f.feed.comms = []crm.CommRecord{
		{SourceRef: "cm-1", ContactRef: "crm-1", Type: "call", Direction: "inbound", OccurredAt: f.clock.Now().Add(-time.Hour), DurationSeconds: 300},
		{SourceRef: "cm-2", ContactRef: "crm-1", Type: "email", Direction: "outbound", OccurredAt: f.clock.Now().Add(-time.Hour)},
	}

	result, err := f.svc.SyncFromFeed(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, result.CommsAppended)

	var inbound int64
	require.NoError(t, f.conn.Model(&domain.Communication{}).
		Where("direction = ?", domain.DirectionInbound).Count(&inbound).Error)
	assert.EqualValues(t, 1, inbound)
}

func TestSyncFromFeed_TwoPassReassignment(t *testing.T) {
	f := setupIngestTest(t)
	f.feed.contacts = []crm.ContactRecord{{ExternalRef: "crm-1", Name: "Riley Chen", Stage: "active"}}

	_, err := f.svc.SyncFromFeed(context.Background())
	require.NoError(t, err)

	// First absent sync marks the contact suspect.
	f.feed.contacts = nil
	result, err := f.svc.SyncFromFeed(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Suspected)

	var contact contactdomain.Contact
	require.NoError(t, f.conn.First(&contact, "external_ref = ?", "crm-1").Error)
	assert.Equal(t, contactdomain.AssignmentSuspect, contact.AssignmentState)
	assert.True(t, contact.ReassignmentSuspectAt.Valid)

	// Second absent sync confirms the reassignment.
	result, err = f.svc.SyncFromFeed(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Reassigned)

	require.NoError(t, f.conn.First(&contact, "external_ref = ?", "crm-1").Error)
	assert.Equal(t, contactdomain.AssignmentReassigned, contact.AssignmentState)
}

func TestSyncFromFeed_ReappearanceClearsSuspect(t *testing.T) {
	f := setupIngestTest(t)
	f.feed.contacts = []crm.ContactRecord{{ExternalRef: "crm-1", Name: "Riley Chen", Stage: "active"}}

	_, err := f.svc.SyncFromFeed(context.Background())
	require.NoError(t, err)

	f.feed.contacts = nil
	_, err = f.svc.SyncFromFeed(context.Background())
	require.NoError(t, err)

	f.feed.contacts = []crm.ContactRecord{{ExternalRef: "crm-1", Name: "Riley Chen", Stage: "active"}}
	result, err := f.svc.SyncFromFeed(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Reappeared)

	var contact contactdomain.Contact
	require.NoError(t, f.conn.First(&contact, "external_ref = ?", "crm-1").Error)
	assert.Equal(t, contactdomain.AssignmentPresent, contact.AssignmentState)
	assert.False(t, contact.ReassignmentSuspectAt.Valid)
}

func TestSyncFromFeed_SourceUnavailableIsFatal(t *testing.T) {
	f := setupIngestTest(t)
	f.feed.err = errors.New("connection refused")

	_, err := f.svc.SyncFromFeed(context.Background())

	assert.ErrorIs(t, err, crm.ErrSourceUnavailable)
}

func TestSyncFromFeed_NoFeedConfigured(t *testing.T) {
	f := setupIngestTest(t)
	f.svc.feed = nil

	_, err := f.svc.SyncFromFeed(context.Background())

	assert.ErrorIs(t, err, crm.ErrSourceUnavailable)
}
