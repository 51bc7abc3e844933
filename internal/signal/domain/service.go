package domain

import "context"

// SyncResult summarizes one ingest pass over the CRM feed.
type SyncResult struct {
	ContactsSeen    int `json:"contacts_seen"`
	ContactsCreated int `json:"contacts_created"`
	ContactsUpdated int `json:"contacts_updated"`
	EventsAppended  int `json:"events_appended"`
	CommsAppended   int `json:"comms_appended"`
	Duplicates      int `json:"duplicates"`
	Malformed       int `json:"malformed"`
	Suspected       int `json:"suspected"`
	Reassigned      int `json:"reassigned"`
	Reappeared      int `json:"reappeared"`
}

// Ingestor pulls the CRM feed into the append-only event store.
type Ingestor interface {
	SyncFromFeed(ctx context.Context) (SyncResult, error)
}
