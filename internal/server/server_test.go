package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	catalogdomain "github.com/propelre/leadpulse/internal/catalog/domain"
	"github.com/propelre/leadpulse/internal/config"
	matchingdomain "github.com/propelre/leadpulse/internal/matching/domain"
	scoringdomain "github.com/propelre/leadpulse/internal/scoring/domain"
	signaldomain "github.com/propelre/leadpulse/internal/signal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fakeScoringService struct {
	run      *scoringdomain.ScoringRun
	snapshot *scoringdomain.ScoreSnapshot
	err      error
}

func (f *fakeScoringService) Run(ctx context.Context, cfg scoringdomain.ScoreConfig) (*scoringdomain.ScoringRun, error) {
	return f.run, f.err
}

func (f *fakeScoringService) GetRun(ctx context.Context, id snowflake.ID) (*scoringdomain.ScoringRun, error) {
	if f.run == nil || f.run.ID != id {
		return nil, scoringdomain.ErrRunNotFound
	}
	return f.run, nil
}

func (f *fakeScoringService) LatestSnapshot(ctx context.Context, contactID snowflake.ID) (*scoringdomain.ScoreSnapshot, error) {
	return f.snapshot, f.err
}

func (f *fakeScoringService) History(ctx context.Context, contactID snowflake.ID, window time.Duration) ([]scoringdomain.ScoreSnapshot, error) {
	if f.snapshot == nil {
		return nil, nil
	}
	return []scoringdomain.ScoreSnapshot{*f.snapshot}, nil
}

type fakeMatchingService struct {
	results []matchingdomain.MatchResult
	err     error
}

func (f *fakeMatchingService) MatchProperties(ctx context.Context, buyerID snowflake.ID, candidates []catalogdomain.Property, cfg matchingdomain.MatchConfig) ([]matchingdomain.MatchResult, error) {
	return f.results, f.err
}

func (f *fakeMatchingService) BuyerSnapshot(ctx context.Context, buyerID snowflake.ID) (matchingdomain.BuyerSnapshot, error) {
	return matchingdomain.BuyerSnapshot{BuyerID: buyerID}, nil
}

type fakeCatalogRepo struct {
	active []catalogdomain.Property
}

func (f *fakeCatalogRepo) Upsert(ctx context.Context, db *gorm.DB, property *catalogdomain.Property) error {
	return nil
}

func (f *fakeCatalogRepo) FindByIDs(ctx context.Context, db *gorm.DB, ids []snowflake.ID) ([]catalogdomain.Property, error) {
	return nil, nil
}

func (f *fakeCatalogRepo) ListActive(ctx context.Context, db *gorm.DB) ([]catalogdomain.Property, error) {
	return f.active, nil
}

type fakeIngestor struct {
	result signaldomain.SyncResult
	err    error
}

func (f *fakeIngestor) SyncFromFeed(ctx context.Context) (signaldomain.SyncResult, error) {
	return f.result, f.err
}

func newTestServer(t *testing.T, scoring *fakeScoringService, matching *fakeMatchingService) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	engine := NewEngine(zap.NewNop())
	NewServer(ServerParams{
		Gin:         engine,
		Cfg:         config.Config{},
		ScoringSvc:  scoring,
		MatchingSvc: matching,
		CatalogRepo: &fakeCatalogRepo{},
		Ingestor:    &fakeIngestor{},
	})
	return engine
}

func TestGetScoringRun_OK(t *testing.T) {
	scoring := &fakeScoringService{
		run: &scoringdomain.ScoringRun{ID: 42, Status: scoringdomain.RunStatusCompleted},
	}
	engine := newTestServer(t, scoring, &fakeMatchingService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/scoring/runs/42", nil)
	engine.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var got scoringdomain.ScoringRun
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, scoringdomain.RunStatusCompleted, got.Status)
}

func TestGetScoringRun_NotFound(t *testing.T) {
	engine := newTestServer(t, &fakeScoringService{}, &fakeMatchingService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/scoring/runs/99", nil)
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "not_found")
}

func TestGetScoringRun_BadID(t *testing.T) {
	engine := newTestServer(t, &fakeScoringService{}, &fakeMatchingService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/scoring/runs/not-a-number", nil)
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTriggerScoringRun_Conflict(t *testing.T) {
	scoring := &fakeScoringService{err: scoringdomain.ErrRunInProgress}
	engine := newTestServer(t, scoring, &fakeMatchingService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/scoring/runs", nil)
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestGetContactSnapshot_NotFoundWhenNeverScored(t *testing.T) {
	engine := newTestServer(t, &fakeScoringService{}, &fakeMatchingService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/contacts/7/snapshot", nil)
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetContactHistory_RejectsBadDays(t *testing.T) {
	engine := newTestServer(t, &fakeScoringService{}, &fakeMatchingService{})

	for _, days := range []string{"0", "-3", "999", "week"} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/v1/contacts/7/history?days="+days, nil)
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code, "days=%s", days)
	}
}

func TestMatchBuyer_ReturnsRanking(t *testing.T) {
	matching := &fakeMatchingService{
		results: []matchingdomain.MatchResult{
			{BuyerID: 7, PropertyID: 1, TotalScore: 88},
			{BuyerID: 7, PropertyID: 2, TotalScore: 61},
		},
	}
	engine := newTestServer(t, &fakeScoringService{}, matching)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/buyers/7/matches", strings.NewReader(`{"limit":1}`))
	req.Header.Set("Content-Type", "application/json")
	engine.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var payload struct {
		Matches []matchingdomain.MatchResult `json:"matches"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	require.Len(t, payload.Matches, 1)
	assert.Equal(t, 88, payload.Matches[0].TotalScore)
}

func TestMatchBuyer_UnknownBuyer(t *testing.T) {
	matching := &fakeMatchingService{err: matchingdomain.ErrBuyerNotFound}
	engine := newTestServer(t, &fakeScoringService{}, matching)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/buyers/7/matches", nil)
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHealth(t *testing.T) {
	engine := newTestServer(t, &fakeScoringService{}, &fakeMatchingService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}
