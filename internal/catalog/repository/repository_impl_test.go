package repository

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/propelre/leadpulse/internal/catalog/domain"
	"github.com/propelre/leadpulse/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupCatalogTest(t *testing.T) (domain.Repository, *gorm.DB, *snowflake.Node) {
	t.Helper()

	conn, err := db.NewTest()
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := conn.AutoMigrate(&domain.Property{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	node, err := snowflake.NewNode(3)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}
	return Provide(), conn, node
}

func TestUpsert_InsertThenUpdateByExternalRef(t *testing.T) {
	repo, conn, node := setupCatalogTest(t)
	ctx := context.Background()

	property := &domain.Property{
		ID:          node.Generate(),
		ExternalRef: "mls-100",
		City:        "Austin",
		Price:       350000,
		Status:      domain.PropertyActive,
		ListedAt:    time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, repo.Upsert(ctx, conn, property))

	// Same listing comes back with a price cut and a status change.
	relisted := &domain.Property{
		ID:          node.Generate(),
		ExternalRef: "mls-100",
		City:        "Austin",
		Price:       335000,
		Status:      domain.PropertyPending,
		ListedAt:    property.ListedAt,
	}
	require.NoError(t, repo.Upsert(ctx, conn, relisted))

	var count int64
	require.NoError(t, conn.Model(&domain.Property{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	var stored domain.Property
	require.NoError(t, conn.First(&stored, "external_ref = ?", "mls-100").Error)
	assert.Equal(t, 335000.0, stored.Price)
	assert.Equal(t, domain.PropertyPending, stored.Status)
}

func TestListActive_FiltersSoldAndPending(t *testing.T) {
	repo, conn, node := setupCatalogTest(t)
	ctx := context.Background()

	for i, status := range []domain.PropertyStatus{domain.PropertyActive, domain.PropertySold, domain.PropertyPending} {
		require.NoError(t, conn.Create(&domain.Property{
			ID:          node.Generate(),
			ExternalRef: "mls-" + string(rune('a'+i)),
			Price:       300000,
			Status:      status,
		}).Error)
	}

	active, err := repo.ListActive(ctx, conn)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, domain.PropertyActive, active[0].Status)
}

func TestFindByIDs(t *testing.T) {
	repo, conn, node := setupCatalogTest(t)
	ctx := context.Background()

	a := node.Generate()
	b := node.Generate()
	require.NoError(t, conn.Create(&domain.Property{ID: a, ExternalRef: "mls-a", Price: 1}).Error)
	require.NoError(t, conn.Create(&domain.Property{ID: b, ExternalRef: "mls-b", Price: 2}).Error)

	got, err := repo.FindByIDs(ctx, conn, []snowflake.ID{a})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, a, got[0].ID)
}

func TestDaysOnMarket(t *testing.T) {
	asOf := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	property := domain.Property{ListedAt: asOf.Add(-12 * 24 * time.Hour)}

	assert.Equal(t, 12, property.DaysOnMarket(asOf))
	assert.Zero(t, domain.Property{}.DaysOnMarket(asOf))
	assert.Zero(t, domain.Property{ListedAt: asOf.Add(24 * time.Hour)}.DaysOnMarket(asOf))
}
