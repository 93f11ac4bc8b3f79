package docstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/crownmania/crownmania/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// every connection to :memory: is a separate database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&models.Product{}))
	products := []models.Product{
		{Slug: "crown-gold", Name: "Gold Crown", Price: 250, Edition: 100, ImagePath: "images/product1.webp"},
		{Slug: "crown-silver", Name: "Silver Crown", Price: 120, Edition: 500, ImagePath: "images/product2.webp"},
		{Slug: "durk-figure", Name: "Durk Figure", Price: 80, Edition: 1000, ModelPath: "models/durk.glb"},
	}
	require.NoError(t, db.Create(&products).Error)

	s := New(db)
	require.NoError(t, s.Register("products", &models.Product{}))
	return s
}

func slugs(docs []Document) []string {
	out := make([]string, 0, len(docs))
	for _, d := range docs {
		out = append(out, d["slug"].(string))
	}
	return out
}

func TestFetchAll(t *testing.T) {
	s := newTestStore(t)
	docs, err := s.FetchAll(context.Background(), "products")
	require.NoError(t, err)
	assert.Len(t, docs, 3)
	assert.Equal(t, []string{"products"}, s.Collections())
}

func TestFetchFilteredOrderedLimited(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	docs, err := s.Fetch(ctx, Query{
		Collection: "products",
		Filters:    []Filter{{Field: "price", Op: OpGte, Value: 100}},
		OrderBy:    "price",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"crown-gold", "crown-silver"}, slugs(docs))

	docs, err = s.Fetch(ctx, Query{Collection: "products", OrderBy: "Edition", Direction: "ASC", Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"crown-gold", "crown-silver"}, slugs(docs))

	docs, err = s.Fetch(ctx, Query{
		Collection: "products",
		Filters: []Filter{
			{Field: "slug", Op: OpIn, Value: []string{"durk-figure", "crown-silver"}},
			{Field: "slug", Op: OpNeq, Value: "crown-silver"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"durk-figure"}, slugs(docs))
}

func TestFetchRejectsBadQueries(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.FetchAll(ctx, "users")
	assert.ErrorIs(t, err, ErrUnknownCollection)

	bad := []Query{
		{Collection: "products", Filters: []Filter{{Field: "password", Op: OpEq, Value: "x"}}},
		{Collection: "products", Filters: []Filter{{Field: "price", Op: "like", Value: "x"}}},
		{Collection: "products", Filters: []Filter{{Field: "price", Op: OpIn, Value: 3}}},
		{Collection: "products", OrderBy: "price; drop table products"},
		{Collection: "products", OrderBy: "price", Direction: "sideways"},
		{Collection: "products", Limit: -1},
	}
	for _, q := range bad {
		_, err := s.Fetch(ctx, q)
		assert.ErrorIs(t, err, ErrInvalidQuery, "%+v", q)
	}
}

func TestParseFilter(t *testing.T) {
	f, err := ParseFilter("price:>=:99.5")
	require.NoError(t, err)
	assert.Equal(t, Filter{Field: "price", Op: OpGte, Value: 99.5}, f)

	f, err = ParseFilter("slug:==:crown:gold")
	require.NoError(t, err)
	assert.Equal(t, "crown:gold", f.Value)

	f, err = ParseFilter("edition:in:100, 500")
	require.NoError(t, err)
	assert.Equal(t, []any{int64(100), int64(500)}, f.Value)

	_, err = ParseFilter("price>=10")
	assert.ErrorIs(t, err, ErrInvalidQuery)
}
