package controllers

import (
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crownmania/crownmania/docstore"
	"github.com/crownmania/crownmania/models"
)

func TestCollectionFetch(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.Create(&[]models.Product{
		{Slug: "crown-gold", Name: "Gold Crown", Price: 250, Edition: 100},
		{Slug: "crown-silver", Name: "Silver Crown", Price: 120, Edition: 500},
		{Slug: "durk-figure", Name: "Durk Figure", Price: 80, Edition: 1000},
	}).Error)
	docs := docstore.New(db)
	require.NoError(t, docs.Register("products", &models.Product{}))

	c := NewCollectionController(docs, time.Minute)
	r := gin.New()
	r.GET("/collections/:name", c.Fetch)

	q := url.Values{}
	q.Add("where", "price:<:200")
	q.Set("order_by", "price")
	q.Set("direction", "asc")
	w := doJSON(r, http.MethodGet, "/collections/products?"+q.Encode(), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var got struct {
		Items []map[string]any
	}
	decode(t, w, &got)
	require.Len(t, got.Items, 2)
	assert.Equal(t, "durk-figure", got.Items[0]["slug"])
	assert.Equal(t, "crown-silver", got.Items[1]["slug"])

	w = doJSON(r, http.MethodGet, "/collections/products?limit=1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &got)
	assert.Len(t, got.Items, 1)

	assert.Equal(t, http.StatusNotFound, doJSON(r, http.MethodGet, "/collections/orders", nil).Code)
	assert.Equal(t, http.StatusBadRequest, doJSON(r, http.MethodGet, "/collections/products?where=price", nil).Code)
	assert.Equal(t, http.StatusBadRequest, doJSON(r, http.MethodGet, "/collections/products?where=secret:==:1", nil).Code)
	assert.Equal(t, http.StatusBadRequest, doJSON(r, http.MethodGet, "/collections/products?limit=ten", nil).Code)

	// without Redis the flush is a no-op and reads still go to the database
	FlushCollectionCache()
	w = doJSON(r, http.MethodGet, "/collections/products?limit=1", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCanonicalQueryIgnoresOrder(t *testing.T) {
	a := url.Values{"where": {"b:==:1", "a:==:2"}, "limit": {"3"}}
	b := url.Values{"limit": {"3"}, "where": {"a:==:2", "b:==:1"}}
	assert.Equal(t, canonicalQuery(a), canonicalQuery(b))
}
