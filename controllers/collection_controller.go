package controllers

import (
	"errors"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/crownmania/crownmania/docstore"
	"github.com/crownmania/crownmania/utils"
)

const collectionCachePrefix = "cache:collections:"

// FlushCollectionCache drops every cached collection response.
func FlushCollectionCache() {
	utils.InvalidateByPrefix(collectionCachePrefix)
}

// CollectionController serves read-only document collections.
type CollectionController struct {
	store    *docstore.Store
	cacheTTL time.Duration
}

func NewCollectionController(store *docstore.Store, cacheTTL time.Duration) *CollectionController {
	return &CollectionController{store: store, cacheTTL: cacheTTL}
}

// Fetch handles GET /collections/:name?where=field:op:value&order_by=&direction=&limit=.
func (c *CollectionController) Fetch(ctx *gin.Context) {
	q := docstore.Query{
		Collection: ctx.Param("name"),
		OrderBy:    ctx.Query("order_by"),
		Direction:  ctx.Query("direction"),
	}
	if raw := ctx.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			utils.Error(ctx, http.StatusBadRequest, 40040, "limit must be a number")
			return
		}
		q.Limit = n
	}
	for _, w := range ctx.QueryArray("where") {
		f, err := docstore.ParseFilter(w)
		if err != nil {
			utils.Error(ctx, http.StatusBadRequest, 40041, err.Error())
			return
		}
		q.Filters = append(q.Filters, f)
	}

	key := collectionCachePrefix + q.Collection + ":" + canonicalQuery(ctx.Request.URL.Query())
	var cached []docstore.Document
	if utils.CacheGetJSON(key, &cached) {
		utils.Success(ctx, gin.H{"collection": q.Collection, "items": cached})
		return
	}

	docs, err := c.store.Fetch(ctx.Request.Context(), q)
	switch {
	case errors.Is(err, docstore.ErrUnknownCollection):
		utils.Error(ctx, http.StatusNotFound, 40440, "collection not found")
		return
	case errors.Is(err, docstore.ErrInvalidQuery):
		utils.Error(ctx, http.StatusBadRequest, 40042, err.Error())
		return
	case err != nil:
		utils.Sugar.Errorw("collection fetch failed", "collection", q.Collection, "error", err)
		utils.Error(ctx, http.StatusInternalServerError, 50040, "failed to fetch collection")
		return
	}

	utils.CacheSetJSON(key, docs, c.cacheTTL)
	utils.Success(ctx, gin.H{"collection": q.Collection, "items": docs})
}

// canonicalQuery sorts keys and values so equivalent requests share a cache key.
func canonicalQuery(v url.Values) string {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	for _, k := range keys {
		vals := append([]string(nil), v[k]...)
		sort.Strings(vals)
		for _, val := range vals {
			b.WriteString(url.QueryEscape(k))
			b.WriteByte('=')
			b.WriteString(url.QueryEscape(val))
			b.WriteByte('&')
		}
	}
	return b.String()
}
