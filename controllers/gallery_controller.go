package controllers

import (
	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/crownmania/crownmania/assets"
	"github.com/crownmania/crownmania/utils"
)

// GalleryItem is one product image. A failed item keeps an empty URL so the
// page can show a placeholder.
type GalleryItem struct {
	Name  string `json:"name"`
	URL   string `json:"url"`
	Error string `json:"error,omitempty"`
}

// GalleryController resolves the product gallery, preferring webp over jpg.
type GalleryController struct {
	resolver *assets.Resolver
	items    []string
}

func NewGalleryController(resolver *assets.Resolver, items []string) *GalleryController {
	return &GalleryController{resolver: resolver, items: items}
}

// List resolves every gallery item. It never fails as a whole.
func (g *GalleryController) List(ctx *gin.Context) {
	out := make([]GalleryItem, len(g.items))
	var eg errgroup.Group
	eg.SetLimit(4)
	for i, name := range g.items {
		i, name := i, name
		eg.Go(func() error {
			out[i] = GalleryItem{Name: name}
			url, err := g.resolver.ResolveWithFallback(ctx.Request.Context(), "images/"+name+".webp", "images/"+name+".jpg")
			if err != nil {
				utils.Sugar.Warnw("gallery image failed", "name", name, "error", err)
				out[i].Error = "failed to load"
				return nil
			}
			out[i].URL = url
			return nil
		})
	}
	_ = eg.Wait()
	utils.Success(ctx, gin.H{"items": out})
}
