package routes

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/crownmania/crownmania/assets"
	"github.com/crownmania/crownmania/config"
	"github.com/crownmania/crownmania/controllers"
	"github.com/crownmania/crownmania/docstore"
	"github.com/crownmania/crownmania/events"
	"github.com/crownmania/crownmania/forum"
	"github.com/crownmania/crownmania/middleware"
	"github.com/crownmania/crownmania/utils"
	"github.com/crownmania/crownmania/vault"
)

// StorageChecker reports whether the object store is reachable.
type StorageChecker interface {
	CheckConnection(ctx context.Context) error
}

// Deps are the long-lived services the handlers share.
type Deps struct {
	DB        *gorm.DB
	Storage   StorageChecker
	Resolver  *assets.Resolver
	Board     *forum.Board
	Verifier  *vault.Verifier
	Docs      *docstore.Store
	Publisher events.Publisher
	StaticDir string
}

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(cfg config.AppConfig, d Deps) *gin.Engine {
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}
	if d.StaticDir == "" {
		d.StaticDir = "./static"
	}
	index := d.StaticDir + "/index.html"

	r := gin.New()
	gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
	if err == nil {
		r.Use(utils.Ginzap(gl, time.RFC3339, true))
		r.Use(utils.RecoveryWithZap(gl, true))
	} else {
		r.Use(gin.Recovery())
	}

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
		// browsers refuse credentials with a wildcard origin
		corsCfg.AllowCredentials = false
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))
	r.Use(middleware.PageViewRecorder(d.DB))

	r.Static("/static", d.StaticDir)
	for _, page := range []string{"/", "/forum", "/contact"} {
		r.GET(page, func(c *gin.Context) { c.File(index) })
	}
	r.GET("/health", func(ctx *gin.Context) {
		if d.Storage != nil {
			c, cancel := context.WithTimeout(ctx.Request.Context(), 3*time.Second)
			err := d.Storage.CheckConnection(c)
			cancel()
			if err != nil {
				utils.Sugar.Warnw("health: object storage unreachable", "error", err)
				utils.Error(ctx, http.StatusServiceUnavailable, 50300, "object storage unreachable")
				return
			}
		}
		utils.Success(ctx, gin.H{"status": "ok", "project": cfg.ProjectID})
	})

	assetController := controllers.NewAssetController(d.Resolver, d.DB, d.Publisher, cfg.UploadMaxSizeMB)
	galleryController := controllers.NewGalleryController(d.Resolver, cfg.GalleryItems)
	forumController := controllers.NewForumController(d.Board)
	vaultController := controllers.NewVaultController(d.Verifier, time.Duration(cfg.VaultPassTTLMinutes)*time.Minute)

	api := r.Group("/api/v1")
	limited := middleware.RateLimitMiddleware(cfg.RateLimitPerMinute)

	assetsGroup := api.Group("/assets")
	assetsGroup.GET("/url", assetController.GetURL)
	assetsGroup.GET("/url/fallback", assetController.GetURLWithFallback)
	assetsGroup.GET("/folders/:folder", assetController.ListFolder)
	assetsGroup.POST("/upload", limited, assetController.Upload)
	assetsGroup.POST("/cache/evict", limited, assetController.EvictExpired)
	assetsGroup.GET("/cache/stats", assetController.CacheStats)
	assetsGroup.GET("/storage/verify", limited, assetController.VerifyStorage)

	api.GET("/gallery", galleryController.List)

	if d.Docs != nil {
		collectionController := controllers.NewCollectionController(d.Docs, time.Duration(cfg.CollectionCacheTTLSeconds)*time.Second)
		api.GET("/collections/:name", collectionController.Fetch)
	}

	forumGroup := api.Group("/forum")
	forumGroup.GET("/posts", forumController.ListPosts)
	forumGroup.POST("/posts", limited, forumController.CreatePost)
	forumGroup.POST("/posts/:id/vote", limited, forumController.Vote)

	vaultGroup := api.Group("/vault")
	vaultGroup.POST("/verify", limited, vaultController.Submit)
	vaultGroup.GET("/verify/:id", vaultController.Status)
	vaultGroup.GET("/pass", middleware.VaultPassRequired(), vaultController.Pass)

	if d.DB != nil {
		contactController := controllers.NewContactController(d.DB, cfg.ContactCaptchaEnabled, time.Duration(cfg.ContactCooldownSeconds)*time.Second)
		statsController := controllers.NewStatsController(d.DB)
		api.GET("/contact/captcha", limited, contactController.Captcha)
		api.POST("/contact", limited, contactController.Submit)
		api.GET("/stats", statsController.GetStats)
	}

	r.NoRoute(func(ctx *gin.Context) {
		path := ctx.Request.URL.Path
		if strings.HasPrefix(path, "/api/") {
			utils.Error(ctx, http.StatusNotFound, 40400, "api route not found")
			return
		}
		if strings.HasPrefix(path, "/static/") {
			ctx.JSON(http.StatusNotFound, gin.H{"message": "static asset not found"})
			return
		}
		// client side routes fall back to the SPA entry
		ctx.Status(http.StatusOK)
		ctx.File(index)
	})

	return r
}
