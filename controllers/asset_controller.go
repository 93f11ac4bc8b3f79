package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/crownmania/crownmania/assets"
	"github.com/crownmania/crownmania/events"
	"github.com/crownmania/crownmania/models"
	"github.com/crownmania/crownmania/utils"
)

// AssetController exposes the asset resolver over HTTP.
type AssetController struct {
	resolver  *assets.Resolver
	db        *gorm.DB
	publisher events.Publisher
	maxUpload int64
}

// NewAssetController wires the resolver. db and publisher may be nil.
func NewAssetController(resolver *assets.Resolver, db *gorm.DB, publisher events.Publisher, maxUploadMB int) *AssetController {
	if publisher == nil {
		publisher = events.Noop{}
	}
	if maxUploadMB <= 0 {
		maxUploadMB = 50
	}
	return &AssetController{
		resolver:  resolver,
		db:        db,
		publisher: publisher,
		maxUpload: int64(maxUploadMB) << 20,
	}
}

// GetURL resolves ?path= to a download URL.
func (a *AssetController) GetURL(ctx *gin.Context) {
	path := strings.TrimSpace(ctx.Query("path"))
	if path == "" {
		utils.Error(ctx, http.StatusBadRequest, 40010, "path is required")
		return
	}
	url, err := a.resolver.Resolve(ctx.Request.Context(), path)
	if err != nil {
		respondAssetError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"path": path, "url": url})
}

// GetURLWithFallback resolves ?primary= and falls back to ?fallback= when the primary is missing.
func (a *AssetController) GetURLWithFallback(ctx *gin.Context) {
	primary := strings.TrimSpace(ctx.Query("primary"))
	fallback := strings.TrimSpace(ctx.Query("fallback"))
	if primary == "" || fallback == "" {
		utils.Error(ctx, http.StatusBadRequest, 40011, "primary and fallback are required")
		return
	}
	url, err := a.resolver.ResolveWithFallback(ctx.Request.Context(), primary, fallback)
	if err != nil {
		respondAssetError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"url": url})
}

// ListFolder lists one of the upload folders with resolved URLs.
func (a *AssetController) ListFolder(ctx *gin.Context) {
	folder := ctx.Param("folder")
	if assets.AllowedTypes(folder) == nil {
		utils.Error(ctx, http.StatusNotFound, 40410, "unknown folder")
		return
	}
	files, err := a.resolver.ListFolder(ctx.Request.Context(), folder)
	if err != nil {
		respondAssetError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"folder": folder, "items": files})
}

// Upload stores a multipart "file" under the "folder" form value.
func (a *AssetController) Upload(ctx *gin.Context) {
	folder := strings.TrimSpace(ctx.PostForm("folder"))
	header, err := ctx.FormFile("file")
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40030, "no file uploaded")
		return
	}
	if header.Size > a.maxUpload {
		utils.Error(ctx, http.StatusRequestEntityTooLarge, 41300, "file too large")
		return
	}
	contentType := header.Header.Get("Content-Type")
	// reject before the body is opened
	if err := assets.ValidateFileType(folder, contentType); err != nil {
		respondAssetError(ctx, err)
		return
	}

	file, err := header.Open()
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40031, "unreadable upload")
		return
	}
	defer file.Close()

	url, err := a.resolver.Upload(ctx.Request.Context(), assets.Upload{
		Name:        header.Filename,
		ContentType: contentType,
		Size:        header.Size,
		Body:        file,
	}, folder)
	if err != nil {
		respondAssetError(ctx, err)
		return
	}

	path, _ := assets.ObjectPath(folder, header.Filename)
	a.record(ctx, models.UploadedAsset{
		Path:        path,
		Folder:      folder,
		ContentType: contentType,
		Size:        header.Size,
		URL:         url,
		UploaderIP:  ctx.ClientIP(),
	})
	utils.Success(ctx, gin.H{"path": path, "url": url})
}

// EvictExpired drops stale cache entries.
func (a *AssetController) EvictExpired(ctx *gin.Context) {
	removed := a.resolver.EvictExpired()
	utils.Success(ctx, gin.H{"removed": removed, "remaining": a.resolver.Len()})
}

// CacheStats reports resolver counters.
func (a *AssetController) CacheStats(ctx *gin.Context) {
	utils.Success(ctx, gin.H{"stats": a.resolver.Stats(), "ttl_seconds": int(a.resolver.TTL() / time.Second)})
}

// VerifyStorage lists every upload folder and reports what was found.
func (a *AssetController) VerifyStorage(ctx *gin.Context) {
	utils.Success(ctx, gin.H{"folders": a.resolver.VerifySetup(ctx.Request.Context(), assets.Folders()...)})
}

func (a *AssetController) record(ctx *gin.Context, row models.UploadedAsset) {
	if a.db != nil {
		if err := a.db.WithContext(ctx.Request.Context()).Create(&row).Error; err != nil {
			utils.Sugar.Warnw("upload audit not saved", "path", row.Path, "error", err)
		}
	}
	evt := events.AssetUploaded{
		Path:        row.Path,
		Folder:      row.Folder,
		ContentType: row.ContentType,
		Size:        row.Size,
		UploadedAt:  time.Now().UTC(),
	}
	if err := a.publisher.Publish(events.SubjectAssetUploaded, evt); err != nil {
		utils.Sugar.Warnw("upload event not published", "path", row.Path, "error", err)
	}
}

func respondAssetError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, assets.ErrInvalidFileType):
		utils.Error(ctx, http.StatusBadRequest, 40012, err.Error())
	case assets.IsNotFound(err):
		utils.Error(ctx, http.StatusNotFound, 40411, "asset not found")
	default:
		utils.Sugar.Warnw("asset storage failure", "error", err)
		utils.Error(ctx, http.StatusBadGateway, 50201, "storage unavailable")
	}
}
