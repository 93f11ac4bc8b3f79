package middleware

import (
	"net/http"
	"slices"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/crownmania/crownmania/models"
	"github.com/crownmania/crownmania/utils"
)

// PageViewRecorder counts successful GET requests of the SPA routes per day.
func PageViewRecorder(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if db == nil || c.Request.Method != http.MethodGet {
			return
		}
		if status := c.Writer.Status(); status < 200 || status >= 400 {
			return
		}
		path := c.Request.URL.Path
		if !slices.Contains(models.TrackedPages, path) {
			return
		}

		now := time.Now().In(time.Local)
		midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

		// upsert keeps concurrent first visits of the day from colliding
		err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "date"}, {Name: "path"}},
			DoUpdates: clause.Assignments(map[string]interface{}{"count": gorm.Expr("count + 1"), "updated_at": now}),
		}).Create(&models.PageView{Date: midnight, Path: path, Count: 1}).Error
		if err != nil {
			utils.Sugar.Debugw("page view not recorded", "path", path, "error", err)
		}
	}
}
