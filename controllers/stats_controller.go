package controllers

import (
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/crownmania/crownmania/models"
	"github.com/crownmania/crownmania/utils"
)

// StatsController reports page views and content counts.
type StatsController struct {
	db *gorm.DB
}

// NewStatsController creates a new StatsController instance.
func NewStatsController(db *gorm.DB) *StatsController {
	return &StatsController{db: db}
}

// GetStats returns today's and all-time views per tracked page plus counts of
// stored messages and uploads. Failing counters read as zero.
func (s *StatsController) GetStats(ctx *gin.Context) {
	type row struct {
		Path  string
		Total int64
	}
	// string date avoids timezone mismatches with the DATE column
	today := time.Now().In(time.Local).Format("2006-01-02")

	todayViews := map[string]int64{}
	allViews := map[string]int64{}
	for _, p := range models.TrackedPages {
		todayViews[p] = 0
		allViews[p] = 0
	}

	var rows []row
	if err := s.db.Model(&models.PageView{}).
		Select("path, COALESCE(SUM(count),0) AS total").
		Where("date = ?", today).
		Group("path").
		Scan(&rows).Error; err != nil {
		utils.Sugar.Warnw("stats: today's page views unavailable", "error", err)
	} else {
		for _, r := range rows {
			todayViews[r.Path] = r.Total
		}
	}
	rows = nil
	if err := s.db.Model(&models.PageView{}).
		Select("path, COALESCE(SUM(count),0) AS total").
		Group("path").
		Scan(&rows).Error; err != nil {
		utils.Sugar.Warnw("stats: total page views unavailable", "error", err)
	} else {
		for _, r := range rows {
			allViews[r.Path] = r.Total
		}
	}

	var messages, uploads int64
	if err := s.db.Model(&models.ContactMessage{}).Count(&messages).Error; err != nil {
		utils.Sugar.Warnw("stats: contact message count unavailable", "error", err)
		messages = 0
	}
	if err := s.db.Model(&models.UploadedAsset{}).Count(&uploads).Error; err != nil {
		utils.Sugar.Warnw("stats: upload count unavailable", "error", err)
		uploads = 0
	}

	utils.Success(ctx, gin.H{
		"page_views_today": todayViews,
		"page_views_total": allViews,
		"contact_messages": messages,
		"uploaded_assets":  uploads,
	})
}
