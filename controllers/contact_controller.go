package controllers

import (
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/crownmania/crownmania/models"
	"github.com/crownmania/crownmania/utils"
)

// ContactController stores messages from the contact form.
type ContactController struct {
	db             *gorm.DB
	captchaEnabled bool
	cooldown       time.Duration
}

func NewContactController(db *gorm.DB, captchaEnabled bool, cooldown time.Duration) *ContactController {
	return &ContactController{db: db, captchaEnabled: captchaEnabled, cooldown: cooldown}
}

// Captcha issues a digit captcha for the contact form.
func (c *ContactController) Captcha(ctx *gin.Context) {
	id, img, err := utils.GenerateCaptcha()
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50070, "failed to generate captcha")
		return
	}
	utils.Success(ctx, gin.H{"captcha_id": id, "image": img})
}

// Submit validates and stores a contact message.
func (c *ContactController) Submit(ctx *gin.Context) {
	var req struct {
		Name          string `json:"name" binding:"required,max=128"`
		Email         string `json:"email" binding:"required,max=255"`
		Message       string `json:"message" binding:"required,max=5000"`
		CaptchaID     string `json:"captcha_id"`
		CaptchaAnswer string `json:"captcha_answer"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40070, "invalid request payload")
		return
	}

	name := utils.PlainText(req.Name)
	message := utils.PlainText(req.Message)
	addr, err := mail.ParseAddress(strings.TrimSpace(req.Email))
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40071, "invalid email address")
		return
	}
	if name == "" || message == "" {
		utils.Error(ctx, http.StatusBadRequest, 40072, "name and message are required")
		return
	}

	if c.captchaEnabled && !utils.VerifyCaptcha(req.CaptchaID, req.CaptchaAnswer) {
		utils.Error(ctx, http.StatusBadRequest, 40073, "captcha verification failed")
		return
	}

	email := strings.ToLower(addr.Address)
	if !utils.CooldownTrySet("contact", email, c.cooldown) {
		utils.Error(ctx, http.StatusTooManyRequests, 42970, "please wait before sending another message")
		return
	}

	msg := models.ContactMessage{
		Ref:     uuid.NewString(),
		Name:    name,
		Email:   email,
		Message: message,
		IP:      ctx.ClientIP(),
	}
	if err := c.db.WithContext(ctx.Request.Context()).Create(&msg).Error; err != nil {
		utils.Sugar.Errorw("contact message not saved", "error", err)
		utils.CooldownRelease("contact", email)
		utils.Error(ctx, http.StatusInternalServerError, 50071, "failed to save message")
		return
	}
	utils.Success(ctx, gin.H{"ref": msg.Ref})
}
