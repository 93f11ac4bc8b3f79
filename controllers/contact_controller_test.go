package controllers

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crownmania/crownmania/models"
)

func TestContactSubmit(t *testing.T) {
	db := newTestDB(t)
	c := NewContactController(db, false, time.Minute)
	r := gin.New()
	r.POST("/contact", c.Submit)

	w := doJSON(r, http.MethodPost, "/contact", map[string]string{
		"name":    "Ada <i>L</i>",
		"email":   "Ada@Example.com",
		"message": "Is the gold crown <script>x</script>restocking?",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var rows []models.ContactMessage
	require.NoError(t, db.Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, "Ada L", rows[0].Name)
	assert.Equal(t, "ada@example.com", rows[0].Email)
	assert.NotContains(t, rows[0].Message, "<script>")
	assert.NotEmpty(t, rows[0].Ref)

	// same sender inside the cooldown
	w = doJSON(r, http.MethodPost, "/contact", map[string]string{
		"name": "Ada", "email": "ada@example.com", "message": "again",
	})
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestContactValidation(t *testing.T) {
	db := newTestDB(t)
	r := gin.New()
	r.POST("/contact", NewContactController(db, false, 0).Submit)
	r.POST("/contact-captcha", NewContactController(db, true, 0).Submit)

	assert.Equal(t, http.StatusBadRequest, doJSON(r, http.MethodPost, "/contact", map[string]string{
		"name": "Bob", "email": "not-an-email", "message": "hi",
	}).Code)
	assert.Equal(t, http.StatusBadRequest, doJSON(r, http.MethodPost, "/contact", map[string]string{
		"name": "<b></b>", "email": "bob@example.com", "message": "hi",
	}).Code)
	assert.Equal(t, http.StatusBadRequest, doJSON(r, http.MethodPost, "/contact-captcha", map[string]string{
		"name": "Bob", "email": "bob@example.com", "message": "hi", "captcha_id": "x", "captcha_answer": "1",
	}).Code)

	var n int64
	require.NoError(t, db.Model(&models.ContactMessage{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestContactFailedSaveKeepsSenderUnlocked(t *testing.T) {
	db := newTestDB(t)
	r := gin.New()
	r.POST("/contact", NewContactController(db, false, time.Minute).Submit)
	body := map[string]string{"name": "Grace", "email": "grace@example.com", "message": "hello"}

	require.NoError(t, db.Migrator().DropTable(&models.ContactMessage{}))
	assert.Equal(t, http.StatusInternalServerError, doJSON(r, http.MethodPost, "/contact", body).Code)

	require.NoError(t, db.AutoMigrate(&models.ContactMessage{}))
	assert.Equal(t, http.StatusOK, doJSON(r, http.MethodPost, "/contact", body).Code)
	assert.Equal(t, http.StatusTooManyRequests, doJSON(r, http.MethodPost, "/contact", body).Code)
}
