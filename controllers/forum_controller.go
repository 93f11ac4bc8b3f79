package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/crownmania/crownmania/forum"
	"github.com/crownmania/crownmania/utils"
)

// voterCookie identifies an anonymous browser for per-post votes.
const voterCookie = "cm_voter"

const maxPostLength = 2000

// ForumController serves the community board.
type ForumController struct {
	board *forum.Board
}

func NewForumController(board *forum.Board) *ForumController {
	return &ForumController{board: board}
}

// ListPosts returns posts sorted by ?sort=trending (default) or current.
func (f *ForumController) ListPosts(ctx *gin.Context) {
	posts, err := f.board.List(voterID(ctx), forum.Order(ctx.Query("sort")))
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40050, err.Error())
		return
	}
	utils.Success(ctx, gin.H{"items": posts})
}

// CreatePost adds a post. Markup is stripped.
func (f *ForumController) CreatePost(ctx *gin.Context) {
	var req struct {
		Content string `json:"content" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40051, "invalid request payload")
		return
	}
	content := utils.PlainText(req.Content)
	if len([]rune(content)) > maxPostLength {
		utils.Error(ctx, http.StatusBadRequest, 40052, "post is too long")
		return
	}
	post, err := f.board.Create(content)
	if errors.Is(err, forum.ErrEmptyContent) {
		utils.Error(ctx, http.StatusBadRequest, 40053, "content cannot be empty")
		return
	}
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50050, "failed to create post")
		return
	}
	utils.Success(ctx, gin.H{"post": post})
}

// Vote toggles the caller's like or dislike on a post.
func (f *ForumController) Vote(ctx *gin.Context) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40054, "invalid post id")
		return
	}
	var req struct {
		Vote string `json:"vote" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40055, "invalid request payload")
		return
	}

	post, err := f.board.Vote(id, voterID(ctx), forum.Vote(req.Vote))
	switch {
	case errors.Is(err, forum.ErrInvalidVote):
		utils.Error(ctx, http.StatusBadRequest, 40056, err.Error())
	case errors.Is(err, forum.ErrPostNotFound):
		utils.Error(ctx, http.StatusNotFound, 40450, "post not found")
	case err != nil:
		utils.Error(ctx, http.StatusInternalServerError, 50051, "failed to vote")
	default:
		utils.Success(ctx, gin.H{"post": post})
	}
}

// voterID returns the caller's voter cookie, issuing one when missing.
func voterID(ctx *gin.Context) string {
	if v, err := ctx.Cookie(voterCookie); err == nil {
		if _, err := uuid.Parse(v); err == nil {
			return v
		}
	}
	v := uuid.NewString()
	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(voterCookie, v, 365*24*3600, "/", "", false, true)
	return v
}
