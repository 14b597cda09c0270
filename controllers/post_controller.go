package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cppla/blogfeed/services"
	"github.com/cppla/blogfeed/utils"
)

// PostController handles post creation and per-user post listings.
type PostController struct {
	posts    *services.PostService
	cacheTTL time.Duration
}

// NewPostController creates a new PostController instance.
func NewPostController(posts *services.PostService, cacheTTL time.Duration) *PostController {
	return &PostController{posts: posts, cacheTTL: cacheTTL}
}

func userPostsCacheKey(username string) string {
	return "cache:user:" + username + ":posts"
}

// CreatePost allows authenticated users to create new posts.
func (p *PostController) CreatePost(ctx *gin.Context) {
	var req struct {
		Title string `json:"title" form:"title"`
		Body  string `json:"body" form:"body"`
	}
	if err := ctx.ShouldBind(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40020, "invalid request payload")
		return
	}

	userID, ok := callerID(ctx)
	if !ok {
		return
	}

	post, err := p.posts.Create(ctx.Request.Context(), userID, req.Title, req.Body)
	if err != nil {
		serviceError(ctx, err, 50020, "failed to create post")
		return
	}

	// Author listing and post counts changed
	utils.InvalidateByPrefix(ctx.Request.Context(), userPostsCacheKey(post.Owner))
	utils.InvalidateByPrefix(ctx.Request.Context(), profilesCachePrefix)

	ctx.JSON(http.StatusCreated, post)
}

// ListUserPosts returns a user's posts, newest first.
func (p *PostController) ListUserPosts(ctx *gin.Context) {
	username := strings.TrimSpace(ctx.Param("username"))
	key := userPostsCacheKey(username)
	if b, ok := utils.CacheGetBytes(ctx.Request.Context(), key); ok {
		ctx.Data(http.StatusOK, "application/json; charset=utf-8", b)
		return
	}

	out, err := p.posts.ListByUsername(ctx.Request.Context(), username)
	if err != nil {
		serviceError(ctx, err, 50021, "failed to list user posts")
		return
	}
	utils.CacheSetJSON(ctx.Request.Context(), key, out, p.cacheTTL)
	ctx.JSON(http.StatusOK, out)
}
