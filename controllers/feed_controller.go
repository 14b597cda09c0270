package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/cppla/blogfeed/services"
	"github.com/cppla/blogfeed/utils"
)

// FeedController serves the subscription feed and seen toggles.
type FeedController struct {
	feed     *services.FeedAssembler
	seen     *services.SeenMarks
	posts    *services.PostService
	pageSize int
}

// NewFeedController creates a FeedController. pageSize is fixed for the endpoint.
func NewFeedController(feed *services.FeedAssembler, seen *services.SeenMarks, posts *services.PostService, pageSize int) *FeedController {
	if pageSize <= 0 {
		pageSize = services.DefaultPageSize
	}
	return &FeedController{feed: feed, seen: seen, posts: posts, pageSize: pageSize}
}

type feedPage struct {
	Next     *string             `json:"next"`
	Previous *string             `json:"previous"`
	Results  []services.FeedItem `json:"results"`
}

// Feed returns one page of posts written by users the caller follows.
func (f *FeedController) Feed(ctx *gin.Context) {
	userID, ok := callerID(ctx)
	if !ok {
		return
	}

	filter := services.ParseSeenFilter(ctx.Query("seen"))
	order := services.FeedOrdering.Resolve(ctx.Query("ordering"))
	feed := f.feed.Assemble(userID, filter, order)

	page, err := services.Paginate[services.FeedItem](ctx.Request.Context(), feed, parsePage(ctx.Query("page")), f.pageSize)
	if err != nil {
		serviceError(ctx, err, 50030, "failed to load feed")
		return
	}
	next, previous := pageLinks(ctx, page)
	ctx.JSON(http.StatusOK, feedPage{Next: next, Previous: previous, Results: page.Items})
}

// MarkSeen toggles the caller's seen mark on a post.
func (f *FeedController) MarkSeen(ctx *gin.Context) {
	userID, ok := callerID(ctx)
	if !ok {
		return
	}

	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil || id == 0 {
		utils.Error(ctx, http.StatusNotFound, 40401, "post not found")
		return
	}
	postID := uint(id)

	exists, err := f.posts.Exists(ctx.Request.Context(), postID)
	if err != nil {
		serviceError(ctx, err, 50031, "failed to load post")
		return
	}
	if !exists {
		utils.Error(ctx, http.StatusNotFound, 40401, "post not found")
		return
	}

	seen, err := f.seen.ToggleSeen(ctx.Request.Context(), userID, postID)
	if err != nil {
		serviceError(ctx, err, 50032, "failed to update seen mark")
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"post": postID, "seen": seen})
}
