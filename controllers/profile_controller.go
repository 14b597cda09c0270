package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cppla/blogfeed/services"
	"github.com/cppla/blogfeed/utils"
)

const profilesCachePrefix = "cache:profiles:list:"

// ProfileController serves the profiles list and subscription toggles.
type ProfileController struct {
	profiles *services.ProfileService
	graph    *services.SubscriptionGraph
	cacheTTL time.Duration
}

// NewProfileController creates a ProfileController.
func NewProfileController(profiles *services.ProfileService, graph *services.SubscriptionGraph, cacheTTL time.Duration) *ProfileController {
	return &ProfileController{profiles: profiles, graph: graph, cacheTTL: cacheTTL}
}

// ListProfiles returns every user with post count and subscriptions. Unknown ordering keys fall back to id order.
func (p *ProfileController) ListProfiles(ctx *gin.Context) {
	ordering := strings.TrimSpace(ctx.Query("ordering"))
	key := profilesCachePrefix + "ordering=" + ordering
	if b, ok := utils.CacheGetBytes(ctx.Request.Context(), key); ok {
		ctx.Data(http.StatusOK, "application/json; charset=utf-8", b)
		return
	}

	profiles, err := p.profiles.List(ctx.Request.Context(), ordering)
	if err != nil {
		serviceError(ctx, err, 50040, "failed to list profiles")
		return
	}
	utils.CacheSetJSON(ctx.Request.Context(), key, profiles, p.cacheTTL)
	ctx.JSON(http.StatusOK, profiles)
}

// Subscribe toggles the caller's subscription to :username.
func (p *ProfileController) Subscribe(ctx *gin.Context) {
	userID, ok := callerID(ctx)
	if !ok {
		return
	}

	state, err := p.graph.Toggle(ctx.Request.Context(), userID, ctx.Param("username"))
	if err != nil {
		serviceError(ctx, err, 50041, "failed to update subscription")
		return
	}
	utils.InvalidateByPrefix(ctx.Request.Context(), profilesCachePrefix)

	ctx.JSON(http.StatusOK, gin.H{"profile": state})
}
