package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cppla/blogfeed/middleware"
	"github.com/cppla/blogfeed/services"
	"github.com/cppla/blogfeed/utils"
)

// AuthController handles registration and token issuance.
type AuthController struct {
	accounts *services.Accounts
	tokenTTL time.Duration
}

// NewAuthController creates an AuthController.
func NewAuthController(accounts *services.Accounts, tokenTTL time.Duration) *AuthController {
	return &AuthController{accounts: accounts, tokenTTL: tokenTTL}
}

// Register handles local account registration with bcrypt hashing.
func (a *AuthController) Register(ctx *gin.Context) {
	var req struct {
		Username  string `json:"username" form:"username" binding:"required"`
		Email     string `json:"email" form:"email"`
		Password  string `json:"password" form:"password" binding:"required"`
		Password2 string `json:"password2" form:"password2" binding:"required"`
	}
	if err := ctx.ShouldBind(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40001, "invalid request payload")
		return
	}

	user, err := a.accounts.Register(ctx.Request.Context(), services.RegisterInput{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		Password2: req.Password2,
	})
	if err != nil {
		serviceError(ctx, err, 50001, "failed to create user")
		return
	}

	utils.Sugar.Infow("user registered", "user_id", user.ID, "username", user.Username)
	utils.InvalidateByPrefix(ctx.Request.Context(), profilesCachePrefix)
	ctx.JSON(http.StatusCreated, gin.H{"id": user.ID, "username": user.Username, "email": user.Email})
}

// Token verifies credentials and issues an access token.
func (a *AuthController) Token(ctx *gin.Context) {
	var req struct {
		Username string `json:"username" form:"username" binding:"required"`
		Password string `json:"password" form:"password" binding:"required"`
	}
	if err := ctx.ShouldBind(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40003, "invalid request payload")
		return
	}

	user, err := a.accounts.Authenticate(ctx.Request.Context(), req.Username, req.Password)
	if err != nil {
		serviceError(ctx, err, 50004, "failed to authenticate")
		return
	}

	token, err := utils.GenerateToken(user.ID, user.Username, a.tokenTTL)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50005, "failed to generate token")
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"access": token})
}

// Logout invalidates the current token by blacklisting it until expiration.
func (a *AuthController) Logout(ctx *gin.Context) {
	token := ctx.GetString(middleware.ContextTokenKey)
	expiresAt := time.Now().Add(a.tokenTTL)
	if v, ok := ctx.Get(middleware.ContextClaimsKey); ok {
		if claims, ok := v.(*utils.Claims); ok && claims.ExpiresAt != nil {
			expiresAt = claims.ExpiresAt.Time
		}
	}

	utils.BlacklistToken(ctx.Request.Context(), token, expiresAt)
	utils.Success(ctx, gin.H{"message": "logged out"})
}
