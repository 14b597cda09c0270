package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/cppla/blogfeed/config"
	"github.com/cppla/blogfeed/controllers"
	"github.com/cppla/blogfeed/middleware"
	"github.com/cppla/blogfeed/services"
	"github.com/cppla/blogfeed/utils"
)

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(db *gorm.DB) *gin.Engine {
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.RequestID())
	// Access log and panic recovery go to a separate rolling gin log
	gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
	if err == nil {
		r.Use(ginzap.GinzapWithConfig(gl, &ginzap.Config{
			TimeFormat: time.RFC3339,
			UTC:        true,
			SkipPaths:  []string{"/health"},
			Context:    utils.AccessLogFields,
		}))
		r.Use(ginzap.CustomRecoveryWithZap(gl, true, utils.PanicResponse))
	} else {
		utils.Sugar.Warnf("gin file logger unavailable, using default recovery: %v", err)
		r.Use(gin.Recovery())
	}

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
		corsCfg.AllowCredentials = false
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	cacheTTL := time.Duration(cfg.ListCacheTTLSec) * time.Second
	tokenTTL := time.Duration(cfg.TokenTTLMinutes) * time.Minute

	graph := services.NewSubscriptionGraph(db)
	posts := services.NewPostService(db)

	authController := controllers.NewAuthController(services.NewAccounts(db), tokenTTL)
	postController := controllers.NewPostController(posts, cacheTTL)
	profileController := controllers.NewProfileController(services.NewProfileService(db, graph), graph, cacheTTL)
	feedController := controllers.NewFeedController(services.NewFeedAssembler(db), services.NewSeenMarks(db), posts, cfg.FeedPageSize)

	limiter := middleware.NewRateLimiter(cfg.RateLimitPerMinute)

	api := r.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Use(limiter.Middleware())
	authGroup.POST("/register/", authController.Register)
	authGroup.POST("/token/", authController.Token)
	authGroup.POST("/logout/", middleware.AuthRequired(), authController.Logout)

	api.GET("/profiles_list/", profileController.ListProfiles)
	api.GET("/:username/posts/", postController.ListUserPosts)

	protected := api.Group("")
	protected.Use(middleware.AuthRequired(), limiter.Middleware())
	protected.POST("/post_create/", postController.CreatePost)
	protected.POST("/:username/subscribe/", profileController.Subscribe)
	protected.POST("/post/:id/seen/", feedController.MarkSeen)
	protected.GET("/feed/", feedController.Feed)

	r.NoRoute(func(ctx *gin.Context) {
		utils.Error(ctx, http.StatusNotFound, 40400, "api route not found")
	})

	return r
}
