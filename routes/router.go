package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/greenloop/ecotrack/config"
	"github.com/greenloop/ecotrack/controllers"
	"github.com/greenloop/ecotrack/middleware"
	"github.com/greenloop/ecotrack/utils"
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
	// Replace default console logger with file-based zap logger
	gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
	if err == nil {
		r.Use(utils.Ginzap(gl, time.RFC3339, true))
		r.Use(utils.RecoveryWithZap(gl, false))
	} else {
		// fallback to default recovery if logger failed to init
		r.Use(gin.Recovery())
	}

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	// Record API activity after each request
	r.Use(middleware.ActivityRecorder(db))

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	authController := controllers.NewAuthController(db)
	wasteController := controllers.NewWasteController(db)
	pickupController := controllers.NewPickupController(db)
	reportController := controllers.NewReportController(db)
	eventController := controllers.NewEventController(db)
	challengeController := controllers.NewChallengeController(db)
	rewardController := controllers.NewRewardController(db)
	quizController := controllers.NewQuizController(db)
	statsController := controllers.NewStatsController(db)

	api := r.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware())
	authGroup.POST("/register", authController.Register)
	authGroup.GET("/oauth/:provider/login", authController.OAuthRedirect)
	authGroup.GET("/oauth/:provider/callback", authController.OAuthCallback)
	authGroup.POST("/logout", middleware.AuthRequired(), authController.Logout)
	authGroup.GET("/user", middleware.AuthRequired(), authController.Me)
	authGroup.PATCH("/profile", middleware.AuthRequired(), authController.UpdateProfile)

	// The frontend logs in against /api/login
	api.POST("/login", middleware.RateLimitMiddleware(), authController.Login)

	// Public, read-only surfaces
	api.GET("/community-reports", reportController.ListReports)
	api.GET("/community-reports/:id", reportController.GetReport)
	api.GET("/cleanup-events", eventController.ListEvents)
	api.GET("/cleanup-events/:id", eventController.GetEvent)
	api.GET("/cleanup-events/:id/participants", eventController.ListEventParticipants)
	api.GET("/rewards", rewardController.ListRewards)
	api.GET("/challenges", challengeController.ListChallenges)
	api.GET("/stats", statsController.GetStats)

	protected := api.Group("")
	protected.Use(middleware.AuthRequired(), middleware.RateLimitMiddleware())

	protected.POST("/waste-entries", wasteController.CreateWasteEntry)
	protected.GET("/waste-entries", wasteController.ListWasteEntries)
	protected.GET("/user/analytics", wasteController.GetUserAnalytics)

	protected.POST("/pickups", pickupController.SchedulePickup)
	protected.GET("/pickups", pickupController.ListPickups)
	protected.PATCH("/pickups/:id/status", pickupController.UpdatePickupStatus)

	protected.POST("/community-reports", reportController.CreateReport)
	protected.PATCH("/community-reports/:id/status", reportController.UpdateReportStatus)

	protected.POST("/cleanup-events", eventController.CreateEvent)
	protected.POST("/cleanup-events/:id/join", eventController.JoinEvent)
	protected.DELETE("/cleanup-events/:id/join", eventController.LeaveEvent)
	protected.POST("/cleanup-events/:id/complete", eventController.CompleteEvent)

	protected.POST("/challenges", challengeController.CreateChallenge)
	protected.POST("/challenges/:id/progress", challengeController.UpdateChallengeProgress)
	protected.GET("/challenges/progress", challengeController.ListMyProgress)

	protected.POST("/rewards/:id/redeem", rewardController.RedeemReward)
	protected.GET("/rewards/mine", rewardController.ListMyRewards)

	protected.POST("/quiz/generate", quizController.GenerateQuiz)
	protected.POST("/quiz/submit", quizController.SubmitQuiz)
	protected.GET("/user/learning-progress", quizController.LearningProgress)

	r.NoRoute(func(ctx *gin.Context) {
		utils.Error(ctx, http.StatusNotFound, 40400, "route not found")
	})

	return r
}
