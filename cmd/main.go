package main

import (
	"goaltrack-service/internal/access"
	"goaltrack-service/internal/handler"
	"goaltrack-service/internal/middleware"
	"goaltrack-service/pkg/config"
	"goaltrack-service/pkg/database"
	"goaltrack-service/pkg/jwtutil"
	"goaltrack-service/pkg/logger"
	"goaltrack-service/prometheus"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

func main() {
	// Load configuration from .env file and environment variables
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger with config
	logger.InitLogger(cfg)
	log := logger.GetLogger()
	log.Info("Starting goal tracking service...", zap.String("environment", cfg.Server.Env))

	// Initialize database
	if err := database.InitDB(cfg); err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	log.Info("Database connection established")

	// Initialize JWT utility
	jwtutil.Initialize(&cfg.JWT)
	log.Info("JWT utility initialized")

	// Initialize Prometheus metrics
	prometheus.InitMetrics(cfg)
	log.Info("Prometheus metrics initialized")

	// Initialize the dashboard assistant
	handler.InitAssistant(cfg)
	log.Info("Assistant initialized")

	// Initialize Echo framework
	e := echo.New()

	// Apply global middleware - order matters
	e.Use(echomiddleware.Recover()) // Add recovery middleware
	e.Use(echomiddleware.CORS())    // Add CORS middleware
	e.Use(middleware.RequestIDMiddleware)
	e.Use(logger.Middleware(log))
	e.Use(prometheus.MetricsMiddleware())

	// Public routes - no authentication required
	e.GET("/health", handler.HealthCheck)
	e.GET("/metrics", handler.MetricsHandler)

	// Authentication routes - these don't belong under /api since they're for getting access to the API
	auth := e.Group("/auth")
	auth.POST("/login", handler.Login)
	auth.POST("/register", handler.Register)

	// API routes - all require authentication
	api := e.Group("/api")
	api.Use(middleware.AuthMiddleware)

	api.POST("/auth/logout", handler.Logout)

	// Company management - doesn't require company context
	companies := api.Group("/companies")
	companies.POST("", handler.CreateCompany)
	companies.GET("", handler.ListUserCompanies)
	companies.POST("/select", handler.SelectCompany)

	// Company-scoped operations - membership is reloaded per request and
	// each screen is gated by the stored permission set
	scoped := api.Group("")
	scoped.Use(middleware.RequireCompanyContext)

	scoped.PATCH("/company", handler.RenameCompany)

	dashboard := scoped.Group("/dashboard", middleware.RequireScreen(access.ScreenDashboard))
	dashboard.GET("", handler.GetDashboard)

	ledger := scoped.Group("/sales", middleware.RequireScreen(access.ScreenLedger))
	ledger.GET("", handler.ListSales)
	ledger.PUT("", handler.UpsertSale)
	ledger.DELETE("/:date", handler.DeleteSale)

	goals := scoped.Group("/goals", middleware.RequireScreen(access.ScreenGoals))
	goals.GET("", handler.ListGoals)
	goals.PUT("", handler.UpsertGoal)

	team := scoped.Group("/team", middleware.RequireScreen(access.ScreenTeam))
	team.GET("", handler.ListMembers)
	team.POST("", handler.AddMember)
	team.PATCH("/:user_id", handler.UpdateMember)
	team.DELETE("/:user_id", handler.RemoveMember)

	settings := scoped.Group("/settings", middleware.RequireScreen(access.ScreenSettings))
	settings.GET("/working-days", handler.GetWorkingDays)
	settings.PUT("/working-days", handler.SaveWorkingDays)
	settings.GET("/holidays", handler.ListHolidays)
	settings.PUT("/holidays", handler.UpsertHoliday)
	settings.DELETE("/holidays/:date", handler.DeleteHoliday)

	// The assistant reads the same data the dashboard shows
	assistant := scoped.Group("/assistant", middleware.RequireScreen(access.ScreenDashboard))
	assistant.POST("/ask", handler.AskAssistant)

	// Get server port from configuration
	port := cfg.Server.Port

	// Start server
	log.Info("Starting server", zap.String("port", port))
	if err := e.Start(":" + port); err != nil {
		log.Fatal("Failed to start server", zap.Error(err))
	}
}
