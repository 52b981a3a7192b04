package router

import (
	"github.com/dahnny/analytics-api/internal/analytics"
	"github.com/dahnny/analytics-api/internal/config"
	"github.com/dahnny/analytics-api/internal/handler"
	"github.com/dahnny/analytics-api/internal/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Setup configures the Gin engine with all API routes.
func Setup(cfg *config.Config, db *gorm.DB) *gin.Engine {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	if len(cfg.CORS.AllowOrigins) > 0 {
		corsCfg := cors.DefaultConfig()
		corsCfg.AllowOrigins = cfg.CORS.AllowOrigins
		corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization")
		r.Use(cors.New(corsCfg))
	}

	api := r.Group("/api/v1")

	// public routes
	authHandler := handler.NewAuthHandler(db, cfg.JWT.Secret, cfg.JWT.ExpireHours, cfg.Security.BcryptCost)
	api.POST("/users", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)

	// everything else requires a bearer token
	protected := api.Group("")
	protected.Use(middleware.Auth(cfg.JWT.Secret, db))

	protected.GET("/me", handler.GetMe)

	saleHandler := handler.NewSaleHandler(db, cfg.Upload.Dir)
	sales := protected.Group("/sales")
	{
		sales.POST("", saleHandler.Create)
		sales.GET("", saleHandler.List)
		sales.GET("/:id", saleHandler.Get)
		sales.PUT("/:id", saleHandler.Update)
		sales.DELETE("/:id", saleHandler.Delete)
		sales.POST("/:id/image", saleHandler.UploadImage)
	}

	expenseHandler := handler.NewExpenseHandler(db, cfg.Upload.Dir)
	expenses := protected.Group("/expenses")
	{
		expenses.POST("", expenseHandler.Create)
		expenses.GET("", expenseHandler.List)
		expenses.GET("/:id", expenseHandler.Get)
		expenses.PUT("/:id", expenseHandler.Update)
		expenses.DELETE("/:id", expenseHandler.Delete)
		expenses.POST("/:id/image", expenseHandler.UploadImage)
	}

	analyticsHandler := handler.NewAnalyticsHandler(analytics.NewService(db))
	stats := protected.Group("/analytics")
	{
		stats.GET("/summary", analyticsHandler.Summary)
		stats.GET("/monthly-summary", analyticsHandler.MonthlySummary)
		stats.GET("/weekly-summary", analyticsHandler.WeeklySummary)
		stats.GET("/top-selling", analyticsHandler.TopSelling)
		stats.GET("/expense-breakdown", analyticsHandler.ExpenseBreakdown)
	}

	exportHandler := handler.NewExportHandler(db)
	protected.GET("/export/csv", exportHandler.CSV)
	protected.GET("/export/xlsx", exportHandler.XLSX)

	return r
}
