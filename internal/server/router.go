// Package server assembles the HTTP API: services, handlers, middleware and
// routes.
package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"pocketledger/internal/config"
	_ "pocketledger/internal/docs" // Import swagger docs
	"pocketledger/internal/export"
	"pocketledger/internal/handlers"
	"pocketledger/internal/middleware"
	"pocketledger/internal/notify"
	"pocketledger/internal/services"
	"pocketledger/internal/session"
)

// Deps are the services the router dispatches to.
type Deps struct {
	Config       *config.Config
	Users        services.UserServicer
	Transactions services.TransactionServicer
	Dashboard    services.DashboardServicer
	Export       services.ExportServicer
	GoogleAuth   services.GoogleAuthServicer
	Audit        services.AuditServicer
}

// NewDeps wires the services over db. Budget alerts go to publisher.
func NewDeps(cfg *config.Config, db *gorm.DB, publisher notify.Publisher) Deps {
	transactions := services.NewTransactionService(db)
	sessions := session.NewStore(cfg.SessionTTL)

	return Deps{
		Config:       cfg,
		Users:        services.NewUserService(db),
		Transactions: transactions,
		Dashboard:    services.NewDashboardService(transactions, sessions, publisher),
		Export:       services.NewExportService(transactions, export.NewFormatter(cfg.ExportDateLayout, cfg.ExportLocation)),
		GoogleAuth:   services.NewGoogleAuthService(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL),
		Audit:        services.NewAuditService(db),
	}
}

// cors allows any origin.
func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Content-Disposition, X-Request-ID")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// NewRouter builds the gin engine with every route mounted.
func NewRouter(d Deps) *gin.Engine {
	cfg := d.Config

	authHandler := handlers.NewAuthHandler(d.Users, d.Dashboard, d.Audit)
	oauthHandler := handlers.NewOAuthHandler(d.GoogleAuth, d.Users, d.Audit, cfg.Env == "production")
	categoryHandler := handlers.NewCategoryHandler()
	transactionHandler := handlers.NewTransactionHandler(d.Transactions, d.Dashboard, d.Export, d.Audit, cfg.ExportLocation)
	dashboardHandler := handlers.NewDashboardHandler(d.Dashboard, d.Audit)
	exportHandler := handlers.NewExportHandler(d.Export, d.Audit)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())
	router.Use(cors())

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")

	// Public routes, throttled per client IP
	limiter := middleware.NewRateLimiter(cfg.AuthRateLimit, cfg.AuthRateBurst)
	auth := v1.Group("/auth")
	auth.Use(limiter.Middleware())
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)
	auth.GET("/google/login", oauthHandler.GoogleLogin)
	auth.GET("/google/callback", oauthHandler.GoogleCallback)
	auth.POST("/logout", middleware.AuthMiddleware(), authHandler.Logout)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	protected.GET("/profile", authHandler.GetProfile)
	protected.GET("/categories", categoryHandler.GetCategories)

	transactions := protected.Group("/transactions")
	transactions.POST("", transactionHandler.CreateTransaction)
	transactions.GET("", transactionHandler.GetTransactions)
	transactions.GET("/table", transactionHandler.GetHistoryTable)

	dashboard := protected.Group("/dashboard")
	dashboard.GET("", dashboardHandler.GetDashboard)
	dashboard.PUT("/budget", dashboardHandler.SetBudget)
	dashboard.POST("/alert/dismiss", dashboardHandler.DismissAlert)

	exports := protected.Group("/export")
	exports.GET("/csv", exportHandler.ExportCSV)
	exports.GET("/pdf", exportHandler.ExportPDF)

	return router
}
