package main

import (
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"rental-service/internal/handler"
	"rental-service/internal/mailer"
	"rental-service/internal/middleware"
	"rental-service/internal/sweep"
	"rental-service/pkg/config"
	"rental-service/pkg/database"
	"rental-service/pkg/jwtutil"
	"rental-service/pkg/logger"
	"rental-service/prometheus"
)

func main() {
	// Load configuration from .env file and environment variables
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger with config
	if err := logger.InitLogger(cfg); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	log := logger.GetLogger()
	log.Info("Starting rental service...", zap.String("environment", cfg.Server.Env))

	// Initialize database
	if err := database.InitDB(cfg); err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	log.Info("Database connection established")

	// Initialize JWT utility
	jwtutil.Initialize(&cfg.JWT)
	log.Info("JWT utility initialized")

	// Start the overdue-invoice sweep
	sweeper := sweep.New(database.GetDB(), mailer.New(&cfg.Mail), &cfg.Sweep, log)
	if err := sweeper.Start(); err != nil {
		log.Fatal("Failed to start overdue sweep", zap.Error(err))
	}
	defer sweeper.Stop()

	// Initialize Echo framework
	e := echo.New()

	// Apply global middleware - order matters
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	e.Use(middleware.RequestIDMiddleware)
	e.Use(logger.Middleware())
	e.Use(prometheus.MetricsMiddleware())

	// Public routes - no authentication required
	e.GET("/health", handler.HealthCheck)
	e.GET("/metrics", handler.MetricsHandler)

	// Authentication routes
	auth := e.Group("/auth")
	auth.POST("/login", handler.Login)
	auth.POST("/register", handler.Register)

	// API routes - all require authentication
	api := e.Group("/api")
	api.Use(middleware.AuthMiddleware)

	// Profile
	api.GET("/profile", handler.GetProfile)
	api.PATCH("/profile", handler.UpdateProfile)
	api.POST("/profile/notes", handler.AddProfileNote)
	api.POST("/change-password", handler.ChangePassword)

	// Properties
	properties := api.Group("/properties")
	properties.GET("", handler.ListProperties)
	properties.POST("", handler.CreateProperty)
	properties.GET("/:id", handler.GetProperty)
	properties.PATCH("/:id", handler.UpdateProperty)
	properties.DELETE("/:id", handler.DeleteProperty)
	properties.PATCH("/:id/status", handler.UpdatePropertyStatus)
	properties.GET("/:id/invoices", handler.ListPropertyInvoices)

	// Invoices / bookings
	invoices := api.Group("/invoices")
	invoices.GET("", handler.ListInvoices)
	invoices.POST("", handler.CreateInvoice)
	invoices.GET("/:id", handler.GetInvoice)
	invoices.POST("/:id/cancel", handler.CancelInvoice)
	invoices.POST("/:id/payments", handler.CreatePayment)
	invoices.GET("/:id/payments", handler.ListPayments)

	// Customers
	customers := api.Group("/customers")
	customers.GET("", handler.ListCustomers)
	customers.GET("/stats", handler.CustomerStatistics)
	customers.POST("", handler.CreateCustomer)
	customers.GET("/:id", handler.GetCustomer)
	customers.PATCH("/:id", handler.UpdateCustomer)
	customers.DELETE("/:id", handler.DeleteCustomer)

	// Expenses
	expenses := api.Group("/expenses")
	expenses.GET("", handler.ListExpenses)
	expenses.POST("", handler.CreateExpense)
	expenses.PATCH("/:id", handler.UpdateExpense)
	expenses.DELETE("/:id", handler.DeleteExpense)

	// Revenue analytics
	revenue := api.Group("/revenue")
	revenue.GET("/monthly", handler.GetMonthlyRevenue)
	revenue.GET("/properties", handler.GetPropertyRevenue)

	// Notifications
	notifications := api.Group("/notifications")
	notifications.GET("", handler.ListNotifications)
	notifications.POST("/:id/read", handler.MarkNotificationRead)

	// Start server
	log.Info("Starting server", zap.String("port", cfg.Server.Port))
	if err := e.Start(":" + cfg.Server.Port); err != nil {
		log.Fatal("Failed to start server", zap.Error(err))
	}
}
