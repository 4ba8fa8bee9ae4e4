package main

import (
	"log"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/anasmostafa23/Safety-Hub/api"
	"github.com/anasmostafa23/Safety-Hub/config"
	"github.com/anasmostafa23/Safety-Hub/database"
	"github.com/anasmostafa23/Safety-Hub/middleware"
	"github.com/anasmostafa23/Safety-Hub/models"
	"github.com/anasmostafa23/Safety-Hub/repository"
	"github.com/anasmostafa23/Safety-Hub/services"

	"gorm.io/gorm"
)

func main() {
	// .env is optional; real deployments set environment variables directly.
	if err := godotenv.Load(); err == nil {
		log.Println("INFO: [Main] Loaded environment from .env file.")
	}

	// Load application configuration
	config.LoadConfig()

	// Initialize database connection
	db, err := database.Init()
	if err != nil {
		log.Fatalf("FATAL: [Main] Failed to initialize database: %v", err)
	}

	// Auto-migrate database schema
	runMigrations(db)

	if err := os.MkdirAll(config.AppConfig.Exports.Dir, 0o755); err != nil {
		log.Fatalf("FATAL: [Main] Failed to create exports directory: %v", err)
	}

	// Initialize Repositories
	sessionRepo := repository.NewSessionRepository()
	auditRepo := repository.NewAuditRepository(db)
	templateRepo := repository.NewTemplateRepository(db)
	log.Println("INFO: [Main] Repositories initialized.")

	// Initialize Services
	templateService := services.NewTemplateService(templateRepo)
	reportService := services.NewReportService(config.AppConfig.Exports.Dir)
	parserService := services.NewParserService(config.AppConfig.OpenAI.APIKey, config.AppConfig.OpenAI.Model)
	auditService := services.NewAuditService(sessionRepo, templateService, auditRepo, reportService)
	analyticsService := services.NewAnalyticsService(auditRepo)
	log.Println("INFO: [Main] Services initialized.")

	// Seed checklist templates shipped with the deployment.
	if err := templateService.LoadFromDir(config.AppConfig.Templates.Dir); err != nil {
		log.Fatalf("FATAL: [Main] Failed to load seed templates: %v", err)
	}

	// Evict idle sessions in the background.
	if config.AppConfig.Session.TTLHours > 0 {
		repository.StartSweeper(
			sessionRepo,
			time.Duration(config.AppConfig.Session.SweepMinutes)*time.Minute,
			time.Duration(config.AppConfig.Session.TTLHours)*time.Hour,
		)
		log.Printf("INFO: [Main] Session sweeper started (TTL %dh, every %dm).",
			config.AppConfig.Session.TTLHours, config.AppConfig.Session.SweepMinutes)
	} else {
		log.Println("INFO: [Main] Session TTL disabled; idle sessions are kept until completed.")
	}

	// Initialize API Handler with all dependencies
	apiHandler := api.NewAPIHandler(
		auditService,
		templateService,
		analyticsService,
		parserService,
		config.AppConfig.Exports.Dir,
	)
	log.Println("INFO: [Main] API Handler initialized.")

	// Create Gin engine
	r := gin.Default()
	r.SetTrustedProxies(nil)

	// Register middlewares
	r.Use(middleware.Logger())
	r.Use(middleware.Cors())
	log.Println("INFO: [Main] Middlewares registered.")

	// Register routes
	registerRoutes(r, apiHandler)
	log.Println("INFO: [Main] Routes registered.")

	// Start the server
	serverPort := ":" + config.AppConfig.Server.Port
	if config.AppConfig.Server.Port == "" {
		log.Println("WARN: [Main] Server port not configured, using default :8080.")
		serverPort = ":8080"
	}
	log.Printf("INFO: [Main] Starting server on port %s", serverPort)
	if err := r.Run(serverPort); err != nil {
		log.Fatalf("FATAL: [Main] Server failed to start: %v", err)
	}
}

func runMigrations(db *gorm.DB) {
	log.Println("INFO: [Main] Running database migrations...")
	err := db.AutoMigrate(
		&models.User{},
		&models.Audit{},
		&models.Response{},
		&models.TemplateRecord{},
	)
	if err != nil {
		log.Fatalf("FATAL: [Main] Failed to auto-migrate database: %v", err)
	}
	log.Println("INFO: [Main] Database migration completed.")
}

func registerRoutes(r *gin.Engine, handler *api.APIHandler) {
	// API route group
	apiGroup := r.Group("/api")
	{
		// Inbound conversation events from the transport adapter
		eventGroup := apiGroup.Group("/events")
		{
			eventGroup.POST("/message", handler.MessageEventHandler)
			eventGroup.POST("/callback", handler.CallbackEventHandler)
		}

		// Checklist template administration
		templateGroup := apiGroup.Group("/templates")
		{
			templateGroup.GET("", handler.ListTemplatesHandler)
			templateGroup.POST("", handler.AdmitTemplateHandler)
			templateGroup.POST("/:id/activate", handler.ActivateTemplateHandler)
			templateGroup.POST("/parse", handler.ParseTemplateHandler)
		}

		// Analytics dashboard
		dashboardGroup := apiGroup.Group("/dashboard")
		{
			dashboardGroup.GET("/summary", handler.DashboardSummaryHandler)
			dashboardGroup.GET("/audits", handler.ListAuditsHandler)
			dashboardGroup.GET("/audits/:auditID", handler.AuditDetailHandler)
		}

		// Generated PDF reports
		apiGroup.GET("/reports/:filename", handler.ReportFileHandler)
	}
}
