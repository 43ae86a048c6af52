// @title           DIY Genie Backend API
// @version         1.0.0
// @description     Backend API for the DIY Genie home-design app: project records, input-image upload, Decor8 preview generation with status polling, plan-text generation, and monthly entitlement quotas.

// @contact.name   API Support
// @contact.email  support@example.com

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /

package main

import (
	"log"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"diygenie-backend/docs"
	"diygenie-backend/internal/config"
	"diygenie-backend/internal/database"
	"diygenie-backend/internal/decor8"
	"diygenie-backend/internal/entitlements"
	"diygenie-backend/internal/handlers"
	"diygenie-backend/internal/llm"
	"diygenie-backend/internal/middleware"
	"diygenie-backend/internal/preview"
	"diygenie-backend/internal/supabase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Update Swagger docs with dynamic base URL
	if cfg.BaseURL != "" {
		baseURL, err := url.Parse(cfg.BaseURL)
		if err == nil {
			docs.SwaggerInfo.Host = baseURL.Host
			if baseURL.Scheme == "https" {
				docs.SwaggerInfo.Schemes = []string{"https", "http"}
			} else {
				docs.SwaggerInfo.Schemes = []string{"http", "https"}
			}
		}
	}

	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is required: set it to your Supabase PostgreSQL connection string")
	}

	// Constructing the Supabase client validates the URL/key pair up
	// front; row access itself goes through the direct Postgres client.
	if _, err := supabase.NewClient(cfg); err != nil {
		log.Fatalf("Failed to initialize Supabase client: %v", err)
	}

	storageClient, err := supabase.NewStorageClient(cfg.SupabaseURL, cfg.SupabasePublishableKey, cfg.SupabaseStorageBucket)
	if err != nil {
		log.Fatalf("Failed to initialize storage client: %v", err)
	}

	dbClient, err := supabase.NewDatabaseClient(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize database client: %v", err)
	}
	defer dbClient.Close()

	migrator, err := database.NewMigrator(cfg.DatabaseURL)
	if err != nil {
		log.Printf("Warning: Failed to initialize migrator: %v", err)
	} else {
		defer migrator.Close()
		if err := migrator.Run(); err != nil {
			log.Printf("Warning: Migration failed: %v", err)
		} else {
			log.Println("Migrations completed successfully")
		}
	}

	// Provider clients. Stub or live is decided here, once, by key
	// presence; nothing downstream re-reads the environment.
	var generator decor8.Generator
	if cfg.Decor8Live() {
		generator = decor8.NewClient(cfg.Decor8APIBaseURL, cfg.Decor8APIKey)
		log.Println("Decor8 client: live mode")
	} else {
		generator = decor8.NewStub()
		log.Println("Decor8 client: stub mode (DECOR8_API_KEY not set)")
	}

	var planGenerator llm.PlanGenerator
	if cfg.OpenAILive() {
		planGenerator = llm.NewClient(cfg.OpenAIAPIBaseURL, cfg.OpenAIAPIKey, cfg.OpenAIModel)
		log.Println("Plan client: live mode")
	} else {
		planGenerator = llm.NewStub()
		log.Println("Plan client: stub mode (OPENAI_API_KEY not set)")
	}

	// Services and handlers
	previewService := preview.NewService(dbClient, generator)
	entitlementsService := entitlements.NewService(dbClient, entitlements.Quotas{
		Free:   cfg.QuotaFree,
		Casual: cfg.QuotaCasual,
		Pro:    cfg.QuotaPro,
	})

	healthHandler := handlers.NewHealthHandler(cfg, dbClient)
	projectsHandler := handlers.NewProjectsHandler(dbClient, storageClient)
	imagesHandler := handlers.NewImagesHandler(dbClient, storageClient)
	previewHandler := handlers.NewPreviewHandler(previewService)
	entitlementsHandler := handlers.NewEntitlementsHandler(entitlementsService)
	plansHandler := handlers.NewPlansHandler(dbClient, entitlementsService, planGenerator)

	router := gin.Default()

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health checks (no auth)
	router.GET("/health", healthHandler.Live)
	router.GET("/health/ready", healthHandler.Ready)
	router.GET("/health/full", healthHandler.Full)

	// Entitlements
	ents := router.Group("/entitlements")
	ents.Use(middleware.AuthMiddleware(cfg))
	ents.POST("/check", entitlementsHandler.Check)
	ents.POST("/consume", entitlementsHandler.Consume)

	// Project routes
	api := router.Group("/api")
	api.Use(middleware.AuthMiddleware(cfg))

	api.POST("/projects", projectsHandler.CreateProject)
	api.GET("/projects", projectsHandler.ListProjects)
	api.GET("/projects/:project_id", projectsHandler.GetProject)
	api.DELETE("/projects/:project_id", projectsHandler.DeleteProject)

	api.POST("/projects/:project_id/image", imagesHandler.Upload)
	api.POST("/projects/:project_id/preview/start", previewHandler.Start)
	api.GET("/projects/:project_id/preview/status", previewHandler.Status)
	api.POST("/projects/:project_id/plan", plansHandler.Generate)

	port := cfg.Port
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on port %s", port)
	if err := http.ListenAndServe(":"+port, router); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
