package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/LuisMario698/dck-backend/internal/config"
	"github.com/LuisMario698/dck-backend/internal/database"
	"github.com/LuisMario698/dck-backend/internal/handlers"
	"github.com/LuisMario698/dck-backend/internal/logger"
	"github.com/LuisMario698/dck-backend/internal/middleware"
	"github.com/LuisMario698/dck-backend/internal/renderer"
	"github.com/LuisMario698/dck-backend/internal/services"
	"github.com/LuisMario698/dck-backend/internal/supabase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load configuration: " + err.Error())
	}

	log := logger.New(cfg.Environment)
	defer log.Sync()

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	if cfg.DatabaseURL == "" {
		log.Warn("DATABASE_URL not set; migrations will be skipped and database operations will be limited")
	}

	// Renderer client for the generated manifest document
	var docRenderer services.DocumentRenderer
	if cfg.RendererBaseURL != "" {
		docRenderer = renderer.NewClient(cfg.RendererBaseURL, cfg.RendererAPIKey)
	} else {
		log.Warn("RENDERER_BASE_URL not set; manifests will be created without generated documents")
	}

	supabaseClient, err := supabase.NewClient(cfg)
	if err != nil {
		log.Fatal("failed to initialize Supabase client", zap.Error(err))
	}

	storageClient, err := supabase.NewStorageClient(cfg.SupabaseURL, cfg.SupabasePublishableKey, cfg.SupabaseStorageBucket)
	if err != nil {
		log.Fatal("failed to initialize storage client", zap.Error(err))
	}

	realtimeClient := supabase.NewRealtimeClient(supabaseClient.Supabase)

	var dbClient *supabase.DatabaseClient
	if cfg.DatabaseURL != "" {
		dbClient, err = supabase.NewDatabaseClient(cfg.DatabaseURL)
		if err != nil {
			log.Warn("failed to initialize database client; database operations will be limited", zap.Error(err))
		} else {
			defer dbClient.Close()

			migrator, err := database.NewMigrator(cfg.DatabaseURL, log)
			if err != nil {
				log.Warn("failed to initialize migrator", zap.Error(err))
			} else {
				defer migrator.Close()
				if err := migrator.Run(); err != nil {
					log.Warn("migration failed", zap.Error(err))
				} else {
					log.Info("migrations completed successfully")
				}
			}
		}
	}

	// Intake pipeline (only if dbClient is available)
	var manifestService *services.ManifestService
	if dbClient != nil {
		manifestService = services.NewManifestService(dbClient, dbClient, storageClient, docRenderer, realtimeClient, log)
	}

	manifestsHandler := handlers.NewManifestsHandler(manifestService, dbClient, log)
	entitiesHandler := handlers.NewEntitiesHandler(dbClient)

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// Health check (no auth)
	router.GET("/health", handlers.HealthHandler)

	api := router.Group("/api/v1")
	api.Use(middleware.AuthMiddleware(cfg))

	// Manifest intake and collection
	api.POST("/manifests", manifestsHandler.CreateManifest)
	api.GET("/manifests", manifestsHandler.ListManifests)
	api.GET("/manifests/:manifest_id", manifestsHandler.GetManifest)
	api.PUT("/manifests/:manifest_id", manifestsHandler.UpdateManifest)
	api.DELETE("/manifests/:manifest_id", manifestsHandler.DeleteManifest)

	// Entity lists feeding the resolver caches
	api.GET("/vessels", entitiesHandler.ListVessels)
	api.POST("/vessels", entitiesHandler.CreateVessel)
	api.GET("/persons", entitiesHandler.ListPersons)
	api.POST("/persons", entitiesHandler.CreatePerson)
	api.GET("/person-categories", entitiesHandler.ListPersonCategories)

	port := cfg.Port
	if port == "" {
		port = "8080"
	}

	log.Info("server starting", zap.String("port", port))
	if err := http.ListenAndServe(":"+port, router); err != nil {
		log.Fatal("failed to start server", zap.Error(err))
	}
}
