package main

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"feeder-populator/internal/api/handlers"
	"feeder-populator/internal/api/middleware"
	"feeder-populator/internal/catalog"
	"feeder-populator/internal/population"
	"feeder-populator/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	// Get configuration from environment
	port := os.Getenv("API_PORT")
	if port == "" {
		port = "8080"
	}
	dbPath := os.Getenv("RUN_DB")
	if dbPath == "" {
		dbPath = "runs.db"
	}
	cacheTTL := 10 * time.Minute
	if raw := os.Getenv("RUN_CACHE_TTL"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			log.Fatalf("Invalid RUN_CACHE_TTL %q: %v", raw, err)
		}
		cacheTTL = d
	}

	cat := catalog.Default()
	if path := os.Getenv("CATALOG_FILE"); path != "" {
		loaded, err := catalog.LoadFile(path)
		if err != nil {
			log.Fatalf("Failed to load catalog: %v", err)
		}
		cat = loaded
		log.Printf("Catalog loaded from %s", path)
	}
	var meta *population.Metadata
	if path := os.Getenv("METADATA_FILE"); path != "" {
		m, err := population.LoadMetadataFile(path)
		if err != nil {
			log.Fatalf("Failed to load metadata: %v", err)
		}
		meta = &m
		log.Printf("Metadata loaded from %s", path)
	}

	st, err := store.NewStore(dbPath)
	if err != nil {
		log.Fatalf("Failed to open run store: %v", err)
	}
	defer st.Close()
	cache := store.NewRunCache(cacheTTL)
	defer cache.Close()

	// Set up Gin router
	if os.Getenv("API_ENV") == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// Apply middleware
	router.Use(middleware.CORS())
	router.Use(middleware.Logger())
	router.Use(middleware.ErrorHandler())

	// Initialize handlers
	modelHandler := handlers.NewModelHandler("")
	populateHandler := handlers.NewPopulateHandler(st, cache, cat, meta, modelHandler.Dir())
	catalogHandler := handlers.NewCatalogHandler(cat)
	referenceHandler := handlers.NewReferenceHandler(meta)

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API routes
	api := router.Group("/api/v1")
	{
		api.POST("/populate", populateHandler.RunPopulation)
		api.GET("/runs", populateHandler.ListRuns)
		api.GET("/runs/:id", populateHandler.GetRun)
		api.GET("/runs/:id/houses", populateHandler.GetRunHouses)

		api.GET("/catalog", catalogHandler.GetCatalog)
		api.GET("/models", modelHandler.ListModels)
		api.GET("/reference", referenceHandler.GetReference)
	}

	router.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api") {
			c.JSON(404, gin.H{"error": gin.H{"code": "NOT_FOUND", "message": "Not found"}})
			return
		}
		c.JSON(404, gin.H{"error": "Not found"})
	})

	// Start server
	addr := fmt.Sprintf(":%s", port)
	log.Printf("Starting API server on %s (store %s, cache ttl %s)", addr, dbPath, cacheTTL)
	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
