package main

import (
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sqldrill/internal/catalog"
	"sqldrill/internal/config"
	"sqldrill/internal/database"
	"sqldrill/internal/engine"
	"sqldrill/internal/handlers"
	"sqldrill/internal/repository"
	"sqldrill/internal/security"
	"sqldrill/internal/service"

	"github.com/joho/godotenv"
)

func main() {
	// Load .env if present, then configuration
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment")
	}
	cfg := config.Load()

	// Initialize database with config (supports sqlite, postgres, mysql)
	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	log.Printf("Database connection established (type: %s)", cfg.DatabaseType)

	// Run migrations
	if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Migrations completed successfully")

	// Load the exercise catalog
	cat, err := catalog.LoadFile(cfg.CatalogPath)
	if err != nil {
		log.Fatalf("Failed to load exercise catalog: %v", err)
	}

	log.Printf("Exercise catalog loaded (%d exercises)", cat.Count())

	// Initialize repositories
	exerciseRepo := repository.NewExerciseRepository(db)
	attemptRepo := repository.NewAttemptRepository(db)
	sessionRepo := repository.NewSessionRepository(db)

	// Seed the exercise reference table from the catalog
	if err := exerciseRepo.Seed(cat.All()); err != nil {
		log.Fatalf("Failed to seed exercises: %v", err)
	}

	// Initialize the embedded SQL engine and services
	eng := engine.New()
	practiceService := service.NewPracticeService(cat, eng, attemptRepo, sessionRepo)
	progressService := service.NewProgressService(attemptRepo)

	// Initialize handlers
	limiter := security.NewRateLimiter(cfg.SubmitRateLimit, cfg.SubmitRateWindow)
	middleware := handlers.NewMiddleware([]byte(cfg.TokenSecret), limiter)
	exerciseHandler := handlers.NewExerciseHandler(practiceService)
	practiceHandler := handlers.NewPracticeHandler(practiceService)
	progressHandler := handlers.NewProgressHandler(progressService)
	sessionHandler := handlers.NewSessionHandler(practiceService)

	// Setup routes
	mux := http.NewServeMux()

	// Static IDE assets need cross-origin isolation for the in-browser engine
	staticFiles := handlers.WASMIsolation(http.FileServer(http.Dir(cfg.StaticFilesPath)))
	mux.Handle("GET /static/", http.StripPrefix("/static/", staticFiles))
	mux.Handle("GET /{$}", staticFiles)

	// Exercise routes
	mux.HandleFunc("GET /api/exercises", middleware.RequireLearner(exerciseHandler.ListExercises))
	mux.HandleFunc("GET /api/exercises/current", middleware.RequireLearner(exerciseHandler.CurrentExercise))
	mux.HandleFunc("GET /api/exercises/next", middleware.RequireLearner(exerciseHandler.NextExercise))
	mux.HandleFunc("GET /api/exercises/{id}", middleware.RequireLearner(exerciseHandler.GetExercise))

	// Attempt routes
	mux.HandleFunc("POST /api/attempts", middleware.RequireLearner(middleware.RateLimit(practiceHandler.SubmitAttempt)))
	mux.HandleFunc("GET /api/attempts/recent", middleware.RequireLearner(practiceHandler.RecentAttempts))

	// Progress and session routes
	mux.HandleFunc("GET /api/progress", middleware.RequireLearner(progressHandler.GetProgress))
	mux.HandleFunc("GET /api/session", middleware.RequireLearner(sessionHandler.GetSession))
	mux.HandleFunc("POST /api/session/activate", middleware.RequireLearner(sessionHandler.ActivateSession))
	mux.HandleFunc("POST /api/session/deactivate", middleware.RequireLearner(sessionHandler.DeactivateSession))

	// Wrap with logging middleware
	handler := handlers.Logging(mux)

	// Start server
	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Printf("Server starting on http://localhost%s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")
}
