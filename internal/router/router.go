package router

import (
	"log"

	"firebase.google.com/go/v4/auth"
	"github.com/campusquest/backend/internal/handlers"
	"github.com/campusquest/backend/internal/middleware"
	"github.com/campusquest/backend/internal/models"
	"github.com/campusquest/backend/internal/repositories"
	"github.com/campusquest/backend/internal/services"
	"github.com/campusquest/backend/internal/watch"
	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo) {
	e.Use(eMiddleware.Logger())
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORS())
	log.Println("Global middleware configured.")
}

// SetupRoutes configures all application routes and injects dependencies.
// authMode selects the auth middleware for the protected API group:
// "firebase" verifies Firebase ID tokens per request, anything else expects
// the local session JWT issued by /auth/firebase-login.
func SetupRoutes(e *echo.Echo, pgdb *gorm.DB, mgClient *mongo.Client, firebaseAuthClient *auth.Client, authMode string) {
	err := pgdb.AutoMigrate(
		&models.User{},
		&models.Rating{},
		&models.Notification{},
	)
	if err != nil {
		log.Fatalf("Failed to auto migrate models: %v", err)
	}
	log.Println("PostgreSQL auto-migrations completed for all models.")

	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)

	// --- Subscription hub for live views ---
	hub := watch.NewHub()

	// --- Initialize Repositories ---
	userRepo := repositories.NewPostgresUserRepository(pgdb)
	taskRepo := repositories.NewMongoTaskRepository(mgClient.Database("campusquest"), hub)
	notificationRepo := repositories.NewPostgresNotificationRepository(pgdb, hub)

	// --- Services ---
	notificationService := services.NewNotificationService(notificationRepo, userRepo)
	taskService := services.NewTaskService(taskRepo, userRepo, notificationService)

	// --- Unprotected routes for authentication ---
	authGroup := e.Group("/api/v1/auth")
	authHandler := handlers.NewAuthHandler(userRepo, firebaseAuthClient)
	authHandler.RegisterAuthRoutes(authGroup)
	log.Println("Auth routes configured.")

	// --- Protected routes ---
	api := e.Group("/api/v1")
	if authMode == "firebase" {
		api.Use(middleware.FirebaseAuthMiddleware(firebaseAuthClient))
		log.Println("Firebase authentication middleware applied to /api/v1 group.")
	} else {
		api.Use(middleware.JWTAuthMiddleware())
		log.Println("JWT authentication middleware applied to /api/v1 group.")
	}

	// Task lifecycle routes
	taskHandler := handlers.NewTaskHandler(taskService)
	taskHandler.RegisterTaskRoutes(api)
	log.Println("Task routes configured.")

	// Notification and rating routes
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	notificationHandler.RegisterNotificationRoutes(api)
	log.Println("Notification routes configured.")

	// User profile routes
	userHandler := handlers.NewUserHandler(userRepo)
	userHandler.RegisterProfileRoutes(api)
	log.Println("User profile routes configured.")

	// Live view streams
	streamHandler := handlers.NewStreamHandler(hub, taskService, notificationService)
	streamHandler.RegisterStreamRoutes(api)
	log.Println("Stream routes configured.")

	log.Println("All routes configured.")
}
