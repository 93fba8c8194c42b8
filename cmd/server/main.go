package main

import (
	"context"
	"log"

	"github.com/campusquest/backend/internal/router"
	"github.com/campusquest/backend/pkg/config"
	"github.com/campusquest/backend/pkg/firebase"
	"github.com/campusquest/backend/validators"
	"github.com/labstack/echo/v4"
)

func main() {
	cfg := config.Load()

	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize databases: %v", err)
	}
	defer db.CloseDB()

	authClient, err := firebase.NewAuthClient(context.Background(), cfg.FirebaseCredentialsPath)
	if err != nil {
		log.Fatalf("Failed to initialize Firebase: %v", err)
	}

	e := echo.New()
	router.SetupMiddleware(e)
	e.Validator = validators.NewValidator()
	router.SetupRoutes(e, db.Postgres, db.Mongo, authClient, cfg.AuthMode)

	e.Logger.Fatal(e.Start(":" + cfg.Port))
}
