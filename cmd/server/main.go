package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"time"

	"melodex-backend/internal/api/handlers"
	"melodex-backend/internal/api/middleware"
	"melodex-backend/internal/api/models"
	"melodex-backend/internal/database"
	melodexEnv "melodex-backend/internal/env"
	"melodex-backend/internal/logging"
	"melodex-backend/internal/session"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/mongo"
)

const defaultPort = "8080"
const defaultDBName = "melodex"

func main() {
	// Initialize logger
	logger := slog.New(&logging.ContextHandler{
		Handler: slog.NewTextHandler(
			os.Stderr,
			&slog.HandlerOptions{
				Level: slog.LevelDebug,
			})},
	)

	if err := godotenv.Load(); err != nil {
		logger.Info("No .env file found, using process environment")
	}

	// Create db connection
	logger.Info("Connecting to database")
	mongoURI := os.Getenv("MONGO_URI")
	if mongoURI == "" {
		logger.Error("MONGO_URI environment variable is not set")
		os.Exit(1)
	}
	dbName := os.Getenv("MONGO_DB")
	if dbName == "" {
		dbName = defaultDBName
	}
	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(30*time.Second))
	defer cancel()
	db, err := database.NewDatabase(ctx, mongoURI, dbName)
	if err != nil {
		logger.Error("Failed to create database connection", "error", err)
		os.Exit(1)
	}
	env := melodexEnv.New(logger, db)
	defer db.Close()

	if err := seedSuperAdmin(ctx, env); err != nil {
		logger.Error("Failed to seed super admin", "error", err)
		os.Exit(1)
	}

	// Create HTTP Handler
	port := os.Getenv("PORT")
	if port == "" {
		logger.Info("PORT not set, defaulting to port " + defaultPort)
		port = defaultPort
	}
	router := mux.NewRouter()
	middleware.AddRoutes(router, env)

	logger.Info("Serving at " + "0.0.0.0:" + port)
	http.Handle("/", router)
	log.Fatal(http.ListenAndServe("0.0.0.0:"+port, nil))
}

// Ensures the distinguished super-admin account exists.
func seedSuperAdmin(ctx context.Context, env *melodexEnv.Env) error {
	email := handlers.SuperAdminEmail()

	_, err := env.Database.GetUserByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return err
	}

	password := os.Getenv("SUPER_ADMIN_PASSWORD")
	if password == "" {
		env.Logger.Warn("SUPER_ADMIN_PASSWORD not set, skipping super admin seed")
		return nil
	}

	hash, err := session.HashPassword(password)
	if err != nil {
		return err
	}
	_, err = env.Database.InsertUser(ctx, models.User{
		Username: "admin",
		Email:    email,
		Password: hash,
		Role:     models.RoleAdmin,
	})
	if err != nil {
		return err
	}
	env.Logger.Info("Seeded super admin account", "email", email)
	return nil
}
