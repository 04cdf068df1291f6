package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"nutriplat/coaching-api/internal/api"
	"nutriplat/coaching-api/internal/config"
	"nutriplat/coaching-api/internal/logger"
	"nutriplat/coaching-api/internal/repository/mongo"
	"nutriplat/coaching-api/internal/service"
	"nutriplat/coaching-api/internal/storage"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// @title NutriPlat Coaching API
// @version 1.0
// @description API for nutrition and fitness coaching: clients, professionals, plans, routines and progress tracking.
// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		panic("could not load config: " + err.Error())
	}

	// --- Logging ---
	log, err := logger.Init(cfg.Log)
	if err != nil {
		panic("could not initialize logger: " + err.Error())
	}
	defer log.Sync() //nolint:errcheck

	log.Info("starting coaching API server")

	// --- Database Connection ---
	dbClient, err := mongo.ConnectDB(cfg.Database.URI)
	if err != nil {
		log.Fatal("could not connect to MongoDB", zap.Error(err))
	}
	defer func() {
		log.Info("disconnecting MongoDB")
		if err := mongo.DisconnectDB(dbClient); err != nil {
			log.Error("failed to disconnect MongoDB", zap.Error(err))
		}
	}()
	appDB := dbClient.Database(cfg.Database.Name)
	log.Info("database connection established", zap.String("database", cfg.Database.Name))

	// --- Ensure Indexes ---
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
		defer cancel()
		mongo.EnsureUserIndexes(ctx, appDB.Collection("users"))
		mongo.EnsureNutritionPlanIndexes(ctx, appDB.Collection("nutrition_plans"))
		mongo.EnsureWorkoutRoutineIndexes(ctx, appDB.Collection("workout_routines"))
		mongo.EnsureAssignmentIndexes(ctx, appDB.Collection("assignments"))
		mongo.EnsureProgressEntryIndexes(ctx, appDB.Collection("progress_entries"))
		log.Info("index creation process completed")
	}()

	// --- Initialize Storage ---
	fileStorage, err := storage.NewS3Storage(cfg.S3)
	if err != nil {
		log.Fatal("failed to initialize S3 storage", zap.Error(err))
	}

	// --- Initialize Repositories ---
	userRepo := mongo.NewMongoUserRepository(appDB)
	planRepo := mongo.NewMongoNutritionPlanRepository(appDB)
	routineRepo := mongo.NewMongoWorkoutRoutineRepository(appDB)
	assignmentRepo := mongo.NewMongoAssignmentRepository(appDB)
	progressRepo := mongo.NewMongoProgressEntryRepository(appDB)

	// --- Initialize Services ---
	policy := service.NewAuthorizationPolicy(userRepo)
	authService := service.NewAuthService(userRepo, cfg.JWT.Secret, cfg.JWT.Expiration)
	userService := service.NewUserService(userRepo, assignmentRepo, progressRepo)
	planService := service.NewNutritionPlanService(planRepo, userRepo, assignmentRepo, policy)
	routineService := service.NewWorkoutRoutineService(routineRepo, userRepo, assignmentRepo, policy)
	progressService := service.NewProgressService(progressRepo, userRepo, fileStorage, policy)

	// --- Initialize Gin Engine ---
	if !cfg.Log.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default() // Includes Logger and Recovery middleware

	// --- Setup Routes ---
	api.SetupRoutes(router, cfg.JWT.Secret, authService, userService, planService, routineService, progressService)

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info("server listening", zap.String("address", cfg.Server.Address))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("listen and serve error", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Fatal("server forced to shutdown", zap.Error(err))
	}

	log.Info("server exiting")
}
