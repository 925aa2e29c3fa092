package main

import (
	"context"
	"log"
	"net/http"
	"strings"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"careercompass/docs" // swagger docs
	"careercompass/internal/ai"
	"careercompass/internal/auth"
	"careercompass/internal/cache"
	"careercompass/internal/config"
	"careercompass/internal/db"
	"careercompass/internal/handler"
	"careercompass/internal/repository"
	"careercompass/internal/router"
	"careercompass/internal/service"
)

// @title Career Compass API
// @version 1.0
// @description Career guidance API: authentication, AI career consultation and six-month skill roadmaps.
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file, using process environment")
	}
	cfg := config.Load()
	ctx := context.Background()

	e := echo.New()

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("database init: %v", err)
	}
	if cfg.ResetDB {
		log.Println("RESET_DB=true detected, dropping all tables...")
	}
	if err := db.Migrate(gormDB, cfg.ResetDB); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB, cfg.RedisPrefix)
	defer cacheClient.Close()
	if err := cacheClient.Ping(ctx); err != nil {
		log.Printf("redis unavailable at %s, continuing without cache: %v", cfg.RedisAddr, err)
	}

	completer, err := ai.NewGeminiClient(ctx, cfg.GeminiAPIKey, ai.CompletionOptionsFor(cfg.CompletionTimeout, cfg.CompletionAttempts))
	if err != nil {
		log.Fatalf("completion client: %v", err)
	}
	if cfg.GoogleClientID == "" {
		log.Println("GOOGLE_CLIENT_ID not set, Google sign-in will reject every credential")
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(gormDB)
	roadmapRepo := repository.NewRoadmapRepository(gormDB)

	// Initialize auth components
	jwtService := auth.NewJWTService(cfg.JWTSecret, cfg.TokenTTL)
	tokenStore := auth.NewTokenStore(cacheClient)
	gate := auth.NewGate(jwtService, tokenStore)
	verifier := auth.NewGoogleVerifier(cfg.GoogleClientID)

	// Initialize services
	authService := service.NewAuthService(userRepo, jwtService, tokenStore, verifier)
	careerService := service.NewCareerService(completer, cfg.GeminiModel, userRepo, roadmapRepo, cacheClient, e.Logger)

	router.Register(
		e,
		cfg,
		gate,
		handler.NewAuthHandler(authService),
		handler.NewUserHandler(authService),
		handler.NewAIHandler(careerService),
	)

	if cfg.SwaggerHost != "" {
		docs.SwaggerInfo.Host = strings.TrimPrefix(strings.TrimPrefix(cfg.SwaggerHost, "https://"), "http://")
	}
	log.Printf("Swagger documentation available at: http://localhost:%s/swagger/index.html", cfg.ServerPort)

	addr := ":" + cfg.ServerPort
	if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server start: %v", err)
	}
}
