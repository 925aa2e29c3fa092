package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"careercompass/internal/ai"
	"careercompass/internal/auth"
	"careercompass/internal/cache"
	"careercompass/internal/config"
	"careercompass/internal/db"
	apperrors "careercompass/internal/errors"
	"careercompass/internal/model"
	"careercompass/internal/repository"
	"careercompass/internal/service"
)

// SeedAccount is one demo account to create.
type SeedAccount struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

func main() {
	email := flag.String("email", envOr("SEED_EMAIL", "demo@careercompass.dev"), "demo account email")
	password := flag.String("password", envOr("SEED_PASSWORD", "demo1234"), "demo account password")
	name := flag.String("name", "Demo Student", "demo account display name")
	file := flag.String("file", "", "optional JSON file with an array of {email, password, name}")
	domain := flag.String("roadmap", "", "generate a roadmap towards this domain for the demo account (needs GEMINI_API_KEY)")
	skills := flag.String("skills", "HTML, CSS, basic Python", "current skills used for the demo roadmap")
	flag.Parse()

	log.Println("Starting seed script...")
	_ = godotenv.Load()
	cfg := config.Load()

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("Connected to database")

	if err := db.Migrate(gormDB, false); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations completed")

	accounts := []SeedAccount{{Email: *email, Password: *password, Name: *name}}
	if *file != "" {
		fromFile, err := loadAccounts(*file)
		if err != nil {
			log.Fatalf("Failed to load accounts: %v", err)
		}
		accounts = append(accounts, fromFile...)
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB, cfg.RedisPrefix)
	defer cacheClient.Close()

	userRepo := repository.NewUserRepository(gormDB)
	jwtService := auth.NewJWTService(cfg.JWTSecret, cfg.TokenTTL)
	authService := service.NewAuthService(userRepo, jwtService, auth.NewTokenStore(cacheClient), auth.NewGoogleVerifier(cfg.GoogleClientID))

	ctx := context.Background()
	log.Println("Seeding accounts into database...")
	created, existing, err := seedAccounts(ctx, authService, accounts)
	if err != nil {
		log.Fatalf("Failed to seed accounts: %v", err)
	}

	log.Printf("Seed completed successfully!")
	log.Printf("  - New accounts created: %d", created)
	log.Printf("  - Existing accounts skipped: %d", existing)

	if *domain == "" {
		return
	}

	completer, err := ai.NewGeminiClient(ctx, cfg.GeminiAPIKey, ai.CompletionOptionsFor(cfg.CompletionTimeout, cfg.CompletionAttempts))
	if err != nil {
		log.Fatalf("Failed to create completion client: %v", err)
	}
	careerService := service.NewCareerService(completer, cfg.GeminiModel, userRepo, repository.NewRoadmapRepository(gormDB), cacheClient, nil)

	user, err := findSeededUser(ctx, userRepo, *email)
	if err != nil {
		log.Fatalf("Failed to load demo account: %v", err)
	}
	roadmap, err := careerService.GenerateRoadmap(ctx, user.ID, *domain, *skills)
	if err != nil {
		log.Fatalf("Failed to generate roadmap: %v", err)
	}
	log.Printf("Roadmap towards %q stored (revision %d)", roadmap.TargetDomain, roadmap.Revision)
}

// loadAccounts reads demo accounts from a JSON file.
func loadAccounts(path string) ([]SeedAccount, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var accounts []SeedAccount
	if err := json.Unmarshal(data, &accounts); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	return accounts, nil
}

// seedAccounts registers each account, skipping emails that already exist.
func seedAccounts(ctx context.Context, authService service.AuthService, accounts []SeedAccount) (created int, existing int, err error) {
	for _, account := range accounts {
		_, err := authService.Register(ctx, account.Email, account.Password, account.Name)
		switch {
		case err == nil:
			created++
		case errors.Is(err, apperrors.ErrUserAlreadyExists):
			log.Printf("Account %s already exists", account.Email)
			existing++
		default:
			return created, existing, fmt.Errorf("error creating account %s: %w", account.Email, err)
		}
	}
	return created, existing, nil
}

// findSeededUser looks an account up the way Register stored it.
func findSeededUser(ctx context.Context, users repository.UserRepository, email string) (*model.User, error) {
	return users.FindByEmail(ctx, service.NormalizeEmail(email))
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
