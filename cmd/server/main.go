package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"cast-deck.backend/internal/config"
	"cast-deck.backend/internal/infrastructure/jobs"
	"cast-deck.backend/internal/infrastructure/notifier"
	"cast-deck.backend/internal/infrastructure/relay"
	"cast-deck.backend/internal/infrastructure/repositories"
	"cast-deck.backend/internal/infrastructure/sessionstore"
	"cast-deck.backend/internal/interfaces/http/handlers"
	"cast-deck.backend/internal/interfaces/http/middleware"
	"cast-deck.backend/internal/usecases"
	"cast-deck.backend/pkg/crypto"
	"cast-deck.backend/pkg/jwt"
	"cast-deck.backend/pkg/logger"
	"cast-deck.backend/pkg/redis"
)

var (
	loadDotenv = godotenv.Load
	loadCfg    = config.Load
	initLog    = logger.Init
	initRedis  = redis.Init
	openDB     = func(dsn string) (*gorm.DB, error) {
		return gorm.Open(postgres.New(postgres.Config{
			DSN:                  dsn,
			PreferSimpleProtocol: true,
		}), &gorm.Config{
			PrepareStmt: false,
		})
	}
	runServer = func(r *gin.Engine, port string) error { return r.Run(":" + port) }
	getStdDB  = func(db *gorm.DB) (*sql.DB, error) { return db.DB() }
)

func main() {
	if err := runMainProcess(); err != nil {
		log.Fatal(err)
	}
}

func runMainProcess() error {
	// Load .env file
	if err := loadDotenv(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Load configuration
	cfg := loadCfg()

	// Initialize Logger
	initLog(cfg.Server.Env)
	logger.Info(context.Background(), "Logger initialized", zap.String("env", cfg.Server.Env))

	// Initialize Redis
	if err := initRedis(cfg.Redis.URL, cfg.Redis.Password); err != nil {
		logger.Error(context.Background(), "Failed to initialize Redis", zap.Error(err))
		return fmt.Errorf("failed to initialize redis: %w", err)
	}
	logger.Info(context.Background(), "Redis initialized")

	// Set Gin mode
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to database using GORM
	dsn := cfg.Database.URL()
	db, err := openDB(dsn)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := getStdDB(db)
	if err != nil {
		return fmt.Errorf("failed to get generic database object: %w", err)
	}
	defer sqlDB.Close()

	if err := sqlDB.Ping(); err != nil {
		log.Printf("⚠️ Database not available: %v (endpoints will return errors)", err)
	} else {
		log.Println("✅ Connected to PostgreSQL via GORM")
	}

	// Initialize JWT service
	jwtService := jwt.NewJWTService(
		cfg.JWT.Secret,
		cfg.JWT.AccessExpiry,
		cfg.JWT.RefreshExpiry,
	)

	// Signer tokens are encrypted before they touch the database
	tokenCipher, err := crypto.NewTokenCipher(cfg.Security.SignerTokenKey)
	if err != nil {
		return fmt.Errorf("failed to initialize signer token cipher: %w", err)
	}

	// Initialize infrastructure
	linkRepo := repositories.NewLinkRepository(db, tokenCipher)
	sessionStore := sessionstore.NewClient(cfg.Auth.BaseURL, cfg.Auth.APIKey, cfg.Auth.ServiceKey, cfg.Auth.Timeout)
	relayClient := relay.NewClient(cfg.Relay.BaseURL, cfg.Relay.AppDomain, cfg.Relay.PollTimeout, cfg.Relay.ChannelTTL)
	events := notifier.NewRedisNotifier("")

	// Initialize usecases
	deriver := usecases.NewCredentialDeriver()
	verifier := usecases.NewSignatureVerifier(cfg.Relay.AppDomain, cfg.Security.ChallengeTTL)
	linker := usecases.NewAccountLinker(sessionStore, linkRepo, events, deriver)
	signin := usecases.NewFarcasterSignin(relayClient, linker, cfg.Relay.PollInterval)

	// Initialize handlers
	walletHandler := handlers.NewWalletHandler(verifier, linker, jwtService)
	farcasterHandler := handlers.NewFarcasterHandler(signin, jwtService)
	linkHandler := handlers.NewLinkHandler(linker)
	sessionHandler := handlers.NewSessionHandler(jwtService)

	// Start background jobs
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sweeperJob := jobs.NewSigninSweeperJob(signin)
	go sweeperJob.Start(ctx)

	// Initialize router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.LoggerMiddleware())
	r.Use(middleware.MetricsMiddleware())

	applyCORSMiddleware(r)
	registerHealthRoute(r)
	registerMetricsRoute(r)
	registerAPIV1Routes(r, routeDeps{
		walletHandler:    walletHandler,
		farcasterHandler: farcasterHandler,
		linkHandler:      linkHandler,
		sessionHandler:   sessionHandler,
		requireAuth:      middleware.RequireAuth(jwtService),
		optionalAuth:     middleware.OptionalAuth(jwtService),
	})

	// Print all registered routes for debugging
	log.Println("📋 Registered Routes:")
	for _, route := range r.Routes() {
		log.Printf("   %s %s", route.Method, route.Path)
	}

	// Graceful shutdown
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Println("🛑 Shutting down server...")
		sweeperJob.Stop()
		cancel()
	}()

	// Start server
	log.Printf("🚀 CastDeck Backend starting on port %s", cfg.Server.Port)
	log.Printf("📚 API: http://localhost:%s/api/v1", cfg.Server.Port)
	log.Printf("❤️ Health: http://localhost:%s/health", cfg.Server.Port)

	if err := runServer(r, cfg.Server.Port); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}
