package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"chain-bridge.backend/internal/config"
	"chain-bridge.backend/internal/infrastructure/models"
	"chain-bridge.backend/internal/infrastructure/repositories"
	"chain-bridge.backend/internal/interfaces/http/handlers"
	"chain-bridge.backend/internal/interfaces/http/middleware"
	"chain-bridge.backend/internal/usecases"
	"chain-bridge.backend/pkg/jwt"
	"chain-bridge.backend/pkg/logger"
	"chain-bridge.backend/pkg/redis"
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
			PrepareStmt:    false,
			TranslateError: true,
		})
	}
	getStdDB  = func(db *gorm.DB) (*sql.DB, error) { return db.DB() }
	runServer = func(r *gin.Engine, port string) error {
		srv := &http.Server{
			Addr:    ":" + port,
			Handler: r,
		}

		go func() {
			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			<-quit
			log.Println("Shutting down server...")
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(ctx); err != nil {
				log.Printf("forced shutdown: %v", err)
			}
		}()

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	}
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

	// Initialize Redis (idempotency key store)
	if err := initRedis(cfg.Redis.URL, cfg.Redis.PASSWORD); err != nil {
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
		log.Printf("Database not available: %v (endpoints will return errors)", err)
	} else {
		log.Println("Connected to PostgreSQL via GORM")
		if err := db.AutoMigrate(
			&models.BridgeRequest{},
			&models.ChainConfig{},
			&models.TokenConfig{},
			&models.DynamicFee{},
			&models.FeeHistoryEntry{},
			&models.FeeAdjustment{},
			&models.Validator{},
			&models.MerkleRoot{},
			&models.Balance{},
			&models.BridgeSettings{},
		); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	// Initialize JWT service (operator tokens are minted out of band)
	jwtService := jwt.NewService(cfg.JWT.Secret, cfg.JWT.AccessExpiry)

	// Initialize repositories
	requestRepo := repositories.NewBridgeRequestRepository(db)
	chainRepo := repositories.NewChainConfigRepository(db)
	tokenRepo := repositories.NewTokenConfigRepository(db)
	feeRepo := repositories.NewDynamicFeeRepository(db)
	validatorRepo := repositories.NewValidatorRepository(db)
	merkleRepo := repositories.NewMerkleRootRepository(db)
	balanceRepo := repositories.NewBalanceRepository(db)
	settingsRepo := repositories.NewSettingsRepository(db)
	uow := repositories.NewUnitOfWork(db)

	// Initialize usecases
	configUsecase := usecases.NewConfigUsecase(chainRepo, settingsRepo)
	tokenRegistry := usecases.NewTokenRegistryUsecase(tokenRepo, settingsRepo)
	feeEngine := usecases.NewFeeEngineUsecase(feeRepo, cfg.Bridge.FeeAdjustmentWindow)
	validatorUsecase := usecases.NewValidatorUsecase(validatorRepo, merkleRepo, settingsRepo, uow)
	settlementUsecase := usecases.NewSettlementUsecase(
		requestRepo, chainRepo, settingsRepo, balanceRepo,
		tokenRegistry, feeEngine, validatorUsecase, uow,
	)

	// Seed global settlement parameters on first boot
	if err := configUsecase.SeedSettings(context.Background(), &cfg.Bridge); err != nil {
		log.Printf("Settings seed skipped: %v", err)
	}

	// Initialize handlers
	bridgeHandler := handlers.NewBridgeHandler(settlementUsecase)
	feeHandler := handlers.NewFeeHandler(feeEngine)
	registryHandler := handlers.NewRegistryHandler(tokenRegistry, configUsecase, validatorUsecase)
	adminHandler := handlers.NewAdminHandler(configUsecase, tokenRegistry, feeEngine, validatorUsecase)

	// Operator auth for the admin surface
	authMiddleware := middleware.AuthMiddleware(jwtService)

	// Initialize router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.LoggerMiddleware())

	applyCORSMiddleware(r)
	registerHealthRoute(r)
	registerMetricsRoute(r)
	registerAPIV1Routes(r, routeDeps{
		bridgeHandler:   bridgeHandler,
		feeHandler:      feeHandler,
		registryHandler: registryHandler,
		adminHandler:    adminHandler,
		authMiddleware:  authMiddleware,
	})

	// Start server
	log.Printf("Chain-Bridge Backend starting on port %s", cfg.Server.Port)
	log.Printf("API: http://localhost:%s/api/v1", cfg.Server.Port)
	log.Printf("Health: http://localhost:%s/health", cfg.Server.Port)

	if err := runServer(r, cfg.Server.Port); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}
