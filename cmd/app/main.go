package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"voart-api/internal/database"
	"voart-api/internal/handlers"
	"voart-api/internal/moderation"
	"voart-api/internal/pricing"
	"voart-api/internal/store"
	"voart-api/shared/config"
	"voart-api/shared/env"
	"voart-api/shared/logger"
	"voart-api/shared/notifications"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func startHeartbeat(appLogger *logger.Logger) {
	go func() {
		ticker := time.NewTicker(8 * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			appLogger.Info("Heartbeat: Program running...")
		}
	}()
}

func startPriceRefresh(feed *pricing.PriceFeed, interval time.Duration, appLogger *logger.Logger) {
	go func() {
		appLogger.Info("Price refresh loop started", zap.String("interval", interval.String()))
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for range ticker.C {
			feed.Refresh()
		}
	}()
}

func main() {
	defer func() {
		if r := recover(); r != nil {
			log.Panicf("FATAL PANIC RECOVERY: %v", r)
		}
	}()

	if err := env.LoadEnv(); err != nil {
		log.Fatalf("FATAL: Failed to load environment variables: %v", err)
	}
	log.Println("INFO: Environment variables loaded via shared/env.")

	log.Println("INFO: Initializing application logger.")
	enableTelegramLogging := env.TelegramBotToken != "" && env.TelegramGroupID != 0
	loggerCfg := logger.Config{
		Level:          "info",
		Environment:    "production",
		EnableTelegram: enableTelegramLogging,
	}
	appLogger, err := logger.NewLogger(loggerCfg)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize logger: %v", err)
	}
	appLogger.Info("Application logger initialized successfully.")

	appLogger.Info("Loading application configuration...")
	cfg, errCfg := config.LoadConfig("config.yaml")
	if errCfg != nil {
		appLogger.Fatal("Failed to load config.yaml", zap.Error(errCfg))
	}
	config.SetGlobalConfig(cfg)
	if cfg.Logging.Level != "" {
		appLogger.SetLevel(cfg.Logging.Level)
	}
	appLogger.Info("Application configuration loaded.")

	var dsn string
	if env.DATABASE_URL != "" {
		appLogger.Info("Using DATABASE_URL for database connection.")
		dsn = env.DATABASE_URL
	} else if env.PGHOST != "" && env.PGUSER != "" && env.PGDATABASE != "" {
		dsn = fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
			env.PGHOST, env.PGUSER, env.PGPASSWORD, env.PGDATABASE, env.PGPORT,
		)
		appLogger.Info("Constructed Database DSN using individual variables (password hidden)")
	}

	var kv store.Store
	if dsn != "" {
		appLogger.Info("Connecting to database...")
		db, errDb := database.ConnectToDatabase(dsn)
		if errDb != nil {
			appLogger.Fatal("Database connection failed", zap.Error(errDb))
		}
		appLogger.Info("Database connection established successfully.")

		appLogger.Info("Running database migrations...")
		database.MigrateDatabase(dsn)
		appLogger.Info("Database migrations completed.")

		kv = store.NewGormStore(db)
	} else {
		appLogger.Warn("No database configured. Falling back to the in-memory store; state will not survive restarts.")
		kv = store.NewMemoryStore()
	}

	log.Println("INFO: Initializing Telegram notifications...")
	if err := notifications.InitTelegramBot(); err != nil {
		log.Printf("WARN: Failed to initialize Telegram Bot, proceeding without Telegram features: %v", err)
	} else {
		log.Println("INFO: Telegram notifications initialized (if enabled and configured).")
	}

	appLogger.Info("Initializing pricing services...")
	rates := pricing.NewRateService(kv, cfg.Pricing.DefaultQOMUSDRate)
	feed := pricing.NewPriceFeed(rates, kv, env.PriceAPIURL, env.PriceFallbackURL, cfg.Pricing.FetchRetries)
	oracle := pricing.NewRandomOracle()
	calc := pricing.NewCalculator(kv, oracle, cfg.Fees)
	commissionRates, err := pricing.ParseCommissionRates(
		cfg.Fees.BuyerCommissionRate, cfg.Fees.SellerCommissionRate, cfg.Fees.DonationRate,
	)
	if err != nil {
		appLogger.Fatal("Invalid commission rate configuration", zap.Error(err))
	}
	appLogger.Info("Pricing services initialized.")

	appLogger.Info("Initializing moderation services...")
	users := moderation.NewUserManagement(kv, appLogger)
	nfts := moderation.NewNFTAdmin(kv, appLogger)
	verification := moderation.NewVerificationSystem(kv, users, appLogger)
	storageWL := moderation.NewStorageWhitelist(kv, appLogger)
	marketWL := moderation.NewMarketplaceWhitelist(kv, appLogger)
	featured := moderation.NewFeaturedCollections(kv, appLogger)
	sweeper := moderation.NewSweeper(users, featured,
		time.Duration(cfg.Sweeper.IntervalSeconds)*time.Second, appLogger)
	appLogger.Info("Moderation services initialized.")

	appLogger.Info("Setting up web server...")
	gin.SetMode(gin.ReleaseMode)
	router := gin.Default()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"*"}
	corsConfig.AllowMethods = []string{"GET", "POST", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "X-Admin-Secret"}
	router.Use(cors.New(corsConfig))
	appLogger.Info("CORS middleware configured.")

	handlers.RegisterRoutes(router, appLogger)
	api := &handlers.API{
		Log:          appLogger,
		Rates:        rates,
		Feed:         feed,
		Calc:         calc,
		Oracle:       oracle,
		Commission:   commissionRates,
		Users:        users,
		NFTs:         nfts,
		Verification: verification,
		StorageWL:    storageWL,
		MarketWL:     marketWL,
		Featured:     featured,
	}
	api.RegisterAPIRoutes(router)
	appLogger.Info("Web server and API routes registered.")

	appLogger.Info("Starting background services...")
	go sweeper.Run(context.Background())
	startPriceRefresh(feed, time.Duration(cfg.Pricing.RefreshSeconds)*time.Second, appLogger)
	appLogger.Info("Background services started.")

	go func() {
		serverAddr := ":" + env.Port
		appLogger.Info("Starting web server", zap.String("address", serverAddr))
		if err := router.Run(serverAddr); err != nil {
			appLogger.Fatal("Could not start web server.", zap.Error(err))
		}
	}()

	appLogger.Info("Starting heartbeat monitor.")
	startHeartbeat(appLogger)

	appLogger.Info("Application startup complete. Waiting for events...")
	select {}
}
