package main

import (
	"log"
	"promptgallery-backend/config"
	"promptgallery-backend/internal/api"
	"promptgallery-backend/internal/database"
	"promptgallery-backend/internal/repository"
	"promptgallery-backend/internal/services"
	"promptgallery-backend/internal/storage"
	"promptgallery-backend/pkg/logger"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := logger.InitLogger(&logger.Config{
		Level:      cfg.LogLevel,
		Filename:   cfg.LogFilename,
		MaxSize:    cfg.LogMaxSize,
		MaxBackups: cfg.LogMaxBackups,
		MaxAge:     cfg.LogMaxAge,
		Compress:   cfg.LogCompress,
	}); err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync()

	db, err := database.Connect(cfg)
	if err != nil {
		logger.Log.Fatal("failed to connect database", zap.Error(err))
	}
	if err := database.Migrate(db); err != nil {
		logger.Log.Fatal("failed to migrate database", zap.Error(err))
	}

	// Redis backs caches, like guards and the token denylist; the catalog
	// keeps working without it.
	if err := database.ConnectRedis(cfg); err != nil {
		logger.Log.Warn("redis unavailable, continuing without cache", zap.Error(err))
		database.RedisClient = nil
	}

	assets, err := storage.New(cfg)
	if err != nil {
		logger.Log.Fatal("failed to init asset store", zap.Error(err))
	}
	var tokens storage.TokenIssuer
	if oss, ok := assets.(*storage.OSSStore); ok && oss.Tokens() != nil {
		tokens = oss.Tokens()
	}

	catalog := services.NewCatalogService(
		repository.NewPromptRepository(db),
		assets,
		database.RedisClient,
		logger.Log.Named("catalog"),
		services.CatalogOptions{
			PublicListLimit: cfg.PublicListLimit,
			PublicCacheTTL:  cfg.PublicCacheTTL,
			SeedDemoPrompts: cfg.SeedDemoPrompts,
		},
	)
	users := services.NewUserService(db, database.RedisClient, logger.Log.Named("users"))

	router := api.NewRouter(cfg, api.Dependencies{
		Catalog: catalog,
		Users:   users,
		Tokens:  tokens,
	})

	logger.Log.Info("server starting", zap.String("addr", cfg.ServerAddr), zap.String("asset_store", cfg.AssetStore))
	if err := router.Run(cfg.ServerAddr); err != nil {
		logger.Log.Fatal("failed to run server", zap.Error(err))
	}
}
