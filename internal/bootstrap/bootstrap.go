package bootstrap

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"lofty-chat/internal/config"
	"lofty-chat/internal/db"
	"lofty-chat/internal/llm"
	"lofty-chat/internal/repository"
	"lofty-chat/internal/service"
)

// App agrupa los servicios construidos una vez al arrancar el proceso.
type App struct {
	Sessions     *service.SessionStore
	Settings     *service.SettingsService
	Profiles     *service.ProfileService
	Gateway      llm.Gateway
	Feed         *service.NotificationFeed
	Orchestrator *service.ChatOrchestrator
	Analyzer     *service.DocumentAnalyzer

	closers []func()
}

// Close libera conexiones del almacenamiento en orden inverso.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// Build conecta el almacenamiento, carga el estado persistido y arma los servicios.
func Build(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	app := &App{}

	store, err := openStore(ctx, cfg, logger, app)
	if err != nil {
		app.Close()
		return nil, err
	}

	var sealer service.SecretSealer = service.PlainSealer{}
	if cfg.SettingsSecret != "" {
		box, err := service.NewSecretBox(cfg.SettingsSecret)
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("settings secret: %w", err)
		}
		sealer = box
	} else {
		logger.Warn("SETTINGS_SECRET not set, api key stored without encryption")
	}

	defaultModel := strings.TrimSpace(cfg.GeminiModel)
	if defaultModel == "" {
		defaultModel = llm.DefaultModelID
	}

	app.Sessions = service.NewSessionStore(repository.NewKVSessionRepository(store), logger)
	app.Settings = service.NewSettingsService(repository.NewKVSettingsRepository(store), sealer, logger, defaultModel)
	app.Profiles = service.NewProfileService(repository.NewKVProfileRepository(store), logger)

	if err := app.Sessions.Load(ctx); err != nil {
		app.Close()
		return nil, err
	}
	if err := app.Settings.Load(ctx); err != nil {
		app.Close()
		return nil, err
	}
	if err := app.Profiles.Load(ctx); err != nil {
		app.Close()
		return nil, err
	}

	// GEMINI_API_KEY solo siembra la clave si el usuario no guardó una propia.
	if key := strings.TrimSpace(cfg.GeminiAPIKey); key != "" && !app.Settings.HasCredential() {
		if _, err := app.Settings.Update(ctx, service.SettingsUpdate{APIKey: &key}); err != nil {
			logger.Warn("seed api key failed", zap.Error(err))
		}
	}

	app.Gateway = llm.NewGeminiClient(cfg.GeminiBaseURL, cfg.GatewayTimeout, logger)
	app.Feed = service.NewNotificationFeed()
	app.Orchestrator = service.NewChatOrchestrator(app.Sessions, app.Settings, app.Gateway, app.Feed, logger, service.OrchestratorOptions{
		SimulatedLatency: cfg.SimulatedLatency,
		GatewayTimeout:   cfg.GatewayTimeout,
	})
	app.Analyzer = service.NewDocumentAnalyzer(app.Gateway, app.Settings, service.PlainTextExtractor{}, app.Feed, logger, service.AnalyzerOptions{
		ReportURL:      cfg.ReportURL,
		MockDelay:      cfg.AnalysisMockDelay,
		GatewayTimeout: cfg.GatewayTimeout,
	})
	return app, nil
}

func openStore(ctx context.Context, cfg *config.Config, logger *zap.Logger, app *App) (repository.KVStore, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.StoreDriver)) {
	case config.StoreDriverMemory:
		logger.Warn("using in-memory store, state is lost on exit")
		return repository.NewMemoryKVStore(), nil

	case config.StoreDriverSQLite, "":
		sqlDB, err := db.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		app.closers = append(app.closers, func() { sqlDB.Close() })
		if err := db.Migrate(ctx, sqlDB, "sqlite3"); err != nil {
			return nil, fmt.Errorf("migrate sqlite: %w", err)
		}
		logger.Info("using sqlite store", zap.String("path", cfg.SQLitePath))
		return repository.NewSQLiteKVStore(sqlDB), nil

	case config.StoreDriverPostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required for store driver %q", cfg.StoreDriver)
		}
		pool, err := db.NewPool(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("db connect: %w", err)
		}
		app.closers = append(app.closers, pool.Close)
		if err := db.Ping(ctx, pool); err != nil {
			return nil, fmt.Errorf("db ping: %w", err)
		}
		if err := db.MigratePool(ctx, pool); err != nil {
			return nil, fmt.Errorf("migrate postgres: %w", err)
		}
		logger.Info("using postgres store")
		return repository.NewPgKVStore(pool), nil

	case config.StoreDriverRedis:
		if cfg.RedisAddr == "" {
			return nil, fmt.Errorf("REDIS_ADDR is required for store driver %q", cfg.StoreDriver)
		}
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		app.closers = append(app.closers, func() { redisClient.Close() })
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			return nil, fmt.Errorf("redis ping: %w", err)
		}
		logger.Info("using redis store", zap.String("addr", cfg.RedisAddr))
		return repository.NewRedisKVStore(redisClient), nil

	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}
