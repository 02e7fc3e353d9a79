package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"lofty-chat/internal/bootstrap"
	"lofty-chat/internal/config"
	apihttp "lofty-chat/internal/http"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	app, err := bootstrap.Build(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("bootstrap", zap.Error(err))
	}
	defer app.Close()

	chatHandler := apihttp.NewChatHandler(logger, app.Sessions, app.Orchestrator, app.Feed)
	settingsHandler := apihttp.NewSettingsHandler(logger, app.Settings, app.Profiles, app.Gateway)
	documentHandler := apihttp.NewDocumentHandler(logger, app.Analyzer)
	router := apihttp.NewRouter(logger, chatHandler, settingsHandler, documentHandler)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("starting server",
		zap.String("port", cfg.HTTPPort),
		zap.String("store", cfg.StoreDriver),
		zap.Bool("api_key", app.Settings.HasCredential()),
	)

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
}
