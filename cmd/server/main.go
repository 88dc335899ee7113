package main

import (
	"mentorhub-api/internal/auth"
	"mentorhub-api/internal/board"
	"mentorhub-api/internal/config"
	"mentorhub-api/internal/database"
	"mentorhub-api/internal/logger"
	"mentorhub-api/internal/realtime"
	"mentorhub-api/internal/routes"
	"mentorhub-api/internal/store"

	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	if err := logger.Init(cfg.LogDevelopment); err != nil {
		panic(err)
	}
	defer logger.Sync()

	auth.Configure(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAudience)

	db, err := database.Open(cfg.DBPath)
	if err != nil {
		logger.Fatal("open database", err)
	}

	// One hub per process; every write path publishes through it.
	hub := realtime.NewHub()
	taskStore := store.NewTaskStore(db)
	svc := board.NewService(taskStore, hub)

	ginRoutes := routes.SetupRoutes(svc, taskStore, hub)

	addr := ":" + cfg.ServerPort
	logger.Info("server starting", zap.String("addr", addr))

	if err := ginRoutes.Run(addr); err != nil {
		logger.Fatal("server stopped", err)
	}
}
