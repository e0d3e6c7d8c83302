package main

import (
	"log"

	"go.uber.org/zap"
	"modix/bot"
	"modix/config"
	"modix/handlers"
	"modix/logger"
	"modix/utils/database"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	zl, err := logger.Init(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("Error initializing logger: %v", err)
	}
	defer logger.Sync()

	db, err := database.Init(cfg.DatabasePath)
	if err != nil {
		zl.Fatal("Error initializing database", zap.String("path", cfg.DatabasePath), zap.Error(err))
	}
	defer db.Close()

	b, err := bot.New(cfg, db, zl)
	if err != nil {
		zl.Fatal("Error creating bot", zap.Error(err))
	}

	handlers.Register(b)

	if err := b.Run(); err != nil {
		zl.Error("Bot stopped", zap.Error(err))
	}
	b.Close()
}
