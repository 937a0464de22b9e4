package main

import (
	"flag"
	"log"

	"github.com/folio-space/core/internal/config"
	"github.com/folio-space/core/internal/database"
	"github.com/folio-space/core/internal/modules/auth"
	"github.com/folio-space/core/internal/seed"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", config.DefaultConfigPath, "Path to YAML config file")
	modeFlag := flag.String("mode", string(seed.ModeAll), "What to seed: all or blogs")
	withAdmin := flag.Bool("admin", false, "Create the configured admin account when missing")
	flag.Parse()

	_ = godotenv.Load()

	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync()

	mode, err := seed.ParseMode(*modeFlag)
	if err != nil {
		logger.Fatal("invalid mode", zap.Error(err))
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	db, err := database.Connect(cfg, true)
	if err != nil {
		logger.Fatal("connect database", zap.Error(err))
	}
	defer database.Close(db)

	if *withAdmin {
		if _, err := auth.NewService(db, logger).EnsureAdmin(cfg.Admin.Username, cfg.Admin.Password); err != nil {
			logger.Fatal("create admin", zap.Error(err))
		}
	}

	out, err := seed.New(db, logger).Run(mode)
	if err != nil {
		logger.Fatal("seed failed", zap.Error(err))
	}
	fields := make([]zap.Field, 0, len(out))
	for table, n := range out {
		fields = append(fields, zap.Int(table, n))
	}
	logger.Info("seed complete", fields...)
}
