package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/circley-tech/storefront/internal/app"
	config "github.com/circley-tech/storefront/internal/cfg"
	"github.com/circley-tech/storefront/pkg/logger"
	"github.com/circley-tech/storefront/pkg/postgres"
)

func main() {
	migrateOnly := flag.Bool("migrate-only", false, "apply database migrations and exit")
	flag.Parse()

	log := logger.NewSlogLogger()

	cfg, err := config.Load(log)
	if err != nil {
		os.Exit(1)
	}

	if *migrateOnly {
		if err := migrate(cfg, log); err != nil {
			log.Errorf(err, "migration failed")
			os.Exit(1)
		}
		log.Infof("migrations applied")
		return
	}

	application, err := app.NewApp(cfg, log)
	if err != nil {
		log.Errorf(err, "failed to initialize app")
		os.Exit(1)
	}

	if err := application.Run(); err != nil {
		os.Exit(1)
	}
}

func migrate(cfg *config.Config, log logger.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := postgres.Connect(ctx, cfg.Db)
	if err != nil {
		return err
	}
	defer db.Close()

	return db.RunMigrations(log)
}
