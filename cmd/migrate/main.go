// Command migrate applies or rolls back the embedded database migrations.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/golang-migrate/migrate/v4"
	"go.uber.org/zap"

	"github.com/ad-tracker/youtube-channel-harvester/internal/config"
	"github.com/ad-tracker/youtube-channel-harvester/internal/db"
	"github.com/ad-tracker/youtube-channel-harvester/pkg/logger"
)

func main() {
	var (
		direction string
		steps     int
	)

	flag.StringVar(&direction, "direction", "up", "Migration direction: up, down, or version")
	flag.IntVar(&steps, "steps", 0, "Number of steps to migrate (0 means all)")
	flag.Parse()

	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load .env: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.File); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()
	log := logger.Get()

	if err := cfg.Validate(); err != nil {
		log.Fatal("Database environment variables are not set.", zap.Error(err))
	}

	m, err := db.NewMigrator(cfg.Database.DB())
	if err != nil {
		log.Fatal("Failed to create migrate instance", zap.Error(err))
	}
	defer m.Close()

	switch direction {
	case "up":
		if steps > 0 {
			err = m.Steps(steps)
		} else {
			err = m.Up()
		}
	case "down":
		if steps > 0 {
			err = m.Steps(-steps)
		} else {
			err = m.Down()
		}
	case "version":
	default:
		log.Fatal("Invalid direction (must be 'up', 'down', or 'version')", zap.String("direction", direction))
	}

	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		log.Fatal("Migration failed", zap.Error(err))
	}

	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		log.Info("No migrations applied")
		return
	}
	if err != nil {
		log.Fatal("Failed to get migration version", zap.Error(err))
	}

	log.Info("Migration completed", zap.Uint("version", version), zap.Bool("dirty", dirty))
}
