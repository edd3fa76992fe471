package main

import (
	"log/slog"
	"os"

	"github.com/vancomm/wfc-server/internal/config"
	"github.com/vancomm/wfc-server/internal/database"
	"github.com/vancomm/wfc-server/internal/logging"
)

func main() {
	logger := logging.NewSlog(config.Development())

	url, err := config.DbURL()
	if err != nil {
		logger.Error("failed to read db config", slog.Any("error", err))
		os.Exit(1)
	}

	migrator, err := database.Migrate(url, database.Migrations)
	if err != nil {
		logger.Error("failed to migrate db", slog.Any("error", err))
		os.Exit(1)
	}
	defer migrator.Close()

	version, dirty, err := migrator.Version()
	if err != nil {
		logger.Error("failed to check migration version", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("migration successful", slog.Uint64("version", uint64(version)), slog.Bool("dirty", dirty))
}
