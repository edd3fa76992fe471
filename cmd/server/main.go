package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/vancomm/wfc-server/internal/app"
	"github.com/vancomm/wfc-server/internal/config"
	"github.com/vancomm/wfc-server/internal/database"
	"github.com/vancomm/wfc-server/internal/logging"
	"github.com/vancomm/wfc-server/internal/wfc"
)

func main() {
	development := config.Development()
	logger := logging.NewSlog(development)

	if err := logging.Setup(wfc.Log, development); err != nil {
		logger.Error("failed to set up generator logging", slog.Any("error", err))
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := app.New(logger, database.Migrations).Start(ctx); err != nil {
		logger.Error("failed to start", slog.Any("error", err))
		os.Exit(1)
	}
}
