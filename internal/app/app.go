package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"github.com/vancomm/wfc-server/internal/config"
	"github.com/vancomm/wfc-server/internal/database"
	"github.com/vancomm/wfc-server/internal/metrics"
	"github.com/vancomm/wfc-server/internal/middleware"
)

type App struct {
	logger     *slog.Logger
	router     *http.ServeMux
	db         *pgxpool.Pool
	ws         *config.WebSocket
	jwt        *config.JWT
	generator  *config.Generator
	metrics    *metrics.Metrics
	migrations fs.FS
}

func New(logger *slog.Logger, migrations fs.FS) *App {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	app := &App{
		logger:     logger,
		router:     http.NewServeMux(),
		metrics:    metrics.New(registry),
		migrations: migrations,
	}

	return app
}

func (a *App) loadConfig() error {
	var err error

	if a.ws, err = config.NewWebSocket(); err != nil {
		return fmt.Errorf("failed to read ws config: %w", err)
	}
	if a.jwt, err = config.NewJWT(); err != nil {
		return fmt.Errorf("failed to read jwt config: %w", err)
	}
	if a.generator, err = config.NewGenerator(); err != nil {
		return fmt.Errorf("failed to read generator config: %w", err)
	}

	return nil
}

// Handler is the root handler with every route and middleware applied.
func (a *App) Handler() http.Handler {
	var h http.Handler = a.router
	if base := config.BasePath(); base != "" {
		h = http.StripPrefix(base, h)
	}
	return middleware.Wrap(
		h,
		middleware.Recover(a.logger),
		middleware.Logging(a.logger),
		middleware.Cors(config.CorsOrigins()...),
	)
}

func (a *App) Start(ctx context.Context) error {
	if err := a.loadConfig(); err != nil {
		return err
	}

	db, _, err := database.ConnectAndMigrate(ctx, a.migrations)
	if err != nil {
		return fmt.Errorf("unable to connect to db: %w", err)
	}
	defer db.Close()
	a.db = db

	a.loadRoutes()

	server := &http.Server{
		Addr:              config.Addr(),
		Handler:           a.Handler(),
		ReadHeaderTimeout: time.Second * 15,
		IdleTimeout:       time.Second * 60,
		BaseContext: func(l net.Listener) context.Context {
			return ctx
		},
	}

	a.logger.Info("server listening", slog.String("addr", server.Addr))

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("unable to listen and serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		sCtx, cancel := context.WithTimeout(context.Background(), time.Second*30)
		defer cancel()
		return server.Shutdown(sCtx)
	})

	return g.Wait()
}
