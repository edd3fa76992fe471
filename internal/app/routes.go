package app

import (
	"hash/maphash"
	"math/rand/v2"
	"net/http"

	"github.com/vancomm/wfc-server/internal/handlers"
	"github.com/vancomm/wfc-server/internal/middleware"
	"github.com/vancomm/wfc-server/internal/repository"
)

func createRand() *rand.Rand {
	return rand.New(rand.NewPCG(
		new(maphash.Hash).Sum64(), new(maphash.Hash).Sum64(),
	))
}

func (a *App) loadRoutes() {
	repo := repository.New(a.db)

	catalog := handlers.NewCatalogHandler(
		a.logger, repo, a.metrics, a.generator.PatternSize,
	)
	generation := handlers.NewGenerationHandler(
		a.logger, repo, repo, a.ws, *a.generator, a.metrics, createRand(),
	)

	a.router.Handle("POST /catalog", middleware.Wrap(
		http.HandlerFunc(catalog.Create),
		middleware.Auth(a.logger, a.jwt),
	))
	a.router.HandleFunc("GET /catalog/{id}", catalog.Fetch)
	a.router.HandleFunc("POST /generate", generation.Generate)
	a.router.HandleFunc("GET /generate/connect", generation.ConnectWS)
	a.router.HandleFunc("GET /generation/{id}", generation.Fetch)
	a.router.Handle("GET /metrics", a.metrics.Handler())
}
