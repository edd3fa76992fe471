package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"sync"

	"github.com/vancomm/wfc-server/internal/config"
	"github.com/vancomm/wfc-server/internal/grid"
	"github.com/vancomm/wfc-server/internal/metrics"
	"github.com/vancomm/wfc-server/internal/repository"
	"github.com/vancomm/wfc-server/internal/wfc"
)

type GenerationHandler struct {
	logger      *slog.Logger
	catalogs    CatalogStore
	generations GenerationStore
	ws          *config.WebSocket
	cfg         config.Generator
	metrics     *metrics.Metrics
	fallback    *wfc.Catalog

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewGenerationHandler(
	logger *slog.Logger,
	catalogs CatalogStore,
	generations GenerationStore,
	ws *config.WebSocket,
	cfg config.Generator,
	metrics *metrics.Metrics,
	rnd *rand.Rand,
) *GenerationHandler {
	return &GenerationHandler{
		logger:      logger,
		catalogs:    catalogs,
		generations: generations,
		ws:          ws,
		cfg:         cfg,
		metrics:     metrics,
		fallback:    wfc.DefaultCatalog(cfg.PatternSize),
		rnd:         rnd,
	}
}

type generationRequest struct {
	width, height int
	seed          uint64
	catalogId     *int64
	catalog       *wfc.Catalog
	cfg           wfc.Config
}

func (h *GenerationHandler) drawSeed() uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.rnd.Uint64()
}

// prepare resolves the request parameters. On failure it returns the
// status to answer with.
func (h *GenerationHandler) prepare(r *http.Request) (*generationRequest, int, error) {
	dto, err := ParseGenerateDTO(r.URL.Query(), h.cfg.MaxCells)
	if err != nil {
		return nil, http.StatusBadRequest, err
	}

	req := &generationRequest{
		width:     dto.Width,
		height:    dto.Height,
		catalogId: dto.CatalogId,
		catalog:   h.fallback,
		cfg:       h.cfg.Config,
	}

	if dto.Seed != nil {
		req.seed = *dto.Seed
	} else {
		req.seed = h.drawSeed()
	}

	if dto.Backtracking != nil {
		req.cfg.EnableBacktracking = *dto.Backtracking
	}

	if dto.CatalogId != nil {
		row, err := h.catalogs.FetchCatalog(r.Context(), *dto.CatalogId)
		if err != nil {
			return nil, fetchStatus(err), fmt.Errorf("unable to fetch catalog %d: %w", *dto.CatalogId, err)
		}
		if req.catalog, err = row.Decode(); err != nil {
			return nil, http.StatusInternalServerError, err
		}
		req.cfg.PatternSize = req.catalog.Size()
	}

	return req, 0, nil
}

func (h *GenerationHandler) run(
	ctx context.Context, req *generationRequest, observer wfc.Observer,
) (*repository.Generation, error) {
	gen := wfc.New(req.cfg)
	if observer != nil {
		gen = gen.WithObserver(observer)
	}

	out := grid.New(req.width, req.height)
	res := gen.GenerateWithPatterns(out, req.catalog, req.seed)
	h.metrics.ObserveResult(res)

	h.logger.Info(
		"generation finished",
		slog.String("state", res.State.String()),
		slog.Int("width", req.width),
		slog.Int("height", req.height),
		slog.Uint64("seed", req.seed),
		slog.Int("collapses", res.Collapses),
		slog.Int("backtracks", res.Backtracks),
		slog.Duration("elapsed", res.Elapsed),
	)

	generation, err := h.generations.CreateGeneration(ctx, repository.CreateGenerationParams{
		CatalogId:    req.catalogId,
		Seed:         req.seed,
		Backtracking: req.cfg.EnableBacktracking,
		Grid:         out,
		Result:       res,
	})
	if err != nil {
		return nil, fmt.Errorf("unable to store generation: %w", err)
	}
	return generation, nil
}

func (h *GenerationHandler) Generate(w http.ResponseWriter, r *http.Request) {
	req, status, err := h.prepare(r)
	if err != nil {
		if status == http.StatusInternalServerError {
			h.logger.Error("unable to prepare generation", slog.Any("error", err))
		}
		sendError(w, h.logger, status, err)
		return
	}

	generation, err := h.run(r.Context(), req, nil)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		h.logger.Error("unable to run generation", slog.Any("error", err))
		return
	}

	sendJSONOrLog(w, h.logger, http.StatusCreated, NewGenerationDTO(generation))
}

func (h *GenerationHandler) Fetch(w http.ResponseWriter, r *http.Request) {
	generationId, err := parseID(r)
	if err != nil {
		sendError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	generation, err := h.generations.FetchGeneration(r.Context(), generationId)
	if err != nil {
		status := fetchStatus(err)
		if status == http.StatusInternalServerError {
			h.logger.Error("unable to fetch generation from db", slog.Any("error", err))
		}
		w.WriteHeader(status)
		return
	}

	sendJSONOrLog(w, h.logger, http.StatusOK, NewGenerationDTO(generation))
}
