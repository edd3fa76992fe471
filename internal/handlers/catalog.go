package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/vancomm/wfc-server/internal/grid"
	"github.com/vancomm/wfc-server/internal/metrics"
	"github.com/vancomm/wfc-server/internal/middleware"
	"github.com/vancomm/wfc-server/internal/repository"
	"github.com/vancomm/wfc-server/internal/wfc"
)

const maxSampleBytes = 1 << 20

type CatalogHandler struct {
	logger      *slog.Logger
	store       CatalogStore
	metrics     *metrics.Metrics
	patternSize int
}

func NewCatalogHandler(
	logger *slog.Logger,
	store CatalogStore,
	metrics *metrics.Metrics,
	patternSize int,
) *CatalogHandler {
	return &CatalogHandler{
		logger:      logger,
		store:       store,
		metrics:     metrics,
		patternSize: patternSize,
	}
}

/*
Create extracts a pattern catalog from the sample in the request body,
one row per line with '#' for wall and '.' for floor, and stores it.
Uploading a sample whose catalog is already stored returns that catalog.
*/
func (h CatalogHandler) Create(w http.ResponseWriter, r *http.Request) {
	dto, err := ParseCreateCatalogDTO(r.URL.Query(), h.patternSize)
	if err != nil {
		sendError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxSampleBytes))
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			sendError(w, h.logger, http.StatusRequestEntityTooLarge, err)
			return
		}
		sendError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	sample, err := grid.Parse(string(body))
	if err != nil {
		sendError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	catalog := wfc.Extract(sample, dto.PatternSize)
	h.metrics.CatalogExtracted()

	params := repository.CreateCatalogParams{Catalog: catalog}
	if claims, ok := middleware.ClientClaims(r.Context()); ok {
		params.CreatedBy = &claims.Client
	}

	row, err := h.store.CreateCatalog(r.Context(), params)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		h.logger.Error("unable to store catalog", slog.Any("error", err))
		return
	}

	h.logger.Debug(
		"catalog stored",
		slog.Int64("catalogId", row.CatalogId),
		slog.Int("patterns", catalog.Len()),
		slog.String("digest", row.Digest),
	)

	sendJSONOrLog(w, h.logger, http.StatusCreated, NewCatalogDTO(row, catalog))
}

func (h CatalogHandler) Fetch(w http.ResponseWriter, r *http.Request) {
	catalogId, err := parseID(r)
	if err != nil {
		sendError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	row, err := h.store.FetchCatalog(r.Context(), catalogId)
	if err != nil {
		status := fetchStatus(err)
		if status == http.StatusInternalServerError {
			h.logger.Error("unable to fetch catalog from db", slog.Any("error", err))
		}
		w.WriteHeader(status)
		return
	}

	catalog, err := row.Decode()
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		h.logger.Error("db returned invalid catalog.data", slog.Any("error", err))
		return
	}

	sendJSONOrLog(w, h.logger, http.StatusOK, NewCatalogDTO(row, catalog))
}
