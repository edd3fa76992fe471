package handlers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vancomm/wfc-server/internal/config"
	"github.com/vancomm/wfc-server/internal/metrics"
	"github.com/vancomm/wfc-server/internal/middleware"
	"github.com/vancomm/wfc-server/internal/repository"
	"github.com/vancomm/wfc-server/internal/wfc"
)

const roomSample = `
#####
#...#
#...#
#...#
#####
`

type memoryStore struct {
	mu          sync.Mutex
	catalogs    []*repository.Catalog
	generations []*repository.Generation
}

func now() pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: time.Now(), Valid: true}
}

func (s *memoryStore) CreateCatalog(ctx context.Context, params repository.CreateCatalogParams) (*repository.Catalog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	digest := params.Catalog.Digest()
	for _, c := range s.catalogs {
		if c.Digest == digest {
			return c, nil
		}
	}
	data, err := params.Catalog.MarshalBinary()
	if err != nil {
		return nil, err
	}
	row := &repository.Catalog{
		CatalogId:    int64(len(s.catalogs) + 1),
		Digest:       digest,
		PatternSize:  params.Catalog.Size(),
		PatternCount: params.Catalog.Len(),
		Data:         data,
		CreatedBy:    params.CreatedBy,
		CreatedAt:    now(),
	}
	s.catalogs = append(s.catalogs, row)
	return row, nil
}

func (s *memoryStore) FetchCatalog(ctx context.Context, catalogId int64) (*repository.Catalog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if catalogId < 1 || int(catalogId) > len(s.catalogs) {
		return nil, pgx.ErrNoRows
	}
	return s.catalogs[catalogId-1], nil
}

func (s *memoryStore) CreateGeneration(ctx context.Context, params repository.CreateGenerationParams) (*repository.Generation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row := &repository.Generation{
		GenerationId:     int64(len(s.generations) + 1),
		CatalogId:        params.CatalogId,
		Width:            params.Grid.Width,
		Height:           params.Grid.Height,
		Seed:             repository.SeedToDB(params.Seed),
		Backtracking:     params.Backtracking,
		State:            params.Result.State.String(),
		Collapses:        params.Result.Collapses,
		Contradictions:   params.Result.Contradictions,
		Backtracks:       params.Result.Backtracks,
		MaxStackDepth:    params.Result.MaxStackDepth,
		PropagationSteps: params.Result.PropagationSteps,
		ElapsedUs:        params.Result.Elapsed.Microseconds(),
		Grid:             strings.Join(params.Grid.Rows(), "\n"),
		CreatedAt:        now(),
	}
	s.generations = append(s.generations, row)
	return row, nil
}

func (s *memoryStore) FetchGeneration(ctx context.Context, generationId int64) (*repository.Generation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if generationId < 1 || int(generationId) > len(s.generations) {
		return nil, pgx.ErrNoRows
	}
	return s.generations[generationId-1], nil
}

func (s *memoryStore) generationCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.generations)
}

func newTestMux(t *testing.T, maxCells int) (*http.ServeMux, *memoryStore) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := &memoryStore{}
	m := metrics.New(prometheus.NewRegistry())

	ws, err := config.NewWebSocket()
	require.NoError(t, err)

	cfg := config.Generator{Config: wfc.DefaultConfig(), MaxCells: maxCells}
	catalogs := NewCatalogHandler(logger, store, m, cfg.PatternSize)
	generations := NewGenerationHandler(
		logger, store, store, ws, cfg, m, rand.New(rand.NewPCG(1, 2)),
	)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /catalog", catalogs.Create)
	mux.HandleFunc("GET /catalog/{id}", catalogs.Fetch)
	mux.HandleFunc("POST /generate", generations.Generate)
	mux.HandleFunc("GET /generation/{id}", generations.Fetch)
	mux.HandleFunc("GET /generate/connect", generations.ConnectWS)
	return mux, store
}

func serve(mux http.Handler, r *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, r)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestCreateCatalog(t *testing.T) {
	mux, _ := newTestMux(t, 10000)

	rec := serve(mux, httptest.NewRequest("POST", "/catalog?pattern_size=3", strings.NewReader(roomSample)))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	dto := decode[CatalogDTO](t, rec)
	assert.Equal(t, "1", dto.CatalogId)
	assert.Equal(t, 3, dto.PatternSize)
	assert.GreaterOrEqual(t, dto.PatternCount, 2)
	assert.Len(t, dto.Patterns, dto.PatternCount)
	assert.Equal(t, []string{"###", "#..", "#.."}, dto.Patterns[0])
	assert.Nil(t, dto.CreatedBy)

	// same sample, same catalog
	rec = serve(mux, httptest.NewRequest("POST", "/catalog?pattern_size=3", strings.NewReader(roomSample)))
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, dto.CatalogId, decode[CatalogDTO](t, rec).CatalogId)
}

func TestCreateCatalogDefaultsPatternSize(t *testing.T) {
	mux, _ := newTestMux(t, 10000)
	rec := serve(mux, httptest.NewRequest("POST", "/catalog", strings.NewReader(roomSample)))
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, wfc.DefaultConfig().PatternSize, decode[CatalogDTO](t, rec).PatternSize)
}

func TestCreateCatalogRecordsClient(t *testing.T) {
	mux, _ := newTestMux(t, 10000)
	r := httptest.NewRequest("POST", "/catalog", strings.NewReader(roomSample))
	r = r.WithContext(context.WithValue(
		r.Context(), middleware.CtxClientClaims, &config.ClientClaims{Client: "mapper"},
	))
	rec := serve(mux, r)
	require.Equal(t, http.StatusCreated, rec.Code)
	dto := decode[CatalogDTO](t, rec)
	require.NotNil(t, dto.CreatedBy)
	assert.Equal(t, "mapper", *dto.CreatedBy)
}

func TestCreateCatalogRejects(t *testing.T) {
	mux, _ := newTestMux(t, 10000)
	tests := []struct {
		name, query, body string
		status            int
	}{
		{"zero size", "pattern_size=0", roomSample, http.StatusBadRequest},
		{"huge size", "pattern_size=9", roomSample, http.StatusBadRequest},
		{"size not a number", "pattern_size=three", roomSample, http.StatusBadRequest},
		{"empty sample", "", "\n\n", http.StatusBadRequest},
		{"unknown cell", "", "#x#\n###", http.StatusBadRequest},
		{"ragged sample", "", "###\n##", http.StatusBadRequest},
		{"too large", "", strings.Repeat("#", maxSampleBytes+1), http.StatusRequestEntityTooLarge},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			rec := serve(mux, httptest.NewRequest("POST", "/catalog?"+test.query, strings.NewReader(test.body)))
			assert.Equal(t, test.status, rec.Code)
			assert.Contains(t, rec.Body.String(), `"error"`)
		})
	}
}

func TestFetchCatalog(t *testing.T) {
	mux, _ := newTestMux(t, 10000)

	assert.Equal(t, http.StatusNotFound, serve(mux, httptest.NewRequest("GET", "/catalog/1", nil)).Code)
	assert.Equal(t, http.StatusBadRequest, serve(mux, httptest.NewRequest("GET", "/catalog/abc", nil)).Code)
	assert.Equal(t, http.StatusBadRequest, serve(mux, httptest.NewRequest("GET", "/catalog/0", nil)).Code)

	created := serve(mux, httptest.NewRequest("POST", "/catalog?pattern_size=2", strings.NewReader(roomSample)))
	require.Equal(t, http.StatusCreated, created.Code)

	rec := serve(mux, httptest.NewRequest("GET", "/catalog/1", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, decode[CatalogDTO](t, created), decode[CatalogDTO](t, rec))
}

func assertGridShape(t *testing.T, dto GenerationDTO) {
	t.Helper()
	require.Len(t, dto.Grid, dto.Height)
	for y, row := range dto.Grid {
		require.Len(t, row, dto.Width)
		for x, c := range row {
			if x == 0 || y == 0 || x == dto.Width-1 || y == dto.Height-1 {
				assert.Equal(t, '#', c, "border cell %d:%d", x, y)
			}
		}
	}
}

func TestGenerate(t *testing.T) {
	mux, _ := newTestMux(t, 10000)

	rec := serve(mux, httptest.NewRequest("POST", "/generate?width=12&height=10&seed=7", nil))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	first := decode[GenerationDTO](t, rec)

	assert.Equal(t, "1", first.GenerationId)
	assert.Nil(t, first.CatalogId)
	assert.Equal(t, "7", first.Seed)
	assert.True(t, first.Backtracking)
	assert.Contains(t, []string{"success", "abandoned"}, first.State)
	assertGridShape(t, first)

	rec = serve(mux, httptest.NewRequest("POST", "/generate?width=12&height=10&seed=7", nil))
	require.Equal(t, http.StatusCreated, rec.Code)
	second := decode[GenerationDTO](t, rec)
	assert.Equal(t, first.Grid, second.Grid)
	assert.Equal(t, first.State, second.State)
	assert.Equal(t, first.Stats.Collapses, second.Stats.Collapses)

	rec = serve(mux, httptest.NewRequest("GET", "/generation/1", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, first.Grid, decode[GenerationDTO](t, rec).Grid)

	assert.Equal(t, http.StatusNotFound, serve(mux, httptest.NewRequest("GET", "/generation/3", nil)).Code)
}

func TestGenerateWithoutBacktracking(t *testing.T) {
	mux, _ := newTestMux(t, 10000)
	rec := serve(mux, httptest.NewRequest("POST", "/generate?width=9&height=9&seed=1&backtracking=false", nil))
	require.Equal(t, http.StatusCreated, rec.Code)
	dto := decode[GenerationDTO](t, rec)
	assert.False(t, dto.Backtracking)
	assert.Zero(t, dto.Stats.Backtracks)
	assert.Zero(t, dto.Stats.MaxStackDepth)
}

func TestGenerateDrawsSeed(t *testing.T) {
	mux, _ := newTestMux(t, 10000)
	rec := serve(mux, httptest.NewRequest("POST", "/generate?width=6&height=6", nil))
	require.Equal(t, http.StatusCreated, rec.Code)
	_, err := strconv.ParseUint(decode[GenerationDTO](t, rec).Seed, 10, 64)
	assert.NoError(t, err)
}

func TestGenerateWithCatalog(t *testing.T) {
	mux, _ := newTestMux(t, 10000)
	created := serve(mux, httptest.NewRequest("POST", "/catalog?pattern_size=3", strings.NewReader(roomSample)))
	require.Equal(t, http.StatusCreated, created.Code)

	rec := serve(mux, httptest.NewRequest("POST", "/generate?width=9&height=9&seed=1&catalog_id=1", nil))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	dto := decode[GenerationDTO](t, rec)
	require.NotNil(t, dto.CatalogId)
	assert.Equal(t, "1", *dto.CatalogId)
	assert.Len(t, dto.Grid, 9)
}

func TestGenerateRejects(t *testing.T) {
	mux, _ := newTestMux(t, 100)
	tests := []struct {
		name, query string
		status      int
	}{
		{"missing width", "height=5", http.StatusBadRequest},
		{"zero height", "width=5&height=0", http.StatusBadRequest},
		{"negative width", "width=-5&height=5", http.StatusBadRequest},
		{"too many cells", "width=11&height=10", http.StatusBadRequest},
		{"bad seed", "width=5&height=5&seed=-1", http.StatusBadRequest},
		{"unknown catalog", "width=5&height=5&catalog_id=42", http.StatusNotFound},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			rec := serve(mux, httptest.NewRequest("POST", "/generate?"+test.query, nil))
			assert.Equal(t, test.status, rec.Code, rec.Body.String())
		})
	}
}

func TestConnectWS(t *testing.T) {
	mux, store := newTestMux(t, 10000)
	server := httptest.NewServer(mux)
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/generate/connect?width=10&height=8&seed=3"
	c, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer c.Close()

	counts := make(map[string]int)
	var done EventDTO
	for {
		var e EventDTO
		require.NoError(t, c.ReadJSON(&e))
		if e.Kind == "done" {
			done = e
			break
		}
		counts[e.Kind]++
		if e.Kind == "collapse" {
			assert.GreaterOrEqual(t, e.Pattern, 0)
		}
	}

	require.NotNil(t, done.Generation)
	assert.Equal(t, done.Generation.Stats.Collapses, counts["collapse"])
	assert.Equal(t, done.Generation.Stats.Backtracks, counts["backtrack"])
	assert.Equal(t, done.Generation.Stats.Contradictions, counts["contradiction"])
	assertGridShape(t, *done.Generation)
	assert.Equal(t, 1, store.generationCount())

	_, _, err = c.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "got %v", err)
}

func TestConnectWSRejectsBeforeUpgrade(t *testing.T) {
	mux, _ := newTestMux(t, 10000)
	server := httptest.NewServer(mux)
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/generate/connect?width=0&height=8"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
