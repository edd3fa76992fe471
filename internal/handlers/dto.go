package handlers

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/gorilla/schema"

	"github.com/vancomm/wfc-server/internal/repository"
	"github.com/vancomm/wfc-server/internal/wfc"
)

const maxPatternSize = 8

var (
	ErrBadDimensions  = errors.New("width and height must be positive")
	ErrTooManyCells   = errors.New("requested grid is too large")
	ErrBadPatternSize = fmt.Errorf("pattern_size must be within [1, %d]", maxPatternSize)
)

var decoder = newDecoder()

func newDecoder() *schema.Decoder {
	dec := schema.NewDecoder()
	dec.IgnoreUnknownKeys(true)
	return dec
}

type CreateCatalogDTO struct {
	PatternSize int `schema:"pattern_size"`
}

// ParseCreateCatalogDTO falls back to defaultSize when pattern_size is
// absent.
func ParseCreateCatalogDTO(src map[string][]string, defaultSize int) (CreateCatalogDTO, error) {
	dto := CreateCatalogDTO{PatternSize: defaultSize}
	if err := decoder.Decode(&dto, src); err != nil {
		return dto, err
	}
	if dto.PatternSize < 1 || dto.PatternSize > maxPatternSize {
		return dto, ErrBadPatternSize
	}
	return dto, nil
}

type GenerateDTO struct {
	Width        int     `schema:"width,required"`
	Height       int     `schema:"height,required"`
	Seed         *uint64 `schema:"seed"`
	CatalogId    *int64  `schema:"catalog_id"`
	Backtracking *bool   `schema:"backtracking"`
}

func ParseGenerateDTO(src map[string][]string, maxCells int) (GenerateDTO, error) {
	var dto GenerateDTO
	if err := decoder.Decode(&dto, src); err != nil {
		return dto, err
	}
	if dto.Width < 1 || dto.Height < 1 {
		return dto, ErrBadDimensions
	}
	if dto.Width > maxCells/dto.Height {
		return dto, fmt.Errorf("%w (%dx%d, at most %d cells)", ErrTooManyCells, dto.Width, dto.Height, maxCells)
	}
	return dto, nil
}

type CatalogDTO struct {
	CatalogId    string     `json:"catalog_id"`
	Digest       string     `json:"digest"`
	PatternSize  int        `json:"pattern_size"`
	PatternCount int        `json:"pattern_count"`
	Patterns     [][]string `json:"patterns"`
	CreatedBy    *string    `json:"created_by,omitempty"`
	CreatedAt    int64      `json:"created_at"`
}

func NewCatalogDTO(row *repository.Catalog, c *wfc.Catalog) *CatalogDTO {
	patterns := make([][]string, 0, c.Len())
	for _, p := range c.Patterns() {
		patterns = append(patterns, p.Rows())
	}
	return &CatalogDTO{
		CatalogId:    strconv.FormatInt(row.CatalogId, 10),
		Digest:       row.Digest,
		PatternSize:  row.PatternSize,
		PatternCount: row.PatternCount,
		Patterns:     patterns,
		CreatedBy:    row.CreatedBy,
		CreatedAt:    row.CreatedAt.Time.UnixMilli(),
	}
}

type StatsDTO struct {
	Collapses        int     `json:"collapses"`
	Contradictions   int     `json:"contradictions"`
	Backtracks       int     `json:"backtracks"`
	MaxStackDepth    int     `json:"max_stack_depth"`
	PropagationSteps int     `json:"propagation_steps"`
	ElapsedMs        float64 `json:"elapsed_ms"`
}

type GenerationDTO struct {
	GenerationId string   `json:"generation_id"`
	CatalogId    *string  `json:"catalog_id,omitempty"`
	Width        int      `json:"width"`
	Height       int      `json:"height"`
	Seed         string   `json:"seed"`
	Backtracking bool     `json:"backtracking"`
	State        string   `json:"state"`
	Grid         []string `json:"grid"`
	Stats        StatsDTO `json:"stats"`
	CreatedAt    int64    `json:"created_at"`
}

func NewGenerationDTO(g *repository.Generation) *GenerationDTO {
	var catalogId *string
	if g.CatalogId != nil {
		id := strconv.FormatInt(*g.CatalogId, 10)
		catalogId = &id
	}
	return &GenerationDTO{
		GenerationId: strconv.FormatInt(g.GenerationId, 10),
		CatalogId:    catalogId,
		Width:        g.Width,
		Height:       g.Height,
		Seed:         strconv.FormatUint(g.UnsignedSeed(), 10),
		Backtracking: g.Backtracking,
		State:        g.State,
		Grid:         g.Rows(),
		Stats: StatsDTO{
			Collapses:        g.Collapses,
			Contradictions:   g.Contradictions,
			Backtracks:       g.Backtracks,
			MaxStackDepth:    g.MaxStackDepth,
			PropagationSteps: g.PropagationSteps,
			ElapsedMs:        float64(g.ElapsedUs) / 1000,
		},
		CreatedAt: g.CreatedAt.Time.UnixMilli(),
	}
}

// EventDTO is one websocket message of a streamed generation.
type EventDTO struct {
	Kind       string         `json:"kind"`
	X          int            `json:"x"`
	Y          int            `json:"y"`
	Pattern    int            `json:"pattern"`
	Depth      int            `json:"depth"`
	Generation *GenerationDTO `json:"generation,omitempty"`
	Error      string         `json:"error,omitempty"`
}

func NewEventDTO(e wfc.Event) EventDTO {
	dto := EventDTO{Kind: e.Kind.String(), Depth: e.Depth, Pattern: -1}
	if e.Kind == wfc.EventCollapse {
		dto.X, dto.Y, dto.Pattern = e.X, e.Y, e.Pattern
	}
	return dto
}
