package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/vancomm/wfc-server/internal/wfc"
)

const (
	defaultMaxCells      = 256 * 256
	defaultMaxBacktracks = 4 * defaultMaxCells
)

// Generator holds the server-side defaults for generation requests.
type Generator struct {
	wfc.Config
	// MaxCells bounds width*height of a single request.
	MaxCells int
}

func NewGenerator() (*Generator, error) {
	cfg := wfc.DefaultConfig()
	// requests share the server, so rollbacks are capped unless set to 0
	cfg.MaxBacktracks = defaultMaxBacktracks

	var err error
	if cfg.PatternSize, err = lookupInt("WFC_PATTERN_SIZE", cfg.PatternSize); err != nil {
		return nil, err
	}
	if cfg.MaxDepth, err = lookupInt("WFC_MAX_DEPTH", cfg.MaxDepth); err != nil {
		return nil, err
	}
	if cfg.MaxBacktracks, err = lookupInt("WFC_MAX_BACKTRACKS", cfg.MaxBacktracks); err != nil {
		return nil, err
	}

	if value, ok := os.LookupEnv("WFC_BACKTRACKING"); ok {
		if cfg.EnableBacktracking, err = strconv.ParseBool(value); err != nil {
			return nil, fmt.Errorf("unable to parse WFC_BACKTRACKING: %w", err)
		}
	}
	if value, ok := os.LookupEnv("WFC_FLOOR_WEIGHT"); ok {
		if cfg.FloorWeight, err = strconv.ParseFloat(value, 64); err != nil {
			return nil, fmt.Errorf("unable to parse WFC_FLOOR_WEIGHT: %w", err)
		}
	}

	maxCells, err := lookupInt("WFC_MAX_CELLS", defaultMaxCells)
	if err != nil {
		return nil, err
	}
	if maxCells < 1 {
		return nil, fmt.Errorf("WFC_MAX_CELLS must be positive (got %d)", maxCells)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid generator config: %w", err)
	}

	return &Generator{Config: cfg, MaxCells: maxCells}, nil
}
