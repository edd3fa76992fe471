package repository

import (
	"context"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/vancomm/wfc-server/internal/grid"
	"github.com/vancomm/wfc-server/internal/wfc"
)

type Generation struct {
	GenerationId     int64
	CatalogId        *int64
	Width            int
	Height           int
	Seed             int64
	Backtracking     bool
	State            string
	Collapses        int
	Contradictions   int
	Backtracks       int
	MaxStackDepth    int
	PropagationSteps int
	ElapsedUs        int64
	Grid             string
	CreatedAt        pgtype.Timestamptz
}

// Seeds are stored bit for bit in a signed column.
func SeedToDB(seed uint64) int64   { return int64(seed) }
func SeedFromDB(seed int64) uint64 { return uint64(seed) }

func (g Generation) UnsignedSeed() uint64 {
	return SeedFromDB(g.Seed)
}

func (g Generation) Rows() []string {
	if g.Grid == "" {
		return []string{}
	}
	return strings.Split(g.Grid, "\n")
}

func (g Generation) Elapsed() time.Duration {
	return time.Duration(g.ElapsedUs) * time.Microsecond
}

type CreateGenerationParams struct {
	CatalogId    *int64
	Seed         uint64
	Backtracking bool
	Grid         *grid.Grid
	Result       wfc.Result
}

func (q Queries) CreateGeneration(ctx context.Context, params CreateGenerationParams) (*Generation, error) {
	args := pgx.NamedArgs{
		"catalog_id":        params.CatalogId,
		"width":             params.Grid.Width,
		"height":            params.Grid.Height,
		"seed":              SeedToDB(params.Seed),
		"backtracking":      params.Backtracking,
		"state":             params.Result.State.String(),
		"collapses":         params.Result.Collapses,
		"contradictions":    params.Result.Contradictions,
		"backtracks":        params.Result.Backtracks,
		"max_stack_depth":   params.Result.MaxStackDepth,
		"propagation_steps": params.Result.PropagationSteps,
		"elapsed_us":        params.Result.Elapsed.Microseconds(),
		"grid":              strings.Join(params.Grid.Rows(), "\n"),
	}

	rows, _ := q.db.Query(
		ctx,
		`INSERT INTO generation (
			catalog_id, width, height, seed, backtracking, state,
			collapses, contradictions, backtracks, max_stack_depth,
			propagation_steps, elapsed_us, grid
		)
		VALUES (
			@catalog_id, @width, @height, @seed, @backtracking, @state,
			@collapses, @contradictions, @backtracks, @max_stack_depth,
			@propagation_steps, @elapsed_us, @grid
		)
		RETURNING *;`,
		args,
	)
	return pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[Generation])
}

func (q Queries) FetchGeneration(ctx context.Context, generationId int64) (*Generation, error) {
	rows, _ := q.db.Query(
		ctx, "SELECT * FROM generation WHERE generation_id = $1", generationId,
	)
	return pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[Generation])
}
