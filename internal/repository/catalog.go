package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/vancomm/wfc-server/internal/wfc"
)

type Catalog struct {
	CatalogId    int64
	Digest       string
	PatternSize  int
	PatternCount int
	Data         []byte
	CreatedBy    *string
	CreatedAt    pgtype.Timestamptz
}

// Decode rebuilds the pattern catalog stored in c.
func (c Catalog) Decode() (*wfc.Catalog, error) {
	catalog, err := wfc.DecodeCatalog(c.Data)
	if err != nil {
		return nil, fmt.Errorf("catalog %d holds invalid data: %w", c.CatalogId, err)
	}
	return catalog, nil
}

type CreateCatalogParams struct {
	Catalog   *wfc.Catalog
	CreatedBy *string
}

/*
CreateCatalog stores a catalog under its digest. Catalogs are content
addressed: storing one that already exists returns the existing row.
*/
func (q Queries) CreateCatalog(ctx context.Context, params CreateCatalogParams) (*Catalog, error) {
	data, err := params.Catalog.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("unable to encode catalog: %w", err)
	}
	digest := params.Catalog.Digest()

	rows, _ := q.db.Query(
		ctx,
		`INSERT INTO catalog (
			digest, pattern_size, pattern_count, data, created_by
		)
		VALUES (
			@digest, @pattern_size, @pattern_count, @data, @created_by
		)
		RETURNING *;`,
		pgx.NamedArgs{
			"digest":        digest,
			"pattern_size":  params.Catalog.Size(),
			"pattern_count": params.Catalog.Len(),
			"data":          data,
			"created_by":    params.CreatedBy,
		},
	)
	catalog, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[Catalog])

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgerrcode.IsIntegrityConstraintViolation(pgErr.Code) {
		return q.FetchCatalogByDigest(ctx, digest)
	}

	return catalog, err
}

func (q Queries) FetchCatalog(ctx context.Context, catalogId int64) (*Catalog, error) {
	rows, _ := q.db.Query(
		ctx, "SELECT * FROM catalog WHERE catalog_id = $1", catalogId,
	)
	return pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[Catalog])
}

func (q Queries) FetchCatalogByDigest(ctx context.Context, digest string) (*Catalog, error) {
	rows, _ := q.db.Query(
		ctx, "SELECT * FROM catalog WHERE digest = $1", digest,
	)
	return pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[Catalog])
}
