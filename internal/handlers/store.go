package handlers

import (
	"context"

	"github.com/vancomm/wfc-server/internal/repository"
)

type CatalogStore interface {
	CreateCatalog(ctx context.Context, params repository.CreateCatalogParams) (*repository.Catalog, error)
	FetchCatalog(ctx context.Context, catalogId int64) (*repository.Catalog, error)
}

type GenerationStore interface {
	CreateGeneration(ctx context.Context, params repository.CreateGenerationParams) (*repository.Generation, error)
	FetchGeneration(ctx context.Context, generationId int64) (*repository.Generation, error)
}

var (
	_ CatalogStore    = (*repository.Queries)(nil)
	_ GenerationStore = (*repository.Queries)(nil)
)
