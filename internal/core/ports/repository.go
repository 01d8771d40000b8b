package ports

import (
	"context"

	"github.com/ewilliams-labs/siren/internal/core/domain"
)

// CatalogRepository persists the catalog snapshot used for search.
type CatalogRepository interface {
	SaveCatalog(ctx context.Context, c domain.Catalog) error
	LoadCatalog(ctx context.Context) (domain.Catalog, error)
}

// LyricCache keeps raw lyric text by source URL.
type LyricCache interface {
	Get(url string) (string, bool, error)
	Put(url, text string) error
}
