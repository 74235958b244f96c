package port

import (
	"context"

	"houses_market/internal/domain/entity"
)

// MetadataFetcher resolves a token URI into its metadata document.
type MetadataFetcher interface {
	Fetch(ctx context.Context, uri string) (entity.TokenInfo, error)
}
