package job

import (
	"context"

	"renditionmaker/models"
)

// AssetStore resolves assets and persists their content metadata.
type AssetStore interface {
	// Resolve returns the asset stored under path, or an error wrapping
	// assets.ErrNotFound when there is none.
	Resolve(ctx context.Context, path string) (*models.Asset, error)
	// SetContentMetadata records who last modified the asset's content and when.
	SetContentMetadata(ctx context.Context, path string, rec models.AttributionRecord) error
}

// RenditionGenerator produces and persists one rendition of an asset.
type RenditionGenerator interface {
	Generate(ctx context.Context, asset *models.Asset, req models.RenditionRequest) error
}
