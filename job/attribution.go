package job

import (
	"context"
	"fmt"
	"strings"
	"time"

	"renditionmaker/models"
)

// ResolveAttribution picks the user to credit for the asset's content: the
// original rendition's last modifier when set, otherwise the workflow actor.
func ResolveAttribution(asset *models.Asset, actorID string, now time.Time) models.AttributionRecord {
	user := actorID
	if original, ok := asset.Rendition(models.OriginalRendition); ok {
		if by := original.Properties[models.PropLastModifiedBy]; strings.TrimSpace(by) != "" {
			user = by
		}
	}
	return models.AttributionRecord{UserID: user, Timestamp: now}
}

// StampAttribution resolves the attribution and writes it onto the asset.
func StampAttribution(ctx context.Context, store AssetStore, asset *models.Asset, actorID string, now time.Time) (models.AttributionRecord, error) {
	rec := ResolveAttribution(asset, actorID, now)
	if err := store.SetContentMetadata(ctx, asset.Path, rec); err != nil {
		return rec, fmt.Errorf("failed to stamp attribution on %s: %w", asset.Path, err)
	}
	return rec, nil
}
