package encoder

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"renditionmaker/logger"
	"renditionmaker/models"
)

const defaultSpeed = 4

// RenditionStore persists a generated rendition on its asset.
type RenditionStore interface {
	AddRendition(ctx context.Context, path string, r models.Rendition) error
}

// Publisher copies a generated rendition file to external destinations.
type Publisher interface {
	Publish(ctx context.Context, asset *models.Asset, file string) error
}

// Generator turns a RenditionRequest into a stored, published rendition file.
type Generator struct {
	store     RenditionStore
	publisher Publisher
	outputDir string
	lookup    func(mimeType string) (EncodeFunc, bool)
}

// NewGenerator writes renditions under outputDir/{asset id}/. publisher may be nil.
func NewGenerator(store RenditionStore, publisher Publisher, outputDir string) *Generator {
	return &Generator{store: store, publisher: publisher, outputDir: outputDir, lookup: Get}
}

func (g *Generator) Generate(ctx context.Context, asset *models.Asset, req models.RenditionRequest) error {
	original, ok := asset.Rendition(models.OriginalRendition)
	if !ok || original.File == "" {
		return fmt.Errorf("asset %s has no original rendition", asset.Path)
	}

	target := TargetMimeType(asset.MimeType, req.MimeType, req.MimeTypesToKeep)
	enc, ok := g.lookup(target)
	if !ok {
		return fmt.Errorf("encoder for %s not found", target)
	}

	dir := filepath.Join(g.outputDir, asset.ID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create rendition directory: %w", err)
	}
	name := RenditionName(req.Dimension.Width, req.Dimension.Height, target)
	out := filepath.Join(dir, name)

	opts := EncodeOptions{
		Width:      req.Dimension.Width,
		Height:     req.Dimension.Height,
		Quality:    req.Quality,
		Speed:      defaultSpeed,
		CenterCrop: req.Dimension.CenterCrop,
	}
	if err := enc(ctx, original.File, out, opts); err != nil {
		return fmt.Errorf("encoding %s failed: %w", name, err)
	}

	rendition := models.Rendition{
		Name:      name,
		File:      out,
		MimeType:  target,
		Width:     req.Dimension.Width,
		Height:    req.Dimension.Height,
		CreatedAt: time.Now(),
	}
	if req.UserID != "" {
		rendition.Properties = map[string]string{models.PropLastModifiedBy: req.UserID}
	}
	if err := g.store.AddRendition(ctx, asset.Path, rendition); err != nil {
		return fmt.Errorf("failed to record rendition %s: %w", name, err)
	}

	if g.publisher != nil {
		if err := g.publisher.Publish(ctx, asset, out); err != nil {
			return fmt.Errorf("failed to publish rendition %s: %w", name, err)
		}
	}

	logger.Infof("generated rendition %s for %s", name, asset.Path)
	return nil
}
