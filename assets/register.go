package assets

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"renditionmaker/logger"
	"renditionmaker/models"
)

// Upload describes a new asset original.
type Upload struct {
	Path     string // repository path, e.g. /content/dam/site/hero.png
	Filename string
	MimeType string // detected from content when empty
	UserID   string
}

// Register saves the original file under originalsDir and stores the asset
// with its "original" rendition attributed to the uploading user.
func (s *Store) Register(ctx context.Context, up Upload, content io.Reader, originalsDir string) (*models.Asset, error) {
	if up.Path == "" || up.Filename == "" {
		return nil, fmt.Errorf("asset path and filename required")
	}

	id := IDForPath(up.Path)
	dir := filepath.Join(originalsDir, id)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create originals directory: %w", err)
	}

	dest := filepath.Join(dir, filepath.Base(up.Filename))
	f, err := os.Create(dest)
	if err != nil {
		return nil, fmt.Errorf("failed to create original %s: %w", dest, err)
	}
	defer f.Close()

	// sniff the first 512 bytes while copying
	head := make([]byte, 512)
	n, err := io.ReadFull(content, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	head = head[:n]
	if _, err := f.Write(head); err != nil {
		return nil, fmt.Errorf("failed to write original %s: %w", dest, err)
	}
	if _, err := io.Copy(f, content); err != nil {
		return nil, fmt.Errorf("failed to write original %s: %w", dest, err)
	}

	mimeType := up.MimeType
	if mimeType == "" {
		mimeType = http.DetectContentType(head)
	}

	now := time.Now()
	props := map[string]string{}
	if up.UserID != "" {
		props[models.PropLastModifiedBy] = up.UserID
	}
	asset := &models.Asset{
		ID:       id,
		Path:     up.Path,
		MimeType: mimeType,
		Renditions: map[string]models.Rendition{
			models.OriginalRendition: {
				Name:       models.OriginalRendition,
				File:       dest,
				MimeType:   mimeType,
				Properties: props,
				CreatedAt:  now,
			},
		},
		Content:   models.ContentMetadata{LastModifiedBy: up.UserID, LastModified: now},
		CreatedAt: now,
	}
	if err := s.Put(ctx, asset); err != nil {
		return nil, err
	}

	logger.Infof("registered asset %s (%s) at %s", up.Path, mimeType, dest)
	return asset, nil
}
