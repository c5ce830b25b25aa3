package assets

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	pebble "github.com/cockroachdb/pebble"

	"renditionmaker/models"
)

var ErrNotFound = errors.New("asset not found")

// Store keeps assets in Pebble, keyed by repository path.
// Writes are read-modify-write and serialized by mu.
type Store struct {
	db *pebble.DB
	mu sync.Mutex
}

// Open opens (or creates) the asset database at dbPath.
func Open(dbPath string) (*Store, error) {
	db, err := pebble.Open(dbPath, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to open asset store: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// IDForPath derives the stable on-disk identifier of an asset.
func IDForPath(path string) string {
	sum := sha256.Sum256([]byte(path))
	return hex.EncodeToString(sum[:8])
}

// Put stores the asset, replacing any previous version.
func (s *Store) Put(ctx context.Context, asset *models.Asset) error {
	if asset == nil || asset.Path == "" {
		return fmt.Errorf("asset path required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.put(asset)
}

func (s *Store) put(asset *models.Asset) error {
	if asset.ID == "" {
		asset.ID = IDForPath(asset.Path)
	}
	data, err := json.Marshal(asset)
	if err != nil {
		return fmt.Errorf("failed to marshal asset %s: %w", asset.Path, err)
	}
	return s.db.Set([]byte(asset.Path), data, pebble.Sync)
}

// Resolve returns the asset stored under path.
func (s *Store) Resolve(ctx context.Context, path string) (*models.Asset, error) {
	data, closer, err := s.db.Get([]byte(path))
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("failed to get asset %s: %w", path, err)
	}
	defer closer.Close()

	var asset models.Asset
	if err := json.Unmarshal(data, &asset); err != nil {
		return nil, fmt.Errorf("failed to unmarshal asset %s: %w", path, err)
	}
	return &asset, nil
}

// update applies fn to the stored asset under the write lock.
func (s *Store) update(path string, fn func(*models.Asset)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	asset, err := s.Resolve(context.Background(), path)
	if err != nil {
		return err
	}
	fn(asset)
	return s.put(asset)
}

// SetContentMetadata records the attribution on the asset's content node.
func (s *Store) SetContentMetadata(ctx context.Context, path string, rec models.AttributionRecord) error {
	return s.update(path, func(a *models.Asset) {
		a.Content.LastModifiedBy = rec.UserID
		a.Content.LastModified = rec.Timestamp
	})
}

// AddRendition stores r on the asset, replacing a rendition of the same name.
func (s *Store) AddRendition(ctx context.Context, path string, r models.Rendition) error {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	return s.update(path, func(a *models.Asset) {
		if a.Renditions == nil {
			a.Renditions = make(map[string]models.Rendition)
		}
		a.Renditions[r.Name] = r
	})
}

// List returns every stored asset (for admin/debugging)
func (s *Store) List(ctx context.Context) ([]models.Asset, error) {
	iter, err := s.db.NewIter(&pebble.IterOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to create iterator: %w", err)
	}
	defer iter.Close()

	var out []models.Asset
	for iter.First(); iter.Valid(); iter.Next() {
		var a models.Asset
		if err := json.Unmarshal(iter.Value(), &a); err != nil {
			continue // Skip invalid records
		}
		out = append(out, a)
	}
	if err := iter.Error(); err != nil {
		return nil, fmt.Errorf("iteration error: %w", err)
	}
	return out, nil
}

// CheckHealth performs a basic read against the database.
func (s *Store) CheckHealth() error {
	_, closer, err := s.db.Get([]byte("__health_check__"))
	if err != nil && !errors.Is(err, pebble.ErrNotFound) {
		return fmt.Errorf("asset store health check failed: %w", err)
	}
	if closer != nil {
		closer.Close()
	}
	return nil
}
