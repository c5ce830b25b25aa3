package job

import (
	"context"
	"fmt"
	"sync"

	"renditionmaker/models"
)

type MockAssetStore struct {
	mu       sync.Mutex
	assets   map[string]*models.Asset
	stamps   []models.AttributionRecord
	stampErr error
}

func NewMockAssetStore(assets ...*models.Asset) *MockAssetStore {
	s := &MockAssetStore{assets: make(map[string]*models.Asset)}
	for _, a := range assets {
		s.assets[a.Path] = a
	}
	return s
}

func (m *MockAssetStore) Resolve(ctx context.Context, path string) (*models.Asset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.assets[path]
	if !ok {
		return nil, fmt.Errorf("asset %s: not found", path)
	}
	return a, nil
}

func (m *MockAssetStore) SetContentMetadata(ctx context.Context, path string, rec models.AttributionRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stampErr != nil {
		return m.stampErr
	}
	m.stamps = append(m.stamps, rec)
	if a, ok := m.assets[path]; ok {
		a.Content = models.ContentMetadata{LastModifiedBy: rec.UserID, LastModified: rec.Timestamp}
	}
	return nil
}

func (m *MockAssetStore) Stamps() []models.AttributionRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.AttributionRecord{}, m.stamps...)
}

type MockGenerator struct {
	mu       sync.Mutex
	requests []models.RenditionRequest
	// failOn maps a call number (starting at 1) to the error returned for it
	failOn map[int]error
	block  bool
}

func (m *MockGenerator) Generate(ctx context.Context, asset *models.Asset, req models.RenditionRequest) error {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	n := len(m.requests)
	err := m.failOn[n]
	block := m.block
	m.mu.Unlock()

	if block {
		<-ctx.Done()
		return ctx.Err()
	}
	return err
}

func (m *MockGenerator) Requests() []models.RenditionRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.RenditionRequest{}, m.requests...)
}
