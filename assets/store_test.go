package assets

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"renditionmaker/models"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test_assets.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestResolveMissing(t *testing.T) {
	s := openTestStore(t)
	_, err := s.Resolve(context.Background(), "/content/dam/none.png")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestPutResolve(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Put(ctx, &models.Asset{Path: "/content/dam/a.png", MimeType: "image/png"}))

	a, err := s.Resolve(ctx, "/content/dam/a.png")
	require.NoError(t, err)
	assert.Equal(t, "image/png", a.MimeType)
	assert.Equal(t, IDForPath("/content/dam/a.png"), a.ID)
}

func TestSetContentMetadataAndRendition(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Put(ctx, &models.Asset{Path: "/content/dam/a.png", MimeType: "image/png"}))

	ts := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, s.SetContentMetadata(ctx, "/content/dam/a.png", models.AttributionRecord{UserID: "alice", Timestamp: ts}))
	require.NoError(t, s.AddRendition(ctx, "/content/dam/a.png", models.Rendition{Name: "web.100.100.jpg", MimeType: "image/jpeg"}))

	a, err := s.Resolve(ctx, "/content/dam/a.png")
	require.NoError(t, err)
	assert.Equal(t, "alice", a.Content.LastModifiedBy)
	assert.True(t, ts.Equal(a.Content.LastModified))
	r, ok := a.Rendition("web.100.100.jpg")
	require.True(t, ok)
	assert.Equal(t, "image/jpeg", r.MimeType)
	assert.False(t, r.CreatedAt.IsZero())
}

func TestSetContentMetadataMissingAsset(t *testing.T) {
	s := openTestStore(t)
	err := s.SetContentMetadata(context.Background(), "/nope", models.AttributionRecord{UserID: "x"})
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestConcurrentRenditionWrites(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Put(ctx, &models.Asset{Path: "/content/dam/a.png"}))

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			name := "web." + strings.Repeat("x", i+1)
			assert.NoError(t, s.AddRendition(ctx, "/content/dam/a.png", models.Rendition{Name: name}))
		}(i)
	}
	wg.Wait()

	a, err := s.Resolve(ctx, "/content/dam/a.png")
	require.NoError(t, err)
	assert.Len(t, a.Renditions, 10)
}

func TestRegister(t *testing.T) {
	s := openTestStore(t)
	originals := t.TempDir()
	png := "\x89PNG\r\n\x1a\n" + strings.Repeat("\x00", 32)

	a, err := s.Register(context.Background(), Upload{
		Path:     "/content/dam/site/hero.png",
		Filename: "hero.png",
		UserID:   "uploader",
	}, strings.NewReader(png), originals)
	require.NoError(t, err)

	assert.Equal(t, "image/png", a.MimeType)
	orig, ok := a.Rendition(models.OriginalRendition)
	require.True(t, ok)
	assert.Equal(t, "uploader", orig.Properties[models.PropLastModifiedBy])

	data, err := os.ReadFile(orig.File)
	require.NoError(t, err)
	assert.Equal(t, png, string(data))

	stored, err := s.Resolve(context.Background(), "/content/dam/site/hero.png")
	require.NoError(t, err)
	assert.Equal(t, a.ID, stored.ID)

	list, err := s.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.NoError(t, s.CheckHealth())
}
