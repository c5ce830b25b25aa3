package models

import "time"

const (
	// OriginalRendition names the rendition holding the uploaded source file.
	OriginalRendition = "original"

	PropLastModifiedBy = "lastModifiedBy"
	PropLastModified   = "lastModified"
)

// Asset is a managed image with its renditions and content metadata.
type Asset struct {
	ID         string               `json:"id"`
	Path       string               `json:"path"`
	MimeType   string               `json:"mime_type"`
	Renditions map[string]Rendition `json:"renditions"`
	Content    ContentMetadata      `json:"content"`
	CreatedAt  time.Time            `json:"created_at"`
}

// Rendition is one stored representation of an asset.
type Rendition struct {
	Name       string            `json:"name"`
	File       string            `json:"file"`
	MimeType   string            `json:"mime_type"`
	Width      int               `json:"width,omitempty"`
	Height     int               `json:"height,omitempty"`
	Properties map[string]string `json:"properties,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
}

type ContentMetadata struct {
	LastModifiedBy string    `json:"lastModifiedBy,omitempty"`
	LastModified   time.Time `json:"lastModified,omitempty"`
}

// AttributionRecord is written onto an asset's content metadata after rendition work.
type AttributionRecord struct {
	UserID    string    `json:"user_id"`
	Timestamp time.Time `json:"timestamp"`
}

// Rendition returns the named rendition, if present.
func (a *Asset) Rendition(name string) (Rendition, bool) {
	if a == nil || a.Renditions == nil {
		return Rendition{}, false
	}
	r, ok := a.Renditions[name]
	return r, ok
}
