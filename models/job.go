package models

// JobConfig is the parsed form of a process-argument string.
// Built once per execution and not modified afterwards.
type JobConfig struct {
	DimensionTokens []string `json:"dimension_tokens"` // raw tokens, parsed per pair
	MimeTypes       []string `json:"mime_types"`
	Quality         int      `json:"quality"` // 0–100
	MimeTypesToKeep []string `json:"mime_types_to_keep"`
	SkipMimeTypes   []string `json:"skip_mime_types"` // regex patterns
}

type DimensionSpec struct {
	Width      int  `json:"width"`
	Height     int  `json:"height"`
	CenterCrop bool `json:"center_crop"`
}

// RenditionRequest is the input handed to the rendition generator for one pair.
type RenditionRequest struct {
	Dimension       DimensionSpec
	MimeType        string
	Quality         int
	MimeTypesToKeep []string
	UserID          string // acting user, recorded on the produced rendition
}

// PlannedPair is one (dimension token x MIME type) combination in dispatch order.
type PlannedPair struct {
	Index          int    `json:"index"`
	DimensionToken string `json:"dimension"`
	MimeType       string `json:"mime_type"`
}
