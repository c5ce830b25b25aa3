package encoder

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"sync"

	"renditionmaker/logger"
)

// EncodeFunc is the function signature for any encoder
type EncodeFunc func(ctx context.Context, input, output string, opts EncodeOptions) error

type EncodeOptions struct {
	Width, Height int
	Quality       int
	Speed         int
	CenterCrop    bool
}

var (
	// Registry maps target MIME type → encoder function
	Registry   = map[string]EncodeFunc{}
	registryMu sync.RWMutex
	defaults   sync.Once
)

// mimeAliases folds legacy MIME spellings onto the type an encoder is registered for.
var mimeAliases = map[string]string{
	"image/jpg":   "image/jpeg",
	"image/pjpeg": "image/jpeg",
	"image/x-png": "image/png",
}

// NormalizeMimeType lowercases m and resolves legacy aliases.
func NormalizeMimeType(m string) string {
	m = strings.ToLower(strings.TrimSpace(m))
	if canonical, ok := mimeAliases[m]; ok {
		return canonical
	}
	return m
}

// Register adds encoder if the underlying command exists, logs status
func Register(mimeType string, cmdName string, fn EncodeFunc) {
	if _, err := exec.LookPath(cmdName); err != nil {
		logger.Warnf("encoder [%s] skipped: command '%s' not found in PATH", mimeType, cmdName)
		return
	}
	Set(mimeType, fn)
	logger.Debugf("encoder [%s] registered (command: %s)", mimeType, cmdName)
}

// Set registers fn for mimeType unconditionally.
func Set(mimeType string, fn EncodeFunc) {
	registryMu.Lock()
	defer registryMu.Unlock()
	Registry[NormalizeMimeType(mimeType)] = fn
}

// Get looks up the encoder for a MIME type
func Get(mimeType string) (EncodeFunc, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	fn, ok := Registry[NormalizeMimeType(mimeType)]
	return fn, ok
}

// RegisterDefaults registers the built-in encoders once.
func RegisterDefaults() {
	defaults.Do(func() {
		Register("image/jpeg", "magick", EncodeJPG)
		Register("image/png", "magick", EncodePNG)
		Register("image/gif", "magick", EncodeGIF)
		Register("image/webp", "cwebp", EncodeWebP)
		// avif scales through magick first
		if _, err := exec.LookPath("magick"); err == nil {
			Register("image/avif", "avifenc", EncodeAVIF)
		} else {
			logger.Warnf("encoder [image/avif] skipped: command 'magick' not found in PATH")
		}
	})
}

// Extension returns the file extension used for renditions of a MIME type.
func Extension(mimeType string) string {
	switch NormalizeMimeType(mimeType) {
	case "image/jpeg":
		return "jpg"
	case "image/png":
		return "png"
	case "image/gif":
		return "gif"
	case "image/webp":
		return "webp"
	case "image/avif":
		return "avif"
	default:
		m := NormalizeMimeType(mimeType)
		if i := strings.LastIndex(m, "/"); i >= 0 {
			return m[i+1:]
		}
		return m
	}
}

// TargetMimeType decides the rendition format: an asset whose own type is in
// keep stays in that format, anything else is converted to requested.
func TargetMimeType(assetMimeType, requested string, keep []string) string {
	if assetMimeType != "" {
		own := strings.ToLower(strings.TrimSpace(assetMimeType))
		for _, k := range keep {
			if strings.ToLower(strings.TrimSpace(k)) == own {
				return NormalizeMimeType(assetMimeType)
			}
		}
	}
	return NormalizeMimeType(requested)
}

// RenditionName is the stored name of a web rendition.
func RenditionName(width, height int, mimeType string) string {
	return fmt.Sprintf("web.%d.%d.%s", width, height, Extension(mimeType))
}
