package routes

import (
	"errors"
	"fmt"
	"net/http"

	"renditionmaker/assets"
	"renditionmaker/logger"
)

const maxUploadSize = 64 << 20

// AssetsHandler registers an asset original (POST multipart: file, path)
// or returns an asset with its renditions (GET ?path=).
func (h *Handlers) AssetsHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.getAsset(w, r)
	case http.MethodPost:
		h.uploadAsset(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handlers) getAsset(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		http.Error(w, "path parameter required", http.StatusBadRequest)
		return
	}

	asset, err := h.assets.Resolve(r.Context(), path)
	if err != nil {
		if errors.Is(err, assets.ErrNotFound) {
			http.Error(w, fmt.Sprintf("Asset %s not found", path), http.StatusNotFound)
			return
		}
		logger.Errorf("Failed to resolve asset %s: %v", path, err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, asset)
}

func (h *Handlers) uploadAsset(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		http.Error(w, "Failed to parse multipart form", http.StatusBadRequest)
		return
	}

	userID, err := h.actingUser(r, r.FormValue("userId"))
	if err != nil {
		http.Error(w, fmt.Sprintf("Invalid token: %v", err), http.StatusUnauthorized)
		return
	}

	path := r.FormValue("path")
	if path == "" {
		http.Error(w, "path field required", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "Failed to get file from form", http.StatusBadRequest)
		return
	}
	defer file.Close()

	asset, err := h.assets.Register(r.Context(), assets.Upload{
		Path:     path,
		Filename: header.Filename,
		MimeType: r.FormValue("mimeType"),
		UserID:   userID,
	}, file, h.originalsDir)
	if err != nil {
		logger.Errorf("Failed to register asset %s: %v", path, err)
		http.Error(w, "Failed to store asset", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, asset)
}
