package routes

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"renditionmaker/assets"
	"renditionmaker/job"
	"renditionmaker/logger"
	"renditionmaker/utils"
)

// Handlers serves the HTTP API over the scheduler and asset store.
type Handlers struct {
	scheduler    *job.Scheduler
	assets       *assets.Store
	originalsDir string
	// auth is nil when no JWT secret is configured; the acting user then
	// comes from the request body.
	auth *utils.VerifyConfig
}

func NewHandlers(scheduler *job.Scheduler, store *assets.Store, originalsDir string, auth *utils.VerifyConfig) *Handlers {
	return &Handlers{scheduler: scheduler, assets: store, originalsDir: originalsDir, auth: auth}
}

// Register mounts every route on mux.
func (h *Handlers) Register(mux *http.ServeMux) {
	mux.HandleFunc("/workflow/execute", h.ExecuteHandler)
	mux.HandleFunc("/status", h.JobStatusHandler)
	mux.HandleFunc("/cancel", h.CancelJobHandler)
	mux.HandleFunc("/assets", h.AssetsHandler)
	mux.HandleFunc("/credentials", RegisterCredentialsHandler)
	mux.HandleFunc("/failures", FailureQueryHandler)
	mux.HandleFunc("/failures/list", FailureListHandler)
	mux.HandleFunc("/success", SuccessQueryHandler)
	mux.HandleFunc("/success/list", SuccessListHandler)
	mux.HandleFunc("/health", h.HealthHandler)
	mux.HandleFunc("/version", VersionHandler)
}

// actingUser returns the JWT subject, or fallback when auth is disabled.
func (h *Handlers) actingUser(r *http.Request, fallback string) (string, error) {
	if h.auth == nil {
		return fallback, nil
	}

	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", fmt.Errorf("authorization header required")
	}

	token := strings.TrimPrefix(authHeader, "Bearer ")
	if token == authHeader {
		return "", fmt.Errorf("invalid authorization header format")
	}

	claims, err := utils.VerifySubmitJWT(token, *h.auth)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Errorf("Failed to encode response: %v", err)
	}
}
