package routes

import (
	"fmt"
	"net/http"

	"renditionmaker/logger"
)

// JobStatusResponse represents the work-item status response
type JobStatusResponse struct {
	ID          string `json:"id"`
	State       string `json:"state"`
	Cancellable bool   `json:"cancellable"`
}

// JobStatusHandler returns the state of a work item by id
func (h *Handlers) JobStatusHandler(w http.ResponseWriter, r *http.Request) {
	logger.Debugf("Job status request: method=%s, remoteAddr=%s", r.Method, r.RemoteAddr)

	if r.Method != http.MethodGet {
		logger.Warnf("Invalid method for status endpoint: %s", r.Method)
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id := r.URL.Query().Get("id")
	if id == "" {
		logger.Warn("Missing id parameter in status request")
		http.Error(w, "Missing id parameter", http.StatusBadRequest)
		return
	}

	state, exists := h.scheduler.State(id)
	if !exists {
		logger.Warnf("Work item not found: %s", id)
		http.Error(w, fmt.Sprintf("Work item %s not found", id), http.StatusNotFound)
		return
	}

	logger.Debugf("Job status: id=%s, state=%s", id, state)
	writeJSON(w, http.StatusOK, JobStatusResponse{
		ID:          id,
		State:       state.String(),
		Cancellable: h.scheduler.IsCancellable(id),
	})
}
