package routes

import (
	"errors"
	"fmt"
	"net/http"

	"renditionmaker/job"
	"renditionmaker/logger"
)

// CancelJobHandler cancels a pending or processing work item by id
func (h *Handlers) CancelJobHandler(w http.ResponseWriter, r *http.Request) {
	logger.Debugf("Cancel job request: method=%s, remoteAddr=%s", r.Method, r.RemoteAddr)

	if r.Method != http.MethodDelete {
		logger.Warnf("Invalid method for cancel endpoint: %s", r.Method)
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id := r.URL.Query().Get("id")
	if id == "" {
		logger.Warn("Missing id parameter in cancel request")
		http.Error(w, "Missing id parameter", http.StatusBadRequest)
		return
	}

	logger.Infof("Attempting to cancel work item: %s", id)
	if err := h.scheduler.Cancel(id); err != nil {
		logger.Errorf("Failed to cancel work item %s: %v", id, err)
		if errors.Is(err, job.ErrWorkItemNotFound) {
			http.Error(w, fmt.Sprintf("Work item not found: %v", err), http.StatusNotFound)
		} else {
			http.Error(w, fmt.Sprintf("Cannot cancel work item: %v", err), http.StatusConflict)
		}
		return
	}

	logger.Infof("Work item cancelled: %s", id)
	w.WriteHeader(http.StatusNoContent)
}
