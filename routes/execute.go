package routes

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"renditionmaker/job"
	"renditionmaker/logger"
	"renditionmaker/models"
)

// ExecuteRequest is the body of POST /workflow/execute.
type ExecuteRequest struct {
	Payload         string            `json:"payload"`
	ProcessArgs     string            `json:"processArgs"`
	WorkflowID      string            `json:"workflowId"`
	UserID          string            `json:"userId"`
	Callback        string            `json:"callback"`
	CallbackHeaders map[string]string `json:"callbackHeaders"`
}

// ExecuteHandler queues a rendition work item for an existing asset.
func (h *Handlers) ExecuteHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req ExecuteRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	userID, err := h.actingUser(r, req.UserID)
	if err != nil {
		http.Error(w, fmt.Sprintf("Invalid token: %v", err), http.StatusUnauthorized)
		return
	}

	item, err := h.scheduler.Submit(models.WorkItem{
		PayloadPath:     req.Payload,
		ProcessArgs:     req.ProcessArgs,
		UserID:          userID,
		WorkflowID:      req.WorkflowID,
		CallbackURL:     req.Callback,
		CallbackHeaders: req.CallbackHeaders,
	})
	if err != nil {
		if errors.Is(err, job.ErrInvalidWorkItem) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		logger.Errorf("Failed to submit work item: %v", err)
		http.Error(w, "Failed to queue work item", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{
		"id":    item.ID,
		"state": job.JobStatePending.String(),
	})
}
