package routes

import (
	"net/http"

	"renditionmaker/logger"
	"renditionmaker/success"
)

// SuccessQueryHandler returns the execution report of a completed work item
func SuccessQueryHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id := r.URL.Query().Get("id")
	if id == "" {
		http.Error(w, "id parameter required", http.StatusBadRequest)
		return
	}

	record, err := success.GetSuccess(id)
	if err != nil {
		logger.Errorf("Failed to query success for %s: %v", id, err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	if record == nil {
		writeJSON(w, http.StatusOK, map[string]any{
			"id":      id,
			"status":  "not_found",
			"message": "No success record found for this work item",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"id":        record.ID,
		"status":    "success",
		"timestamp": record.Timestamp,
		"generated": record.Generated,
		"skipped":   record.Skipped,
		"malformed": record.Malformed,
		"failed":    record.Failed,
		"report":    record.Report,
	})
}

// SuccessListHandler handles listing all success records (admin endpoint)
func SuccessListHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	records, err := success.ListSuccessRecords()
	if err != nil {
		logger.Errorf("Failed to list success records: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success_records": records,
		"count":           len(records),
	})
}
