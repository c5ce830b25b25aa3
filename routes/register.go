package routes

import (
	"encoding/json"
	"net/http"

	"renditionmaker/credentials"
	"renditionmaker/logger"
)

// RegisterCredentialsHandler stores destination credentials and returns the
// key that publish.destinations entries reference as credentials_key.
func RegisterCredentialsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	credsBody := make(map[string]string)
	if err := json.NewDecoder(r.Body).Decode(&credsBody); err != nil || len(credsBody) == 0 {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	key, err := credentials.Register(credsBody)
	if err != nil {
		logger.Errorf("Failed to store credentials: %v", err)
		http.Error(w, "Failed to store credentials", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"access_key": key})
}
