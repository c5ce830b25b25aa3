package routes

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"renditionmaker/failures"
	"renditionmaker/logger"
	"renditionmaker/success"
)

// Build-time variables (injected by ldflags)
var (
	version   = "dev"
	buildTime = "unknown"
	gitCommit = "unknown"
)

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Version   string            `json:"version"`
	GoVersion string            `json:"go_version"`
	Uptime    string            `json:"uptime"`
	StartTime string            `json:"start_time"`
	Pending   int               `json:"pending"`
	Checks    map[string]string `json:"checks"`
}

// Global start time for uptime calculation
var startTime = time.Now()

// formatUptime formats a duration into days, hours, minutes, seconds
func formatUptime(d time.Duration) string {
	days := int(d.Hours() / 24)
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60
	return fmt.Sprintf("%dd %dh %dm %ds", days, hours, minutes, seconds)
}

// HealthHandler reports liveness plus the state of each database; any failing
// store turns the status to "degraded" with a 503.
func (h *Handlers) HealthHandler(w http.ResponseWriter, r *http.Request) {
	logger.Debugf("Health check request: method=%s, remoteAddr=%s", r.Method, r.RemoteAddr)

	if r.Method != http.MethodGet {
		logger.Warnf("Invalid method for health endpoint: %s", r.Method)
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	checks := map[string]string{}
	status, code := "healthy", http.StatusOK
	for name, check := range map[string]func() error{
		"assets":   h.assets.CheckHealth,
		"success":  success.CheckHealth,
		"failures": failures.CheckHealth,
	} {
		if err := check(); err != nil {
			checks[name] = err.Error()
			status, code = "degraded", http.StatusServiceUnavailable
			continue
		}
		checks[name] = "ok"
	}

	response := HealthResponse{
		Status:    status,
		Timestamp: time.Now(),
		Version:   getVersion(),
		GoVersion: runtime.Version(),
		Uptime:    formatUptime(time.Since(startTime)),
		StartTime: startTime.Format("2006-01-02 15:04:05 MST"),
		Pending:   h.scheduler.PendingCount(),
		Checks:    checks,
	}

	logger.Debugf("Health check response: status=%s, version=%s", response.Status, response.Version)

	writeJSON(w, code, response)
}

func getVersion() string {
	return version
}
