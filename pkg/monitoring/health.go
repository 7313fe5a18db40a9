package monitoring

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

// HealthStatus represents the health status of the process
type HealthStatus string

const (
	HealthStatusHealthy   HealthStatus = "healthy"
	HealthStatusUnhealthy HealthStatus = "unhealthy"
)

// HealthReport represents the health report served on the health path
type HealthReport struct {
	Status    HealthStatus `json:"status"`
	Timestamp time.Time    `json:"timestamp"`
	Service   string       `json:"service"`
	Version   string       `json:"version"`
	Message   string       `json:"message,omitempty"`
}

// HealthManager tracks whether the chaincode process is serving
type HealthManager struct {
	serviceName    string
	serviceVersion string

	mu      sync.RWMutex
	status  HealthStatus
	message string
}

// NewHealthManager creates a new health manager, initially unhealthy until
// MarkHealthy is called
func NewHealthManager(serviceName, serviceVersion string) *HealthManager {
	return &HealthManager{
		serviceName:    serviceName,
		serviceVersion: serviceVersion,
		status:         HealthStatusUnhealthy,
		message:        "starting",
	}
}

// MarkHealthy records that the process is serving
func (h *HealthManager) MarkHealthy() {
	h.set(HealthStatusHealthy, "")
}

// MarkUnhealthy records that the process stopped serving
func (h *HealthManager) MarkUnhealthy(message string) {
	h.set(HealthStatusUnhealthy, message)
}

func (h *HealthManager) set(status HealthStatus, message string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.status = status
	h.message = message
}

// Report returns the current health report
func (h *HealthManager) Report() HealthReport {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return HealthReport{
		Status:    h.status,
		Timestamp: time.Now().UTC(),
		Service:   h.serviceName,
		Version:   h.serviceVersion,
		Message:   h.message,
	}
}

// Handler serves the health report as JSON
func (h *HealthManager) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		report := h.Report()

		w.Header().Set("Content-Type", "application/json")
		if report.Status != HealthStatusHealthy {
			w.WriteHeader(http.StatusServiceUnavailable)
		} else {
			w.WriteHeader(http.StatusOK)
		}
		_ = json.NewEncoder(w).Encode(report)
	})
}
