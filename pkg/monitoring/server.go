package monitoring

import (
	"net/http"
	"time"
)

// NewServer builds the HTTP server exposing metrics and health
func NewServer(address, metricsPath, healthPath string, metrics *MetricsCollector, health *HealthManager) *http.Server {
	mux := http.NewServeMux()
	mux.Handle(metricsPath, metrics.Handler())
	mux.Handle(healthPath, health.Handler())

	return &http.Server{
		Addr:              address,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
