// health.go - Health monitoring for the marketplace daemon
package main

import (
	"sync"
	"time"
)

// HealthStatus represents the health status of a component
type HealthStatus string

const (
	Healthy   HealthStatus = "healthy"
	Unhealthy HealthStatus = "unhealthy"
)

// ComponentHealth represents the health of a specific component
type ComponentHealth struct {
	Name      string        `json:"name"`
	Status    HealthStatus  `json:"status"`
	Message   string        `json:"message"`
	LastCheck time.Time     `json:"last_check"`
	Latency   time.Duration `json:"latency,omitempty"`
}

// SystemHealth represents the overall system health
type SystemHealth struct {
	OverallStatus HealthStatus      `json:"overall_status"`
	Timestamp     time.Time         `json:"timestamp"`
	Components    []ComponentHealth `json:"components"`
	Uptime        time.Duration     `json:"uptime"`
	Version       string            `json:"version"`
}

// HealthChecker manages health checks for the marketplace daemon
type HealthChecker struct {
	mu        sync.RWMutex
	checkers  map[string]func() error
	startTime time.Time
	version   string
}

// NewHealthChecker creates a new health checker
func NewHealthChecker(version string) *HealthChecker {
	return &HealthChecker{
		checkers:  make(map[string]func() error),
		startTime: time.Now(),
		version:   version,
	}
}

// RegisterComponent registers a health check for a component
func (hc *HealthChecker) RegisterComponent(name string, checker func() error) {
	hc.mu.Lock()
	defer hc.mu.Unlock()
	hc.checkers[name] = checker
}

// Check runs all registered checks and returns the system health.
func (hc *HealthChecker) Check() SystemHealth {
	hc.mu.RLock()
	checkers := make(map[string]func() error, len(hc.checkers))
	for name, fn := range hc.checkers {
		checkers[name] = fn
	}
	hc.mu.RUnlock()

	health := SystemHealth{
		OverallStatus: Healthy,
		Timestamp:     time.Now(),
		Uptime:        time.Since(hc.startTime),
		Version:       hc.version,
	}
	for name, fn := range checkers {
		start := time.Now()
		component := ComponentHealth{
			Name:      name,
			Status:    Healthy,
			Message:   "ok",
			LastCheck: start,
		}
		if err := fn(); err != nil {
			component.Status = Unhealthy
			component.Message = err.Error()
			health.OverallStatus = Unhealthy
		}
		component.Latency = time.Since(start)
		health.Components = append(health.Components, component)
	}
	return health
}
