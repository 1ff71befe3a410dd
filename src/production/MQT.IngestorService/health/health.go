package health

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Check reports whether a dependency is usable
type Check func(ctx context.Context) error

// Connection is anything that knows whether it is still connected
type Connection interface {
	IsConnected() bool
}

// Closer is anything that knows whether it has been closed
type Closer interface {
	IsClosed() bool
}

// HealthChecker runs the registered dependency checks
type HealthChecker struct {
	mu     sync.RWMutex
	names  []string
	checks map[string]Check
}

// NewHealthChecker creates a new health checker with no checks
func NewHealthChecker() *HealthChecker {
	return &HealthChecker{checks: make(map[string]Check)}
}

// Register adds a named check. Registering a name twice replaces the check.
func (h *HealthChecker) Register(name string, check Check) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, exists := h.checks[name]; !exists {
		h.names = append(h.names, name)
	}
	h.checks[name] = check
}

// GetHealthStatus runs every check and returns the status document and
// whether all checks passed
func (h *HealthChecker) GetHealthStatus(ctx context.Context) (map[string]interface{}, bool) {
	h.mu.RLock()
	names := append([]string(nil), h.names...)
	checks := make(map[string]Check, len(h.checks))
	for name, check := range h.checks {
		checks[name] = check
	}
	h.mu.RUnlock()

	results := make(map[string]interface{}, len(names))
	healthy := true
	for _, name := range names {
		if err := checks[name](ctx); err != nil {
			healthy = false
			results[name] = map[string]interface{}{
				"status": "error",
				"error":  err.Error(),
			}
			continue
		}
		results[name] = map[string]interface{}{"status": "ok"}
	}

	status := "ok"
	if !healthy {
		status = "degraded"
	}

	return map[string]interface{}{
		"status":    status,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"checks":    results,
	}, healthy
}

// ConnectedCheck fails while c reports it is disconnected
func ConnectedCheck(c Connection) Check {
	return func(ctx context.Context) error {
		if !c.IsConnected() {
			return fmt.Errorf("not connected")
		}
		return nil
	}
}

// OpenCheck fails once c reports it is closed
func OpenCheck(c Closer) Check {
	return func(ctx context.Context) error {
		if c.IsClosed() {
			return fmt.Errorf("connection closed")
		}
		return nil
	}
}
