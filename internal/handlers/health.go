// internal/handlers/health.go
package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"runtime"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/ammerola/flowershop-pos/internal/pkg/config"
	"github.com/ammerola/flowershop-pos/internal/workers"
)

// Overall and per-dependency states reported by /health
const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

// DatabaseChecker is the part of the database used by health checks
type DatabaseChecker interface {
	Ping(ctx context.Context) error
	Health(ctx context.Context) map[string]interface{}
}

// dependency is one health check. A failed required dependency makes the shop
// unable to take sales; the others only cost caching or background jobs.
type dependency struct {
	name     string
	required bool
	check    func(ctx context.Context) ServiceInfo
}

// HealthHandler serves the health, readiness and liveness endpoints
type HealthHandler struct {
	deps      []dependency
	app       config.AppConfig
	logger    *slog.Logger
	startTime time.Time
}

// NewHealthHandler creates a new health handler. asynqInspector may be nil.
func NewHealthHandler(
	database DatabaseChecker,
	redisClient *redis.Client,
	asynqInspector *asynq.Inspector,
	app config.AppConfig,
	logger *slog.Logger,
) *HealthHandler {
	h := &HealthHandler{
		app:       app,
		logger:    logger.With(slog.String("handler", "health")),
		startTime: time.Now(),
	}

	h.deps = append(h.deps,
		dependency{name: "database", required: true, check: h.databaseCheck(database)},
		dependency{name: "redis", check: h.redisCheck(redisClient)},
	)
	if asynqInspector != nil {
		h.deps = append(h.deps, dependency{name: "asynq", check: h.asynqCheck(asynqInspector)})
	}

	return h
}

// HealthStatus is the body of GET /health
type HealthStatus struct {
	Status      string                 `json:"status"`
	Version     string                 `json:"version"`
	Environment string                 `json:"environment"`
	Uptime      string                 `json:"uptime"`
	Timestamp   time.Time              `json:"timestamp"`
	Services    map[string]ServiceInfo `json:"services"`
	System      SystemInfo             `json:"system"`
}

// ServiceInfo is the state of one dependency
type ServiceInfo struct {
	Status       string                 `json:"status"`
	Message      string                 `json:"message,omitempty"`
	ResponseTime string                 `json:"response_time,omitempty"`
	Details      map[string]interface{} `json:"details,omitempty"`
}

// SystemInfo is a snapshot of the Go runtime
type SystemInfo struct {
	GoVersion     string `json:"go_version"`
	NumGoroutines int    `json:"num_goroutines"`
	HeapAllocMB   uint64 `json:"heap_alloc_mb"`
	NumGC         uint32 `json:"num_gc"`
}

// Health handles GET /health. Losing the database makes the service
// unhealthy, losing anything else degrades it.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	overall, services := h.runChecks(ctx)

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	status := http.StatusOK
	if overall != StatusHealthy {
		status = http.StatusServiceUnavailable
	}

	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	respondJSON(w, h.logger, status, HealthStatus{
		Status:      overall,
		Version:     h.app.Version,
		Environment: h.app.Environment,
		Uptime:      time.Since(h.startTime).Round(time.Second).String(),
		Timestamp:   time.Now().UTC(),
		Services:    services,
		System: SystemInfo{
			GoVersion:     runtime.Version(),
			NumGoroutines: runtime.NumGoroutine(),
			HeapAllocMB:   mem.HeapAlloc / 1024 / 1024,
			NumGC:         mem.NumGC,
		},
	})
}

// Readiness handles GET /ready. Every dependency must pass before the API takes
// traffic.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	overall, services := h.runChecks(ctx)

	details := make(map[string]string, len(services))
	for name, info := range services {
		details[name] = "ready"
		if info.Status != StatusHealthy {
			details[name] = "not ready"
		}
	}

	status := http.StatusOK
	if overall != StatusHealthy {
		status = http.StatusServiceUnavailable
	}

	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	respondJSON(w, h.logger, status, map[string]interface{}{
		"ready":   overall == StatusHealthy,
		"details": details,
	})
}

// Liveness handles GET /live. It never touches dependencies.
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, h.logger, http.StatusOK, map[string]interface{}{
		"alive":  true,
		"uptime": time.Since(h.startTime).Round(time.Second).String(),
	})
}

func (h *HealthHandler) runChecks(ctx context.Context) (string, map[string]ServiceInfo) {
	overall := StatusHealthy
	services := make(map[string]ServiceInfo, len(h.deps))

	for _, p := range h.deps {
		start := time.Now()
		info := p.check(ctx)
		info.ResponseTime = time.Since(start).Round(time.Microsecond).String()
		services[p.name] = info

		if info.Status == StatusHealthy {
			continue
		}
		h.logger.ErrorContext(ctx, "health check failed",
			slog.String("dependency", p.name),
			slog.String("error", info.Message))
		switch {
		case p.required:
			overall = StatusUnhealthy
		case overall == StatusHealthy:
			overall = StatusDegraded
		}
	}

	return overall, services
}

func (h *HealthHandler) databaseCheck(database DatabaseChecker) func(context.Context) ServiceInfo {
	return func(ctx context.Context) ServiceInfo {
		if err := database.Ping(ctx); err != nil {
			return ServiceInfo{Status: StatusUnhealthy, Message: err.Error()}
		}
		return ServiceInfo{Status: StatusHealthy, Details: database.Health(ctx)}
	}
}

func (h *HealthHandler) redisCheck(client *redis.Client) func(context.Context) ServiceInfo {
	return func(ctx context.Context) ServiceInfo {
		if err := client.Ping(ctx).Err(); err != nil {
			return ServiceInfo{Status: StatusUnhealthy, Message: err.Error()}
		}
		stats := client.PoolStats()
		return ServiceInfo{
			Status: StatusHealthy,
			Details: map[string]interface{}{
				"total_conns": stats.TotalConns,
				"idle_conns":  stats.IdleConns,
			},
		}
	}
}

// asynqCheck reports the backlog of each worker queue. A queue that has
// never seen a task does not exist yet and counts as empty.
func (h *HealthHandler) asynqCheck(inspector *asynq.Inspector) func(context.Context) ServiceInfo {
	return func(ctx context.Context) ServiceInfo {
		known, err := inspector.Queues()
		if err != nil {
			return ServiceInfo{Status: StatusUnhealthy, Message: err.Error()}
		}
		exists := make(map[string]bool, len(known))
		for _, q := range known {
			exists[q] = true
		}

		queues := make(map[string]interface{})
		for _, q := range []string{workers.QueueCritical, workers.QueueDefault, workers.QueueLow} {
			if !exists[q] {
				queues[q] = map[string]int{"pending": 0}
				continue
			}
			qi, err := inspector.GetQueueInfo(q)
			if err != nil {
				return ServiceInfo{Status: StatusUnhealthy, Message: err.Error()}
			}
			queues[q] = map[string]int{
				"pending":  qi.Pending,
				"active":   qi.Active,
				"retry":    qi.Retry,
				"archived": qi.Archived,
			}
		}

		details := map[string]interface{}{"queues": queues}
		if servers, err := inspector.Servers(); err == nil {
			details["workers"] = len(servers)
		}
		return ServiceInfo{Status: StatusHealthy, Details: details}
	}
}
