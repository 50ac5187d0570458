package handler

import (
	"context"
	"net/http"
	"runtime"
	"sort"
	"time"

	"github.com/erp/pos/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// HealthChecker is a dependency probed by the health endpoint
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// TerminalCounter reports live terminals
type TerminalCounter interface {
	Len() int
}

// SystemHandler serves health and version information
type SystemHandler struct {
	BaseHandler
	name      string
	version   string
	startTime time.Time
	terminals TerminalCounter
	checks    map[string]HealthChecker
}

// NewSystemHandler creates a SystemHandler. checks are probed on every health request.
func NewSystemHandler(name, version string, terminals TerminalCounter, checks map[string]HealthChecker) *SystemHandler {
	return &SystemHandler{
		name:      name,
		version:   version,
		startTime: time.Now(),
		terminals: terminals,
		checks:    checks,
	}
}

// HealthResponse is the health endpoint payload
type HealthResponse struct {
	Status    string            `json:"status"`
	Name      string            `json:"name"`
	Version   string            `json:"version"`
	GoVersion string            `json:"go_version"`
	Uptime    string            `json:"uptime"`
	Terminals int               `json:"terminals"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// Health reports liveness and the state of each dependency. A failing
// check answers 503.
func (h *SystemHandler) Health(c *gin.Context) {
	resp := HealthResponse{
		Status:    "ok",
		Name:      h.name,
		Version:   h.version,
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
	}
	if h.terminals != nil {
		resp.Terminals = h.terminals.Len()
	}

	if len(h.checks) > 0 {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		names := make([]string, 0, len(h.checks))
		for name := range h.checks {
			names = append(names, name)
		}
		sort.Strings(names)

		resp.Checks = make(map[string]string, len(names))
		for _, name := range names {
			if err := h.checks[name].Ping(ctx); err != nil {
				resp.Checks[name] = err.Error()
				resp.Status = "degraded"
				continue
			}
			resp.Checks[name] = "ok"
		}
	}

	status := http.StatusOK
	if resp.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, dto.Response{Success: status == http.StatusOK, Data: resp})
}
