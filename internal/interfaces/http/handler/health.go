package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/Nassimghoulane/Dionos-1/internal/application/clickcollect"
	"github.com/Nassimghoulane/Dionos-1/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// DependencyCheck probes one backing service
type DependencyCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// HealthResponse is the body of GET /health
type HealthResponse struct {
	Status       string            `json:"status"`
	Stores       int               `json:"stores"`
	ActiveOrders int               `json:"active_orders"`
	Dependencies map[string]string `json:"dependencies,omitempty"`
	Timestamp    time.Time         `json:"timestamp"`
}

// HealthHandler reports liveness and the state of the optional archive and
// pickup code registry
type HealthHandler struct {
	BaseHandler
	session *clickcollect.Session
	checks  []DependencyCheck
	timeout time.Duration
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(session *clickcollect.Session, checks ...DependencyCheck) *HealthHandler {
	return &HealthHandler{
		session: session,
		checks:  checks,
		timeout: 2 * time.Second,
	}
}

// RegisterRoutes registers the health route
func (h *HealthHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/health", h.Health)
}

// Health answers 200 when every dependency responds and 503 otherwise
func (h *HealthHandler) Health(c *gin.Context) {
	st := h.session.Snapshot()
	resp := HealthResponse{
		Status:       "ok",
		Stores:       st.Catalog.Len(),
		ActiveOrders: len(st.Orders.Active()),
		Timestamp:    h.session.Now(),
	}

	if len(h.checks) > 0 {
		ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
		defer cancel()

		resp.Dependencies = make(map[string]string, len(h.checks))
		for _, dep := range h.checks {
			if err := dep.Check(ctx); err != nil {
				resp.Dependencies[dep.Name] = err.Error()
				resp.Status = "degraded"
				continue
			}
			resp.Dependencies[dep.Name] = "ok"
		}
	}

	if resp.Status != "ok" {
		c.JSON(http.StatusServiceUnavailable, dto.Response{Success: false, Data: resp, Error: &dto.ErrorInfo{
			Code:    dto.ErrCodeUnavailable,
			Message: "One or more dependencies are unavailable",
		}})
		return
	}
	h.Success(c, resp)
}
