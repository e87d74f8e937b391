package handler

import (
	"context"
	"net/http"
	"runtime"
	"time"

	appcollection "github.com/callbridge/backend/internal/application/collection"
	"github.com/callbridge/backend/internal/infrastructure/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// APIVersion is reported by the health and index endpoints
const APIVersion = "1.0.0"

// Paths of the public endpoints, shared with the router
const (
	PathPreCall        = "/api/fetch_user_profile_pre_call/"
	PathPostCall       = "/api/post_call_outcomes/"
	PathHealth         = "/health"
	PathAPIHealth      = "/api/health"
	PathDashboardStats = "/api/dashboard-stats"
)

// StatsProvider answers store health and portfolio queries
type StatsProvider interface {
	StoreHealth(ctx context.Context) (*appcollection.StoreHealth, error)
	DashboardStats(ctx context.Context) (*appcollection.DashboardStats, error)
}

// SystemHandler serves health, statistics and the service index
type SystemHandler struct {
	BaseHandler
	stats     StatsProvider
	name      string
	startTime time.Time
	now       func() time.Time
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(stats StatsProvider, name string) *SystemHandler {
	return &SystemHandler{
		stats:     stats,
		name:      name,
		startTime: time.Now(),
		now:       time.Now,
	}
}

// HealthResponse is the body of GET /health
type HealthResponse struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	Database  string `json:"database,omitempty"`
	Customers *int64 `json:"customers,omitempty"`
	Timestamp string `json:"timestamp"`
}

// Health reports whether the record store answers
func (h *SystemHandler) Health(c *gin.Context) {
	health, err := h.stats.StoreHealth(c.Request.Context())
	if err != nil {
		logger.FromContext(c.Request.Context()).Warn("Health check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, HealthResponse{
			Status:    "unhealthy",
			Message:   "Database connection failed",
			Timestamp: h.timestamp(),
		})
		return
	}

	c.JSON(http.StatusOK, HealthResponse{
		Status:    "healthy",
		Message:   h.name + " is running",
		Database:  "connected",
		Customers: &health.Customers,
		Timestamp: h.timestamp(),
	})
}

// DatabaseHealth is the store section of GET /api/health
type DatabaseHealth struct {
	Status string `json:"status"`
	*appcollection.StoreHealth
}

// APIHealthResponse is the body of GET /api/health
type APIHealthResponse struct {
	Status     string            `json:"status"`
	APIVersion string            `json:"api_version,omitempty"`
	Database   *DatabaseHealth   `json:"database,omitempty"`
	Endpoints  map[string]string `json:"endpoints,omitempty"`
	Error      string            `json:"error,omitempty"`
	Timestamp  string            `json:"timestamp"`
}

// APIHealth reports record counts and the endpoint map
func (h *SystemHandler) APIHealth(c *gin.Context) {
	health, err := h.stats.StoreHealth(c.Request.Context())
	if err != nil {
		logger.FromContext(c.Request.Context()).Warn("API health check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, APIHealthResponse{
			Status:    "unhealthy",
			Error:     "Database connection failed",
			Timestamp: h.timestamp(),
		})
		return
	}

	c.JSON(http.StatusOK, APIHealthResponse{
		Status:     "healthy",
		APIVersion: APIVersion,
		Database:   &DatabaseHealth{Status: "connected", StoreHealth: health},
		Endpoints: map[string]string{
			"pre_call":        PathPreCall,
			"post_call":       PathPostCall,
			"dashboard_stats": PathDashboardStats,
		},
		Timestamp: h.timestamp(),
	})
}

// DashboardStats returns the portfolio overview
func (h *SystemHandler) DashboardStats(c *gin.Context) {
	stats, err := h.stats.DashboardStats(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// IndexResponse is the body of GET /
type IndexResponse struct {
	Message       string            `json:"message"`
	Description   string            `json:"description"`
	Version       string            `json:"version"`
	HealthCheck   string            `json:"health_check"`
	APIHealth     string            `json:"api_health"`
	Documentation map[string]string `json:"documentation"`
	GoVersion     string            `json:"go_version"`
	Uptime        string            `json:"uptime"`
}

// Index describes the service and its endpoints
func (h *SystemHandler) Index(c *gin.Context) {
	c.JSON(http.StatusOK, IndexResponse{
		Message:     h.name,
		Description: "Call-center bridge for loan collection",
		Version:     APIVersion,
		HealthCheck: PathHealth,
		APIHealth:   PathAPIHealth,
		Documentation: map[string]string{
			"pre_call_profile":   "GET " + PathPreCall + "?caller_number=<number>",
			"post_call_outcomes": "POST " + PathPostCall,
			"dashboard_stats":    "GET " + PathDashboardStats,
		},
		GoVersion: runtime.Version(),
		Uptime:    h.now().Sub(h.startTime).Round(time.Second).String(),
	})
}

func (h *SystemHandler) timestamp() string {
	return h.now().UTC().Format(time.RFC3339)
}
