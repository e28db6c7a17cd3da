package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger is a dependency that can report liveness
type Pinger interface {
	PingContext(ctx context.Context) error
}

// PingFunc adapts a function to Pinger
type PingFunc func(ctx context.Context) error

func (f PingFunc) PingContext(ctx context.Context) error { return f(ctx) }

type HealthResponse struct {
	Status     string    `json:"status"`
	Timestamp  time.Time `json:"timestamp"`
	Service    string    `json:"service"`
	Version    string    `json:"version"`
	DB         string    `json:"db,omitempty"`
	Redis      string    `json:"redis,omitempty"`
	Fieldnames string    `json:"fieldnames,omitempty"`
}

type HealthHandler struct {
	serviceName string
	version     string
	db          Pinger
	redis       Pinger
	fieldnames  func() string
}

// HealthOption adds a dependency to the health report
type HealthOption func(*HealthHandler)

func WithDB(p Pinger) HealthOption {
	return func(h *HealthHandler) { h.db = p }
}

func WithRedis(p Pinger) HealthOption {
	return func(h *HealthHandler) { h.redis = p }
}

// WithFieldnames reports the suggestion store state
func WithFieldnames(state func() string) HealthOption {
	return func(h *HealthHandler) { h.fieldnames = state }
}

func NewHealthHandler(serviceName, version string, opts ...HealthOption) *HealthHandler {
	h := &HealthHandler{
		serviceName: serviceName,
		version:     version,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *HealthHandler) HealthCheck(c *gin.Context) {
	resp := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Service:   h.serviceName,
		Version:   h.version,
		DB:        pingStatus(c.Request.Context(), h.db),
		Redis:     pingStatus(c.Request.Context(), h.redis),
	}
	if h.fieldnames != nil {
		resp.Fieldnames = h.fieldnames()
	}

	c.JSON(http.StatusOK, resp)
}

func (h *HealthHandler) RegisterRoutes(r gin.IRouter) {
	r.GET("/health", h.HealthCheck)
	r.GET("/healthz", h.HealthCheck)
}

func pingStatus(ctx context.Context, p Pinger) string {
	if p == nil {
		return "disabled"
	}
	pingCtx, cancel := context.WithTimeout(ctx, 1*time.Second)
	defer cancel()

	if err := p.PingContext(pingCtx); err != nil {
		return "down"
	}
	return "up"
}
