package adminui

import (
	"net/http"

	"github.com/crowdsourcing/surveyadmin/internal/fieldnames"
	"github.com/crowdsourcing/surveyadmin/internal/surveys/domain"
	"github.com/gin-gonic/gin"
)

const (
	SuggestionsPath = "/fieldnames/suggestions"
	StatusPath      = "/fieldnames/status"
	StateHeader     = "X-Fieldnames-State"
)

// MetricsSource exposes loader call metrics
type MetricsSource interface {
	Metrics() fieldnames.MetricsSnapshot
}

// Handler serves the tag source and the store status
type Handler struct {
	store   *fieldnames.Store
	metrics MetricsSource
	source  func(TagRequest, TagResponse)
}

func NewHandler(store *fieldnames.Store, metrics MetricsSource) *Handler {
	return &Handler{
		store:   store,
		metrics: metrics,
		source:  TagSource(store),
	}
}

// Suggestions answers the widget's tag source with the full suggestion list
func (h *Handler) Suggestions(c *gin.Context) {
	req := TagRequest{Term: c.Query("term")}
	h.source(req, func(items []domain.Suggestion) {
		c.Header(StateHeader, string(h.store.State()))
		c.JSON(http.StatusOK, items)
	})
}

// Status reports the store lifecycle and loader metrics
func (h *Handler) Status(c *gin.Context) {
	snap := h.store.Snapshot()
	if err := h.store.Err(); err != nil {
		snap.LastError = err.Error()
	}
	resp := gin.H{"store": snap}
	if h.metrics != nil {
		resp["loader"] = h.metrics.Metrics()
	}
	c.JSON(http.StatusOK, resp)
}

// Register registers the field-name routes
func (h *Handler) Register(rg gin.IRoutes) {
	rg.GET(SuggestionsPath, h.Suggestions)
	rg.GET(StatusPath, h.Status)
}
