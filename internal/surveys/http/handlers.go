package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/crowdsourcing/surveyadmin/internal/logging"
	"github.com/crowdsourcing/surveyadmin/internal/surveys/domain"
	"github.com/gin-gonic/gin"
)

// BasePath is where the survey API is mounted
const BasePath = "/survey/api/v1"

const defaultLimit = 20

// SurveyProvider is what the handlers need from the survey service
type SurveyProvider interface {
	List(ctx context.Context, limit, offset int) ([]domain.Survey, int, error)
	Get(ctx context.Context, slug string) (*domain.Survey, error)
}

// Handler serves the survey resource
type Handler struct {
	surveys SurveyProvider
}

func NewHandler(surveys SurveyProvider) *Handler {
	return &Handler{surveys: surveys}
}

// ListSurveys returns a page of surveys with their questions
func (h *Handler) ListSurveys(c *gin.Context) {
	limit, err := queryInt(c, "limit", defaultLimit)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	offset, err := queryInt(c, "offset", 0)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	surveys, total, err := h.surveys.List(c.Request.Context(), limit, offset)
	if err != nil {
		logging.NewLogger(c.Request.Context()).LogError("list_surveys", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list surveys"})
		return
	}

	for i := range surveys {
		surveys[i].ResourceURI = resourceURI(surveys[i].Slug)
	}

	c.JSON(http.StatusOK, domain.SurveyList{
		Meta:    pageMeta(limit, offset, total),
		Objects: surveys,
	})
}

// GetSurvey returns one survey by slug
func (h *Handler) GetSurvey(c *gin.Context) {
	slug := c.Param("slug")
	if slug == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "survey slug is required"})
		return
	}

	survey, err := h.surveys.Get(c.Request.Context(), slug)
	if err != nil {
		if errors.Is(err, domain.ErrSurveyNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "survey not found"})
			return
		}
		logging.NewLogger(c.Request.Context()).LogError("get_survey", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get survey"})
		return
	}

	survey.ResourceURI = resourceURI(survey.Slug)
	c.JSON(http.StatusOK, survey)
}

func queryInt(c *gin.Context, key string, def int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("%s must be a non-negative integer", key)
	}
	return v, nil
}

func resourceURI(slug string) string {
	return BasePath + "/survey/" + slug + "/"
}

func pageMeta(limit, offset, total int) domain.ListMeta {
	meta := domain.ListMeta{Limit: limit, Offset: offset, TotalCount: total}
	if limit == 0 {
		return meta
	}
	if offset+limit < total {
		next := pageURI(limit, offset+limit)
		meta.Next = &next
	}
	if offset > 0 {
		prevOffset := offset - limit
		if prevOffset < 0 {
			prevOffset = 0
		}
		prev := pageURI(limit, prevOffset)
		meta.Previous = &prev
	}
	return meta
}

func pageURI(limit, offset int) string {
	return fmt.Sprintf("%s/survey/?limit=%d&offset=%d", BasePath, limit, offset)
}
