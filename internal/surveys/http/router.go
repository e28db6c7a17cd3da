package http

import "github.com/gin-gonic/gin"

// Register registers the survey routes on a group mounted at BasePath
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("/survey/", h.ListSurveys)
	rg.GET("/survey/:slug/", h.GetSurvey)
}
