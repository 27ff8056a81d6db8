package api

import (
	"net/http"

	"ws-chatt/backend/status/models"
	"ws-chatt/backend/status/service"

	"github.com/gin-gonic/gin"
)

// StatusHandler serves the status (stories) tab.
type StatusHandler struct {
	service *service.StatusService
}

func NewStatusHandler(service *service.StatusService) *StatusHandler {
	return &StatusHandler{service: service}
}

func (h *StatusHandler) RegisterRoutesV1(rg *gin.RouterGroup) {
	statuses := rg.Group("/statuses")
	{
		statuses.GET("", h.List)
		statuses.POST("", h.AddUserStatus)
		statuses.POST("/viewed", h.MarkViewed)
	}
}

func (h *StatusHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"statuses": h.service.Statuses()})
}

func (h *StatusHandler) AddUserStatus(c *gin.Context) {
	var update models.StatusUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if update.Content == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Status content is required"})
		return
	}
	c.JSON(http.StatusCreated, h.service.AddUserStatus(update))
}

func (h *StatusHandler) MarkViewed(c *gin.Context) {
	var req struct {
		ContactID string `json:"contact_id"`
		UpdateID  string `json:"update_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.service.MarkViewed(req.ContactID, req.UpdateID)
	c.Status(http.StatusNoContent)
}
