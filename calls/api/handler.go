package api

import (
	"net/http"

	"ws-chatt/backend/calls/models"
	"ws-chatt/backend/calls/service"

	"github.com/gin-gonic/gin"
)

// CallHandler serves the call history tab.
type CallHandler struct {
	service *service.CallService
}

func NewCallHandler(service *service.CallService) *CallHandler {
	return &CallHandler{service: service}
}

func (h *CallHandler) RegisterRoutesV1(rg *gin.RouterGroup) {
	calls := rg.Group("/calls")
	{
		calls.GET("", h.History)
		calls.POST("", h.AddCall)
	}
}

func (h *CallHandler) History(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"calls": h.service.History()})
}

func (h *CallHandler) AddCall(c *gin.Context) {
	var call models.Call
	if err := c.ShouldBindJSON(&call); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if call.ContactID == "" || call.Type == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "contact_id and type are required"})
		return
	}
	c.JSON(http.StatusCreated, h.service.AddCall(call))
}
