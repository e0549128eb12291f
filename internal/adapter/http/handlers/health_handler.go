package handlers

import (
	"net/http"

	response "taprelay/internal/adapter/http/dto/response"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct{}

func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

func (h *HealthHandler) Check(c *gin.Context) {
	c.JSON(http.StatusOK, response.HealthResponse{
		Status:  "ok",
		Message: "Tap Payment Relay Running",
	})
}
