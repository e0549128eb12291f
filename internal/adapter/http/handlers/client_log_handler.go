package handlers

import (
	"net/http"

	request "taprelay/internal/adapter/http/dto/request"
	response "taprelay/internal/adapter/http/dto/response"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// ClientLogHandler ingests diagnostics shipped by the browser-side remote log
// sink and re-emits them on the server log. Entries are not stored anywhere
// else.

type ClientLogHandler struct{}

func NewClientLogHandler() *ClientLogHandler {
	return &ClientLogHandler{}
}

func (h *ClientLogHandler) Ingest(c *gin.Context) {
	var entry request.ClientLogEntry
	if err := c.ShouldBindJSON(&entry); err != nil {
		c.JSON(http.StatusBadRequest, response.FromError(err))
		return
	}

	log.StandardLogger().Logf(entry.ResolveLevel(),
		"[clientlog] session=%s url=%s ts=%s msg=%s",
		entry.SessionID, entry.URL, entry.Timestamp, entry.Message)

	c.Status(http.StatusNoContent)
}
