package request

import (
	"strings"

	"github.com/sirupsen/logrus"
)

// ClientLogEntry is the shape the browser-side remote log sink ships to
// POST /api/log.
type ClientLogEntry struct {
	Level     string `json:"level" binding:"required"`
	Message   string `json:"message" binding:"required"`
	Timestamp string `json:"timestamp"`
	SessionID string `json:"sessionId"`
	URL       string `json:"url"`
}

// ResolveLevel maps the client's level string onto a server log level.
// Unknown levels land on info rather than being rejected.
func (e ClientLogEntry) ResolveLevel() logrus.Level {
	switch strings.ToLower(strings.TrimSpace(e.Level)) {
	case "error":
		return logrus.ErrorLevel
	case "warn", "warning":
		return logrus.WarnLevel
	case "debug":
		return logrus.DebugLevel
	default:
		return logrus.InfoLevel
	}
}
