// Package remotelog ships log entries to the relay's /api/log endpoint so
// client-side diagnostics end up on the server log.
//
// It replaces the old page's trick of monkey-patching the global console:
// instead of mutating shared global state, callers attach the hook to
// whichever logger they hand to the checkout coordinator.
package remotelog

import (
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Entry is the wire shape expected by POST /api/log.
type Entry struct {
	Level     string `json:"level"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
	SessionID string `json:"sessionId"`
	URL       string `json:"url"`
}

// Hook forwards logrus entries to the relay, fire and forget. A slow or dead
// relay must never stall the caller, so delivery happens on a goroutine and
// failures are dropped silently.
type Hook struct {
	client    *resty.Client
	sessionID string
	pageURL   string
	levels    []logrus.Level
}

var _ logrus.Hook = (*Hook)(nil)

// Option configures a Hook.
type Option func(*Hook)

// WithPageURL tags every shipped entry with the page it came from.
func WithPageURL(u string) Option {
	return func(h *Hook) { h.pageURL = u }
}

// WithLevels restricts which levels get shipped. Default: info and above.
func WithLevels(levels ...logrus.Level) Option {
	return func(h *Hook) { h.levels = levels }
}

func New(relayBaseURL string, opts ...Option) *Hook {
	h := &Hook{
		client: resty.New().
			SetBaseURL(relayBaseURL).
			SetHeader("Content-Type", "application/json").
			SetTimeout(5 * time.Second),
		sessionID: "session_" + uuid.NewString(),
		levels: []logrus.Level{
			logrus.PanicLevel, logrus.FatalLevel, logrus.ErrorLevel,
			logrus.WarnLevel, logrus.InfoLevel,
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// SessionID returns the identifier stamped on every shipped entry, so server
// logs from one checkout session can be correlated.
func (h *Hook) SessionID() string {
	return h.sessionID
}

func (h *Hook) Levels() []logrus.Level {
	return h.levels
}

func (h *Hook) Fire(e *logrus.Entry) error {
	entry := Entry{
		Level:     e.Level.String(),
		Message:   e.Message,
		Timestamp: e.Time.UTC().Format(time.RFC3339Nano),
		SessionID: h.sessionID,
		URL:       h.pageURL,
	}
	go func() {
		_, _ = h.client.R().SetBody(entry).Post("/api/log")
	}()
	return nil
}
