package remotelog

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func TestHook_ShipsEntries(t *testing.T) {
	received := make(chan Entry, 4)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/log", r.URL.Path)
		var e Entry
		require.NoError(t, json.NewDecoder(r.Body).Decode(&e))
		received <- e
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	hook := New(srv.URL, WithPageURL("https://shop.example/checkout"))
	logger := logrus.New()
	logger.SetOutput(nullWriter{})
	logger.AddHook(hook)

	logger.Warn("Polling error")

	select {
	case e := <-received:
		require.Equal(t, "warning", e.Level)
		require.Equal(t, "Polling error", e.Message)
		require.Equal(t, hook.SessionID(), e.SessionID)
		require.Equal(t, "https://shop.example/checkout", e.URL)
		require.NotEmpty(t, e.Timestamp)
	case <-time.After(3 * time.Second):
		t.Fatal("entry never arrived")
	}
}

func TestHook_LevelFiltering(t *testing.T) {
	hook := New("http://127.0.0.1:0", WithLevels(logrus.ErrorLevel))
	require.Equal(t, []logrus.Level{logrus.ErrorLevel}, hook.Levels())
}

func TestHook_DefaultLevelsExcludeDebug(t *testing.T) {
	hook := New("http://127.0.0.1:0")
	for _, lvl := range hook.Levels() {
		require.NotEqual(t, logrus.DebugLevel, lvl)
	}
}

func TestHook_DeadRelayDoesNotBlock(t *testing.T) {
	hook := New("http://127.0.0.1:0")
	logger := logrus.New()
	logger.SetOutput(nullWriter{})
	logger.AddHook(hook)

	done := make(chan struct{})
	go func() {
		logger.Info("hello")
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("logging blocked on a dead relay")
	}
}

type nullWriter struct{}

func (nullWriter) Write(p []byte) (int, error) { return len(p), nil }
