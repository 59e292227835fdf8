package logging

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func observe(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zap.DebugLevel)
	restore := SetLogger(zap.New(core))
	t.Cleanup(restore)
	return logs
}

func TestLogKV_LevelsAndFields(t *testing.T) {
	logs := observe(t)

	LogKV("warn", "listing failed", map[string]interface{}{"prefix": "events/1", "err": errors.New("boom")})
	LogKV("bogus", "defaults to info", nil)

	entries := logs.AllUntimed()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Level != zap.WarnLevel {
		t.Fatalf("expected warn level, got %s", entries[0].Level)
	}
	ctx := entries[0].ContextMap()
	if ctx["prefix"] != "events/1" {
		t.Fatalf("expected prefix field, got %v", ctx["prefix"])
	}
	if ctx["err"] != "boom" {
		t.Fatalf("expected err field to carry message, got %v", ctx["err"])
	}
	if entries[1].Level != zap.InfoLevel {
		t.Fatalf("expected info level for unknown level, got %s", entries[1].Level)
	}
}

func TestJSONLogger_SetsRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logs := observe(t)

	r := gin.New()
	r.Use(JSONLogger())
	r.GET("/live", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/live", nil))
	if w.Header().Get(RequestIDHeader) == "" {
		t.Fatalf("expected generated request id header")
	}

	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if got := w.Header().Get(RequestIDHeader); got != "abc-123" {
		t.Fatalf("expected propagated request id, got %q", got)
	}

	entries := logs.FilterMessage("request").AllUntimed()
	if len(entries) != 2 {
		t.Fatalf("expected 2 request logs, got %d", len(entries))
	}
	if entries[1].Level != zap.ErrorLevel {
		t.Fatalf("expected error level for 500, got %s", entries[1].Level)
	}
}
