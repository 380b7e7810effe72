package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func setupLoggingTest() (*gin.Engine, *observer.ObservedLogs) {
	core, logs := observer.New(zap.InfoLevel)
	logger := zap.New(core)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(LoggerMiddleware(logger))
	router.GET("/checkout/sessions/:id", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	router.GET("/boom", func(c *gin.Context) {
		c.Status(http.StatusInternalServerError)
	})
	return router, logs
}

func TestLoggerMiddleware_IncludesSessionID(t *testing.T) {
	router, logs := setupLoggingTest()

	req := httptest.NewRequest("GET", "/checkout/sessions/sess-1", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("Expected 1 log entry, got %d", len(entries))
	}

	fields := entries[0].ContextMap()
	if fields["session_id"] != "sess-1" {
		t.Errorf("Expected session_id sess-1, got %v", fields["session_id"])
	}
	if fields["path"] != "/checkout/sessions/sess-1" {
		t.Errorf("Unexpected path field: %v", fields["path"])
	}
	if _, ok := fields["trace_id"]; !ok {
		t.Error("Expected trace_id field to be present")
	}
}

func TestLoggerMiddleware_ServerErrorLogsAtErrorLevel(t *testing.T) {
	router, logs := setupLoggingTest()

	req := httptest.NewRequest("GET", "/boom", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("Expected 1 log entry, got %d", len(entries))
	}
	if entries[0].Level != zap.ErrorLevel {
		t.Errorf("Expected error level, got %v", entries[0].Level)
	}
	if fields := entries[0].ContextMap(); fields["status"] != int64(http.StatusInternalServerError) {
		t.Errorf("Unexpected status field: %v", fields["status"])
	}
}
