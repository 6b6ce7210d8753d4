package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestTracingSetsTraceIDHeader(t *testing.T) {
	prev := otel.GetTracerProvider()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSampler(sdktrace.AlwaysSample()))
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		_ = tp.Shutdown(t.Context())
		otel.SetTracerProvider(prev)
	})

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(OtelTracing("gridspace-test"), TraceID())
	r.GET("/api/v1/ping", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	tests := []struct {
		path   string
		traced bool
	}{
		{path: "/api/v1/ping", traced: true},
		{path: "/health", traced: false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, http.StatusOK, w.Code)
			if tt.traced {
				assert.Len(t, w.Header().Get("X-Trace-Id"), 32)
			} else {
				assert.Empty(t, w.Header().Get("X-Trace-Id"))
			}
		})
	}
}
