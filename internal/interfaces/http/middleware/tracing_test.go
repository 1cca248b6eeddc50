package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// setupTestTracer sets up a test tracer provider and returns the span recorder.
func setupTestTracer(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()

	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	t.Cleanup(func() {
		_ = tp.Shutdown(t.Context())
	})

	return sr
}

func findSpan(t *testing.T, sr *tracetest.SpanRecorder, name string) sdktrace.ReadOnlySpan {
	t.Helper()
	for _, span := range sr.Ended() {
		if span.Name() == name {
			return span
		}
	}
	require.Failf(t, "span not found", name)
	return nil
}

func attr(span sdktrace.ReadOnlySpan, key attribute.Key) (attribute.Value, bool) {
	for _, kv := range span.Attributes() {
		if kv.Key == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func tracedRouter(cfg TracingConfig, handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestID())
	router.Use(Tracing(cfg)...)
	router.Use(handlers...)
	return router
}

func TestTracing_Disabled(t *testing.T) {
	sr := setupTestTracer(t)
	assert.Empty(t, Tracing(TracingConfig{ServiceName: "plfog-backoffice"}))

	router := tracedRouter(TracingConfig{ServiceName: "plfog-backoffice"})
	router.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/test").Code)
	assert.Empty(t, sr.Ended())
}

func TestTracing_SpanAttributes(t *testing.T) {
	sr := setupTestTracer(t)

	// stands in for JWTAuth, which runs on the route group after tracing
	router := tracedRouter(TracingConfig{Enabled: true, ServiceName: "plfog-backoffice"}, func(c *gin.Context) {
		c.Set(JWTUserIDKey, "user-42")
		c.Set(JWTUsernameKey, "jane")
		c.Next()
	})
	router.GET("/api/v1/classes/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/api/v1/classes/7", nil)
	req.Header.Set(RequestIDHeader, "req-123")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	span := findSpan(t, sr, "GET /api/v1/classes/:id")
	for key, want := range map[attribute.Key]string{
		"request_id": "req-123",
		"user_id":    "user-42",
		"username":   "jane",
	} {
		v, ok := attr(span, key)
		require.True(t, ok, key)
		assert.Equal(t, want, v.AsString())
	}
	assert.NotEqual(t, codes.Error, span.Status().Code)
}

func TestTracing_ErrorStatus(t *testing.T) {
	for _, status := range []int{http.StatusBadRequest, http.StatusForbidden, http.StatusNotFound, http.StatusConflict, http.StatusInternalServerError} {
		t.Run(http.StatusText(status), func(t *testing.T) {
			sr := setupTestTracer(t)
			router := tracedRouter(TracingConfig{Enabled: true, ServiceName: "plfog-backoffice"})
			router.GET("/test", func(c *gin.Context) { c.Status(status) })

			serve(router, http.MethodGet, "/test")

			span := findSpan(t, sr, "GET /test")
			assert.Equal(t, codes.Error, span.Status().Code)
			_, tagged := attr(span, "user_id")
			assert.False(t, tagged, "anonymous requests carry no user")
		})
	}
}

func TestAnnotateSpan_WithoutSpan(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(annotateSpan)
	router.GET("/test", func(c *gin.Context) { c.Status(http.StatusBadRequest) })

	assert.Equal(t, http.StatusBadRequest, serve(router, http.MethodGet, "/test").Code)
}
