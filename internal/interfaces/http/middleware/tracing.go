// Package middleware provides the gin middleware chain of the back office
// API: request ids, CORS, tracing, bearer authentication and permission
// checks.
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracingConfig controls the server span middleware
type TracingConfig struct {
	ServiceName string
	Enabled     bool
}

// Tracing opens an otelgin server span named "METHOD /route/:pattern" and
// runs annotateSpan inside it. Disabled tracing yields an empty chain.
func Tracing(cfg TracingConfig) gin.HandlersChain {
	if !cfg.Enabled {
		return nil
	}
	return gin.HandlersChain{otelgin.Middleware(cfg.ServiceName), annotateSpan}
}

// annotateSpan waits for the handlers, then copies the request id and the
// authenticated member onto the span. Client errors are flagged too;
// otelgin only flags 5xx.
func annotateSpan(c *gin.Context) {
	c.Next()

	span := trace.SpanFromContext(c.Request.Context())
	if !span.IsRecording() {
		return
	}
	attrs := make([]attribute.KeyValue, 0, 3)
	for key, val := range map[string]string{
		"request_id": GetRequestID(c),
		"user_id":    GetJWTUserID(c),
		"username":   GetJWTUsername(c),
	} {
		if val != "" {
			attrs = append(attrs, attribute.String(key, val))
		}
	}
	span.SetAttributes(attrs...)

	if status := c.Writer.Status(); status >= http.StatusBadRequest {
		span.SetStatus(codes.Error, http.StatusText(status))
	}
}
