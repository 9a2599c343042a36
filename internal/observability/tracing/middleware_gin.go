package tracing

import (
	"net/http"

	"github.com/gin-gonic/gin"
	obscontext "github.com/smallbiznis/crudpark/internal/observability/context"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// GinMiddleware opens a server span per request. Lifecycle routes are named
// after their action (parking.entry, parking.exit, ...) so traces group by
// booth operation rather than by URL.
func GinMiddleware() gin.HandlerFunc {
	tracer := otel.Tracer("crudpark/http")
	return func(c *gin.Context) {
		ctx := ExtractContext(c.Request.Context(), propagation.HeaderCarrier(c.Request.Header))
		ctx, span := tracer.Start(ctx, "HTTP "+c.Request.Method, trace.WithSpanKind(trace.SpanKindServer))
		defer span.End()

		if requestID := obscontext.RequestIDFromContext(ctx); requestID != "" {
			span.SetAttributes(attribute.String("request_id", requestID))
		}
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unknown"
		}
		status := c.Writer.Status()
		attrs := []attribute.KeyValue{
			attribute.String("http.method", c.Request.Method),
			attribute.String("http.route", route),
			attribute.Int("http.status_code", status),
		}
		if action := obscontext.ActionForRoute(route); action != "" {
			span.SetName("parking." + action)
			attrs = append(attrs, attribute.String("parking.action", action))
		} else {
			span.SetName("HTTP " + c.Request.Method + " " + route)
		}
		if folio := c.GetString(obscontext.FolioKey); folio != "" {
			attrs = append(attrs, attribute.String("ticket.folio", folio))
		}
		if operatorID := obscontext.OperatorIDFromContext(c.Request.Context()); operatorID != 0 {
			attrs = append(attrs, attribute.Int64("operator_id", operatorID))
		}
		span.SetAttributes(SafeAttributes(attrs...)...)

		if status >= http.StatusInternalServerError {
			if lastErr := c.Errors.Last(); lastErr != nil {
				if safeErr := SafeError(lastErr.Err); safeErr != nil {
					span.RecordError(safeErr)
				}
			}
			span.SetStatus(codes.Error, http.StatusText(status))
		}
	}
}
