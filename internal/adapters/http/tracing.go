package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/samirrijal/farmmap/internal/pkg/telemetry"
)

// TracingMiddleware opens a server span per request, continuing any trace
// context sent by the client, and hands it to handlers via the user context.
func TracingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		carrier := propagation.MapCarrier{}
		for k, v := range c.GetReqHeaders() {
			if len(v) > 0 {
				carrier[strings.ToLower(k)] = v[0]
			}
		}
		ctx := otel.GetTextMapPropagator().Extract(c.UserContext(), carrier)
		ctx, span := telemetry.Start(ctx, c.Method(), trace.WithSpanKind(trace.SpanKindServer))
		c.SetUserContext(ctx)

		err := c.Next()

		status := c.Response().StatusCode()
		span.SetName(c.Method() + " " + c.Route().Path)
		span.SetAttributes(
			attribute.String("http.request.method", c.Method()),
			attribute.String("http.route", c.Route().Path),
			attribute.Int("http.response.status_code", status),
		)
		spanErr := err
		if spanErr == nil && status >= fiber.StatusInternalServerError {
			spanErr = fiber.NewError(status)
		}
		telemetry.End(span, spanErr)
		return err
	}
}
