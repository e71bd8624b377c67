package http

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.opentelemetry.io/otel/trace"

	"github.com/samirrijal/farmmap/internal/pkg/logging"
)

// viewportParams are echoed into access logs so slow map requests can be
// tied to the viewport that caused them.
var viewportParams = []string{"zoom", "swLng", "swLat", "neLng", "neLat", "cluster"}

// AccessLogMiddleware writes one structured line per request through the
// request-scoped logger. 5xx and handler errors log at ERROR, 4xx at WARN.
func AccessLogMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		attrs := []slog.Attr{
			slog.String("method", c.Method()),
			slog.String("route", c.Route().Path),
			slog.String("path", c.Path()),
			slog.Int("status", status),
			slog.Float64("latency_ms", float64(time.Since(start).Microseconds())/1000),
			slog.Int("bytes_out", len(c.Response().Body())),
		}
		for _, p := range viewportParams {
			if v := c.Query(p); v != "" {
				attrs = append(attrs, slog.String(p, v))
			}
		}
		if sc := trace.SpanContextFromContext(c.UserContext()); sc.IsValid() {
			attrs = append(attrs, slog.String("trace_id", sc.TraceID().String()))
		}

		level := slog.LevelInfo
		switch {
		case err != nil:
			attrs = append(attrs, slog.String("error", err.Error()))
			level = slog.LevelError
		case status >= 500:
			level = slog.LevelError
		case status >= 400:
			level = slog.LevelWarn
		}

		logging.LoggerFromCtx(c.UserContext()).LogAttrs(c.UserContext(), level, "http request", attrs...)
		return err
	}
}
