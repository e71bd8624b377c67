package http

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/farmmap/internal/pkg/logging"
)

// RequestIDLogMiddleware copies the Fiber request ID into the user context
// together with a request-scoped *slog.Logger, so usecases can log with the
// request ID attached via logging.LoggerFromCtx.
func RequestIDLogMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		rid := c.Locals("requestid")
		if rid == nil {
			return c.Next()
		}

		ridStr, ok := rid.(string)
		if !ok || ridStr == "" {
			return c.Next()
		}

		reqLogger := slog.Default().With("request_id", ridStr)
		c.SetUserContext(logging.WithLogger(c.UserContext(), reqLogger, ridStr))

		return c.Next()
	}
}
