package http

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/farmmap/internal/core/domain"
	"github.com/samirrijal/farmmap/internal/pkg/logging"
)

// APIError is a structured error response.
type APIError struct {
	Status    int    `json:"status"`
	Code      string `json:"code"`    // Error code: bad_request, not_found, internal_error, etc.
	Message   string `json:"message"` // Human-readable message
	RequestID string `json:"request_id,omitempty"`
}

// newError builds a JSON error response with a request ID.
func newError(c *fiber.Ctx, status int, code string, message string) error {
	reqID, _ := c.Locals("requestid").(string)
	return c.Status(status).JSON(APIError{
		Status:    status,
		Code:      code,
		Message:   message,
		RequestID: reqID,
	})
}

// errBadRequest returns a 400 error.
func errBadRequest(c *fiber.Ctx, msg string) error {
	return newError(c, 400, "bad_request", msg)
}

// errNotFound returns a 404 error.
func errNotFound(c *fiber.Ctx, msg string) error {
	return newError(c, 404, "not_found", msg)
}

// errInternal returns a 500 error.
func errInternal(c *fiber.Ctx, msg string) error {
	return newError(c, 500, "internal_error", msg)
}

// errBadGateway returns a 502 error.
func errBadGateway(c *fiber.Ctx, msg string) error {
	return newError(c, 502, "bad_gateway", msg)
}

// respondErr maps a service error onto the error envelope.
func respondErr(c *fiber.Ctx, err error, what string) error {
	var fe *domain.FetchError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return errNotFound(c, what+" not found")
	case errors.Is(err, domain.ErrInvalidBounds),
		errors.Is(err, domain.ErrInvalidLocation),
		errors.Is(err, domain.ErrInvalidLevel),
		errors.Is(err, domain.ErrMissingParent):
		return errBadRequest(c, err.Error())
	case errors.As(err, &fe):
		return errBadGateway(c, err.Error())
	}
	logging.LoggerFromCtx(c.UserContext()).Error("request failed",
		slog.String("path", c.Path()),
		slog.String("error", err.Error()),
	)
	return errInternal(c, err.Error())
}
