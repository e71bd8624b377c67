package http

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// ETagMiddleware tags successful GET/HEAD bodies with a weak ETag and answers
// 304 when If-None-Match already carries it. Responses marked no-store are
// left alone.
func ETagMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := c.Next(); err != nil {
			return err
		}

		m := c.Method()
		if (m != fiber.MethodGet && m != fiber.MethodHead) || c.Response().StatusCode() != fiber.StatusOK {
			return nil
		}
		if strings.Contains(string(c.Response().Header.Peek(fiber.HeaderCacheControl)), "no-store") {
			return nil
		}
		body := c.Response().Body()
		if len(body) == 0 {
			return nil
		}

		sum := sha256.Sum256(body)
		etag := `W/"` + hex.EncodeToString(sum[:8]) + `"`
		c.Set(fiber.HeaderETag, etag)

		if etagMatches(c.Get(fiber.HeaderIfNoneMatch), etag) {
			c.Status(fiber.StatusNotModified)
			c.Response().ResetBody()
		}
		return nil
	}
}

// etagMatches applies the weak comparison of RFC 9110 to an If-None-Match
// list.
func etagMatches(header, etag string) bool {
	if header == "" {
		return false
	}
	want := strings.TrimPrefix(etag, "W/")
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "*" || strings.TrimPrefix(candidate, "W/") == want {
			return true
		}
	}
	return false
}
