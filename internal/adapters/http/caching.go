package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

type cacheRule struct {
	prefixes []string
	policy   string
}

// cacheRules are checked in order; the first matching prefix wins.
// Viewport renders vary with per-user filters and stay private.
var cacheRules = []cacheRule{
	{[]string{"/v1/health", "/v1/ready"}, "public, max-age=10"},
	{[]string{"/metrics"}, "no-cache"},
	{[]string{"/v1/map/"}, "private, max-age=15"},
	{[]string{"/v1/plants/", "/api/plants/"}, "public, max-age=30"},
	{[]string{"/v1/domains", "/v1/plots"}, "public, max-age=300"},
	{[]string{"/v1/"}, "public, max-age=60"},
}

func cachePolicy(path string) string {
	for _, r := range cacheRules {
		for _, p := range r.prefixes {
			if strings.HasPrefix(path, p) {
				return r.policy
			}
		}
	}
	return ""
}

// CachingMiddleware fills in Cache-Control on GET responses when the handler
// left it empty.
func CachingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()
		if c.Method() != fiber.MethodGet || c.GetRespHeader(fiber.HeaderCacheControl) != "" {
			return err
		}
		if policy := cachePolicy(c.Path()); policy != "" {
			c.Set(fiber.HeaderCacheControl, policy)
		}
		return err
	}
}
