package http

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

// DeprecatedRoute is a path still served for old map clients until its
// sunset date.
type DeprecatedRoute struct {
	Path        string // fiber pattern, ":param" segments allowed
	SunsetDate  time.Time
	Alternative string
}

// DeprecationMiddleware stamps Deprecation and Sunset (RFC 8594) and a
// successor Link (RFC 8288) on requests to deprecated routes.
func DeprecationMiddleware(routes []DeprecatedRoute) fiber.Handler {
	patterns := make([][]string, len(routes))
	for i, r := range routes {
		patterns[i] = splitPath(r.Path)
	}

	return func(c *fiber.Ctx) error {
		segs := splitPath(c.Path())
		for i, r := range routes {
			if !segmentsMatch(segs, patterns[i]) {
				continue
			}
			c.Set("Deprecation", "true")
			c.Set("Sunset", r.SunsetDate.UTC().Format(http.TimeFormat))
			if r.Alternative != "" {
				c.Set("Link", fmt.Sprintf(`<%s>; rel="successor-version"`, r.Alternative))
			}
			days := int(time.Until(r.SunsetDate).Hours() / 24)
			c.Set("Warning", fmt.Sprintf(`299 - "deprecated, sunset in %d days"`, days))
			break
		}
		return c.Next()
	}
}

func splitPath(p string) []string {
	return strings.Split(strings.Trim(p, "/"), "/")
}

// segmentsMatch matches "/v1/plants/:id" against "/v1/plants/abc-123".
func segmentsMatch(path, pattern []string) bool {
	if len(path) != len(pattern) {
		return false
	}
	for i, seg := range pattern {
		if strings.HasPrefix(seg, ":") && path[i] != "" {
			continue
		}
		if path[i] != seg {
			return false
		}
	}
	return true
}
