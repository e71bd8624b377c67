package http

import (
	"os"
	"sync"

	"github.com/gofiber/fiber/v2"
)

// DefaultSpecPath is where the API description is read from, relative to the
// working directory of the server.
const DefaultSpecPath = "api/openapi.yaml"

const swaggerUIHTML = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <title>Farm Map API · Swagger UI</title>
  <link rel="stylesheet" href="https://cdn.jsdelivr.net/npm/swagger-ui-dist@5/swagger-ui.css">
</head>
<body style="margin:0">
  <div id="swagger-ui"></div>
  <script src="https://cdn.jsdelivr.net/npm/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    SwaggerUIBundle({
      url: '/docs/openapi.yaml',
      dom_id: '#swagger-ui',
      deepLinking: true,
      tryItOutEnabled: true,
      presets: [SwaggerUIBundle.presets.apis],
    });
  </script>
</body>
</html>`

// SetupDocs serves Swagger UI at /docs and the API description at
// /docs/openapi.yaml. The file is read on first request and kept.
func SetupDocs(app *fiber.App, specPath string) {
	if specPath == "" {
		specPath = DefaultSpecPath
	}
	var (
		once    sync.Once
		spec    []byte
		readErr error
	)

	app.Get("/docs", func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
		return c.SendString(swaggerUIHTML)
	})

	app.Get("/docs/openapi.yaml", func(c *fiber.Ctx) error {
		once.Do(func() { spec, readErr = os.ReadFile(specPath) })
		if readErr != nil {
			return errNotFound(c, "openapi.yaml not found")
		}
		c.Set(fiber.HeaderContentType, "application/yaml")
		return c.Send(spec)
	})
}
