package handler

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"docrev/docs"
	"docrev/internal/service"
)

// Deps are the collaborators the HTTP surface needs.
type Deps struct {
	DB        *sql.DB
	Revisions service.RevisionService
	Sharing   service.SharingService
	Catalog   service.CatalogService

	// Auth establishes the caller on every /documents route.
	Auth fiber.Handler

	// Metrics is exposed on /metrics when set.
	Metrics prometheus.Gatherer
}

const docsPage = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>docrev API</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    window.ui = SwaggerUIBundle({
      url: '/openapi.json',
      dom_id: '#swagger-ui',
      presets: [SwaggerUIBundle.presets.apis],
      layout: 'BaseLayout'
    });
  </script>
</body>
</html>`

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
func RegisterRoutes(app *fiber.App, d Deps) {
	app.Get("/openapi.json", func(c *fiber.Ctx) error {
		c.Type("json")
		return c.SendString(docs.SwaggerInfo.ReadDoc())
	})
	app.Get("/docs", func(c *fiber.Ctx) error {
		return c.Type("html").SendString(docsPage)
	})

	app.Get("/health", HealthCheck(d.DB))
	app.Get("/healthz", LivenessProbe())

	if d.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(d.Metrics, promhttp.HandlerOpts{})))
	}

	g := app.Group("/documents", d.Auth)
	g.Get("/", ListDocuments(d.Catalog))

	// Hash routes first: the wildcard below would swallow them.
	g.Get("/hash/:hash", DownloadByHash(d.Revisions))
	g.Get("/hash/:hash/link", LinkByHash(d.Revisions))
	g.Get("/hash/:hash/shares", ListShares(d.Sharing))
	g.Post("/hash/:hash/share", ShareByHash(d.Sharing))

	g.Post("/*", UploadRevision(d.Revisions))
	g.Get("/*", DownloadRevision(d.Revisions))
}
