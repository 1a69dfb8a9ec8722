package handler

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"

	"dossierapi/internal/service"
)

// RegisterRoutes attaches HTTP routes to the provided Fiber app. Handlers are
// thin; all decisions live in the services.
func RegisterRoutes(app *fiber.App, db *sql.DB, uploadSvc service.UploadService, docSvc service.DocumentService, versionSvc service.VersionService) {
	// Serve OpenAPI spec and Swagger UI
	app.Get("/openapi.yaml", func(c *fiber.Ctx) error {
		c.Type("yaml")
		return c.SendFile("openapi.yaml")
	})
	app.Get("/docs", func(c *fiber.Ctx) error {
		html := `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>API Docs</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    window.ui = SwaggerUIBundle({
      url: '/openapi.yaml',
      dom_id: '#swagger-ui',
      presets: [SwaggerUIBundle.presets.apis],
      layout: 'BaseLayout'
    });
  </script>
</body>
</html>`
		return c.Type("html").SendString(html)
	})

	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())

	dossier := app.Group("/dossiers/:dossierID")

	dossier.Get("/documents", ListDocuments(docSvc))

	doc := dossier.Group("/documents/:typeCode")
	doc.Put("/", UploadDocument(uploadSvc))
	doc.Get("/", DownloadDocument(docSvc))
	doc.Get("/pages/:pageID", GetPage(docSvc))
	doc.Delete("/pages/:pageID", DeletePage(docSvc))

	doc.Post("/versions", CreateVersion(versionSvc))
	doc.Patch("/versions/:versionID", RenameVersion(versionSvc))
	doc.Put("/versions/:versionID/current", SetCurrentVersion(versionSvc))
	doc.Delete("/versions/:versionID", DeleteVersion(versionSvc))
}
