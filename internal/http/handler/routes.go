package handler

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"

	"notesapi/internal/http/middleware"
	"notesapi/internal/repository"
	"notesapi/internal/service"
	"notesapi/internal/token"
)

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// Handlers stay thin; business rules live in the service layer.
func RegisterRoutes(app *fiber.App, db *sql.DB, authSvc service.AuthService, noteSvc service.NoteService, tokens *token.Service, users repository.UserRepository) {
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

	// Health checks DB connectivity; healthz is a bare liveness probe.
	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())

	auth := app.Group("/auth")
	auth.Post("/register", Register(authSvc))
	auth.Post("/login", Login(authSvc))

	notes := app.Group("/notes")
	notes.Get("/", ListNotes(noteSvc))
	notes.Get("/filters", GetFilterOptions(noteSvc))
	notes.Get("/download/:id", DownloadNote(noteSvc))
	notes.Post("/upload", middleware.RequireAuth(tokens, users), UploadNote(noteSvc))
}
