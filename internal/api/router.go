package api

import (
	"log/slog"

	"github.com/SnehashisOrg/webapp/internal/service"
	"github.com/gofiber/fiber/v2"
)

// SetupRoutes wires the HTTP surface. Registration, verification, and the
// health check are open; everything else sits behind the Basic-auth gate.
func SetupRoutes(app *fiber.App, userHandler *UserHandler, imageHandler *ImageHandler, userService service.UserService, logger *slog.Logger) {
	app.Use(RequestLogger(logger))
	app.Use(SecurityHeaders())

	app.All("/healthz", userHandler.Health)
	app.Post("/user", userHandler.Register)
	app.Get("/user/verify", userHandler.Verify)

	self := app.Group("/user/self", BasicAuthMiddleware(userService))
	self.Get("/", userHandler.GetSelf)
	self.Put("/", userHandler.UpdateSelf)
	self.Post("/pic", imageHandler.Upload)
	self.Get("/pic", imageHandler.Get)
	self.Delete("/pic", imageHandler.Delete)
}
