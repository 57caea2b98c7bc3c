package matching

import (
	"go-docmap/internal/config"
	"go-docmap/internal/middleware"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

type MatchApi struct {
	controller *MatchController
	config     *config.Config
}

func NewMatchApi(controller *MatchController, config *config.Config) *MatchApi {
	return &MatchApi{
		controller: controller,
		config:     config,
	}
}

func (h *MatchApi) Setup(app *fiber.App) {
	matching := app.Group("/api/matching", middleware.AuthMiddleware(h.config.SkipAuth))

	matching.Post("/execute", h.controller.Execute)
	matching.Post("/preview", h.controller.Preview)

	matching.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	matching.Get("/ws/:instance_id", websocket.New(h.controller.StreamProgress))
}
