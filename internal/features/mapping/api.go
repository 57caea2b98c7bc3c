package mapping

import (
	"go-docmap/internal/config"
	"go-docmap/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type MappingApi struct {
	controller *MappingController
	config     *config.Config
}

func NewMappingApi(controller *MappingController, config *config.Config) *MappingApi {
	return &MappingApi{
		controller: controller,
		config:     config,
	}
}

func (h *MappingApi) Setup(app *fiber.App) {
	mappings := app.Group("/api/mappings", middleware.AuthMiddleware(h.config.SkipAuth))

	mappings.Post("/", h.controller.CreateConfig)
	mappings.Get("/", h.controller.ListConfigs)
	mappings.Post("/validate", h.controller.ValidateConfig)
	mappings.Get("/resolve/:template_id", h.controller.ResolveMapping)
	mappings.Get("/:id", h.controller.GetConfig)
	mappings.Put("/:id", h.controller.UpdateConfig)
	mappings.Delete("/:id", h.controller.DisableConfig)
}
