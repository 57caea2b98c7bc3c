package instance

import (
	"go-docmap/internal/config"
	"go-docmap/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type InstanceApi struct {
	controller *InstanceController
	config     *config.Config
}

func NewInstanceApi(controller *InstanceController, config *config.Config) *InstanceApi {
	return &InstanceApi{
		controller: controller,
		config:     config,
	}
}

func (h *InstanceApi) Setup(app *fiber.App) {
	instances := app.Group("/api/instances", middleware.AuthMiddleware(h.config.SkipAuth))

	instances.Post("/", h.controller.CreateInstance)
	instances.Get("/", h.controller.ListInstances)
	instances.Get("/:id", h.controller.GetInstance)
	instances.Delete("/:id", h.controller.DeleteInstance)
	instances.Post("/:id/complete", h.controller.CompleteInstance)
	instances.Get("/:id/rows", h.controller.ListRows)
	instances.Put("/:id/rows/:row_key", h.controller.UpdateRow)
	instances.Delete("/:id/rows/:row_key", h.controller.DeleteRow)
}
