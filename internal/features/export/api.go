package export

import (
	"go-docmap/internal/config"
	"go-docmap/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type ExportApi struct {
	controller *ExportController
	config     *config.Config
}

func NewExportApi(controller *ExportController, config *config.Config) *ExportApi {
	return &ExportApi{
		controller: controller,
		config:     config,
	}
}

func (h *ExportApi) Setup(app *fiber.App) {
	exports := app.Group("/api/exports", middleware.AuthMiddleware(h.config.SkipAuth))

	exports.Get("/:instance_id", h.controller.ExportInstance)
}
