package lookupsync

import (
	"go-docmap/internal/config"
	"go-docmap/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type LookupApi struct {
	controller *LookupController
	config     *config.Config
}

func NewLookupApi(controller *LookupController, config *config.Config) *LookupApi {
	return &LookupApi{
		controller: controller,
		config:     config,
	}
}

func (h *LookupApi) Setup(app *fiber.App) {
	lookups := app.Group("/api/lookups", middleware.AuthMiddleware(h.config.SkipAuth))

	lookups.Post("/", h.controller.SaveTable)
	lookups.Get("/", h.controller.ListTables)
	lookups.Post("/sync", h.controller.SyncAll)
	lookups.Get("/:name", h.controller.GetTable)
	lookups.Delete("/:name", h.controller.DeleteTable)
	lookups.Post("/:name/sync", h.controller.SyncTable)
}
