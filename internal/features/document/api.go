package document

import (
	"go-docmap/internal/config"
	"go-docmap/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type DocumentApi struct {
	controller *DocumentController
	config     *config.Config
}

func NewDocumentApi(controller *DocumentController, config *config.Config) *DocumentApi {
	return &DocumentApi{
		controller: controller,
		config:     config,
	}
}

func (h *DocumentApi) Setup(app *fiber.App) {
	documents := app.Group("/api/documents", middleware.AuthMiddleware(h.config.SkipAuth))

	documents.Post("/", h.controller.CreateDocument)
	documents.Get("/", h.controller.ListDocuments)
	documents.Get("/:id", h.controller.GetDocument)
}
