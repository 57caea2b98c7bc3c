package document

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

type DocumentController struct {
	Repo DocumentRepository
}

func NewDocumentController(repo DocumentRepository) *DocumentController {
	return &DocumentController{Repo: repo}
}

// CreateDocument godoc
// @Summary Register document
// @Description Register a document with its extracted field values
// @Tags documents
// @Accept json
// @Produce json
// @Param document body Document true "Document"
// @Success 201 {object} map[string]interface{}
// @Router /api/documents [post]
func (ctrl *DocumentController) CreateDocument(c *fiber.Ctx) error {
	var doc Document
	if err := c.BodyParser(&doc); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if err := ctrl.Repo.Create(c.UserContext(), &doc); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Document registered successfully",
		"data":    doc,
	})
}

// ListDocuments godoc
// @Summary List documents
// @Tags documents
// @Produce json
// @Param limit query int false "Limit"
// @Param offset query int false "Offset"
// @Success 200 {array} Document
// @Router /api/documents [get]
func (ctrl *DocumentController) ListDocuments(c *fiber.Ctx) error {
	limit, _ := strconv.ParseInt(c.Query("limit", "50"), 10, 64)
	offset, _ := strconv.ParseInt(c.Query("offset", "0"), 10, 64)

	docs, total, err := ctrl.Repo.List(c.UserContext(), limit, offset)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"data":  docs,
		"total": total,
	})
}

// GetDocument godoc
// @Summary Get document
// @Tags documents
// @Produce json
// @Param id path string true "Document ID"
// @Success 200 {object} Document
// @Failure 404 {object} map[string]interface{}
// @Router /api/documents/{id} [get]
func (ctrl *DocumentController) GetDocument(c *fiber.Ctx) error {
	doc, err := ctrl.Repo.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Document not found",
		})
	}

	return c.JSON(fiber.Map{"data": doc})
}
