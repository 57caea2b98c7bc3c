package template

import (
	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TemplateController struct {
	Service TemplateService
}

func NewTemplateController(service TemplateService) *TemplateController {
	return &TemplateController{Service: service}
}

// CreateTemplate godoc
// @Summary Create data template
// @Description Create a new target data template
// @Tags templates
// @Accept json
// @Produce json
// @Param template body DataTemplate true "Template Definition"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Router /api/templates [post]
func (ctrl *TemplateController) CreateTemplate(c *fiber.Ctx) error {
	var tmpl DataTemplate
	if err := c.BodyParser(&tmpl); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if userIDStr, ok := c.Locals("user_id").(string); ok {
		if oid, err := primitive.ObjectIDFromHex(userIDStr); err == nil {
			tmpl.CreatedBy = oid
		}
	}

	if err := ctrl.Service.CreateTemplate(c.UserContext(), &tmpl); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Template created successfully",
		"data":    tmpl,
	})
}

// ListTemplates godoc
// @Summary List data templates
// @Tags templates
// @Produce json
// @Success 200 {array} DataTemplate
// @Router /api/templates [get]
func (ctrl *TemplateController) ListTemplates(c *fiber.Ctx) error {
	templates, err := ctrl.Service.ListTemplates(c.UserContext())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{"data": templates})
}

// GetTemplate godoc
// @Summary Get data template
// @Tags templates
// @Produce json
// @Param id path string true "Template ID"
// @Success 200 {object} DataTemplate
// @Failure 404 {object} map[string]interface{}
// @Router /api/templates/{id} [get]
func (ctrl *TemplateController) GetTemplate(c *fiber.Ctx) error {
	tmpl, err := ctrl.Service.GetTemplate(c.UserContext(), c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Template not found",
		})
	}

	return c.JSON(fiber.Map{"data": tmpl})
}

// UpdateTemplate godoc
// @Summary Update data template
// @Tags templates
// @Accept json
// @Produce json
// @Param id path string true "Template ID"
// @Success 200 {object} map[string]interface{}
// @Router /api/templates/{id} [put]
func (ctrl *TemplateController) UpdateTemplate(c *fiber.Ctx) error {
	var updates map[string]interface{}
	if err := c.BodyParser(&updates); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if err := ctrl.Service.UpdateTemplate(c.UserContext(), c.Params("id"), updates); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{"message": "Template updated successfully"})
}

// DeleteTemplate godoc
// @Summary Delete data template
// @Tags templates
// @Produce json
// @Param id path string true "Template ID"
// @Success 200 {object} map[string]interface{}
// @Router /api/templates/{id} [delete]
func (ctrl *TemplateController) DeleteTemplate(c *fiber.Ctx) error {
	if err := ctrl.Service.DeleteTemplate(c.UserContext(), c.Params("id")); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{"message": "Template deleted successfully"})
}
