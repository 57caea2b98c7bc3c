package instance

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type InstanceController struct {
	Service InstanceService
}

func NewInstanceController(service InstanceService) *InstanceController {
	return &InstanceController{Service: service}
}

// CreateInstance godoc
// @Summary Create template instance
// @Tags instances
// @Accept json
// @Produce json
// @Param instance body TemplateInstance true "Instance"
// @Success 201 {object} map[string]interface{}
// @Router /api/instances [post]
func (ctrl *InstanceController) CreateInstance(c *fiber.Ctx) error {
	var inst TemplateInstance
	if err := c.BodyParser(&inst); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if userIDStr, ok := c.Locals("user_id").(string); ok {
		if oid, err := primitive.ObjectIDFromHex(userIDStr); err == nil {
			inst.CreatedBy = oid
		}
	}

	if err := ctrl.Service.CreateInstance(c.UserContext(), &inst); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Instance created successfully",
		"data":    inst,
	})
}

// ListInstances godoc
// @Summary List template instances
// @Tags instances
// @Produce json
// @Param template_id query string false "Template ID"
// @Success 200 {array} TemplateInstance
// @Router /api/instances [get]
func (ctrl *InstanceController) ListInstances(c *fiber.Ctx) error {
	instances, err := ctrl.Service.ListInstances(c.UserContext(), c.Query("template_id"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{"data": instances})
}

// GetInstance godoc
// @Summary Get template instance
// @Tags instances
// @Produce json
// @Param id path string true "Instance ID"
// @Success 200 {object} TemplateInstance
// @Failure 404 {object} map[string]interface{}
// @Router /api/instances/{id} [get]
func (ctrl *InstanceController) GetInstance(c *fiber.Ctx) error {
	inst, err := ctrl.Service.GetInstance(c.UserContext(), c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Instance not found",
		})
	}

	return c.JSON(fiber.Map{"data": inst})
}

// DeleteInstance godoc
// @Summary Delete template instance
// @Description Delete a draft instance and its rows
// @Tags instances
// @Produce json
// @Param id path string true "Instance ID"
// @Success 200 {object} map[string]interface{}
// @Router /api/instances/{id} [delete]
func (ctrl *InstanceController) DeleteInstance(c *fiber.Ctx) error {
	if err := ctrl.Service.DeleteInstance(c.UserContext(), c.Params("id")); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{"message": "Instance deleted successfully"})
}

// CompleteInstance godoc
// @Summary Complete template instance
// @Description Finalize a processing instance so it can be exported
// @Tags instances
// @Produce json
// @Param id path string true "Instance ID"
// @Success 200 {object} map[string]interface{}
// @Router /api/instances/{id}/complete [post]
func (ctrl *InstanceController) CompleteInstance(c *fiber.Ctx) error {
	if err := ctrl.Service.Complete(c.UserContext(), c.Params("id")); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{"message": "Instance completed"})
}

// ListRows godoc
// @Summary List instance rows
// @Tags instances
// @Produce json
// @Param id path string true "Instance ID"
// @Param limit query int false "Limit"
// @Param offset query int false "Offset"
// @Success 200 {array} Row
// @Router /api/instances/{id}/rows [get]
func (ctrl *InstanceController) ListRows(c *fiber.Ctx) error {
	limit, _ := strconv.ParseInt(c.Query("limit", "100"), 10, 64)
	offset, _ := strconv.ParseInt(c.Query("offset", "0"), 10, 64)

	rows, err := ctrl.Service.ListRows(c.UserContext(), c.Params("id"), limit, offset)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{"data": rows})
}

// UpdateRow godoc
// @Summary Edit row fields
// @Description Hand-edit field values of one row while the instance is editable
// @Tags instances
// @Accept json
// @Produce json
// @Param id path string true "Instance ID"
// @Param row_key path string true "Row Key"
// @Success 200 {object} map[string]interface{}
// @Router /api/instances/{id}/rows/{row_key} [put]
func (ctrl *InstanceController) UpdateRow(c *fiber.Ctx) error {
	var fields map[string]interface{}
	if err := c.BodyParser(&fields); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if err := ctrl.Service.UpdateRow(c.UserContext(), c.Params("id"), c.Params("row_key"), fields); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{"message": "Row updated successfully"})
}

// DeleteRow godoc
// @Summary Delete row
// @Tags instances
// @Produce json
// @Param id path string true "Instance ID"
// @Param row_key path string true "Row Key"
// @Success 200 {object} map[string]interface{}
// @Router /api/instances/{id}/rows/{row_key} [delete]
func (ctrl *InstanceController) DeleteRow(c *fiber.Ctx) error {
	if err := ctrl.Service.DeleteRow(c.UserContext(), c.Params("id"), c.Params("row_key")); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{"message": "Row deleted successfully"})
}
