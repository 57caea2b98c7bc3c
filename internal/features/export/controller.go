package export

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
)

type ExportController struct {
	Service ExportService
}

func NewExportController(service ExportService) *ExportController {
	return &ExportController{Service: service}
}

// ExportInstance godoc
// @Summary Export template instance
// @Description Download a completed instance's rows as an xlsx workbook or csv file
// @Tags exports
// @Produce application/octet-stream
// @Param instance_id path string true "Instance ID"
// @Param format query string false "Export format (xlsx or csv)" default(xlsx)
// @Success 200 {file} binary
// @Failure 400 {object} map[string]interface{}
// @Router /api/exports/{instance_id} [get]
func (ctrl *ExportController) ExportInstance(c *fiber.Ctx) error {
	actor, _ := c.Locals("user_id").(string)

	payload, filename, err := ctrl.Service.ExportInstance(
		c.UserContext(),
		c.Params("instance_id"),
		c.Query("format", FormatXLSX),
		actor,
	)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	c.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Set("Content-Type", "application/octet-stream")
	return c.Send(payload)
}
