package lookupsync

import (
	"github.com/gofiber/fiber/v2"
)

type LookupController struct {
	Service LookupService
}

func NewLookupController(service LookupService) *LookupController {
	return &LookupController{Service: service}
}

// SaveTable godoc
// @Summary Create or replace lookup table
// @Tags lookups
// @Accept json
// @Produce json
// @Param table body LookupTable true "Lookup Table"
// @Success 200 {object} map[string]interface{}
// @Router /api/lookups [post]
func (ctrl *LookupController) SaveTable(c *fiber.Ctx) error {
	var table LookupTable
	if err := c.BodyParser(&table); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if err := ctrl.Service.SaveTable(c.UserContext(), &table); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"message": "Lookup table saved",
		"data":    table,
	})
}

// ListTables godoc
// @Summary List lookup tables
// @Tags lookups
// @Produce json
// @Success 200 {array} LookupTable
// @Router /api/lookups [get]
func (ctrl *LookupController) ListTables(c *fiber.Ctx) error {
	tables, err := ctrl.Service.ListTables(c.UserContext())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{"data": tables})
}

// GetTable godoc
// @Summary Get lookup table
// @Tags lookups
// @Produce json
// @Param name path string true "Table name"
// @Success 200 {object} LookupTable
// @Failure 404 {object} map[string]interface{}
// @Router /api/lookups/{name} [get]
func (ctrl *LookupController) GetTable(c *fiber.Ctx) error {
	table, err := ctrl.Service.GetTable(c.UserContext(), c.Params("name"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Lookup table not found",
		})
	}

	return c.JSON(fiber.Map{"data": table})
}

// DeleteTable godoc
// @Summary Delete lookup table
// @Tags lookups
// @Produce json
// @Param name path string true "Table name"
// @Success 200 {object} map[string]interface{}
// @Router /api/lookups/{name} [delete]
func (ctrl *LookupController) DeleteTable(c *fiber.Ctx) error {
	if err := ctrl.Service.DeleteTable(c.UserContext(), c.Params("name")); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{"message": "Lookup table deleted"})
}

// SyncTable godoc
// @Summary Sync one lookup table
// @Description Refresh a table's entries from its external SQL source
// @Tags lookups
// @Produce json
// @Param name path string true "Table name"
// @Success 200 {object} map[string]interface{}
// @Router /api/lookups/{name}/sync [post]
func (ctrl *LookupController) SyncTable(c *fiber.Ctx) error {
	if err := ctrl.Service.SyncTable(c.UserContext(), c.Params("name")); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{"message": "Lookup table synced"})
}

// SyncAll godoc
// @Summary Sync all lookup tables
// @Tags lookups
// @Produce json
// @Success 200 {object} SyncReport
// @Router /api/lookups/sync [post]
func (ctrl *LookupController) SyncAll(c *fiber.Ctx) error {
	report := ctrl.Service.SyncAll(c.UserContext())
	return c.JSON(fiber.Map{"data": report})
}
